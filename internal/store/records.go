package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"tagvault/internal/models"
)

// ListFilter narrows record listings.
type ListFilter struct {
	Statuses  []string
	Materials []string
	Colors    []string
	Archive   string
	VariantID string
	UID       string
	Labels    []string
	LabelsAny []string
	Search    string
	Limit     int
	Offset    int
}

const recordColumns = `id, variant_id, status, material, color, filename, source_url, archive_name,
		description, file_size_bytes, downloaded_at, notes, uid, blob_id, created_at, updated_at, verified_at`

// CreateRecord inserts a record with optional labels.
func (s *Store) CreateRecord(ctx context.Context, rec *models.Record, labels []string) error {
	if rec == nil {
		return fmt.Errorf("record is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO records (
			id, variant_id, status, material, color, filename, source_url, archive_name,
			description, file_size_bytes, downloaded_at, notes, uid, blob_id, created_at, updated_at, verified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.VariantID,
		rec.Status,
		nullIfEmpty(rec.Material),
		nullIfEmpty(rec.Color),
		nullIfEmpty(rec.Filename),
		nullIfEmpty(rec.SourceURL),
		nullIfEmpty(rec.ArchiveName),
		nullIfEmpty(rec.Description),
		rec.FileSizeBytes,
		nullDate(rec.DownloadedAt),
		nullIfEmpty(rec.Notes),
		nullIfEmpty(rec.UID),
		nullIfEmpty(rec.BlobID),
		formatTime(rec.CreatedAt),
		formatTime(rec.UpdatedAt),
		nullTime(rec.VerifiedAt),
	)
	if err != nil {
		return err
	}

	if err = insertLabels(ctx, tx, rec.ID, labels); err != nil {
		return err
	}

	return tx.Commit()
}

// GetRecord returns a record by id, or nil when absent.
func (s *Store) GetRecord(ctx context.Context, id string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records WHERE id = ?
	`, id)
	return scanRecord(row)
}

// GetRecordByUID returns the newest record for a tag UID, or nil.
func (s *Store) GetRecordByUID(ctx context.Context, uid string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records WHERE uid = ? ORDER BY updated_at DESC LIMIT 1
	`, uid)
	return scanRecord(row)
}

// FindRecordByVariantFilename returns the newest record sharing both
// variant_id and filename, or nil. Import dedupe keys on this pair.
func (s *Store) FindRecordByVariantFilename(ctx context.Context, variantID, filename string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM records WHERE variant_id = ? AND filename = ?
		ORDER BY updated_at DESC LIMIT 1
	`, variantID, filename)
	return scanRecord(row)
}

// RecordUpdate describes fields to update.
type RecordUpdate struct {
	VariantID     *string
	Status        *string
	Material      *string
	Color         *string
	Filename      *string
	SourceURL     *string
	ArchiveName   *string
	Description   *string
	FileSizeBytes *int64
	DownloadedAt  *models.Date
	Notes         *string
	UID           *string
	BlobID        *string
	VerifiedAt    *time.Time
	ClearVerified bool
	UpdatedAt     time.Time
}

// UpdateRecord updates mutable fields on a record.
func (s *Store) UpdateRecord(ctx context.Context, id string, update RecordUpdate) error {
	if id == "" {
		return fmt.Errorf("id is required")
	}

	set := []string{}
	args := []any{}

	if update.VariantID != nil {
		set = append(set, "variant_id = ?")
		args = append(args, *update.VariantID)
	}
	if update.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *update.Status)
	}
	if update.Material != nil {
		set = append(set, "material = ?")
		args = append(args, nullIfEmpty(*update.Material))
	}
	if update.Color != nil {
		set = append(set, "color = ?")
		args = append(args, nullIfEmpty(*update.Color))
	}
	if update.Filename != nil {
		set = append(set, "filename = ?")
		args = append(args, nullIfEmpty(*update.Filename))
	}
	if update.SourceURL != nil {
		set = append(set, "source_url = ?")
		args = append(args, nullIfEmpty(*update.SourceURL))
	}
	if update.ArchiveName != nil {
		set = append(set, "archive_name = ?")
		args = append(args, nullIfEmpty(*update.ArchiveName))
	}
	if update.Description != nil {
		set = append(set, "description = ?")
		args = append(args, nullIfEmpty(*update.Description))
	}
	if update.FileSizeBytes != nil {
		set = append(set, "file_size_bytes = ?")
		args = append(args, *update.FileSizeBytes)
	}
	if update.DownloadedAt != nil {
		set = append(set, "downloaded_at = ?")
		args = append(args, nullDate(*update.DownloadedAt))
	}
	if update.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, nullIfEmpty(*update.Notes))
	}
	if update.UID != nil {
		set = append(set, "uid = ?")
		args = append(args, nullIfEmpty(*update.UID))
	}
	if update.BlobID != nil {
		set = append(set, "blob_id = ?")
		args = append(args, nullIfEmpty(*update.BlobID))
	}
	if update.VerifiedAt != nil {
		set = append(set, "verified_at = ?")
		args = append(args, nullTime(update.VerifiedAt))
	} else if update.ClearVerified {
		set = append(set, "verified_at = NULL")
	}

	set = append(set, "updated_at = ?")
	args = append(args, formatTime(update.UpdatedAt))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE records SET %s WHERE id = ?", strings.Join(set, ", "))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// ListRecords returns records matching the provided filter.
func (s *Store) ListRecords(ctx context.Context, filter ListFilter) ([]models.Record, error) {
	query, args := buildListQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// AddLabels adds labels to a record.
func (s *Store) AddLabels(ctx context.Context, id string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO record_labels (record_id, label) VALUES "+labelValues(len(labels)), labelArgs(id, labels)...)
	return err
}

// RemoveLabels removes labels from a record.
func (s *Store) RemoveLabels(ctx context.Context, id string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	args := []any{id}
	for _, label := range labels {
		args = append(args, label)
	}
	query := fmt.Sprintf("DELETE FROM record_labels WHERE record_id = ? AND label IN (%s)", placeholders(len(labels)))
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// ListLabels returns labels for a record.
func (s *Store) ListLabels(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT label FROM record_labels WHERE record_id = ? ORDER BY label ASC", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// ListAllLabels returns all labels in the database.
func (s *Store) ListAllLabels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT label FROM record_labels ORDER BY label ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	labels := []string{}
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// ListLabelsForRecords returns labels mapped by record id.
func (s *Store) ListLabelsForRecords(ctx context.Context, ids []string) (map[string][]string, error) {
	labels := make(map[string][]string)
	if len(ids) == 0 {
		return labels, nil
	}

	query := fmt.Sprintf("SELECT record_id, label FROM record_labels WHERE record_id IN (%s)", placeholders(len(ids)))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var recordID, label string
		if err := rows.Scan(&recordID, &label); err != nil {
			return nil, err
		}
		labels[recordID] = append(labels[recordID], label)
	}

	for _, list := range labels {
		sort.Strings(list)
	}

	return labels, rows.Err()
}

func buildListQuery(filter ListFilter) (string, []any) {
	query := "SELECT " + recordColumns + " FROM records"
	where := []string{}
	args := []any{}

	if len(filter.Statuses) > 0 {
		where = append(where, fmt.Sprintf("status IN (%s)", placeholders(len(filter.Statuses))))
		for _, status := range filter.Statuses {
			args = append(args, status)
		}
	}
	if len(filter.Materials) > 0 {
		where = append(where, fmt.Sprintf("material IN (%s)", placeholders(len(filter.Materials))))
		for _, material := range filter.Materials {
			args = append(args, material)
		}
	}
	if len(filter.Colors) > 0 {
		where = append(where, fmt.Sprintf("color IN (%s)", placeholders(len(filter.Colors))))
		for _, color := range filter.Colors {
			args = append(args, color)
		}
	}
	if filter.Archive != "" {
		where = append(where, "archive_name = ?")
		args = append(args, filter.Archive)
	}
	if filter.VariantID != "" {
		where = append(where, "variant_id = ?")
		args = append(args, filter.VariantID)
	}
	if filter.UID != "" {
		where = append(where, "uid = ?")
		args = append(args, filter.UID)
	}
	if len(filter.Labels) > 0 {
		where = append(where, fmt.Sprintf("id IN (SELECT record_id FROM record_labels WHERE label IN (%s) GROUP BY record_id HAVING COUNT(DISTINCT label) = %d)", placeholders(len(filter.Labels)), len(filter.Labels)))
		for _, label := range filter.Labels {
			args = append(args, label)
		}
	}
	if len(filter.LabelsAny) > 0 {
		where = append(where, fmt.Sprintf("id IN (SELECT record_id FROM record_labels WHERE label IN (%s))", placeholders(len(filter.LabelsAny))))
		for _, label := range filter.LabelsAny {
			args = append(args, label)
		}
	}
	if filter.Search != "" {
		where = append(where, "id IN (SELECT record_id FROM records_fts WHERE records_fts MATCH ?)")
		args = append(args, filter.Search)
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY updated_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	return query, args
}

func scanRecord(scanner interface {
	Scan(dest ...any) error
}) (*models.Record, error) {
	var rec models.Record
	var material, color, filename, sourceURL, archiveName, description sql.NullString
	var downloadedAt, notes, uid, blobID, verifiedAt sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&rec.ID,
		&rec.VariantID,
		&rec.Status,
		&material,
		&color,
		&filename,
		&sourceURL,
		&archiveName,
		&description,
		&rec.FileSizeBytes,
		&downloadedAt,
		&notes,
		&uid,
		&blobID,
		&createdAt,
		&updatedAt,
		&verifiedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rec.Material = material.String
	rec.Color = color.String
	rec.Filename = filename.String
	rec.SourceURL = sourceURL.String
	rec.ArchiveName = archiveName.String
	rec.Description = description.String
	rec.Notes = notes.String
	rec.UID = uid.String
	rec.BlobID = blobID.String

	if downloadedAt.Valid && downloadedAt.String != "" {
		date, err := models.ParseDate(downloadedAt.String)
		if err != nil {
			return nil, err
		}
		rec.DownloadedAt = date
	}

	parsedCreated, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	parsedUpdated, err := parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = parsedCreated
	rec.UpdatedAt = parsedUpdated
	if verifiedAt.Valid {
		parsedVerified, err := parseTime(verifiedAt.String)
		if err != nil {
			return nil, err
		}
		rec.VerifiedAt = &parsedVerified
	}

	return &rec, nil
}

func placeholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimRight(strings.Repeat("?,", count), ",")
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullTime(value *time.Time) any {
	if value == nil || value.IsZero() {
		return nil
	}
	return formatTime(*value)
}

func nullDate(value models.Date) any {
	if value.IsZero() {
		return nil
	}
	return value.String()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func labelValues(count int) string {
	values := make([]string, count)
	for i := 0; i < count; i++ {
		values[i] = "(?, ?)"
	}
	return strings.Join(values, ",")
}

func labelArgs(id string, labels []string) []any {
	args := make([]any, 0, len(labels)*2)
	for _, label := range labels {
		args = append(args, id, label)
	}
	return args
}

func insertLabels(ctx context.Context, tx *sql.Tx, id string, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO record_labels (record_id, label) VALUES "+labelValues(len(labels)), labelArgs(id, labels)...)
	return err
}
