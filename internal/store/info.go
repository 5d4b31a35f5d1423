package store

import "context"

// StoreInfo summarizes catalog contents for the info endpoint.
type StoreInfo struct {
	SchemaVersion int
	RecordCounts  map[string]int
	TotalRecords  int
}

// GetStoreInfo returns schema version and record counts by status.
func (s *Store) GetStoreInfo(ctx context.Context) (*StoreInfo, error) {
	version, err := currentVersion(s.db)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM records GROUP BY status")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := &StoreInfo{SchemaVersion: version, RecordCounts: map[string]int{}}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		info.RecordCounts[status] = count
		info.TotalRecords += count
	}
	return info, rows.Err()
}
