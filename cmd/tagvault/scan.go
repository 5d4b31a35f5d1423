package main

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
	"tagvault/internal/scanner"
)

func newScanCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		archiveName string
		register    bool
		dryRun      bool
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "scan [<dir>]",
		Short: "Scan an archive directory for dumps and sidecars",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cfg.ArchiveRoot
			if len(args) > 0 {
				root = args[0]
			}
			if root == "" {
				return fmt.Errorf("archive directory is required (argument or archive_root config)")
			}

			summary, err := scanner.Scan(root)
			if err != nil {
				return err
			}

			return withClient(cfg, func(client *api.Client) error {
				if err := annotateCatalogState(cmd.Context(), client, summary); err != nil {
					return err
				}

				if !register && !dryRun {
					if *jsonOutput {
						return writeJSON(summary)
					}
					return printScanSummary(summary)
				}

				name := archiveName
				if name == "" {
					name = filepath.Base(root)
				}
				return registerScannedDumps(cmd.Context(), cfg, client, summary, name, dryRun, force, jsonOutput)
			})
		},
	}

	cmd.Flags().StringVar(&archiveName, "archive", "", "archive name recorded on registered dumps")
	cmd.Flags().BoolVar(&register, "register", false, "create pending records for scanned dumps")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what --register would create without writing")
	cmd.Flags().BoolVar(&force, "force", false, "register dumps even when the catalog already holds their UID")

	return cmd
}

// annotateCatalogState marks each dump entry with whether the catalog
// already holds a record for its UID, and whether that record points
// at a vaulted blob.
func annotateCatalogState(ctx context.Context, client *api.Client, summary *scanner.Summary) error {
	type state struct{ cataloged, vaulted bool }
	known := map[string]state{}

	for i := range summary.Entries {
		entry := &summary.Entries[i]
		if entry.Kind != scanner.KindDump || entry.UID == "" {
			continue
		}

		st, ok := known[entry.UID]
		if !ok {
			query := url.Values{}
			query.Set("uid", entry.UID)
			query.Set("status", "all")
			query.Set("limit", "1")
			records, err := client.ListRecords(ctx, query)
			if err != nil {
				return err
			}
			st.cataloged = len(records) > 0
			st.vaulted = len(records) > 0 && records[0].BlobID != ""
			known[entry.UID] = st
		}

		cataloged, vaulted := st.cataloged, st.vaulted
		entry.Cataloged = &cataloged
		entry.Vaulted = &vaulted
	}
	return nil
}

func printScanSummary(summary *scanner.Summary) error {
	for _, entry := range summary.Entries {
		line := fmt.Sprintf("%-10s %s", entry.Kind, entry.Path)
		if entry.UID != "" {
			line += fmt.Sprintf(" uid=%s", entry.UID)
		}
		if entry.CardType != "" {
			line += fmt.Sprintf(" type=%s", entry.CardType)
		}
		if entry.Cataloged != nil {
			line += fmt.Sprintf(" cataloged=%t", *entry.Cataloged)
		}
		if entry.Vaulted != nil {
			line += fmt.Sprintf(" vaulted=%t", *entry.Vaulted)
		}
		if len(entry.Missing) > 0 {
			line += fmt.Sprintf(" missing=%v", entry.Missing)
		}
		if entry.Problem != "" {
			line += fmt.Sprintf(" problem=%s", entry.Problem)
		}
		if err := writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return writePlain("%d dumps, %d key files, %d dictionaries, %d tag info files, %d unknown\n",
		summary.Dumps, summary.KeyFiles, summary.Dictionaries, summary.TagInfoFiles, summary.Unknown)
}

// selectDumpsForRegistration picks the dump entries --register would
// create records for. Dumps whose UID the catalog already holds are
// skipped unless force is set, so re-running register is idempotent.
func selectDumpsForRegistration(summary *scanner.Summary, force bool) []*scanner.Entry {
	var selected []*scanner.Entry
	for i := range summary.Entries {
		entry := &summary.Entries[i]
		if entry.Kind != scanner.KindDump || entry.UID == "" {
			continue
		}
		if !force && entry.Cataloged != nil && *entry.Cataloged {
			continue
		}
		selected = append(selected, entry)
	}
	return selected
}

func registerScannedDumps(ctx context.Context, cfg *config.Config, client *api.Client, summary *scanner.Summary, archiveName string, dryRun, force bool, jsonOutput *bool) error {
	if summary.Dumps == 0 {
		return fmt.Errorf("no usable dumps found under %s", summary.Root)
	}

	selected := selectDumpsForRegistration(summary, force)
	if len(selected) == 0 {
		return writePlain("nothing to register: all %d dumps are already cataloged\n", summary.Dumps)
	}

	if dryRun {
		for _, entry := range selected {
			if err := writePlain("would register %s %s\n", entry.UID, entry.Path); err != nil {
				return err
			}
		}
		return writePlain("%d of %d dumps would be registered\n", len(selected), summary.Dumps)
	}

	requests := make([]api.RecordCreateRequest, 0, len(selected))
	for _, entry := range selected {
		requests = append(requests, createRequestFromRecord(entry.ProposedRecord(archiveName)))
	}

	resp, err := batchCreateAll(ctx, client, requests, cfg.ImportBatchSize)
	if err != nil {
		return err
	}
	if *jsonOutput {
		return writeJSON(resp)
	}
	for _, rec := range resp {
		if err := writePlain("%s %s\n", rec.ID, rec.UID); err != nil {
			return err
		}
	}
	return nil
}
