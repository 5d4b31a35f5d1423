package main

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"tagvault/internal/mifare"
)

type inspectOutput struct {
	File     string `json:"file"`
	Format   string `json:"format"`
	UID      string `json:"uid"`
	CardType string `json:"card_type"`
	Blocks   int    `json:"blocks"`
	Sectors  int    `json:"sectors"`
	ATQA     string `json:"atqa"`
	SAK      string `json:"sak"`
}

func newInspectCmd(jsonOutput *bool) *cobra.Command {
	var showKeys bool

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Inspect a MIFARE Classic dump file",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			format := "raw"
			if mifare.IsProxmarkJSON(data) {
				format = "proxmark"
				pm, err := mifare.DecodeProxmark(data)
				if err != nil {
					return err
				}
				data, err = pm.Raw()
				if err != nil {
					return err
				}
			}

			dump, err := mifare.ParseDump(data)
			if err != nil {
				return err
			}

			out := inspectOutput{
				File:     args[0],
				Format:   format,
				UID:      dump.UID(),
				CardType: string(dump.Type),
				Blocks:   dump.BlockCount(),
				Sectors:  dump.SectorCount(),
				ATQA:     dump.ATQA(),
				SAK:      dump.SAK(),
			}

			if *jsonOutput {
				return writeJSON(out)
			}

			_ = writePlain("file: %s\n", out.File)
			_ = writePlain("format: %s\n", out.Format)
			_ = writePlain("uid: %s\n", out.UID)
			_ = writePlain("card_type: %s\n", out.CardType)
			_ = writePlain("blocks: %d\n", out.Blocks)
			_ = writePlain("sectors: %d\n", out.Sectors)
			_ = writePlain("atqa: %s\n", out.ATQA)
			_ = writePlain("sak: %s\n", out.SAK)

			if showKeys {
				sectorKeys, err := dump.SectorKeys()
				if err != nil {
					return err
				}
				sectors := make([]int, 0, len(sectorKeys))
				for sector := range sectorKeys {
					sectors = append(sectors, sector)
				}
				sort.Ints(sectors)
				for _, sector := range sectors {
					sk := sectorKeys[sector]
					_ = writePlain("sector %2d: keyA=%s keyB=%s\n", sector, sk.KeyA, sk.KeyB)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showKeys, "keys", false, "print sector trailer keys")

	return cmd
}
