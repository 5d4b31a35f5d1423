package main

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tagvault/internal/api"
	"tagvault/internal/config"
)

func newBlobCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	blobCmd := &cobra.Command{
		Use:   "blob",
		Short: "Manage vaulted dump files",
	}

	uploadCmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a dump file to the vault",
		Args:  requireExactlyArgs(1, "file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				resp, err := client.UploadBlob(cmd.Context(), filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("%s %s %d\n", resp.ID, resp.SHA256, resp.SizeBytes)
			})
		},
	}

	var outputPath string
	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Download a vaulted dump file",
		Args:  requireExactlyArgs(1, "blob id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				w := os.Stdout
				if outputPath != "" {
					f, err := os.Create(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return client.DownloadBlob(cmd.Context(), args[0], w)
			})
		},
	}
	getCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")

	metaCmd := &cobra.Command{
		Use:   "meta <id>",
		Short: "Show blob metadata and reference count",
		Args:  requireExactlyArgs(1, "blob id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetBlob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				_ = writePlain("id: %s\n", resp.ID)
				_ = writePlain("sha256: %s\n", resp.SHA256)
				_ = writePlain("size_bytes: %d\n", resp.SizeBytes)
				_ = writePlain("ref_count: %d\n", resp.RefCount)
				return nil
			})
		},
	}

	verifyCmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a vaulted dump against its recorded digest",
		Args:  requireExactlyArgs(1, "blob id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.VerifyBlob(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if !resp.OK {
					_ = writePlain("FAIL: %s %s\n", resp.ID, resp.Detail)
					return errors.New("blob verification failed")
				}
				return writePlain("ok: %s %s\n", resp.ID, resp.SHA256)
			})
		},
	}

	var gcDryRun bool
	gcCmd := &cobra.Command{
		Use:   "gc",
		Short: "Remove vaulted dumps no record references",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GCBlobs(cmd.Context(), gcDryRun)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				verb := "removed"
				if resp.DryRun {
					verb = "would remove"
				}
				return writePlain("%s %d blobs (%d bytes)\n", verb, resp.Removed, resp.FreedBytes)
			})
		},
	}
	gcCmd.Flags().BoolVar(&gcDryRun, "dry-run", false, "report candidates without deleting")

	blobCmd.AddCommand(uploadCmd, getCmd, metaCmd, verifyCmd, gcCmd)
	return blobCmd
}
