package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagvault/internal/validate"
)

func newValidateCmd(jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate tag info JSON files and dump sizes",
		Args:  requireExactlyArgs(1, "path is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}

			if !info.IsDir() {
				result := validateSingleFile(args[0], info.Size())
				if *jsonOutput {
					if err := writeJSON(result); err != nil {
						return err
					}
				} else {
					printResult(result)
				}
				if !result.Valid() {
					return fmt.Errorf("%s failed validation", args[0])
				}
				return nil
			}

			report, err := validate.Directory(args[0])
			if err != nil {
				return err
			}

			if *jsonOutput {
				if err := writeJSON(report); err != nil {
					return err
				}
			} else {
				for _, result := range report.Results {
					printResult(result)
				}
				_ = writePlain("%d files checked, %d valid, %d invalid (%d errors, %d warnings)\n",
					report.TotalFiles, report.ValidFiles, report.InvalidFiles,
					report.TotalErrors, report.TotalWarnings)
			}

			if report.InvalidFiles > 0 {
				return fmt.Errorf("%d of %d files failed validation", report.InvalidFiles, report.TotalFiles)
			}
			return nil
		},
	}

	return cmd
}

func validateSingleFile(path string, size int64) validate.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		result := validate.Result{File: path}
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if looksLikeJSON(data) {
		return validate.TagInfoJSON(path, data)
	}
	return validate.BinFile(path, size)
}

func looksLikeJSON(data []byte) bool {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{', '[':
			return true
		default:
			return false
		}
	}
	return false
}

func printResult(result validate.Result) {
	status := "ok"
	if !result.Valid() {
		status = "FAIL"
	}
	_ = writePlain("%s: %s\n", status, result.File)
	for _, message := range result.Errors {
		_ = writePlain("  error: %s\n", message)
	}
	for _, message := range result.Warnings {
		_ = writePlain("  warning: %s\n", message)
	}
}
