package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagvault/internal/keys"
	"tagvault/internal/models"
)

func newKeysCmd(jsonOutput *bool) *cobra.Command {
	keysCmd := &cobra.Command{
		Use:   "keys",
		Short: "Work with MIFARE sector key material",
	}

	var convertOutput string
	convertCmd := &cobra.Command{
		Use:   "convert <key.bin>",
		Short: "Convert a binary key file to dictionary format",
		Args:  requireExactlyArgs(1, "key file is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			parsed, err := keys.ParseKeyBin(data)
			if err != nil {
				return err
			}
			if len(parsed) == 0 {
				return fmt.Errorf("no keys found in %s", args[0])
			}

			return writeKeys(parsed, convertOutput, *jsonOutput)
		},
	}
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output .dic file (default: stdout)")

	var deriveOutput string
	deriveCmd := &cobra.Command{
		Use:   "derive <uid>",
		Short: "Derive sector keys from a tag UID",
		Args:  requireExactlyArgs(1, "uid is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			uid, err := models.NormalizeUID(args[0])
			if err != nil {
				return err
			}
			raw, err := hex.DecodeString(uid)
			if err != nil {
				return err
			}

			derived, err := keys.DeriveTagKeys(raw)
			if err != nil {
				return err
			}

			return writeKeys(derived, deriveOutput, *jsonOutput)
		},
	}
	deriveCmd.Flags().StringVarP(&deriveOutput, "output", "o", "", "output .dic file (default: stdout)")

	keysCmd.AddCommand(convertCmd, deriveCmd)
	return keysCmd
}

func writeKeys(parsed []keys.Key, outputPath string, jsonOutput bool) error {
	if jsonOutput && outputPath == "" {
		lines := make([]string, 0, len(parsed))
		for _, key := range parsed {
			lines = append(lines, key.String())
		}
		return writeJSON(lines)
	}

	w := os.Stdout
	if outputPath != "" {
		f, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return keys.WriteDic(w, parsed)
}
