package main

import (
	"errors"

	"github.com/spf13/cobra"
)

// requireExactlyArgs builds a positional-args validator with a message
// naming what is missing instead of cobra's generic count error.
func requireExactlyArgs(count int, message string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) != count {
			return errors.New(message)
		}
		return nil
	}
}

// requireAtLeastOneID validates commands that act on one or more
// record ids.
func requireAtLeastOneID(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("at least one record id is required")
	}
	return nil
}
