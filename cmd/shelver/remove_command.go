package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRemoveCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <record-id>",
		Short: "Forget a record (the file itself is left alone)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if !store.Remove(args[0]) {
				return fmt.Errorf("no record with id %s", args[0])
			}
			if err := store.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}
