package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelver/internal/preflight"
	"shelver/internal/records"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show registry totals and engine paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := cmdCtx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			stats := store.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Records: %d\n", store.Len())
			for _, status := range []records.Status{
				records.StatusProcessing,
				records.StatusCompleted,
				records.StatusBypassed,
				records.StatusError,
			} {
				label := displayLabel(string(status))
				fmt.Fprintf(out, "  %-12s %s\n", label+":", colorize(fmt.Sprintf("%d", stats[status]), statusColor(status)))
			}
			fmt.Fprintf(out, "Inbox:    %s\n", cfg.Paths.InboxDir)
			fmt.Fprintf(out, "Registry: %s\n", cfg.RecordDocumentPath())
			fmt.Fprintf(out, "History:  %s\n", cfg.HistoryDBPath())

			if !check {
				return nil
			}
			fmt.Fprintln(out, "\nEnvironment checks:")
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				mark := colorize("FAIL", ansiRed)
				if result.Passed {
					mark = colorize("OK", ansiGreen)
				}
				fmt.Fprintf(out, "  %-24s [%s] %s\n", result.Name+":", mark, result.Detail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "run environment and service checks")
	return cmd
}
