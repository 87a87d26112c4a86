package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelver/internal/notifications"
)

func newNotifyCommand(cmdCtx *commandContext) *cobra.Command {
	notify := &cobra.Command{
		Use:   "notify",
		Short: "Notification helpers",
	}
	notify.AddCommand(&cobra.Command{
		Use:   "test",
		Short: "Send a test notification to the configured ntfy topic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				return fmt.Errorf("no ntfy topic configured")
			}
			if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent.")
			return nil
		},
	})
	return notify
}
