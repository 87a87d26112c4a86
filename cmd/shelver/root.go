package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string

	root := &cobra.Command{
		Use:           "shelver",
		Short:         "File vault inbox notes automatically",
		Long:          "Shelver watches a vault inbox and drives every file through validation, extraction, classification, and filing. This CLI inspects and controls that pipeline.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file")

	cmdCtx := newCommandContext(&configFlag)

	root.AddCommand(
		newStatusCommand(cmdCtx),
		newRecordsCommand(cmdCtx),
		newIssuesCommand(cmdCtx),
		newTimelineCommand(cmdCtx),
		newRetryCommand(cmdCtx),
		newRequeueCommand(cmdCtx),
		newRemoveCommand(cmdCtx),
		newNotifyCommand(cmdCtx),
		newConfigCommand(cmdCtx),
		newRunCommand(cmdCtx),
	)
	return root
}
