package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelcast/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and the latest run",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var status api.DaemonStatus
			if err := client.get(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, status)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Daemon:   running (pid %d)\n", status.PID)
			fmt.Fprintf(out, "Database: %s\n", status.DatabasePath)
			fmt.Fprintf(out, "Lock:     %s\n", status.LockFilePath)
			if status.LatestRun == nil {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Latest run:")
			printRun(cmd, *status.LatestRun)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func printRun(cmd *cobra.Command, run api.RunView) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  ID:        %s\n", run.ID)
	fmt.Fprintf(out, "  Date:      %s\n", run.RunDate)
	fmt.Fprintf(out, "  Status:    %s\n", run.Status)
	fmt.Fprintf(out, "  Started:   %s\n", run.StartedAt)
	if run.CompletedAt != "" {
		fmt.Fprintf(out, "  Completed: %s\n", run.CompletedAt)
	}
	fmt.Fprintf(out, "  Progress:  %d topics, %d scripts, %d videos, %d uploaded\n",
		run.TopicsGenerated, run.ScriptsGenerated, run.VideosCreated, run.VideosUploaded)
	for _, message := range run.Errors {
		fmt.Fprintf(out, "  Error:     %s\n", message)
	}
}
