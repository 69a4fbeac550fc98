package main

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelcast/internal/api"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect and manage pipeline runs",
	}

	runsCmd.AddCommand(newRunsListCommand(ctx))
	runsCmd.AddCommand(newRunsShowCommand(ctx))
	runsCmd.AddCommand(newRunsForceCommand(ctx, "complete", "Force a run to completed status"))
	runsCmd.AddCommand(newRunsForceCommand(ctx, "fail", "Force a run to failed status"))

	return runsCmd
}

func newRunsListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var status string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			if trimmed := strings.TrimSpace(status); trimmed != "" {
				query.Set("status", trimmed)
			}

			var list api.RunListResponse
			if err := client.get(cmd.Context(), "/api/runs?"+query.Encode(), &list); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, list)
			}
			if len(list.Runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs found.")
				return nil
			}

			rows := make([][]string, 0, len(list.Runs))
			for _, run := range list.Runs {
				rows = append(rows, []string{
					run.ID,
					run.RunDate,
					run.Status,
					strconv.Itoa(run.TopicsGenerated),
					strconv.Itoa(run.ScriptsGenerated),
					strconv.Itoa(run.VideosCreated),
					strconv.Itoa(run.VideosUploaded),
					strconv.Itoa(len(run.Errors)),
				})
			}
			headers := []string{"ID", "Date", "Status", "Topics", "Scripts", "Videos", "Uploaded", "Errors"}
			aligns := []columnAlignment{
				alignLeft, alignLeft, alignLeft,
				alignRight, alignRight, alignRight, alignRight, alignRight,
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	cmd.Flags().StringVar(&status, "status", "", "Filter by run status (running, completed, failed)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var detail api.RunResponse
			if err := client.get(cmd.Context(), "/api/runs/"+url.PathEscape(args[0]), &detail); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, detail)
			}
			printRun(cmd, detail.Run)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newRunsForceCommand(ctx *commandContext, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <run-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			path := "/api/runs/" + url.PathEscape(args[0]) + "/" + action
			var detail api.RunResponse
			if err := client.post(cmd.Context(), path, nil, &detail); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s is now %s.\n", detail.Run.ID, detail.Run.Status)
			return nil
		},
	}
}

func newSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Close out runs that have been running past the stuck threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var swept api.SweepResponse
			if err := client.post(cmd.Context(), "/api/runs/sweep", nil, &swept); err != nil {
				return err
			}
			if swept.Reaped == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No stuck runs found.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d stuck run(s) as failed.\n", swept.Reaped)
			return nil
		},
	}
}
