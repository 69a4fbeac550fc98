package main

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"reelcast/internal/api"
)

func newVideosCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "videos",
		Short: "List recently created videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			var list api.VideoListResponse
			if err := client.get(cmd.Context(), "/api/videos?"+query.Encode(), &list); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, list)
			}
			if len(list.Videos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No videos found.")
				return nil
			}

			rows := make([][]string, 0, len(list.Videos))
			for _, video := range list.Videos {
				rows = append(rows, []string{
					video.ID,
					video.Title,
					video.Status,
					fmt.Sprintf("%.0fs", video.DurationSeconds),
					video.CreatedAt,
				})
			}
			headers := []string{"ID", "Title", "Status", "Duration", "Created"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of videos to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newPublishesCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "publishes",
		Short: "List recent platform uploads with engagement counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			query := url.Values{}
			query.Set("limit", strconv.Itoa(limit))
			var list api.PublishListResponse
			if err := client.get(cmd.Context(), "/api/publishes?"+query.Encode(), &list); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, list)
			}
			if len(list.Publishes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No uploads found.")
				return nil
			}

			rows := make([][]string, 0, len(list.Publishes))
			for _, publish := range list.Publishes {
				rows = append(rows, []string{
					publish.PlatformID,
					publish.Title,
					strconv.FormatInt(publish.Views, 10),
					strconv.FormatInt(publish.Likes, 10),
					strconv.FormatInt(publish.Comments, 10),
					publish.PublishedAt,
				})
			}
			headers := []string{"Platform ID", "Title", "Views", "Likes", "Comments", "Published"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of uploads to list")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show channel dashboard aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var stats api.StatsView
			if err := client.get(cmd.Context(), "/api/stats", &stats); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total videos:     %d\n", stats.TotalVideos)
			fmt.Fprintf(out, "Total views:      %d\n", stats.TotalViews)
			fmt.Fprintf(out, "Videos this week: %d\n", stats.VideosThisWeek)
			if len(stats.CategoryMix) == 0 {
				return nil
			}

			categories := make([]string, 0, len(stats.CategoryMix))
			for category := range stats.CategoryMix {
				categories = append(categories, category)
			}
			sort.Strings(categories)
			fmt.Fprintln(out, "Category mix:")
			for _, category := range categories {
				fmt.Fprintf(out, "  %-16s %d\n", category, stats.CategoryMix[category])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
