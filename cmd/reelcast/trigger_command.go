package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelcast/internal/api"
)

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	var topic string

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Trigger a single-idea test run through the whole pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			payload := map[string]string{"topic": topic}
			var ack api.TriggerResponse
			if err := client.post(cmd.Context(), "/api/pipeline/trigger", payload, &ack); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pipeline run triggered; follow it with `reelcast runs list`.")
			return nil
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "Optional topic to steer idea generation")
	return cmd
}
