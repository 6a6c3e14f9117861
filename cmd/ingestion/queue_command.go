package main

import (
	"fmt"
	"strconv"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "List events waiting for a worker, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(cmd, func(_ *config.Config, queue videos.QueueRepository) error {
				events, err := queue.Pending(cmd.Context())
				if err != nil {
					return err
				}
				if len(events) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderQueue(events))
				return nil
			})
		},
	}
}

func renderQueue(events []*models.JobEvent) string {
	rows := make([][]string, 0, len(events))
	for i, e := range events {
		target := e.Name
		if e.Type == models.EventRestitch {
			target = "video " + e.VideoID
		}
		received := "-"
		if !e.ReceivedAt.IsZero() {
			received = humanize.Time(e.ReceivedAt)
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), string(e.Type), target, received})
	}
	return renderTable(
		[]string{"#", "Type", "Target", "Received"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}
