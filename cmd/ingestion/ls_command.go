package main

import (
	"fmt"
	"strconv"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var bucket string
	cmd := &cobra.Command{
		Use:   "ls [prefix]",
		Short: "List stored objects under a namespace (default raw/)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := models.RawPrefix
			if len(args) == 1 {
				prefix = args[0]
			}
			return ctx.withStorage(cmd, func(cfg *config.Config, storage videos.StorageRepository) error {
				target := bucket
				if target == "" {
					target = cfg.S3.MediaBucket
				}
				keys, err := storage.ListObjects(cmd.Context(), target, prefix)
				if err != nil {
					return err
				}
				if len(keys) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No objects under %s/%s\n", target, prefix)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderObjects(keys))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket to list (defaults to the media bucket)")
	return cmd
}

// renderObjects tabulates keys with the outputs a raw key maps to.
func renderObjects(keys []string) string {
	rows := make([][]string, 0, len(keys))
	for i, key := range keys {
		processed, thumbnail := "-", "-"
		if models.IsRawPath(key) {
			processed = models.ProcessedPath(key, "")
			thumbnail = models.ThumbnailPath(key, "")
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), key, processed, thumbnail})
	}
	return renderTable(
		[]string{"#", "Key", "Processed", "Thumbnail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}
