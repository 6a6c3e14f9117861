package main

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var bucket string
	cmd := &cobra.Command{
		Use:   "upload <file> [raw key]",
		Short: "Upload a raw diagnostic video and queue it for processing",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			absPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			info, err := os.Stat(absPath)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return fmt.Errorf("file does not exist: %s", absPath)
				}
				return fmt.Errorf("inspect file: %w", err)
			}
			if info.IsDir() {
				return fmt.Errorf("%s is a directory", absPath)
			}
			key := ""
			if len(args) == 2 {
				key = args[1]
			}
			key = rawKey(absPath, key)

			return ctx.withStorage(cmd, func(cfg *config.Config, storage videos.StorageRepository) error {
				target := bucket
				if target == "" {
					target = cfg.S3.MediaBucket
				}
				if err := storage.UploadFile(cmd.Context(), target, key, absPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s (%s) to %s/%s\n", filepath.Base(absPath), humanize.IBytes(uint64(info.Size())), target, key)

				return ctx.withQueue(cmd, func(_ *config.Config, queue videos.QueueRepository) error {
					event := &models.JobEvent{Type: models.EventRawUpload, Name: key, Bucket: bucket}
					if err := enqueue(cmd, queue, event); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Queued %s\n", key)
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "Bucket to upload to (defaults to the media bucket)")
	return cmd
}

func newRestitchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "restitch <video-id>",
		Short: "Rebuild a processed video from its recorded clip selections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID := strings.TrimSpace(args[0])
			return ctx.withQueue(cmd, func(_ *config.Config, queue videos.QueueRepository) error {
				event := &models.JobEvent{Type: models.EventRestitch, VideoID: videoID}
				if err := enqueue(cmd, queue, event); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued re-stitch of video %s\n", videoID)
				return nil
			})
		},
	}
}

func enqueue(cmd *cobra.Command, queue videos.QueueRepository, event *models.JobEvent) error {
	event.MessageID = "cli-" + uuid.NewString()
	event.ReceivedAt = time.Now().UTC()
	if err := utils.ValidateStruct(cmd.Context(), event); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}
	return queue.Enqueue(cmd.Context(), event)
}

// rawKey places the object under the raw namespace, defaulting to the file's
// base name.
func rawKey(localPath, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		key = filepath.Base(localPath)
	}
	if !strings.HasPrefix(key, models.RawPrefix) {
		key = path.Join(models.RawPrefix, key)
	}
	return key
}
