package main

import (
	"fmt"
	"strings"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos/repository"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/db/aws"
	clientRedis "github.com/amankumarsingh77/repair-video-stitcher/pkg/db/redis"
	"github.com/spf13/cobra"
)

// commandContext lazily loads config and opens only the clients a command needs.
type commandContext struct {
	configFlag *string
	cfg        *config.Config
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := config.ConfigPath()
	if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
		path = strings.TrimSpace(*c.configFlag)
	}
	v, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	cfg, err := config.ParseConfig(v)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *commandContext) withQueue(cmd *cobra.Command, fn func(cfg *config.Config, queue videos.QueueRepository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, err := clientRedis.NewRedisClient(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer client.Close()
	return fn(cfg, repository.NewVideoRedisRepo(client, cfg.Redis.JobQueueKey))
}

func (c *commandContext) withStorage(cmd *cobra.Command, fn func(cfg *config.Config, storage videos.StorageRepository) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	client, err := aws.NewAWSClient(cmd.Context(), cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	return fn(cfg, repository.NewAwsRepository(client))
}
