package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/server"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/worker"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/db/aws"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/db/postgres"
	clientRedis "github.com/amankumarsingh77/repair-video-stitcher/pkg/db/redis"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

func main() {
	cfgFile, err := config.LoadConfig(config.ConfigPath())
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	defer appLogger.Sync()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	defer psqlDB.Close()

	redisClient, err := clientRedis.NewRedisClient(ctx, cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	defer redisClient.Close()

	s3Client, err := aws.NewAWSClient(ctx, cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	services := server.NewServices(cfg, psqlDB, redisClient, s3Client, appLogger)
	w := worker.NewWorker(cfg, appLogger.Named("worker"), services.QueueRepo, services.VideoUC)
	w.Start(ctx)
	<-ctx.Done()
	appLogger.Infof("Shutting down, waiting for running jobs...")
	w.Wait()
}
