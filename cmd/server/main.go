package main

import (
	"context"
	"log"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/server"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/db/aws"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/db/postgres"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/db/redis"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
)

func main() {
	log.Println("Starting server")
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

	ctx := context.Background()
	psqlDB, err := postgres.NewPsqlDB(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to db: %s", err)
	}
	appLogger.Infof("db connected, status: %#v", psqlDB.Stats())
	defer psqlDB.Close()

	redisClient, err := redis.NewRedisClient(ctx, cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	appLogger.Infof("redis connected")
	defer redisClient.Close()

	s3Client, err := aws.NewAWSClient(ctx, cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	s := server.NewServer(cfg, psqlDB, redisClient, s3Client, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Errorf("server stopped: %s", err)
	}
}
