package server

import (
	"github.com/amankumarsingh77/repair-video-stitcher/internal/analyzer"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/config"
	libraryRepository "github.com/amankumarsingh77/repair-video-stitcher/internal/library/repository"
	libraryUsecase "github.com/amankumarsingh77/repair-video-stitcher/internal/library/usecase"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/stitcher"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	videoRepository "github.com/amankumarsingh77/repair-video-stitcher/internal/videos/repository"
	videoUsecase "github.com/amankumarsingh77/repair-video-stitcher/internal/videos/usecase"
	"github.com/amankumarsingh77/repair-video-stitcher/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

// Services is the object graph shared by the ingress and the worker.
type Services struct {
	VideoUC   videos.UseCase
	QueueRepo videos.QueueRepository
	Storage   videos.StorageRepository
}

func NewServices(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, s3Client *s3.Client, log logger.Logger) *Services {
	vRepo := videoRepository.NewVideoRepo(db)
	vAWSRepo := videoRepository.NewAwsRepository(s3Client)
	vRedisRepo := videoRepository.NewVideoRedisRepo(redisClient, cfg.Redis.JobQueueKey)

	lRepo := libraryRepository.NewLibraryRepo(db)
	lRedisRepo := libraryRepository.NewLibraryRedisRepo(redisClient)
	matcherUC := libraryUsecase.NewMatcherUseCase(cfg, lRepo, lRedisRepo, log.Named("matcher"))

	compiler := stitcher.NewStitcher(cfg, log.Named("stitcher"))
	ai := analyzer.NewAnalyzer(cfg, log.Named("analyzer"))

	return &Services{
		VideoUC:   videoUsecase.NewVideoUseCase(cfg, vRepo, vAWSRepo, vRedisRepo, matcherUC, compiler, ai, log),
		QueueRepo: vRedisRepo,
		Storage:   vAWSRepo,
	}
}
