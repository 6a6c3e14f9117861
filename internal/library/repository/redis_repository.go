package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/library"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

type libraryRedisRepo struct {
	redisClient *redis.Client
}

func NewLibraryRedisRepo(redisClient *redis.Client) library.CacheRepository {
	return &libraryRedisRepo{redisClient: redisClient}
}

func (l *libraryRedisRepo) GetCatalog(ctx context.Context, key string) ([]*models.ClipReference, error) {
	data, err := l.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "libraryRedisRepo.GetCatalog.Get")
	}
	var clips []*models.ClipReference
	if err = json.Unmarshal(data, &clips); err != nil {
		return nil, errors.Wrap(err, "libraryRedisRepo.GetCatalog.Unmarshal")
	}
	return clips, nil
}

func (l *libraryRedisRepo) SetCatalog(ctx context.Context, key string, clips []*models.ClipReference, ttl time.Duration) error {
	data, err := json.Marshal(clips)
	if err != nil {
		return errors.Wrap(err, "libraryRedisRepo.SetCatalog.Marshal")
	}
	if err = l.redisClient.Set(ctx, key, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "libraryRedisRepo.SetCatalog.Set")
	}
	return nil
}
