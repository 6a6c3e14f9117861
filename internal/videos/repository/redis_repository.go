package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amankumarsingh77/repair-video-stitcher/internal/models"
	"github.com/amankumarsingh77/repair-video-stitcher/internal/videos"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const leaseKeyPrefix = "lease:video:"

// releaseLease deletes the lease only when it is still held by owner.
var releaseLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// renewLease extends the lease only when it is still held by owner.
var renewLease = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)

type videoRedisRepo struct {
	redisClient *redis.Client
	queueKey    string
}

func NewVideoRedisRepo(redisClient *redis.Client, queueKey string) videos.QueueRepository {
	return &videoRedisRepo{
		redisClient: redisClient,
		queueKey:    queueKey,
	}
}

func (v *videoRedisRepo) Enqueue(ctx context.Context, event *models.JobEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "videoRedisRepo.Enqueue.Marshal")
	}
	if err = v.redisClient.LPush(ctx, v.queueKey, data).Err(); err != nil {
		return errors.Wrap(err, "videoRedisRepo.Enqueue.LPush")
	}
	return nil
}

// Dequeue blocks for up to timeout and returns nil when the queue stayed empty.
func (v *videoRedisRepo) Dequeue(ctx context.Context, timeout time.Duration) (*models.JobEvent, error) {
	res, err := v.redisClient.BRPop(ctx, timeout, v.queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "videoRedisRepo.Dequeue.BRPop")
	}
	event := &models.JobEvent{}
	if err = json.Unmarshal([]byte(res[1]), event); err != nil {
		return nil, errors.Wrap(err, "videoRedisRepo.Dequeue.Unmarshal")
	}
	return event, nil
}

// Pending lists queued events, oldest first.
func (v *videoRedisRepo) Pending(ctx context.Context) ([]*models.JobEvent, error) {
	items, err := v.redisClient.LRange(ctx, v.queueKey, 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "videoRedisRepo.Pending.LRange")
	}
	events := make([]*models.JobEvent, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		event := &models.JobEvent{}
		if err = json.Unmarshal([]byte(items[i]), event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (v *videoRedisRepo) AcquireLease(ctx context.Context, identity, owner string, ttl time.Duration) (bool, error) {
	ok, err := v.redisClient.SetNX(ctx, leaseKeyPrefix+identity, owner, ttl).Result()
	if err != nil {
		return false, errors.Wrap(err, "videoRedisRepo.AcquireLease.SetNX")
	}
	return ok, nil
}

func (v *videoRedisRepo) RenewLease(ctx context.Context, identity, owner string, ttl time.Duration) (bool, error) {
	n, err := renewLease.Run(ctx, v.redisClient, []string{leaseKeyPrefix + identity}, owner, ttl.Milliseconds()).Int()
	if err != nil {
		return false, errors.Wrap(err, "videoRedisRepo.RenewLease.Eval")
	}
	return n == 1, nil
}

func (v *videoRedisRepo) ReleaseLease(ctx context.Context, identity, owner string) error {
	if err := releaseLease.Run(ctx, v.redisClient, []string{leaseKeyPrefix + identity}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "videoRedisRepo.ReleaseLease.Eval")
	}
	return nil
}
