package notify

import (
	"context"
	"encoding/json"
	"time"

	"matchpay/internal/logger"
	"matchpay/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "notifications"
	failedKey = "notifications:failed"

	maxTries     = 3
	brpopTimeout = 2 * time.Second
)

// Service queues notifications through redis and drains them to the store
// in a background worker, so callback handling never blocks on delivery.
type Service struct {
	redis *redis.Client
	store Store
}

func New(redisAddr string, store Store) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		store: store,
	}
}

func (s *Service) Notify(ctx context.Context, userID int, kind, message string) error {
	job := Job{
		UserID:  userID,
		Kind:    kind,
		Message: message,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("failed to queue %s notification for user %d: %v", kind, userID, err)
		return err
	}

	if n, err := s.redis.LLen(ctx, queueKey).Result(); err == nil {
		metrics.NotificationQueueLength.Set(float64(n))
	}
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, brpopTimeout, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("bad notification payload: %v", err)
		metrics.RecordNotification("malformed")
		return
	}

	job.Tries++
	if err := s.store.Insert(ctx, job.UserID, job.Kind, job.Message); err != nil {
		logger.Errorf("failed to deliver %s notification to user %d: %v", job.Kind, job.UserID, err)

		if job.Tries < maxTries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			return
		}

		metrics.RecordNotification("failed")
		s.saveFailed(job)
		return
	}

	metrics.RecordNotification("delivered")
}

func (s *Service) saveFailed(job Job) {
	data, err := json.Marshal(job)
	if err != nil {
		return
	}
	if err := s.redis.LPush(context.Background(), failedKey, data).Err(); err != nil {
		logger.Errorf("failed to record dead notification: %v", err)
	}
}

func (s *Service) Close() error {
	return s.redis.Close()
}
