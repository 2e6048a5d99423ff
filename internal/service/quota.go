package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// QuotaService meters assistant generations per user per calendar day using
// a Redis counter that expires at local midnight.
type QuotaService struct {
	redis *redis.Client
	limit int
	now   func() time.Time
}

// NewQuotaService creates a quota service. A non-positive limit disables
// metering.
func NewQuotaService(redisClient *redis.Client, limit int) *QuotaService {
	return &QuotaService{redis: redisClient, limit: limit, now: time.Now}
}

func (s *QuotaService) key(userID uuid.UUID) string {
	return fmt.Sprintf("assistant:quota:%s:%s", userID, s.now().Format("2006-01-02"))
}

func (s *QuotaService) untilMidnight() time.Duration {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Sub(now)
}

// Consume takes one generation from today's budget, failing with
// ErrQuotaExceeded once the budget is spent.
func (s *QuotaService) Consume(ctx context.Context, userID uuid.UUID) error {
	if s.limit <= 0 || s.redis == nil {
		return nil
	}
	key := s.key(userID)

	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to increment quota counter: %w", err)
	}
	if count == 1 {
		if err := s.redis.Expire(ctx, key, s.untilMidnight()).Err(); err != nil {
			return fmt.Errorf("failed to set quota expiry: %w", err)
		}
	}
	if count > int64(s.limit) {
		return ErrQuotaExceeded
	}
	return nil
}

// Remaining reports how many generations are left today.
func (s *QuotaService) Remaining(ctx context.Context, userID uuid.UUID) (int, error) {
	if s.limit <= 0 || s.redis == nil {
		return -1, nil
	}
	count, err := s.redis.Get(ctx, s.key(userID)).Int()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("failed to read quota counter: %w", err)
	}
	remaining := s.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
