// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	rediskeys "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service is the cart analytics sink. Events go to a Redis list per UTC day
// which expires after the retention period.
type Service struct {
	client    redis.UniversalClient
	retention time.Duration
	timeout   time.Duration
	log       logrus.FieldLogger
}

// NewService creates a new analytics service
func NewService(client redis.UniversalClient, cfg *config.Config, log logrus.FieldLogger) *Service {
	return &Service{
		client:    client,
		retention: cfg.Analytics.Retention,
		timeout:   cfg.Analytics.Timeout,
		log:       log,
	}
}

// Record appends the event to its daily list and refreshes the list expiry
func (s *Service) Record(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(err, "marshal analytics event failed")
	}

	key := rediskeys.AnalyticsKey(event.Day())
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		pipe.Expire(ctx, key, s.retention)
		return nil
	})
	if err != nil {
		return errs.Dependency(err, "record analytics event")
	}
	return nil
}

// Track records the event in the background. Failures are logged and
// never reach the caller.
func (s *Service) Track(event Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.Record(ctx, event); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id": event.UserID,
				"action":  event.Action,
			}).Warn("Failed to record cart analytics event")
		}
	}()
}

// Summary aggregates all events recorded for one UTC day (YYYY-MM-DD)
func (s *Service) Summary(ctx context.Context, date string) (*DailySummary, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEvent)
	}

	raw, err := s.client.LRange(ctx, rediskeys.AnalyticsKey(date), 0, -1).Result()
	if err != nil {
		return nil, errs.Dependency(err, "read analytics events")
	}

	summary := &DailySummary{
		Date:       date,
		ByAction:   make(map[Action]int),
		TotalValue: decimal.Zero,
	}
	users := make(map[string]struct{})

	for _, entry := range raw {
		var event Event
		if err := json.Unmarshal([]byte(entry), &event); err != nil {
			summary.Skipped++
			continue
		}

		summary.Total++
		summary.ByAction[event.Action]++
		users[event.UserID] = struct{}{}
		if event.Value != nil {
			summary.TotalValue = summary.TotalValue.Add(*event.Value)
		}
	}
	summary.Users = len(users)

	return summary, nil
}
