package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/surveyhub/services"
)

// StatisticsCache stores aggregated reports in redis, one key per survey.
type StatisticsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatisticsCache(client *redis.Client, ttl time.Duration) *StatisticsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &StatisticsCache{client: client, ttl: ttl}
}

var _ services.StatisticsCache = (*StatisticsCache)(nil)

func (c *StatisticsCache) key(surveyID uuid.UUID) string {
	return fmt.Sprintf("survey:%s:stats", surveyID)
}

func (c *StatisticsCache) GetStatistics(ctx context.Context, surveyID uuid.UUID) (*services.StatisticsReport, error) {
	data, err := c.client.Get(ctx, c.key(surveyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report services.StatisticsReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *StatisticsCache) SetStatistics(ctx context.Context, surveyID uuid.UUID, report *services.StatisticsReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(surveyID), data, c.ttl).Err()
}

func (c *StatisticsCache) InvalidateStatistics(ctx context.Context, surveyID uuid.UUID) error {
	return c.client.Del(ctx, c.key(surveyID)).Err()
}

func (c *StatisticsCache) PingContext(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
