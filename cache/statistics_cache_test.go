package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vnkhanh/surveyhub/models"
	"github.com/vnkhanh/surveyhub/services"
)

func newTestCache(t *testing.T, ttl time.Duration) (*StatisticsCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStatisticsCache(client, ttl), mr
}

func TestStatisticsCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	surveyID, questionID := uuid.New(), uuid.New()

	got, err := c.GetStatistics(ctx, surveyID)
	if err != nil || got != nil {
		t.Fatalf("miss should be (nil, nil), got %v, %v", got, err)
	}

	report := services.Aggregate([]models.Response{{
		ID:         uuid.New(),
		SurveyID:   surveyID,
		IsComplete: true,
		Items: []models.ResponseItem{
			{QuestionID: questionID, AnswerValue: models.ScalarAnswer(models.NumberScalar(4))},
		},
	}})
	if err := c.SetStatistics(ctx, surveyID, report); err != nil {
		t.Fatal(err)
	}

	key := "survey:" + surveyID.String() + ":stats"
	if !mr.Exists(key) {
		t.Fatalf("expected key %s", key)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	got, err = c.GetStatistics(ctx, surveyID)
	if err != nil {
		t.Fatal(err)
	}
	st := got.For(questionID)
	if got.TotalResponses != 1 || st == nil || *st.Average != 4 || st.ValueCounts.Get("4") != 1 {
		t.Fatalf("report changed in the cache: %+v", got)
	}

	if err := c.InvalidateStatistics(ctx, surveyID); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(key) {
		t.Fatalf("key should be gone after invalidation")
	}
}

func TestStatisticsCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, 0)
	surveyID := uuid.New()

	if err := c.SetStatistics(ctx, surveyID, &services.StatisticsReport{}); err != nil {
		t.Fatal(err)
	}
	// zero falls back to the default ttl
	mr.FastForward(11 * time.Minute)
	got, err := c.GetStatistics(ctx, surveyID)
	if err != nil || got != nil {
		t.Fatalf("expected expired entry, got %v, %v", got, err)
	}
}

func TestStatisticsCacheUnavailable(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t, time.Minute)
	if err := c.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	mr.Close()
	if err := c.PingContext(ctx); err == nil {
		t.Fatalf("expected ping to fail once redis is gone")
	}
	if _, err := c.GetStatistics(ctx, uuid.New()); err == nil {
		t.Fatalf("expected an error from a closed server")
	}
}
