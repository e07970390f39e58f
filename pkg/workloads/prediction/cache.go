package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/keti-strato/pms/pkg/logger"
	"github.com/keti-strato/pms/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// Cache stores predictions by workload case.
type Cache interface {
	// Get returns cached prediction. ok is false on cache miss.
	Get(ctx context.Context, workloadCase string) (p Prediction, ok bool, err error)

	Set(ctx context.Context, workloadCase string, p Prediction, ttl time.Duration) error
}

type cached struct {
	base  Predictor
	cache Cache
	ttl   time.Duration
	log   logger.Logger
}

// WithCache returns a Predictor asking base on cache misses.
//
// Cache failures are logged, and base is asked instead.
func WithCache(base Predictor, cache Cache, ttl time.Duration, log logger.Logger) Predictor {
	if log == nil {
		log = logger.Discard()
	}
	return &cached{base: base, cache: cache, ttl: ttl, log: log}
}

func (c *cached) Predict(ctx context.Context, workloadCase string) (Prediction, error) {
	p, ok, err := c.cache.Get(ctx, workloadCase)
	if err != nil {
		c.log.Warnf("prediction cache is not available: %s", err)
	} else if ok {
		metrics.PredictionsTotal.WithLabelValues("cache", "true").Inc()
		return p, nil
	}

	p, err = c.base.Predict(ctx, workloadCase)
	if err != nil {
		return Prediction{}, err
	}
	if err := c.cache.Set(ctx, workloadCase, p, c.ttl); err != nil {
		c.log.Warnf("prediction for %s is not cached: %s", workloadCase, err)
	}
	return p, nil
}

type redisCache struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCache returns a Cache on redis. Keys are prefix followed by workload cases.
func NewRedisCache(client redis.UniversalClient, prefix string) Cache {
	return &redisCache{client: client, prefix: prefix}
}

func (r *redisCache) Get(ctx context.Context, workloadCase string) (Prediction, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+workloadCase).Bytes()
	if errors.Is(err, redis.Nil) {
		return Prediction{}, false, nil
	}
	if err != nil {
		return Prediction{}, false, err
	}
	p := Prediction{}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Prediction{}, false, err
	}
	return p, true, nil
}

func (r *redisCache) Set(ctx context.Context, workloadCase string, p Prediction, ttl time.Duration) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+workloadCase, raw, ttl).Err()
}
