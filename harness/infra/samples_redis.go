package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"limites-harness/harness/domain"
)

// RedisSampleStore publica contadores da execução no Redis para acompanhar
// cargas longas (ou várias máquinas gerando carga) em tempo real.
//
// Chaves, por execução (<prefix>:<run>):
//
//	:total          hash requests/failed
//	:checks         hash "<check>:passed" / "<check>:failed"
//	:minute:<ts>    hash requests/failed por minuto (bucket "minute")
//	:durations:<c>  lista de latências em ms por chamada (opcional)
type RedisSampleStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica em todas as chaves da execução.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"

	trackDurations bool
}

type RedisSampleOption func(*RedisSampleStore)

func WithSamplePrefix(prefix string) RedisSampleOption {
	return func(s *RedisSampleStore) {
		s.prefix = strings.Trim(prefix, ":")
	}
}

func WithSampleTTL(d time.Duration) RedisSampleOption {
	return func(s *RedisSampleStore) { s.ttl = d }
}

func WithSampleBucket(bucket string) RedisSampleOption {
	return func(s *RedisSampleStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithSampleDurations(track bool) RedisSampleOption {
	return func(s *RedisSampleStore) { s.trackDurations = track }
}

func NewRedisSampleStore(rdb *redis.Client, opts ...RedisSampleOption) *RedisSampleStore {
	s := &RedisSampleStore{
		rdb:    rdb,
		prefix: "limits:load",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunKey é o prefixo das chaves de uma execução.
func (s *RedisSampleStore) RunKey(run string) string {
	if strings.TrimSpace(run) == "" {
		return s.prefix
	}
	return s.prefix + ":" + run
}

func (s *RedisSampleStore) Record(ctx context.Context, sm domain.Sample) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := sm.At
	if at.IsZero() {
		at = time.Now()
	}
	base := s.RunKey(sm.Run)

	pipe := s.rdb.Pipeline()
	expire := func(key string) {
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	totalKey := base + ":total"
	pipe.HIncrBy(ctx, totalKey, "requests", 1)
	if sm.Failed {
		pipe.HIncrBy(ctx, totalKey, "failed", 1)
	}
	expire(totalKey)

	if sm.Check != "" {
		field := "failed"
		if sm.Passed {
			field = "passed"
		}
		checksKey := base + ":checks"
		pipe.HIncrBy(ctx, checksKey, sm.Check+":"+field, 1)
		expire(checksKey)
	}

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", base, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, "requests", 1)
		if sm.Failed {
			pipe.HIncrBy(ctx, bucketKey, "failed", 1)
		}
		expire(bucketKey)
	}

	if s.trackDurations && sm.Call != "" && !sm.Unsent {
		durKey := base + ":durations:" + string(sm.Call)
		pipe.RPush(ctx, durKey, sm.Duration.Milliseconds())
		expire(durKey)
	}

	_, err := pipe.Exec(ctx)
	return err
}
