package jobstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/skillsenselab/scribe/errors"
	"github.com/skillsenselab/scribe/logger"
)

// Config holds Redis connection configuration for the job store.
type Config struct {
	// Addr is the Redis server address (host:port).
	Addr string `mapstructure:"addr"`
	// Password is the Redis server password.
	Password string `mapstructure:"password"`
	// DB is the Redis database number.
	DB int `mapstructure:"db"`
	// KeyPrefix is prepended to every job key, colon separated.
	KeyPrefix string `mapstructure:"key_prefix"`
	// TTL is how long terminal records are kept. Zero means forever.
	TTL time.Duration `mapstructure:"ttl"`
	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "scribe:job"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
}

// RedisStore implements Store on Redis. Each record is one JSON value.
type RedisStore struct {
	rdb       *goredis.Client
	keyPrefix string
	ttl       time.Duration
	log       *logger.Logger
}

// NewRedisStore creates a Redis-backed job store.
func NewRedisStore(cfg Config, log *logger.Logger) *RedisStore {
	cfg.ApplyDefaults()
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	return &RedisStore{
		rdb:       rdb,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.TTL,
		log:       log.WithComponent("jobstore"),
	}
}

// Ping verifies the Redis connection is alive.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return errors.ConnectionFailed("job store").WithCause(err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + ":" + id
}

// Create inserts a new record. Fails if the id already exists.
func (s *RedisStore) Create(ctx context.Context, rec *Record) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("jobstore: marshal record: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, s.key(rec.ID), data, 0).Result()
	if err != nil {
		return errors.Storage("job create", err)
	}
	if !ok {
		return errors.InvalidInput("id", fmt.Sprintf("job %s already exists", rec.ID))
	}
	return nil
}

// Get returns the record for id.
func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, errors.NotFound("job", id)
		}
		return nil, errors.Storage("job get", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("jobstore: unmarshal record %q: %w", id, err)
	}
	return &rec, nil
}

// SetStatus transitions the record's status and replaces its detail text.
func (s *RedisStore) SetStatus(ctx context.Context, id string, status Status, detail string) error {
	return s.update(ctx, id, func(rec *Record) {
		rec.Status = status
		rec.Detail = detail
	})
}

// SetProgress records transcription progress counts.
func (s *RedisStore) SetProgress(ctx context.Context, id string, done, total int) error {
	return s.update(ctx, id, func(rec *Record) {
		rec.SegmentsDone = done
		rec.SegmentsTotal = total
		rec.Detail = fmt.Sprintf("transcribed %d of %d segments", done, total)
	})
}

// SetTranscript stores the final transcript and completes the record.
func (s *RedisStore) SetTranscript(ctx context.Context, id, text string) error {
	return s.update(ctx, id, func(rec *Record) {
		rec.Transcript = text
		rec.Status = StatusCompleted
		rec.Detail = "transcription complete"
	})
}

// MarkFailed transitions the record to failed with an error description.
func (s *RedisStore) MarkFailed(ctx context.Context, id, errMsg string) error {
	return s.update(ctx, id, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Error = errMsg
		rec.Detail = "transcription failed"
	})
}

// update applies a read-modify-write to one record. The orchestrator is the
// only writer for a given job, so no cross-process locking is needed.
func (s *RedisStore) update(ctx context.Context, id string, mutate func(*Record)) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	mutate(rec)
	rec.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("jobstore: marshal record: %w", err)
	}

	var ttl time.Duration
	if s.ttl > 0 && rec.Status.Terminal() {
		ttl = s.ttl
	}
	if err := s.rdb.Set(ctx, s.key(id), data, ttl).Err(); err != nil {
		return errors.Storage("job update", err)
	}
	return nil
}

// compile-time check
var _ Store = (*RedisStore)(nil)
