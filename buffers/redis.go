package buffers

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pearll/pearll/types"
)

// RedisConfig configures a Redis-backed replay buffer.
type RedisConfig struct {
	// Addr is the Redis server address.
	Addr string `yaml:"addr" json:"addr"`
	// Password is the optional server password.
	Password string `yaml:"password" json:"password"`
	// DB is the database number.
	DB int `yaml:"db" json:"db"`
	// Key is the list key transitions are stored under.
	Key string `yaml:"key" json:"key"`
	// Capacity is the maximum number of retained transitions.
	Capacity int `yaml:"capacity" json:"capacity"`
	// PoolSize is the connection pool size.
	PoolSize int `yaml:"pool_size" json:"pool_size"`
}

// DefaultRedisConfig returns the default Redis buffer configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		Key:      "pearll:replay",
		Capacity: 100_000,
		PoolSize: 10,
	}
}

// RedisReplayBuffer stores transitions in a Redis list so that several
// collector processes can feed one learner. It satisfies Buffer; the *Ctx
// variants allow callers to pass their own context.
type RedisReplayBuffer struct {
	client *redis.Client
	cfg    RedisConfig
	rng    *rand.Rand
	logger *zap.Logger
}

// NewRedisReplayBuffer connects to Redis and verifies the connection.
func NewRedisReplayBuffer(cfg RedisConfig, rng *rand.Rand, logger *zap.Logger) (*RedisReplayBuffer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultRedisConfig().Capacity
	}
	if cfg.Key == "" {
		cfg.Key = DefaultRedisConfig().Key
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "failed to connect to redis").
			WithCause(err).WithRetryable(true)
	}

	logger.Info("redis replay buffer connected",
		zap.String("addr", cfg.Addr),
		zap.String("key", cfg.Key),
		zap.Int("capacity", cfg.Capacity),
	)

	return &RedisReplayBuffer{
		client: client,
		cfg:    cfg,
		rng:    rng,
		logger: logger.With(zap.String("component", "redis_buffer")),
	}, nil
}

// AddCtx appends one transition, trimming the list to capacity.
func (b *RedisReplayBuffer) AddCtx(ctx context.Context, t types.Transition) error {
	data, err := json.Marshal(t)
	if err != nil {
		return err
	}
	pipe := b.client.TxPipeline()
	pipe.RPush(ctx, b.cfg.Key, data)
	pipe.LTrim(ctx, b.cfg.Key, int64(-b.cfg.Capacity), -1)
	if _, err := pipe.Exec(ctx); err != nil {
		return types.NewError(types.ErrStoreUnavailable, "redis add failed").
			WithCause(err).WithRetryable(true)
	}
	return nil
}

// SampleCtx returns batchSize uniformly sampled transitions.
func (b *RedisReplayBuffer) SampleCtx(ctx context.Context, batchSize int) (*types.Batch, error) {
	n, err := b.client.LLen(ctx, b.cfg.Key).Result()
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "redis llen failed").
			WithCause(err).WithRetryable(true)
	}
	if n == 0 {
		return nil, types.NewError(types.ErrEmptyBuffer, "cannot sample from empty redis buffer")
	}

	pipe := b.client.Pipeline()
	cmds := make([]*redis.StringCmd, batchSize)
	for i := range cmds {
		cmds[i] = pipe.LIndex(ctx, b.cfg.Key, int64(b.rng.Intn(int(n))))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "redis sample failed").
			WithCause(err).WithRetryable(true)
	}

	rows := make([]types.Transition, batchSize)
	for i, cmd := range cmds {
		if err := json.Unmarshal([]byte(cmd.Val()), &rows[i]); err != nil {
			return nil, err
		}
	}
	return batchFrom(rows), nil
}

// LastCtx returns the most recent batchSize transitions in insertion order.
func (b *RedisReplayBuffer) LastCtx(ctx context.Context, batchSize int) (*types.Batch, error) {
	vals, err := b.client.LRange(ctx, b.cfg.Key, int64(-batchSize), -1).Result()
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "redis lrange failed").
			WithCause(err).WithRetryable(true)
	}
	if len(vals) < batchSize {
		return nil, types.NewErrorf(types.ErrBufferExhausted,
			"requested %d transitions but buffer holds %d", batchSize, len(vals))
	}
	rows := make([]types.Transition, len(vals))
	for i, v := range vals {
		if err := json.Unmarshal([]byte(v), &rows[i]); err != nil {
			return nil, err
		}
	}
	return batchFrom(rows), nil
}

// Add implements Buffer.
func (b *RedisReplayBuffer) Add(t types.Transition) error {
	return b.AddCtx(context.Background(), t)
}

// Sample implements Buffer.
func (b *RedisReplayBuffer) Sample(batchSize int) (*types.Batch, error) {
	return b.SampleCtx(context.Background(), batchSize)
}

// Last implements Buffer.
func (b *RedisReplayBuffer) Last(batchSize int) (*types.Batch, error) {
	return b.LastCtx(context.Background(), batchSize)
}

// Size implements Buffer.
func (b *RedisReplayBuffer) Size() int {
	n, err := b.client.LLen(context.Background(), b.cfg.Key).Result()
	if err != nil {
		b.logger.Warn("redis size query failed", zap.Error(err))
		return 0
	}
	return int(n)
}

// Reset implements Buffer.
func (b *RedisReplayBuffer) Reset() {
	if err := b.client.Del(context.Background(), b.cfg.Key).Err(); err != nil {
		b.logger.Warn("redis reset failed", zap.Error(err))
	}
}

// Close releases the Redis connection.
func (b *RedisReplayBuffer) Close() error {
	return b.client.Close()
}
