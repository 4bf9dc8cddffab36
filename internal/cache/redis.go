package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// incrIfExists increments a counter only when it is already present so a
// missing counter is always rebuilt from the database.
var incrIfExists = rueidis.NewLuaScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return redis.call('INCR', KEYS[1])
end
return -1
`)

// Redis is a cache backed by a rueidis client.
type Redis struct {
	client rueidis.Client
	prefix string
	logger *zap.Logger
}

// NewRedis creates a cache storing keys under the given prefix.
func NewRedis(client rueidis.Client, prefix string, logger *zap.Logger) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		logger: logger.Named("cache"),
	}
}

// Get decodes the value stored at key into dest.
func (r *Redis) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Do(ctx, r.client.B().Get().Key(r.prefix+key).Build()).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to get %s: %w", key, err)
	}

	if err := sonic.Unmarshal(data, dest); err != nil {
		// Undecodable entries are dropped so the caller repopulates them
		r.logger.Warn("Dropping undecodable cache entry", zap.String("key", key), zap.Error(err))
		_ = r.Delete(ctx, key)

		return false, nil
	}

	return true, nil
}

// Set stores value at key.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	var cmd rueidis.Completed
	if ttl > 0 {
		cmd = r.client.B().Set().Key(r.prefix + key).Value(rueidis.BinaryString(data)).Ex(ttl).Build()
	} else {
		cmd = r.client.B().Set().Key(r.prefix + key).Value(rueidis.BinaryString(data)).Build()
	}

	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	return nil
}

// Delete removes the given keys.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	// One DEL per key, keys may live in different cluster slots
	cmds := make(rueidis.Commands, 0, len(keys))
	for _, key := range keys {
		cmds = append(cmds, r.client.B().Del().Key(r.prefix+key).Build())
	}

	for i, resp := range r.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("failed to delete %s: %w", keys[i], err)
		}
	}

	return nil
}

// IncrIfExists atomically increments the integer stored at key.
func (r *Redis) IncrIfExists(ctx context.Context, key string) (bool, error) {
	result, err := incrIfExists.Exec(ctx, r.client, []string{r.prefix + key}, nil).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	return result >= 0, nil
}
