package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix — префикс ключей ограничителя в redis.
const KeyPrefix = "ratelimit:"

// fixedWindow повторяет алгоритм Memory.Check. Окно живёт ровно столько,
// сколько TTL ключа; INCR не сбрасывает TTL.
var fixedWindow = redis.NewScript(`
local current = redis.call("GET", KEYS[1])
if not current then
	redis.call("SET", KEYS[1], 1, "PX", ARGV[2])
	return 0
end
if tonumber(current) >= tonumber(ARGV[1]) then
	return 1
end
redis.call("INCR", KEYS[1])
return 0
`)

// Redis — ограничитель с фиксированным окном, разделяемый между экземплярами.
type Redis struct {
	client redis.Scripter
}

// NewRedis создаёт ограничитель поверх клиента redis.
func NewRedis(client redis.Scripter) *Redis {
	return &Redis{client: client}
}

// IsLimited реализует Limiter.
func (r *Redis) IsLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	const op = "ratelimit.Redis.IsLimited"

	res, err := fixedWindow.Run(ctx, r.client, []string{KeyPrefix + key}, limit, window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return res == 1, nil
}
