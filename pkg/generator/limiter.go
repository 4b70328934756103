package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"

	"sod/pkg/post"
)

// One generation per (session, post) per window.
const limitWindow = 60 * time.Second

type RedisLimiter struct {
	conn redis.Conn
}

func NewRedisLimiter(conn redis.Conn) *RedisLimiter {
	return &RedisLimiter{conn: conn}
}

// SET NX with a TTL: the first writer within the window owns the slot,
// everyone else sees the key and is limited.
func (l *RedisLimiter) Allow(ctx context.Context, sessionId string, postId post.PostId) (bool, error) {
	key := fmt.Sprintf("rate_%s_%s", sessionId, postId)
	reply, err := l.conn.Do("SET", key, time.Now().UnixMilli(),
		"PX", limitWindow.Milliseconds(), "NX")
	if err != nil {
		return false, fmt.Errorf("generator/limiter: failed SET to Redis: %w", err)
	}
	return reply != nil, nil
}
