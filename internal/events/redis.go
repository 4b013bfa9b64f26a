package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/chess-session-server/pkg/chessdto"
)

const DefaultChannelPrefix = "chess:game:"

// RedisPublisher mirrors events onto one channel per game. Delivery is best effort.
type RedisPublisher struct {
	rdb     *redis.Client
	prefix  string
	timeout time.Duration
	log     *zap.Logger
}

// NewRedisPublisher connects to redisURL and verifies the connection.
func NewRedisPublisher(ctx context.Context, redisURL, prefix string, log *zap.Logger) (*RedisPublisher, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for event fan-out")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisPublisher{rdb: rdb, prefix: prefix, timeout: 2 * time.Second, log: log}, nil
}

func (p *RedisPublisher) Channel(gameID string) string { return p.prefix + gameID }

func (p *RedisPublisher) Publish(ctx context.Context, ev chessdto.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("event_encode_failed", zap.String("game_id", ev.GameID), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.Channel(ev.GameID), payload).Err(); err != nil {
		p.log.Warn("event_publish_failed",
			zap.String("game_id", ev.GameID),
			zap.String("type", ev.Type),
			zap.Error(err),
		)
	}
}

func (p *RedisPublisher) Close() error {
	if p == nil || p.rdb == nil {
		return nil
	}
	return p.rdb.Close()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
