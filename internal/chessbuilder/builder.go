// Package chessbuilder assembles the session service and its collaborators from configuration.
package chessbuilder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/park285/chess-session-server/internal/chess/uci"
	"github.com/park285/chess-session-server/internal/config"
	"github.com/park285/chess-session-server/internal/events"
	"github.com/park285/chess-session-server/internal/idgen"
	"github.com/park285/chess-session-server/internal/session"
	svcchess "github.com/park285/chess-session-server/internal/service/chess"
)

type Deps struct {
	Service *svcchess.Service
	Engine  *uci.Bridge
	Bus     *events.Bus
	// Redis is nil unless REDIS_URL is configured.
	Redis *events.RedisPublisher
}

const subscriberBuffer = 16

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := uci.NewBridge(uci.Config{
		BinaryPath:    cfg.StockfishPath,
		Args:          cfg.EngineArgs,
		Limits:        uci.Limits{Depth: cfg.Depth, MoveTimeMillis: cfg.MoveTimeMillis},
		Timeout:       cfg.EngineTimeout,
		MaxConcurrent: cfg.EngineMaxActive,
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init engine: %w", err)
	}
	// 엔진이 없어도 기동은 계속. bestmove만 503.
	if err := engine.Check(); err != nil {
		logger.Warn("engine_missing", zap.String("path", cfg.StockfishPath), zap.Error(err))
	}

	bus := events.NewBus(subscriberBuffer, logger)
	publishers := events.Fanout{bus}

	var redisPub *events.RedisPublisher
	if strings.TrimSpace(cfg.RedisURL) != "" {
		rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		redisPub, err = events.NewRedisPublisher(rctx, cfg.RedisURL, cfg.ChannelPrefix, logger)
		if err != nil {
			return nil, fmt.Errorf("init redis events: %w", err)
		}
		publishers = append(publishers, redisPub)
	}

	key := cfg.IDHMACKey
	if key == "" {
		key = uuid.NewString()
		logger.Info("id_key_generated")
	}

	service, err := svcchess.NewService(
		session.NewRegistry(),
		idgen.New(key),
		engine,
		publishers,
		svcchess.Config{DefaultSkillLevel: cfg.SkillLevel},
		logger,
	)
	if err != nil {
		if redisPub != nil {
			_ = redisPub.Close()
		}
		return nil, err
	}

	return &Deps{Service: service, Engine: engine, Bus: bus, Redis: redisPub}, nil
}

func (d *Deps) Close() error {
	if d == nil || d.Redis == nil {
		return nil
	}
	return d.Redis.Close()
}
