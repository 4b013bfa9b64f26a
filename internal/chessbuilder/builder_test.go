package chessbuilder

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/park285/chess-session-server/internal/config"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

func baseConfig() *config.AppConfig {
	return &config.AppConfig{
		ListenAddr:     "127.0.0.1:0",
		StockfishPath:  "definitely-not-a-chess-engine",
		SkillLevel:     10,
		MoveTimeMillis: 100,
		EngineTimeout:  time.Second,
		ChannelPrefix:  "chess:game:",
	}
}

func TestNewWithoutRedis(t *testing.T) {
	deps, err := New(context.Background(), baseConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Close()
	if deps.Redis != nil || deps.Bus == nil || deps.Service == nil {
		t.Fatalf("unexpected deps: %+v", deps)
	}

	ctx := context.Background()
	view, err := deps.Service.Create(ctx, "human", "ai")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = deps.Service.BestMove(ctx, view.ID, view.Player1.ID, nil)
	if chessdto.KindOf(err) != chessdto.KindEngineUnavailable {
		t.Fatalf("missing binary should be engine_unavailable, got %v", err)
	}
}

func TestNewPublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := baseConfig()
	cfg.RedisURL = "redis://" + mr.Addr() + "/0"

	deps, err := New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer deps.Close()
	if deps.Redis == nil {
		t.Fatalf("redis publisher not wired")
	}

	if got := deps.Redis.Channel("g1"); got != "chess:game:g1" {
		t.Fatalf("channel=%q", got)
	}
	if _, err := deps.Service.Create(context.Background(), "human", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestNewRejectsUnreachableRedis(t *testing.T) {
	cfg := baseConfig()
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := New(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected redis ping failure")
	}
}

func TestNewRejectsNilConfig(t *testing.T) {
	if _, err := New(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error")
	}
}
