// Package uci drives an external UCI engine to recommend a move for a position.
package uci

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultMoveTimeMilli = 1000
	maxSkillLevel        = 20
)

var (
	// ErrUnavailable wraps every failure to obtain a move from the engine.
	ErrUnavailable  = errors.New("engine unavailable")
	ErrNoBestMove   = errors.New("engine returned no best move")
	ErrSkillLevel   = errors.New("skill level out of range 0-20")
	ErrFENRequired  = errors.New("fen required")
	ErrBinaryAbsent = errors.New("engine binary not found")
)

// State is the lifecycle stage of one best-move request.
type State int

const (
	StateSpawned State = iota
	StateConfiguring
	StateSearching
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateConfiguring:
		return "configuring"
	case StateSearching:
		return "searching"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Limits struct {
	Depth          int
	MoveTimeMillis int
}

type Config struct {
	BinaryPath string
	Args       []string
	Limits     Limits
	// Timeout bounds one request from spawn to bestmove.
	Timeout time.Duration
	// MaxConcurrent caps simultaneous engine processes; zero means unlimited.
	MaxConcurrent int
	Logger        *zap.Logger
}

type Request struct {
	FEN        string
	SkillLevel int
}

// Bridge starts a fresh engine process for each request.
type Bridge struct {
	cfg   Config
	log   *zap.Logger
	slots chan struct{}
}

func NewBridge(cfg Config) (*Bridge, error) {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		return nil, fmt.Errorf("binary path required")
	}
	if cfg.Limits.Depth < 0 || cfg.Limits.MoveTimeMillis < 0 {
		return nil, fmt.Errorf("search limits must be >= 0: %+v", cfg.Limits)
	}
	if cfg.Limits.Depth == 0 && cfg.Limits.MoveTimeMillis == 0 {
		cfg.Limits.MoveTimeMillis = defaultMoveTimeMilli
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	b := &Bridge{cfg: cfg, log: log}
	if cfg.MaxConcurrent > 0 {
		b.slots = make(chan struct{}, cfg.MaxConcurrent)
	}
	return b, nil
}

// Check resolves the configured binary without starting it.
func (b *Bridge) Check() error {
	if _, err := exec.LookPath(b.cfg.BinaryPath); err != nil {
		return fmt.Errorf("%w: %v", ErrBinaryAbsent, err)
	}
	return nil
}

// BestMove asks the engine for a move in long algebraic notation. The subprocess is always reaped
// before BestMove returns.
func (b *Bridge) BestMove(ctx context.Context, req Request) (string, error) {
	if req.SkillLevel < 0 || req.SkillLevel > maxSkillLevel {
		return "", ErrSkillLevel
	}
	if strings.TrimSpace(req.FEN) == "" {
		return "", ErrFENRequired
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	if err := b.acquire(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer b.release()

	started := time.Now()
	move, state, err := b.run(ctx, req)
	if err != nil {
		b.log.Warn("engine_failed",
			zap.String("state", state.String()),
			zap.String("fen", req.FEN),
			zap.Int("skill_level", req.SkillLevel),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	b.log.Info("engine_bestmove",
		zap.String("fen", req.FEN),
		zap.Int("skill_level", req.SkillLevel),
		zap.String("move", move),
		zap.Duration("elapsed", time.Since(started)),
	)
	return move, nil
}

// run returns the state reached when it stopped.
func (b *Bridge) run(ctx context.Context, req Request) (string, State, error) {
	state := StateSpawned
	p, err := spawn(ctx, b.cfg.BinaryPath, b.cfg.Args)
	if err != nil {
		return "", state, err
	}
	defer p.close()

	state = StateConfiguring
	for _, cmd := range configureCommands(req) {
		if err := p.send(cmd); err != nil {
			return "", state, fmt.Errorf("send %q: %w", cmd, err)
		}
	}

	state = StateSearching
	if err := p.send(goCommand(b.cfg.Limits)); err != nil {
		return "", state, fmt.Errorf("send go: %w", err)
	}
	move, err := p.awaitBestMove(ctx)
	if err != nil {
		return "", state, err
	}
	return move, StateCompleted, nil
}

func (b *Bridge) acquire(ctx context.Context) error {
	if b.slots == nil {
		return nil
	}
	select {
	case b.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bridge) release() {
	if b.slots != nil {
		<-b.slots
	}
}

func configureCommands(req Request) []string {
	return []string{
		"uci",
		"ucinewgame",
		"setoption name Skill Level value " + strconv.Itoa(req.SkillLevel),
		"position fen " + strings.TrimSpace(req.FEN),
	}
}

func goCommand(l Limits) string {
	args := []string{"go"}
	if l.MoveTimeMillis > 0 {
		args = append(args, "movetime", strconv.Itoa(l.MoveTimeMillis))
	}
	if l.Depth > 0 {
		args = append(args, "depth", strconv.Itoa(l.Depth))
	}
	return strings.Join(args, " ")
}
