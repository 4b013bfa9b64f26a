package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"
)

const fakeEngineEnv = "UCI_FAKE_ENGINE"

// TestMain lets the test binary stand in for an engine when re-executed by the bridge.
func TestMain(m *testing.M) {
	if mode := os.Getenv(fakeEngineEnv); mode != "" {
		os.Exit(runFakeEngine(mode))
	}
	os.Exit(m.Run())
}

func runFakeEngine(mode string) int {
	var sawUCI, sawNewGame, sawSkill, sawPosition bool
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "uci":
			sawUCI = true
			fmt.Println("id name fake")
			fmt.Println("uciok")
		case line == "ucinewgame":
			sawNewGame = true
		case strings.HasPrefix(line, "setoption name Skill Level value "):
			sawSkill = true
		case strings.HasPrefix(line, "position fen "):
			sawPosition = true
		case strings.HasPrefix(line, "go"):
			switch mode {
			case "silent":
				return 0
			case "hang":
				time.Sleep(time.Minute)
				return 0
			case "none":
				fmt.Println("bestmove (none)")
				continue
			}
			if !(sawUCI && sawNewGame && sawSkill && sawPosition) || !strings.Contains(line, "movetime 50") {
				fmt.Println("bestmove (none)")
				continue
			}
			fmt.Println("info depth 1 score cp 20 pv e2e4")
			fmt.Println("bestmove e2e4 ponder e7e5")
		case line == "quit":
			return 0
		}
	}
	return 0
}

func fakeBridge(t *testing.T, mode string, timeout time.Duration) *Bridge {
	t.Helper()
	t.Setenv(fakeEngineEnv, mode)
	b, err := NewBridge(Config{
		BinaryPath: os.Args[0],
		Args:       []string{"-test.run=^$"},
		Limits:     Limits{MoveTimeMillis: 50},
		Timeout:    timeout,
	})
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	return b
}

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func TestBestMove(t *testing.T) {
	b := fakeBridge(t, "normal", 10*time.Second)
	move, err := b.BestMove(context.Background(), Request{FEN: startFEN, SkillLevel: 5})
	if err != nil {
		t.Fatalf("best move: %v", err)
	}
	if move != "e2e4" {
		t.Fatalf("move=%q", move)
	}
}

func TestBestMoveFailures(t *testing.T) {
	cases := []struct {
		mode    string
		timeout time.Duration
	}{
		{"silent", 10 * time.Second},
		{"none", 10 * time.Second},
		{"hang", 300 * time.Millisecond},
	}
	for _, tc := range cases {
		b := fakeBridge(t, tc.mode, tc.timeout)
		started := time.Now()
		_, err := b.BestMove(context.Background(), Request{FEN: startFEN, SkillLevel: 1})
		if !errors.Is(err, ErrUnavailable) {
			t.Fatalf("%s: expected ErrUnavailable, got %v", tc.mode, err)
		}
		if time.Since(started) > 5*time.Second {
			t.Fatalf("%s: took too long", tc.mode)
		}
	}
}

func TestBestMoveRejectsInput(t *testing.T) {
	b, err := NewBridge(Config{BinaryPath: "/nonexistent/engine"})
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	if _, err := b.BestMove(context.Background(), Request{FEN: startFEN, SkillLevel: 21}); !errors.Is(err, ErrSkillLevel) {
		t.Fatalf("expected skill error, got %v", err)
	}
	if _, err := b.BestMove(context.Background(), Request{FEN: startFEN, SkillLevel: -1}); !errors.Is(err, ErrSkillLevel) {
		t.Fatalf("expected skill error, got %v", err)
	}
	if _, err := b.BestMove(context.Background(), Request{SkillLevel: 3}); !errors.Is(err, ErrFENRequired) {
		t.Fatalf("expected fen error, got %v", err)
	}
	if _, err := b.BestMove(context.Background(), Request{FEN: startFEN, SkillLevel: 3}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("missing binary should be unavailable, got %v", err)
	}
	if err := b.Check(); !errors.Is(err, ErrBinaryAbsent) {
		t.Fatalf("expected absent binary, got %v", err)
	}
}

func TestParseBestMove(t *testing.T) {
	cases := []struct {
		line  string
		move  string
		found bool
	}{
		{"bestmove e2e4 ponder e7e5", "e2e4", true},
		{"bestmove a7a8q", "a7a8q", true},
		{"bestmove (none)", "", true},
		{"bestmove", "", true},
		{"info depth 3 pv e2e4", "", false},
	}
	for _, tc := range cases {
		move, found := parseBestMove(tc.line)
		if move != tc.move || found != tc.found {
			t.Fatalf("%q => %q,%v", tc.line, move, found)
		}
	}
}

func TestGoCommand(t *testing.T) {
	if got := goCommand(Limits{MoveTimeMillis: 1000, Depth: 12}); got != "go movetime 1000 depth 12" {
		t.Fatalf("go=%q", got)
	}
	if got := goCommand(Limits{Depth: 4}); got != "go depth 4" {
		t.Fatalf("go=%q", got)
	}
}
