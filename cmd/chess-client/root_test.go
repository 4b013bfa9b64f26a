package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/park285/chess-session-server/internal/api"
	"github.com/park285/chess-session-server/internal/chess/uci"
	"github.com/park285/chess-session-server/internal/idgen"
	"github.com/park285/chess-session-server/internal/session"
	svcchess "github.com/park285/chess-session-server/internal/service/chess"
)

type plyEngine []string

func (e plyEngine) BestMove(_ context.Context, req uci.Request) (string, error) {
	f := strings.Fields(req.FEN)
	full, _ := strconv.Atoi(f[5])
	ply := (full - 1) * 2
	if f[1] == "b" {
		ply++
	}
	if ply >= len(e) {
		return "", uci.ErrNoBestMove
	}
	return e[ply], nil
}

func newServer(t *testing.T) (*httptest.Server, *svcchess.Service) {
	t.Helper()
	t.Setenv("LOG_TO_FILE", "false")
	svc, err := svcchess.NewService(session.NewRegistry(), idgen.New("k"), plyEngine{"f2f3", "e7e5", "g2g4", "d8h4"}, nil, svcchess.Config{}, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	srv := httptest.NewServer(api.NewServer(svc, nil, nil))
	t.Cleanup(srv.Close)
	return srv, svc
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAutoplayResumesSeatedGame(t *testing.T) {
	srv, svc := newServer(t)
	ctx := context.Background()
	view, err := svc.Create(ctx, "ai", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	joined, err := svc.Join(ctx, view.ID, "ai")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	// white plays by hand; black is driven by the command
	if _, _, err := svc.Move(ctx, view.ID, view.Player1.ID, "f2f3"); err != nil {
		t.Fatalf("move: %v", err)
	}

	done := make(chan error, 1)
	var out string
	go func() {
		var err error
		out, err = run(t, "--server", srv.URL, "autoplay", "--game", view.ID, "--player", joined.Player2.ID, "--interval", "10ms")
		done <- err
	}()

	waitTurn := func(color string) {
		for {
			p, err := svc.Turn(ctx, view.ID)
			if err != nil {
				t.Errorf("turn: %v", err)
				return
			}
			if string(p.Color) == color {
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
	waitTurn("w")
	if _, _, err := svc.Move(ctx, view.ID, view.Player1.ID, "g2g4"); err != nil {
		t.Fatalf("move: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("autoplay: %v", err)
	}
	if !strings.Contains(out, "result 0-1") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAutoplayRequiresPlayerWithGame(t *testing.T) {
	t.Setenv("LOG_TO_FILE", "false")
	_, err := run(t, "autoplay", "--game", "abc")
	if err == nil || !strings.Contains(err.Error(), "--player") {
		t.Fatalf("expected --player error, got %v", err)
	}
}

func TestWatchNeedsGameID(t *testing.T) {
	t.Setenv("LOG_TO_FILE", "false")
	if _, err := run(t, "watch"); err == nil {
		t.Fatalf("expected args error")
	}
}
