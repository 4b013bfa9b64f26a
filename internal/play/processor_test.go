package play

import (
	"errors"
	"testing"
	"time"

	"github.com/park285/chess-session-server/internal/rules"
	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

var clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func started(t *testing.T) *session.Session {
	t.Helper()
	s := session.New("g", clock, session.Player{ID: "white", Color: rules.White, Kind: session.Human})
	if err := s.Join(session.Player{ID: "black", Color: rules.Black, Kind: session.Human}); err != nil {
		t.Fatalf("join: %v", err)
	}
	return s
}

func play(t *testing.T, p *Processor, s *session.Session, moves ...[2]string) Record {
	t.Helper()
	var rec Record
	for _, m := range moves {
		var err error
		rec, err = p.Apply(s, m[0], m[1])
		if err != nil {
			t.Fatalf("apply %v: %v", m, err)
		}
	}
	return rec
}

func TestOpeningMove(t *testing.T) {
	p := NewProcessor(func() time.Time { return clock })
	s := started(t)
	rec := play(t, p, s, [2]string{"white", "e2e4"})
	if rec.Long != "e2e4" || rec.Color != rules.White {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if s.Result != session.InProgress {
		t.Fatalf("result=%v", s.Result)
	}
	if s.LastMoveAt == nil || !s.LastMoveAt.Equal(clock) {
		t.Fatalf("lastMoveAt not set")
	}
	if s.Position.Turn() == rules.White {
		t.Fatalf("turn did not pass to black")
	}
}

func TestRejectionsLeavePositionUntouched(t *testing.T) {
	p := NewProcessor(nil)
	s := started(t)
	fen := s.Position.FEN()

	if _, err := p.Apply(s, "black", "e7e5"); !errors.Is(err, chessdto.ErrNotYourTurn) {
		t.Fatalf("expected not your turn, got %v", err)
	}
	if _, err := p.Apply(s, "white", "e2e5"); !errors.Is(err, chessdto.ErrInvalidMove) {
		t.Fatalf("expected invalid move, got %v", err)
	}
	if _, err := p.Apply(s, "nobody", "e2e4"); !errors.Is(err, chessdto.ErrPlayerNotInGame) {
		t.Fatalf("expected player not in game, got %v", err)
	}
	if s.Position.FEN() != fen || s.LastMoveAt != nil {
		t.Fatalf("rejected move mutated the session")
	}
}

func TestFoolsMateEndsGame(t *testing.T) {
	p := NewProcessor(nil)
	s := started(t)
	play(t, p, s,
		[2]string{"white", "f2f3"},
		[2]string{"black", "e7e5"},
		[2]string{"white", "g2g4"},
		[2]string{"black", "d8h4"},
	)
	if s.Result != session.BlackWin {
		t.Fatalf("expected black win, got %v", s.Result)
	}
	if _, err := p.Apply(s, "white", "a2a3"); !errors.Is(err, chessdto.ErrGameOver) {
		t.Fatalf("expected game over, got %v", err)
	}
	if Evaluate(s) != session.BlackWin {
		t.Fatalf("evaluate must be idempotent")
	}
}

func TestEvaluateLeavesTerminalResult(t *testing.T) {
	s := started(t)
	_ = s.Decide(session.Draw)
	if Evaluate(s) != session.Draw {
		t.Fatalf("terminal result changed")
	}
}

func TestAugmentCastlingAndEnPassant(t *testing.T) {
	p := NewProcessor(nil)
	s := started(t)
	rec := play(t, p, s,
		[2]string{"white", "e2e4"},
		[2]string{"black", "a7a6"},
		[2]string{"white", "e4e5"},
		[2]string{"black", "d7d5"},
		[2]string{"white", "e5d6"},
	)
	if rec.EnPassant != "d5" {
		t.Fatalf("en passant square=%q", rec.EnPassant)
	}

	rec = play(t, p, s,
		[2]string{"black", "c7d6"},
		[2]string{"white", "g1f3"},
		[2]string{"black", "b8c6"},
		[2]string{"white", "f1e2"},
		[2]string{"black", "c8e6"},
		[2]string{"white", "e1g1"},
	)
	if rec.ExtraFrom != "h1" || rec.ExtraTo != "f1" || rec.ExtraMove != "h1f1" {
		t.Fatalf("kingside rook squares: %+v", rec)
	}

	rec = play(t, p, s,
		[2]string{"black", "d8d7"},
		[2]string{"white", "d2d3"},
		[2]string{"black", "e8c8"},
	)
	if rec.ExtraFrom != "a8" || rec.ExtraTo != "d8" {
		t.Fatalf("queenside rook squares: %+v", rec)
	}
	last, ok := LastMove(s)
	if !ok || last.Long != "e8c8" {
		t.Fatalf("last move: %+v", last)
	}
}

func TestTurnPlayer(t *testing.T) {
	lone := session.New("g", clock, session.Player{ID: "white", Color: rules.White})
	if _, ok := TurnPlayer(lone); ok {
		t.Fatalf("no turn player without opponent")
	}
	s := started(t)
	p, ok := TurnPlayer(s)
	if !ok || p.ID != "white" {
		t.Fatalf("turn player=%+v", p)
	}
}
