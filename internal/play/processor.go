// Package play applies moves to sessions and evaluates their outcome.
package play

import (
	"errors"
	"fmt"
	"time"

	"github.com/park285/chess-session-server/internal/rules"
	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

type Processor struct {
	now func() time.Time
}

func NewProcessor(now func() time.Time) *Processor {
	if now == nil {
		now = time.Now
	}
	return &Processor{now: now}
}

// Apply plays text for playerID. The caller holds the session lock. On any error the session is unchanged.
func (p *Processor) Apply(s *session.Session, playerID, text string) (Record, error) {
	player, ok := s.PlayerByID(playerID)
	if !ok {
		return Record{}, chessdto.ErrPlayerNotInGame
	}
	if !s.HasBothPlayers() {
		return Record{}, chessdto.ErrNeedTwoPlayers
	}
	if s.Result.Terminal() || s.Position.IsGameOver() {
		return Record{}, chessdto.ErrGameOver
	}
	if s.Position.Turn() != player.Color {
		return Record{}, chessdto.ErrNotYourTurn
	}

	if _, err := s.Position.Apply(text); err != nil {
		if errors.Is(err, rules.ErrIllegalMove) {
			return Record{}, fmt.Errorf("%w: %v", chessdto.ErrInvalidMove, err)
		}
		return Record{}, err
	}

	at := p.now()
	s.LastMoveAt = &at
	Evaluate(s)

	rec, _ := Augment(s.Position.History())
	return rec, nil
}

// LastMove describes the most recent move, if any.
func LastMove(s *session.Session) (Record, bool) {
	return Augment(s.Position.History())
}

// TurnPlayer returns the player whose move it is.
func TurnPlayer(s *session.Session) (session.Player, bool) {
	if !s.HasBothPlayers() {
		return session.Player{}, false
	}
	turn := s.Position.Turn()
	if s.Player1.Color == turn {
		return s.Player1, true
	}
	return *s.Player2, true
}
