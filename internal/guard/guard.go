// Package guard holds the precondition checks that run before a session operation.
// Each guard is a pure function of the session (nil when absent) and the inbound payload.
package guard

import (
	"strings"

	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

type Input struct {
	PlayerID   string
	Move       string
	PlayerType string
}

type Guard func(s *session.Session, in Input) error

// Run applies guards in order and returns the first failure.
func Run(s *session.Session, in Input, guards ...Guard) error {
	for _, g := range guards {
		if err := g(s, in); err != nil {
			return err
		}
	}
	return nil
}

func GameExists(s *session.Session, _ Input) error {
	if s == nil {
		return chessdto.ErrGameNotFound
	}
	return nil
}

func PlayerInGame(s *session.Session, in Input) error {
	if s == nil {
		return chessdto.ErrGameNotFound
	}
	if _, ok := s.PlayerByID(strings.TrimSpace(in.PlayerID)); !ok {
		return chessdto.ErrPlayerNotInGame
	}
	return nil
}

func BothPlayersPresent(s *session.Session, _ Input) error {
	if s == nil {
		return chessdto.ErrGameNotFound
	}
	if !s.HasBothPlayers() {
		return chessdto.ErrNeedTwoPlayers
	}
	return nil
}

func MovePresent(_ *session.Session, in Input) error {
	if strings.TrimSpace(in.Move) == "" {
		return chessdto.ErrMoveRequired
	}
	return nil
}

func PlayerKindPresent(_ *session.Session, in Input) error {
	if strings.TrimSpace(in.PlayerType) == "" {
		return chessdto.ErrPlayerTypeRequired
	}
	if _, ok := session.ParseKind(in.PlayerType); !ok {
		return chessdto.ErrUnknownPlayerType
	}
	return nil
}

// Guard sets per operation.
var (
	Create         = []Guard{PlayerKindPresent}
	Join           = []Guard{GameExists, PlayerKindPresent}
	SubmitMove     = []Guard{GameExists, PlayerInGame, BothPlayersPresent, MovePresent}
	PlayerQuery    = []Guard{GameExists, PlayerInGame, BothPlayersPresent}
	GameTurnQuery  = []Guard{GameExists, BothPlayersPresent}
	SessionPresent = []Guard{GameExists}
)
