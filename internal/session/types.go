// Package session holds game sessions in memory and serializes access to each one.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/park285/chess-session-server/internal/rules"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrDuplicateID  = errors.New("duplicate session id")
	ErrFull         = errors.New("session already has two players")
	ErrColorTaken   = errors.New("color already taken")
	ErrNotTerminal  = errors.New("result is not terminal")
	ErrAlreadyEnded = errors.New("result already decided")
)

// Kind distinguishes a person at a client from an automated player driven by the engine.
type Kind string

const (
	Human     Kind = "human"
	Automated Kind = "ai"
)

// ParseKind accepts the wire tokens case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case Human:
		return Human, true
	case Automated:
		return Automated, true
	default:
		return "", false
	}
}

type Player struct {
	ID    string
	Color rules.Color
	Kind  Kind
}

type Result int

const (
	Unknown Result = iota
	InProgress
	WhiteWin
	BlackWin
	Draw
)

func (r Result) Terminal() bool { return r == WhiteWin || r == BlackWin || r == Draw }

// PGN returns the game-termination token. Unknown has none.
func (r Result) PGN() (string, bool) {
	switch r {
	case InProgress:
		return "*", true
	case WhiteWin:
		return "1-0", true
	case BlackWin:
		return "0-1", true
	case Draw:
		return "1/2-1/2", true
	default:
		return "", false
	}
}

func (r Result) String() string {
	switch r {
	case InProgress:
		return "in_progress"
	case WhiteWin:
		return "white_win"
	case BlackWin:
		return "black_win"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// WinFor maps a winning color to its result.
func WinFor(c rules.Color) Result {
	if c == rules.White {
		return WhiteWin
	}
	return BlackWin
}

// Session is one game. Fields are only touched while the registry holds the session's lock
// (inside Registry.Update) or before the session is published with Registry.Create.
type Session struct {
	mu      sync.Mutex
	removed bool

	ID         string
	CreatedAt  time.Time
	Position   *rules.Position
	Player1    Player
	Player2    *Player
	Result     Result
	LastMoveAt *time.Time
}

// New starts a session at the initial position with only its creator seated.
func New(id string, createdAt time.Time, creator Player) *Session {
	return &Session{
		ID:        id,
		CreatedAt: createdAt,
		Position:  rules.NewPosition(),
		Player1:   creator,
		Result:    Unknown,
	}
}

func (s *Session) HasBothPlayers() bool { return s.Player2 != nil }

// PlayerByID finds a seated player.
func (s *Session) PlayerByID(id string) (Player, bool) {
	if id == "" {
		return Player{}, false
	}
	if s.Player1.ID == id {
		return s.Player1, true
	}
	if s.Player2 != nil && s.Player2.ID == id {
		return *s.Player2, true
	}
	return Player{}, false
}

// Join seats the second player and starts the game.
func (s *Session) Join(p Player) error {
	if s.Player2 != nil {
		return ErrFull
	}
	if p.Color == s.Player1.Color {
		return ErrColorTaken
	}
	s.Player2 = &p
	s.Result = InProgress
	return nil
}

// Decide records a terminal result. It refuses to overwrite an earlier decision.
func (s *Session) Decide(r Result) error {
	if !r.Terminal() {
		return ErrNotTerminal
	}
	if s.Result.Terminal() {
		if s.Result == r {
			return nil
		}
		return ErrAlreadyEnded
	}
	s.Result = r
	return nil
}

// View is an immutable copy of a session taken under its lock.
type View struct {
	ID         string
	CreatedAt  time.Time
	FEN        string
	Moves      []string
	Turn       rules.Color
	GameOver   bool
	Player1    Player
	Player2    *Player
	Result     Result
	LastMoveAt *time.Time
}

func (s *Session) Snapshot() View {
	v := View{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		FEN:       s.Position.FEN(),
		Turn:      s.Position.Turn(),
		GameOver:  s.Position.IsGameOver(),
		Player1:   s.Player1,
		Result:    s.Result,
	}
	for _, mv := range s.Position.History() {
		v.Moves = append(v.Moves, mv.UCI)
	}
	if s.Player2 != nil {
		p2 := *s.Player2
		v.Player2 = &p2
	}
	if s.LastMoveAt != nil {
		at := *s.LastMoveAt
		v.LastMoveAt = &at
	}
	return v
}

func (v View) NeedsOpponent() bool { return v.Player2 == nil }
