package chess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/park285/chess-session-server/internal/adapter/chesspresenter"
	"github.com/park285/chess-session-server/internal/chess/uci"
	"github.com/park285/chess-session-server/internal/events"
	"github.com/park285/chess-session-server/internal/guard"
	"github.com/park285/chess-session-server/internal/play"
	"github.com/park285/chess-session-server/internal/rules"
	"github.com/park285/chess-session-server/internal/session"
	"github.com/park285/chess-session-server/pkg/chessdto"
)

const (
	defaultIDAttempts = 5
	maxSkillLevel     = 20
)

// Recommender proposes a move for a position.
type Recommender interface {
	BestMove(ctx context.Context, req uci.Request) (string, error)
}

type IDSource interface {
	New() string
}

type Config struct {
	DefaultSkillLevel int
	IDAttempts        int
}

// Service orchestrates every session operation. All session mutation happens under that session's lock;
// engine calls run with no lock held.
type Service struct {
	registry  *session.Registry
	ids       IDSource
	engine    Recommender
	processor *play.Processor
	events    events.Publisher
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(registry *session.Registry, ids IDSource, engine Recommender, publisher events.Publisher, cfg Config, logger *zap.Logger) (*Service, error) {
	if registry == nil {
		return nil, fmt.Errorf("session registry is required")
	}
	if ids == nil {
		return nil, fmt.Errorf("id source is required")
	}
	if cfg.DefaultSkillLevel < 0 || cfg.DefaultSkillLevel > maxSkillLevel {
		return nil, fmt.Errorf("default skill level %d out of range 0-20", cfg.DefaultSkillLevel)
	}
	if cfg.IDAttempts <= 0 {
		cfg.IDAttempts = defaultIDAttempts
	}
	if publisher == nil {
		publisher = events.Fanout(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		ids:       ids,
		engine:    engine,
		processor: play.NewProcessor(time.Now),
		events:    publisher,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}, nil
}

// WithClock replaces the time source for creation and move timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
		s.processor = play.NewProcessor(now)
	}
	return s
}

// Create starts a session for the caller, who always plays White. An automated opponent is seated at once.
func (s *Service) Create(ctx context.Context, playerType, opponentType string) (session.View, error) {
	if err := guard.Run(nil, guard.Input{PlayerType: playerType}, guard.Create...); err != nil {
		return session.View{}, err
	}
	kind, _ := session.ParseKind(playerType)

	var opponent session.Kind
	if strings.TrimSpace(opponentType) != "" {
		k, ok := session.ParseKind(opponentType)
		if !ok {
			return session.View{}, chessdto.ErrUnknownPlayerType.WithMessage("unknown opponent_type")
		}
		opponent = k
	}

	for attempt := 1; attempt <= s.cfg.IDAttempts; attempt++ {
		gameID := s.ids.New()
		creator := session.Player{ID: s.freshPlayerID(gameID), Color: rules.White, Kind: kind}
		sess := session.New(gameID, s.now(), creator)
		if opponent == session.Automated {
			bot := session.Player{ID: s.freshPlayerID(gameID, creator.ID), Color: rules.Black, Kind: session.Automated}
			if err := sess.Join(bot); err != nil {
				return session.View{}, err
			}
		}
		view := sess.Snapshot()

		if err := s.registry.Create(sess); err != nil {
			if errors.Is(err, session.ErrDuplicateID) {
				s.logger.Warn("game_id_collision", zap.String("game_id", gameID), zap.Int("attempt", attempt))
				continue
			}
			return session.View{}, err
		}

		s.logger.Info("game_create",
			zap.String("game_id", view.ID),
			zap.String("player1", view.Player1.ID),
			zap.String("player1_type", string(view.Player1.Kind)),
			zap.Bool("auto_opponent", view.Player2 != nil),
		)
		s.publish(ctx, chessdto.EventCreated, view, nil)
		return view, nil
	}
	return session.View{}, chessdto.ErrDuplicateID
}

func (s *Service) Get(_ context.Context, id string) (session.View, error) {
	var view session.View
	err := s.withSession(id, guard.Input{}, guard.SessionPresent, func(sess *session.Session) error {
		view = sess.Snapshot()
		return nil
	})
	return view, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	view, err := s.registry.Delete(id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return chessdto.ErrGameNotFound
		}
		return err
	}
	s.logger.Info("game_delete", zap.String("game_id", id), zap.String("result", view.Result.String()))
	s.publish(ctx, chessdto.EventDeleted, view, nil)
	return nil
}

// Join seats the caller as the second player, opposite the creator's color.
func (s *Service) Join(ctx context.Context, id, playerType string) (session.View, error) {
	in := guard.Input{PlayerType: playerType}
	var view session.View
	err := s.withSession(id, in, guard.Join, func(sess *session.Session) error {
		if sess.HasBothPlayers() {
			return chessdto.ErrGameFull
		}
		kind, _ := session.ParseKind(playerType)
		p := session.Player{
			ID:    s.freshPlayerID(sess.ID, sess.Player1.ID),
			Color: sess.Player1.Color.Opposite(),
			Kind:  kind,
		}
		if err := sess.Join(p); err != nil {
			if errors.Is(err, session.ErrFull) {
				return chessdto.ErrGameFull
			}
			return err
		}
		view = sess.Snapshot()
		return nil
	})
	if err != nil {
		return session.View{}, err
	}
	s.logger.Info("game_join",
		zap.String("game_id", view.ID),
		zap.String("player2", view.Player2.ID),
		zap.String("player2_type", string(view.Player2.Kind)),
	)
	s.publish(ctx, chessdto.EventJoined, view, nil)
	return view, nil
}

// Move plays move for playerID and returns the augmented record together with the updated session.
func (s *Service) Move(ctx context.Context, id, playerID, move string) (play.Record, session.View, error) {
	in := guard.Input{PlayerID: playerID, Move: move}
	var (
		rec  play.Record
		view session.View
	)
	err := s.withSession(id, in, guard.SubmitMove, func(sess *session.Session) error {
		var err error
		rec, err = s.processor.Apply(sess, strings.TrimSpace(playerID), move)
		if err != nil {
			return err
		}
		view = sess.Snapshot()
		return nil
	})
	if err != nil {
		return play.Record{}, session.View{}, err
	}

	s.logger.Info("game_move",
		zap.String("game_id", id),
		zap.String("player_id", playerID),
		zap.String("move", rec.Long),
		zap.String("san", rec.SAN),
		zap.String("result", view.Result.String()),
	)
	if view.Result.Terminal() {
		s.logger.Info("game_over", zap.String("game_id", id), zap.String("result", view.Result.String()))
	}
	s.publish(ctx, chessdto.EventMoved, view, &rec)
	return rec, view, nil
}

// BestMove asks the engine for the caller's move. level nil means the configured default.
func (s *Service) BestMove(ctx context.Context, id, playerID string, level *int) (string, error) {
	skill := s.cfg.DefaultSkillLevel
	if level != nil {
		skill = *level
	}
	if skill < 0 || skill > maxSkillLevel {
		return "", chessdto.ErrBadSkillLevel
	}

	in := guard.Input{PlayerID: playerID}
	var (
		fen   string
		color rules.Color
	)
	err := s.withSession(id, in, guard.PlayerQuery, func(sess *session.Session) error {
		p, _ := sess.PlayerByID(strings.TrimSpace(playerID))
		if sess.Result.Terminal() || sess.Position.IsGameOver() {
			return chessdto.ErrGameOver
		}
		if sess.Position.Turn() != p.Color {
			return chessdto.ErrNotYourTurn
		}
		fen, color = sess.Position.FEN(), p.Color
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.engine == nil {
		return "", chessdto.ErrEngineUnavailable
	}
	move, err := s.engine.BestMove(ctx, uci.Request{FEN: fen, SkillLevel: skill})
	if err != nil {
		if errors.Is(err, uci.ErrSkillLevel) {
			return "", chessdto.ErrBadSkillLevel
		}
		s.logger.Warn("engine_bestmove_failed", zap.String("game_id", id), zap.Error(err))
		return "", fmt.Errorf("%w: %v", chessdto.ErrEngineUnavailable, err)
	}

	err = s.withSession(id, in, guard.PlayerQuery, func(sess *session.Session) error {
		if sess.Position.FEN() != fen || sess.Position.Turn() != color {
			return chessdto.ErrPositionChanged
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return move, nil
}

// Turn returns the player whose move it is.
func (s *Service) Turn(_ context.Context, id string) (session.Player, error) {
	var p session.Player
	err := s.withSession(id, guard.Input{}, guard.GameTurnQuery, func(sess *session.Session) error {
		p, _ = play.TurnPlayer(sess)
		return nil
	})
	return p, err
}

// PlayerTurn reports whether it is playerID's move.
func (s *Service) PlayerTurn(_ context.Context, id, playerID string) (bool, error) {
	var mine bool
	in := guard.Input{PlayerID: playerID}
	err := s.withSession(id, in, guard.PlayerQuery, func(sess *session.Session) error {
		p, _ := sess.PlayerByID(strings.TrimSpace(playerID))
		mine = sess.Position.Turn() == p.Color
		return nil
	})
	return mine, err
}

func (s *Service) GameOver(_ context.Context, id string) (bool, error) {
	var over bool
	err := s.withSession(id, guard.Input{}, guard.SessionPresent, func(sess *session.Session) error {
		over = sess.Result.Terminal() || sess.Position.IsGameOver()
		return nil
	})
	return over, err
}

func (s *Service) Result(_ context.Context, id string) (session.Result, error) {
	var r session.Result
	err := s.withSession(id, guard.Input{}, guard.SessionPresent, func(sess *session.Session) error {
		r = sess.Result
		return nil
	})
	return r, err
}

func (s *Service) LastMove(_ context.Context, id string) (play.Record, error) {
	var rec play.Record
	err := s.withSession(id, guard.Input{}, guard.SessionPresent, func(sess *session.Session) error {
		var ok bool
		if rec, ok = play.LastMove(sess); !ok {
			return chessdto.ErrNoMoves
		}
		return nil
	})
	return rec, err
}

func (s *Service) FEN(_ context.Context, id string) (string, error) {
	var fen string
	err := s.withSession(id, guard.Input{}, guard.SessionPresent, func(sess *session.Session) error {
		fen = sess.Position.FEN()
		return nil
	})
	return fen, err
}

func (s *Service) List(context.Context) []session.View            { return s.registry.List() }
func (s *Service) NeedingOpponent(context.Context) []session.View { return s.registry.NeedingOpponent() }
func (s *Service) InProgress(context.Context) []session.View      { return s.registry.InProgress() }
func (s *Service) InCheckmate(context.Context) []session.View     { return s.registry.Won() }
func (s *Service) InDraw(context.Context) []session.View          { return s.registry.Drawn() }

func (s *Service) NeedingOpponentAt(_ context.Context, idx int) (session.View, error) {
	v, err := s.registry.NeedingOpponentAt(idx)
	if err != nil {
		return session.View{}, chessdto.ErrNoSuchGame
	}
	return v, nil
}

// withSession runs guards and fn under the session's lock. A missing session is reported by
// running the guards against nil so the first failing guard decides the error.
func (s *Service) withSession(id string, in guard.Input, guards []guard.Guard, fn func(*session.Session) error) error {
	err := s.registry.Update(strings.TrimSpace(id), func(sess *session.Session) error {
		if err := guard.Run(sess, in, guards...); err != nil {
			return err
		}
		return fn(sess)
	})
	if errors.Is(err, session.ErrNotFound) {
		if gerr := guard.Run(nil, in, guards...); gerr != nil {
			return gerr
		}
		return chessdto.ErrGameNotFound
	}
	return err
}

// freshPlayerID draws an id distinct from every id in taken.
func (s *Service) freshPlayerID(taken ...string) string {
	for {
		id := s.ids.New()
		clash := false
		for _, t := range taken {
			if id == t {
				clash = true
				break
			}
		}
		if !clash {
			return id
		}
	}
}

func (s *Service) publish(ctx context.Context, kind string, view session.View, rec *play.Record) {
	ev := chessdto.Event{Type: kind, GameID: view.ID, Session: chesspresenter.ToDTOSession(view)}
	if rec != nil {
		ev.Move = chesspresenter.ToDTOMove(*rec)
	}
	s.events.Publish(ctx, ev)
}
