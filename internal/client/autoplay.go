package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type AutoplayOptions struct {
	PlayerType string
	// Level is the engine skill level; negative uses the server default.
	Level    int
	Interval time.Duration
	Logger   *zap.Logger
}

// Seat identifies the game and player an autoplay run controls.
type Seat struct {
	GameID   string
	PlayerID string
	Color    string
}

// FindOrCreate joins the first game waiting for an opponent, or creates one when none is open.
func (c *Client) FindOrCreate(ctx context.Context, playerType string) (Seat, error) {
	open, err := c.NeedingOpponentAt(ctx, 0)
	switch {
	case err == nil:
		joined, jerr := c.JoinGame(ctx, open.ID, playerType)
		if jerr == nil && joined.Player2 != nil {
			return Seat{GameID: joined.ID, PlayerID: joined.Player2.ID, Color: joined.Player2.Color}, nil
		}
		// 다른 클라이언트가 먼저 참가했으면 새로 만든다
		if StatusOf(jerr) != http.StatusConflict {
			return Seat{}, jerr
		}
	case StatusOf(err) != http.StatusNotFound:
		return Seat{}, err
	}

	created, err := c.CreateGame(ctx, playerType, "")
	if err != nil {
		return Seat{}, err
	}
	if created.Player1 == nil {
		return Seat{}, errors.New("created game has no player")
	}
	return Seat{GameID: created.ID, PlayerID: created.Player1.ID, Color: created.Player1.Color}, nil
}

// Autoplay plays the engine's move whenever it is seat's turn until the game ends, and returns the result token.
func (c *Client) Autoplay(ctx context.Context, seat Seat, opts AutoplayOptions) (string, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = time.Second
	}

	for {
		over, err := c.GameOver(ctx, seat.GameID)
		if err != nil {
			return "", fmt.Errorf("poll game over: %w", err)
		}
		if over {
			break
		}

		mine, err := c.PlayerTurn(ctx, seat.GameID, seat.PlayerID)
		if err != nil && StatusOf(err) != http.StatusConflict {
			return "", fmt.Errorf("poll turn: %w", err)
		}
		if !mine {
			if err := sleepWithContext(ctx, interval); err != nil {
				return "", err
			}
			continue
		}

		best, err := c.BestMove(ctx, seat.GameID, seat.PlayerID, opts.Level)
		if err != nil {
			// 409는 상대가 먼저 움직였거나 게임이 끝난 경우
			if StatusOf(err) == http.StatusConflict {
				continue
			}
			return "", fmt.Errorf("best move: %w", err)
		}
		mv, err := c.Move(ctx, seat.GameID, seat.PlayerID, best)
		if err != nil {
			if StatusOf(err) == http.StatusConflict {
				continue
			}
			return "", fmt.Errorf("move %s: %w", best, err)
		}
		log.Info("autoplay_move", zap.String("game_id", seat.GameID), zap.String("color", seat.Color), zap.String("san", mv.SAN))
	}

	res, err := c.Result(ctx, seat.GameID)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", nil
	}
	return *res, nil
}
