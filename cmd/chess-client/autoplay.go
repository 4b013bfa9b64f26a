package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/chess-session-server/internal/client"
)

func newAutoplayCmd(root *rootOptions) *cobra.Command {
	var (
		playerType string
		level      int
		interval   time.Duration
		gameID     string
		playerID   string
	)
	cmd := &cobra.Command{
		Use:   "autoplay",
		Short: "Join or create a game and play engine moves until it ends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := root.client()

			var seat client.Seat
			if gameID != "" {
				if playerID == "" {
					return fmt.Errorf("--player is required with --game")
				}
				seat = client.Seat{GameID: gameID, PlayerID: playerID}
			} else {
				found, err := c.FindOrCreate(ctx, playerType)
				if err != nil {
					return fmt.Errorf("find game: %w", err)
				}
				seat = found
			}
			logger().Info("autoplay_seated", zap.String("game_id", seat.GameID), zap.String("player_id", seat.PlayerID), zap.String("color", seat.Color))
			fmt.Fprintf(cmd.OutOrStdout(), "game %s player %s\n", seat.GameID, seat.PlayerID)

			result, err := c.Autoplay(ctx, seat, client.AutoplayOptions{
				PlayerType: playerType,
				Level:      level,
				Interval:   interval,
				Logger:     logger(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "result %s\n", result)
			return nil
		},
	}
	cmd.Flags().StringVar(&playerType, "player-type", "ai", "player type to register as (human or ai)")
	cmd.Flags().IntVar(&level, "level", -1, "engine skill level 0-20; negative uses the server default")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "polling interval while waiting for the opponent")
	cmd.Flags().StringVar(&gameID, "game", "", "resume an existing game instead of finding one")
	cmd.Flags().StringVar(&playerID, "player", "", "player id to resume as")
	return cmd
}
