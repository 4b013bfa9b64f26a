package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/chess-session-server/internal/client"
	"github.com/park285/chess-session-server/internal/obslog"
)

type rootOptions struct {
	server  string
	timeout time.Duration
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "chess-client",
		Short:         "Play and watch games on a chess session server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return obslog.InitFromEnv()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", "http://localhost:3000", "base URL of the chess server")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "per-request timeout")

	cmd.AddCommand(newAutoplayCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	return cmd
}

func (o *rootOptions) client() *client.Client {
	return client.NewClient(o.server, client.WithTimeout(o.timeout))
}

func logger() *zap.Logger { return obslog.L() }
