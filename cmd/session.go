package cmd

import (
	"context"
	"log/slog"

	"github.com/gnames/gn"
	"github.com/gnames/sp7tree/internal/iofs"
	"github.com/gnames/sp7tree/internal/ioimport"
	"github.com/gnames/sp7tree/internal/iospecify"
	"github.com/gnames/sp7tree/pkg/config"
	"github.com/gnames/sp7tree/pkg/specify"
	"github.com/spf13/cobra"
)

// session is a logged in connection to Specify with a runner for tools.
type session struct {
	svc    specify.Service
	runner *ioimport.Runner
}

// connect applies flags to the configuration, prepares work directories
// and logs into Specify.
func connect(ctx context.Context, cmd *cobra.Command) (*session, error) {
	if opts := flagOptions(cmd); len(opts) > 0 {
		cfg.Update(opts)
	}
	if err := iofs.EnsureWorkDirs(cfg); err != nil {
		return nil, err
	}

	svc, collID, err := iospecify.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	cfg.Update([]config.Option{config.OptSpecifyCollectionID(collID)})

	gn.Info("Connected to <em>%s</em>, collection id <em>%d</em>",
		cfg.Specify.BaseURL, collID)

	return &session{
		svc:    svc,
		runner: ioimport.New(cfg, svc, collID, cmd.OutOrStdout()),
	}, nil
}

func (s *session) close(ctx context.Context) {
	if err := s.svc.Logout(ctx); err != nil {
		slog.Warn("Cannot log out", "error", err)
	}
}
