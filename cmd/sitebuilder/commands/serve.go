package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
)

const shutdownTimeout = 5 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string `help:"Listen address" default:"127.0.0.1:8080"`
	NoBuild bool   `name:"no-build" help:"Serve the existing destination without building first"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	if !s.NoBuild {
		if err := (&BuildCmd{}).Run(g, root); err != nil {
			return err
		}
	}
	cfg, err := config.LoadWithOverrides(root.Config, root.configRequired(), config.Overrides{})
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "listen").
			WithContext("addr", s.Addr).
			Build()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, g, ln, cfg.DestinationPath, slog.Default())
}

// serve runs the preview server on ln until ctx is done.
func serve(ctx context.Context, g *Global, ln net.Listener, dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &http.Server{
		Handler:           preview.NewHandler(dir, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	_, _ = fmt.Fprintf(g.stdout(), "Serving %s at http://%s\n", dir, ln.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return ferrors.WrapError(err, ferrors.CategoryInternal, "preview server").Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Preview server shutdown", logfields.Error(err))
	}
	return nil
}
