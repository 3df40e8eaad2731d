package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"defaultreset/internal/api"
	"defaultreset/internal/nonce"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the settings page and evaluate the reset trigger on every request",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configFile)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, a)
	},
}

func serve(ctx context.Context, a *app) error {
	if !a.cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	issuer, err := nonce.NewIssuer([]byte(a.cfg.Nonce.Secret), a.cfg.Nonce.TTL)
	if err != nil {
		return err
	}
	hub := api.NewHub(a.logger)
	defer hub.Close()

	server, err := api.NewServer(api.Deps{
		Flags:     a.options,
		Products:  a.catalog,
		Evaluator: a.evaluator,
		Resetter:  a.resetter,
		Nonces:    issuer,
		Monitor:   a.monitor,
		Hub:       hub,
		Logger:    a.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize API server: %w", err)
	}

	servers := []*http.Server{{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: server.Router(),
	}}
	if a.cfg.MetricsConfig.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.MetricsConfig.Path, a.monitor.Handler())
		servers = append(servers, &http.Server{
			Addr:    fmt.Sprintf(":%d", a.cfg.MetricsConfig.Port),
			Handler: mux,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			a.logger.Info("starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		hub.Close()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("server shutdown", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})

	return g.Wait()
}
