package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rolegate/rolegate/internal/interfaces/cli/bootstrap"
	"github.com/rolegate/rolegate/internal/shared/version"
)

const shutdownTimeout = 30 * time.Second

var (
	opts           bootstrap.Options
	autoMigrate    bool
	skipMigrations bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the webhook listener and background jobs",
		Long: `Start the HTTP server that receives payment notifications and serves the
admin API, together with the fulfillment workers, the expiry sweeper and the
pending-order reconciler.`,
		RunE: run,
	}

	opts.Bind(cmd)
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Derive the schema from the models instead of the migration scripts (not recommended for production)")
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "Do not apply migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap.Init(&opts)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config
	log := rt.Log

	log.Infow("starting server",
		"version", version.String(),
		"mode", cfg.Server.Mode,
		"platform", cfg.Payment.Platform,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if skipMigrations {
		log.Infow("skipping migrations")
	} else if err := rt.Migrate(autoMigrate); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := rt.Container()
	if err != nil {
		return fmt.Errorf("failed to wire application: %w", err)
	}
	if err := container.SeedPlans(ctx); err != nil {
		return err
	}
	if err := container.StartBackground(); err != nil {
		return err
	}
	container.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server listening", "address", srv.Addr, "notify_path", cfg.Server.NotifyPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		// stop intake before draining queued fulfillments
		srvErr := srv.Shutdown(shutdownCtx)
		if srvErr != nil {
			srvErr = fmt.Errorf("http shutdown: %w", srvErr)
		}
		return errors.Join(srvErr, container.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		log.Errorw("server exited with error", "error", err)
		return err
	}
	log.Infow("server exited gracefully")
	return nil
}
