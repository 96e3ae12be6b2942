package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deppfellow/vistual/internal/config"
	"github.com/deppfellow/vistual/internal/database"
	"github.com/deppfellow/vistual/internal/handler"
	"github.com/deppfellow/vistual/internal/lib/job"
	"github.com/deppfellow/vistual/internal/logger"
	"github.com/deppfellow/vistual/internal/repository"
	"github.com/deppfellow/vistual/internal/router"
	"github.com/deppfellow/vistual/internal/server"
	"github.com/deppfellow/vistual/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var skipMigrations bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		Long: `Run the HTTP API together with the job worker and the image cleanup
scheduler. Pending migrations are applied first unless the environment is
"local" or --skip-migrations is set.`,
		Example: `  vistual serve
  VISTUAL_SERVER.PORT=9090 vistual serve --skip-migrations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), skipMigrations)
		},
	}

	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply pending migrations on start")

	return cmd
}

func runServe(ctx context.Context, skipMigrations bool) (err error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if cfg.Primary.Env != "local" && !skipMigrations {
		if err := database.Migrate(ctx, &log, cfg); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}
	defer func() {
		if shutdownErr := shutdown(srv, &log, shutdownTimeout); shutdownErr != nil {
			err = errors.Join(err, shutdownErr)
		}
	}()

	repos := repository.NewRepositories(srv)

	srv.Job.InitHandlers(job.Dependencies{
		Images: srv.Images,
		Refs:   repos.Garment,
	})
	if err := srv.Job.Start(); err != nil {
		return fmt.Errorf("failed to start jobs: %w", err)
	}

	services, err := service.NewService(srv, repos)
	if err != nil {
		return fmt.Errorf("failed to create services: %w", err)
	}

	handlers := handler.NewHandlers(srv, services)
	r := router.NewRouter(srv, handlers, services)
	srv.SetupHTTPServer(r)

	return serveUntilDone(ctx, srv)
}

type lifecycle interface {
	Start() error
	Shutdown(ctx context.Context) error
}

// serveUntilDone blocks until ctx is cancelled or srv stops serving.
func serveUntilDone(ctx context.Context, srv lifecycle) error {
	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	return nil
}

// shutdown stops srv, giving it at most timeout to drain.
func shutdown(srv lifecycle, log *zerolog.Logger, timeout time.Duration) error {
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited properly")
	return nil
}
