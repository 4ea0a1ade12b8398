// @title			Task Review API
// @version		1.0
// @description	Review and settlement workflow for order tasks: submission, approval with dispatcher rewards, rework returns and penalties.
// @BasePath		/api/v1

// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mtlprog/taskreview/internal/automation"
	"github.com/mtlprog/taskreview/internal/config"
	"github.com/mtlprog/taskreview/internal/database"
	"github.com/mtlprog/taskreview/internal/handler"
	"github.com/mtlprog/taskreview/internal/logger"
	"github.com/mtlprog/taskreview/internal/repository"
	"github.com/mtlprog/taskreview/internal/service"
)

func main() {
	app := &cli.App{
		Name:  "taskreview",
		Usage: "Task review and settlement service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Value:   "json",
				Usage:   "Log format (text, json)",
				EnvVars: []string{"LOG_FORMAT"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.IntFlag{
				Name:    "db-max-conns",
				Value:   config.DefaultMaxConns,
				Usage:   "Maximum database pool connections",
				EnvVars: []string{"DB_MAX_CONNS"},
			},
			&cli.IntFlag{
				Name:    "db-min-conns",
				Value:   config.DefaultMinConns,
				Usage:   "Minimum database pool connections",
				EnvVars: []string{"DB_MIN_CONNS"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")), logger.ParseFormat(c.String("log-format")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
				},
				Action: runServe,
			},
			{
				Name:   "settle-workers",
				Usage:  "Credit workers of approved tasks whose payment did not land",
				Action: runSettleWorkers,
			},
			{
				Name:  "import-automation",
				Usage: "Load stage to dispatcher mappings from a YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "Path to the automation settings YAML file",
						EnvVars:  []string{"AUTOMATION_FILE"},
						Required: true,
					},
				},
				Action: runImportAutomation,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// connect opens the pool and applies pending migrations.
func connect(c *cli.Context) (*database.DB, error) {
	db, err := database.NewWithOptions(c.Context, c.String("database-url"), database.Options{
		MaxConns: int32(c.Int("db-max-conns")),
		MinConns: int32(c.Int("db-min-conns")),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := database.RunMigrations(c.Context, db.Pool()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	h := handler.New(db.Pool())

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runSettleWorkers(c *cli.Context) error {
	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pool := db.Pool()
	svc := service.NewTaskService(
		repository.NewTaskRepository(pool),
		repository.NewUserRepository(pool),
		repository.NewOrderRepository(pool),
		repository.NewAutomationRepository(pool),
		repository.NewPenaltyLogRepository(pool),
	)

	credited, err := svc.SettleWorkerCredits(c.Context)
	if err != nil {
		return fmt.Errorf("settle workers: %w", err)
	}

	slog.Info("settle-workers finished", "credited", credited)
	return nil
}

func runImportAutomation(c *cli.Context) error {
	settings, err := automation.LoadFile(c.String("file"))
	if err != nil {
		return err
	}

	db, err := connect(c)
	if err != nil {
		return err
	}
	defer db.Close()

	imported, err := automation.Import(c.Context, repository.NewAutomationRepository(db.Pool()), settings)
	if err != nil {
		return err
	}

	slog.Info("automation settings imported", "count", imported, "file", c.String("file"))
	return nil
}
