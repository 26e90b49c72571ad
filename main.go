package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"finance/src/api"
	"finance/src/config"
	"finance/src/database"
	"finance/src/utils"
	aws_handler "finance/src/utils/aws"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	var cfg *config.Config
	var logger *logrus.Logger

	app := &cli.App{
		Name:  "finance",
		Usage: "stock trading simulator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "directory holding appsettings.yaml",
				Value:   "./settings",
				EnvVars: []string{"FINANCE_SETTINGS"},
			},
			&cli.StringFlag{
				Name:    "env",
				Aliases: []string{"e"},
				Usage:   "environment overlay, loads appsettings.<env>.yaml",
				EnvVars: []string{"ENV"},
			},
			&cli.StringFlag{
				Name:    "loglevel",
				Aliases: []string{"l"},
				Usage:   "log level (debug, info, warn, error), overrides service.logLevel",
			},
		},

		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.LoadConfig(c.String("settings"), c.String("env"))
			if err != nil {
				return cli.Exit("loading config: "+err.Error(), 1)
			}

			level := cfg.Service.LogLevel
			if c.IsSet("loglevel") {
				level = c.String("loglevel")
			}
			logger = utils.NewLogger(utils.ParseLevel(level), cfg.Service.LogFile != "", cfg.Service.LogFile)

			if cfg.Secrets.Region != "" {
				secrets, err := aws_handler.NewRegionSecretManager(cfg.Secrets.Region)
				if err != nil {
					return cli.Exit("creating aws session: "+err.Error(), 1)
				}
				if err := config.ResolveSecrets(cfg, secrets); err != nil {
					return cli.Exit(err.Error(), 1)
				}
			}
			return nil
		},

		Action: func(c *cli.Context) error {
			return serve(c.Context, cfg, logger)
		},

		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the web server",
				Action: func(c *cli.Context) error {
					return serve(c.Context, cfg, logger)
				},
			},
			{
				Name:  "migrate",
				Usage: "apply database migrations",
				Action: func(c *cli.Context) error {
					if cfg.Databases.SQL.Driver != config.PostgresDriver {
						logger.Info("memory store configured, nothing to migrate")
						return nil
					}
					return database.Migrate(cfg.Databases.SQL.DSN(), logger)
				},
			},
		},
	}

	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("finance exited")
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, cleanup, err := api.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	httpServer := api.NewHTTPServer(server, cfg)
	errC := run(httpServer, logger)

	select {
	case err := <-errC:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func run(httpServer *http.Server, logger *logrus.Logger) <-chan error {
	errC := make(chan error, 1)

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("An error raised while setting up server")
			errC <- err
		}
	}()
	return errC
}
