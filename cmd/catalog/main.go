package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/AlibekovAA/album-catalog/internal/common/bootstrap"
	"github.com/AlibekovAA/album-catalog/internal/common/config"
	srv "github.com/AlibekovAA/album-catalog/internal/common/server"
)

func main() {
	app := &cli.Command{
		Name:  "catalog",
		Usage: "Album catalog web application",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file path",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if path := cmd.String("config"); path != "" {
				if err := os.Setenv("CONFIG_FILE", path); err != nil {
					return ctx, fmt.Errorf("set CONFIG_FILE: %w", err)
				}
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Create the schema if needed and serve HTTP",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Create the database schema and exit",
				Action: migrate,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "catalog: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, _ *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadCatalogConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := bootstrap.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	app, err := bootstrap.NewApp(ctx, cfg, log, bootstrap.Options{})
	if err != nil {
		log.Errorf("failed to start catalog: %v", err)
		return err
	}

	defer app.Close()

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), app.Handler)

	return srv.Run(ctx, server, log, "catalog")
}

func migrate(ctx context.Context, _ *cli.Command) error {
	cfg, err := config.LoadMigrateConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := bootstrap.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	return bootstrap.Migrate(ctx, cfg, log)
}
