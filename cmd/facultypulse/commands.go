// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/facultypulse/internal/api"
	"github.com/tomtom215/facultypulse/internal/cache"
	"github.com/tomtom215/facultypulse/internal/config"
	"github.com/tomtom215/facultypulse/internal/logging"
	"github.com/tomtom215/facultypulse/internal/pipeline"
	"github.com/tomtom215/facultypulse/internal/storage"
	"github.com/tomtom215/facultypulse/internal/supervisor"
	"github.com/tomtom215/facultypulse/internal/supervisor/services"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "facultypulse",
		Short:         "Statistical enrichment of review corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run one enrichment batch and exit",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				return runOnce(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Run batches on a schedule and serve the read API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				return serve(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "check-config",
			Short: "Validate the configuration and print warnings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "configuration OK (source %s)\n", cfg.Source.Dir)
				return nil
			},
		},
	)
	return root
}

// loadConfig loads the configuration and initializes logging from it.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.Logging.ToLogging())
	for _, w := range cfg.Warnings() {
		logging.Warn().Msg(w)
	}
	return cfg, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runOnce(parent context.Context, cfg *config.Config) error {
	ctx, stop := signalContext(parent)
	defer stop()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	rec, err := app.runner.Run(ctx)
	if rec != nil {
		logging.Info().
			Str("run_id", rec.RunID).
			Int("entities", rec.Entities).
			Int("analyzed", rec.Analyzed).
			Int("no_reviews", rec.NoReviews).
			Int("failed", rec.Failed).
			Dur("duration", rec.Duration()).
			Msg("batch finished")
	}
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return nil
}

func serve(parent context.Context, cfg *config.Config) error {
	ctx, stop := signalContext(parent)
	defer stop()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})

	var handler *api.Handler
	batch := services.NewBatchService(app.runner, services.BatchServiceConfig{
		RunOnStart: cfg.Schedule.RunOnStart,
		Interval:   cfg.Schedule.Interval,
		Timeout:    cfg.Schedule.Timeout,
		OnComplete: func(_ *storage.RunRecord, err error) {
			if handler != nil && (err == nil || errors.Is(err, pipeline.ErrSinkWrites)) {
				handler.Invalidate()
			}
		},
	}, logging.WithComponent("batch"))

	if cfg.Server.Enabled {
		var responses *cache.LRU
		if cfg.Server.CacheSize > 0 {
			responses = cache.NewLRU("api_responses", cfg.Server.CacheSize, cfg.Server.CacheTTL)
			tree.AddAPIService(services.NewCacheJanitorService(responses, time.Minute, logging.WithComponent("cache")))
		}

		deps := api.Deps{
			Snapshot: app.snapshot,
			Runs:     app.runs,
			History:  app.history,
			Status:   app.runner,
			Cache:    responses,
		}
		if cfg.Server.AllowTrigger {
			deps.Trigger = batch
		}
		if app.duck != nil {
			deps.Subjects = app.duck
		}

		handler, err = api.NewHandler(deps, logging.Logger())
		if err != nil {
			return fmt.Errorf("create API handler: %w", err)
		}

		server := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      api.NewRouter(handler, api.RouterConfig{CORSOrigins: cfg.Server.CORSOrigins, RateLimitRequests: cfg.Server.RateLimitRequests, RateLimitWindow: cfg.Server.RateLimitWindow}, logging.Logger()),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}
		tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logging.Logger()))
	}
	tree.AddPipelineService(batch)

	logging.Info().
		Bool("api", cfg.Server.Enabled).
		Dur("interval", cfg.Schedule.Interval).
		Msg("starting supervisor tree")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("services did not stop in time")
	}
	logging.Info().Msg("shutdown complete")
	return nil
}
