// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

// Package services provides suture service wrappers for the serve mode.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/facultypulse/internal/pipeline"
	"github.com/tomtom215/facultypulse/internal/storage"
)

// Runner runs one enrichment batch.
type Runner interface {
	Run(ctx context.Context) (*storage.RunRecord, error)
}

// BatchServiceConfig holds the batch schedule.
type BatchServiceConfig struct {
	// RunOnStart runs a batch as soon as the service starts.
	RunOnStart bool

	// Interval between scheduled batches. Zero disables the schedule;
	// batches then run only on start or on Trigger.
	Interval time.Duration

	// Timeout bounds one batch. Zero means no limit.
	Timeout time.Duration

	// OnComplete is called after every batch, successful or not.
	OnComplete func(rec *storage.RunRecord, err error)
}

// BatchService runs enrichment batches on start, on a schedule and on
// demand.
type BatchService struct {
	runner  Runner
	config  BatchServiceConfig
	trigger chan struct{}
	logger  zerolog.Logger
	name    string
}

// NewBatchService creates a batch service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBatchService(runner Runner, cfg BatchServiceConfig, logger zerolog.Logger) *BatchService {
	return &BatchService{
		runner:  runner,
		config:  cfg,
		trigger: make(chan struct{}, 1),
		logger:  logger.With().Str("service", "batch").Logger(),
		name:    "batch-service",
	}
}

// Trigger requests a batch. It reports false when one is already pending.
func (s *BatchService) Trigger() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service.
func (s *BatchService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_start", s.config.RunOnStart).
		Dur("interval", s.config.Interval).
		Msg("batch service starting")

	if s.config.RunOnStart {
		s.run(ctx, "start")
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("batch service shutting down")
			return ctx.Err()
		case <-tick:
			s.run(ctx, "schedule")
		case <-s.trigger:
			s.run(ctx, "trigger")
		}
	}
}

func (s *BatchService) run(ctx context.Context, reason string) {
	if ctx.Err() != nil {
		return
	}
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	s.logger.Debug().Str("reason", reason).Msg("batch triggered")
	rec, err := s.runner.Run(runCtx)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		s.logger.Warn().Str("reason", reason).Msg("batch skipped, another run is active")
		return
	case errors.Is(err, pipeline.ErrSinkWrites):
		s.logger.Warn().Err(err).Msg("batch finished with failed writes")
	case err != nil:
		s.logger.Error().Err(err).Str("reason", reason).Msg("batch failed")
	}

	if s.config.OnComplete != nil {
		s.config.OnComplete(rec, err)
	}
}

// String returns the service name for logging.
func (s *BatchService) String() string {
	return s.name
}
