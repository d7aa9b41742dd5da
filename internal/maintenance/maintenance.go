// Copyright (c) 2025-2026 Andrei Volkau
// SPDX-License-Identifier: GPL-3.0-or-later

// Package maintenance runs periodic housekeeping jobs.
package maintenance

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/avolkau/minipress/internal/store"
)

// Scheduler runs the event log retention job.
type Scheduler struct {
	db            *sql.DB
	cron          *cron.Cron
	logger        *slog.Logger
	retentionDays int
}

// New creates a scheduler pruning events older than retentionDays.
func New(db *sql.DB, logger *slog.Logger, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start registers the nightly retention job and starts the scheduler.
// Retention also runs once immediately so long-stopped instances catch up.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("15 3 * * *", func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("event retention failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("maintenance scheduler started", "retention_days", s.retentionDays)

	go func() {
		if err := s.PruneEvents(context.Background()); err != nil {
			s.logger.Error("event retention failed", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("maintenance scheduler stopped")
}

// PruneEvents deletes event log entries older than the retention window.
func (s *Scheduler) PruneEvents(ctx context.Context) error {
	if s.retentionDays <= 0 {
		return nil
	}

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	removed, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed > 0 {
		s.logger.Info("pruned event log", "removed", removed, "cutoff", cutoff)
	}
	return nil
}
