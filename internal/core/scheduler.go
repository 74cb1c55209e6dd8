package core

// scheduler.go provides background reporting of validation record counts.
//
// The reporter runs immediately on start, then every interval, and logs the
// number of records per status. Records that stay in running across many
// reports point at a worker killed mid-run.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReportInterval is used when StartStatusReporter gets a zero interval.
const DefaultReportInterval = 15 * time.Minute

// StartStatusReporter logs record counts until ctx is cancelled.
func (s *Service) StartStatusReporter(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultReportInterval
	}
	slog.Info("status reporter started", "interval", interval.String())

	// Run immediately on startup
	s.reportStatus(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("status reporter stopped")
			return
		case <-ticker.C:
			s.reportStatus(ctx)
		}
	}
}

// reportStatus performs one count and log cycle.
func (s *Service) reportStatus(ctx context.Context) {
	start := time.Now()

	counts, err := s.StatusCounts(ctx)
	if err != nil {
		slog.Error("status count failed", "error", err)
		return
	}

	args := make([]any, 0, 2*len(counts)+2)
	for status, n := range counts {
		args = append(args, status, n)
	}
	args = append(args, "duration_ms", time.Since(start).Milliseconds())

	slog.Info("validation records", args...)
}
