package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/config"
	"github.com/loan-guidance/loan-guidance-backend/internal/bootstrap"
)

type levelCounter interface {
	CountByLevelSince(ctx context.Context, t time.Time) (map[string]int, error)
}

// RunStatsFromEnv opens the assessment log configured in the environment and
// prints per-level counts.
func RunStatsFromEnv(ctx context.Context, w io.Writer, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.DatabaseEnabled() {
		return fmt.Errorf("stats: DB_HOST is not set")
	}

	db, log, err := bootstrap.OpenAssessmentLog(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	return RunStats(ctx, w, log, time.Now().UTC(), args)
}

// RunStats prints how many assessments landed in each risk level during the
// window given as args[0] (a Go duration, default 24h).
func RunStats(ctx context.Context, w io.Writer, counter levelCounter, now time.Time, args []string) error {
	window := 24 * time.Hour
	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("stats: window: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("stats: window must be positive, got %s", d)
		}
		window = d
	}

	counts, err := counter.CountByLevelSince(ctx, now.Add(-window))
	if err != nil {
		return err
	}

	levels := make([]string, 0, len(counts))
	total := 0
	for level, n := range counts {
		levels = append(levels, level)
		total += n
	}
	sort.Strings(levels)

	fmt.Fprintf(w, "assessments in the last %s: %d\n", window, total)
	for _, level := range levels {
		fmt.Fprintf(w, "  %-13s %d\n", level, counts[level])
	}
	return nil
}
