package artifact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
	"github.com/robfig/cron/v3"
)

// Refresher re-fetches the artifact on a cron schedule.
type Refresher struct {
	store   *Store
	cron    *cron.Cron
	timeout time.Duration
	logger  *slog.Logger
}

// NewRefresher schedules store refreshes. spec is a six-field cron
// expression (seconds first), e.g. "0 */15 * * * *".
func NewRefresher(store *Store, spec string, timeout time.Duration, logger *slog.Logger) (*Refresher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := &Refresher{
		store:   store,
		cron:    cron.New(cron.WithSeconds()),
		timeout: timeout,
		logger:  logger,
	}

	if _, err := r.cron.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid MODEL_REFRESH_CRON %q: %w", spec, err)
	}
	return r, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
	r.logger.Info("model artifact refresher started")
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

func (r *Refresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	updated, err := r.store.Refresh(ctx)
	if err != nil {
		observability.ModelRefreshes.WithLabelValues("failed").Inc()
		r.logger.Error("model artifact refresh failed", "error", err)
		return
	}
	if !updated {
		observability.ModelRefreshes.WithLabelValues("unchanged").Inc()
		r.logger.Debug("model artifact unchanged")
		return
	}
	observability.ModelRefreshes.WithLabelValues("updated").Inc()
}
