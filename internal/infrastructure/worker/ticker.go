package worker

import (
	"context"
	"time"

	"valutatrade-hub/internal/application"

	"go.uber.org/zap"
)

var _ application.Worker = (*Ticker)(nil)

// Ticker refreshes all sources on a fixed interval so the cache stays warm
// between interactive commands. The first refresh runs immediately.
type Ticker struct {
	Svc   *application.Service
	Every time.Duration
	Log   *zap.Logger
}

func (w *Ticker) Start(ctx context.Context) {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	if w.Every <= 0 {
		w.Every = 5 * time.Minute
	}

	t := time.NewTicker(w.Every)
	defer t.Stop()

	log.Info("refresh_worker_started", zap.Duration("every", w.Every))
	w.tick(ctx, log)
	for {
		select {
		case <-ctx.Done():
			log.Info("refresh_worker_stopped")
			return
		case <-t.C:
			w.tick(ctx, log)
		}
	}
}

func (w *Ticker) tick(ctx context.Context, log *zap.Logger) {
	report, err := w.Svc.RefreshRates(ctx, "", nil)
	if err != nil {
		log.Warn("refresh_failed", zap.Error(err))
		return
	}
	log.Info("refresh_done",
		zap.String("refresh_id", report.ID),
		zap.Int("updated", report.Updated),
		zap.Int("failures", len(report.Failures)))
}
