package runner

import (
	"context"
	"log/slog"
	"time"

	"jobwatch/internal/model"
)

// Runner drives one full sweep: every provider in a fixed order, dedup
// against the seen store, one notification pass over everything new, then
// optional retention cleanup. Providers run in the order given so
// signatures are marked in a stable sequence run-to-run.
type Runner struct {
	fetchers  []model.JobFetcher
	store     model.SeenStore
	notifier  model.Notifier
	retention time.Duration
	logger    *slog.Logger
}

// New creates a runner wired with all its dependencies. A retention of
// zero disables cleanup.
func New(fetchers []model.JobFetcher, store model.SeenStore, notifier model.Notifier, retention time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		fetchers:  fetchers,
		store:     store,
		notifier:  notifier,
		retention: retention,
		logger:    logger,
	}
}

// Stats summarizes one sweep.
type Stats struct {
	Fetched int // matched postings collected across all providers
	New     int // postings not seen before, handed to the notifier
}

// Run executes one sweep. It never returns an error: a provider, store or
// notifier failure is logged and the sweep carries on with whatever
// remains, because a skipped cycle costs nothing but a crashed one loses
// the whole batch.
func (r *Runner) Run(ctx context.Context) Stats {
	var all []model.Job
	for _, f := range r.fetchers {
		jobs, err := f.FetchJobs(ctx)
		if err != nil {
			r.logger.Error("provider sweep failed", "error", err)
			continue
		}
		all = append(all, jobs...)
	}

	// Mark before notify: losing a notification beats double-sending it
	// on the next run.
	var fresh []model.Job
	for _, job := range all {
		if job.Signature == "" {
			continue
		}
		seen, err := r.store.HasSeen(ctx, job.Signature)
		if err != nil {
			r.logger.Error("seen check failed", "signature", job.Signature, "error", err)
			continue
		}
		if seen {
			continue
		}
		if err := r.store.MarkSeen(ctx, job.Signature); err != nil {
			r.logger.Error("marking signature failed", "signature", job.Signature, "error", err)
			continue
		}
		fresh = append(fresh, job)
	}

	if len(fresh) > 0 {
		if err := r.notifier.Notify(ctx, fresh); err != nil {
			r.logger.Error("notification failed", "jobs", len(fresh), "error", err)
		}
	}

	if r.retention > 0 {
		if err := r.store.Cleanup(ctx, r.retention); err != nil {
			r.logger.Error("state cleanup failed", "error", err)
		}
	}

	r.logger.Info("sweep complete", "fetched", len(all), "new", len(fresh))
	return Stats{Fetched: len(all), New: len(fresh)}
}
