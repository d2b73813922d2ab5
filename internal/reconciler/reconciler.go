// Package reconciler periodically re-queues documents stuck in pending.
// A document can get stuck when its analysis request is lost (Redis
// restart, consumer crash before the first status write); the sweep puts
// it back on the queue.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
)

const (
	// defaultSchedule runs the sweep every minute.
	defaultSchedule = "@every 1m"

	// defaultStaleAfter is how long a document may sit pending before it
	// is considered stuck.
	defaultStaleAfter = 10 * time.Minute

	// defaultSweepLimit caps documents re-queued per sweep.
	defaultSweepLimit = 100

	// sweepTimeout bounds one sweep run.
	sweepTimeout = 30 * time.Second
)

// StaleLister finds documents stuck in pending.
type StaleLister interface {
	ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*domain.Document, error)
}

// Enqueuer hands a document id back to the analysis queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, documentID string) (string, error)
}

// Config holds reconciler settings. Zero values take defaults.
type Config struct {
	Schedule   string
	StaleAfter time.Duration
	SweepLimit int
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = defaultStaleAfter
	}
	if c.SweepLimit <= 0 {
		c.SweepLimit = defaultSweepLimit
	}
	return c
}

// Reconciler owns the cron schedule and the sweep.
type Reconciler struct {
	lister   StaleLister
	enqueuer Enqueuer
	log      logger.Interface
	cfg      Config
	cron     *cron.Cron
}

// New creates a Reconciler.
func New(lister StaleLister, enqueuer Enqueuer, log logger.Interface, cfg Config) *Reconciler {
	return &Reconciler{
		lister:   lister,
		enqueuer: enqueuer,
		log:      log.WithComponent("reconciler"),
		cfg:      cfg.WithDefaults(),
		cron:     cron.New(),
	}
}

// Start registers the sweep and starts the cron scheduler.
func (r *Reconciler) Start() error {
	_, err := r.cron.AddFunc(r.cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if sweepErr := r.Sweep(ctx); sweepErr != nil {
			r.log.Error("reconcile sweep failed", "error", sweepErr.Error())
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reconcile sweep: %w", err)
	}

	r.cron.Start()
	r.log.Info("reconciler started", "schedule", r.cfg.Schedule)

	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (r *Reconciler) Stop() {
	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	r.log.Info("reconciler stopped")
}

// Sweep re-queues every stale pending document once.
func (r *Reconciler) Sweep(ctx context.Context) error {
	docs, err := r.lister.ListStalePending(ctx, r.cfg.StaleAfter, r.cfg.SweepLimit)
	if err != nil {
		return fmt.Errorf("list stale pending documents: %w", err)
	}

	if len(docs) == 0 {
		return nil
	}

	requeued := 0
	for _, doc := range docs {
		if _, enqueueErr := r.enqueuer.Enqueue(ctx, doc.ID); enqueueErr != nil {
			r.log.Warn("failed to re-queue document",
				"document_id", doc.ID,
				"error", enqueueErr.Error(),
			)
			continue
		}
		requeued++
	}

	r.log.Info("reconcile sweep finished",
		"stale", len(docs),
		"requeued", requeued,
	)

	return nil
}
