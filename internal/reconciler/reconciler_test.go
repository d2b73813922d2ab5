package reconciler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/docify/internal/domain"
	"github.com/jonesrussell/docify/internal/logger"
	"github.com/jonesrussell/docify/internal/reconciler"
)

type fakeLister struct {
	docs      []*domain.Document
	err       error
	olderThan time.Duration
	limit     int
}

func (f *fakeLister) ListStalePending(_ context.Context, olderThan time.Duration, limit int) ([]*domain.Document, error) {
	f.olderThan = olderThan
	f.limit = limit
	return f.docs, f.err
}

type fakeEnqueuer struct {
	ids    []string
	failOn string
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, documentID string) (string, error) {
	if documentID == f.failOn {
		return "", errors.New("redis unavailable")
	}
	f.ids = append(f.ids, documentID)
	return "1-0", nil
}

func TestSweepRequeuesStaleDocuments(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []*domain.Document{
		{ID: "doc-1", Status: domain.StatusPending},
		{ID: "doc-2", Status: domain.StatusPending},
	}}
	enqueuer := &fakeEnqueuer{}

	r := reconciler.New(lister, enqueuer, logger.NewNoop(), reconciler.Config{
		StaleAfter: 5 * time.Minute,
		SweepLimit: 10,
	})

	require.NoError(t, r.Sweep(context.Background()))

	assert.Equal(t, []string{"doc-1", "doc-2"}, enqueuer.ids)
	assert.Equal(t, 5*time.Minute, lister.olderThan)
	assert.Equal(t, 10, lister.limit)
}

func TestSweepContinuesPastEnqueueFailures(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{docs: []*domain.Document{
		{ID: "doc-1"},
		{ID: "doc-2"},
		{ID: "doc-3"},
	}}
	enqueuer := &fakeEnqueuer{failOn: "doc-2"}

	r := reconciler.New(lister, enqueuer, logger.NewNoop(), reconciler.Config{})

	require.NoError(t, r.Sweep(context.Background()))
	assert.Equal(t, []string{"doc-1", "doc-3"}, enqueuer.ids)
}

func TestSweepPropagatesListError(t *testing.T) {
	t.Parallel()

	lister := &fakeLister{err: errors.New("db down")}
	r := reconciler.New(lister, &fakeEnqueuer{}, logger.NewNoop(), reconciler.Config{})

	assert.Error(t, r.Sweep(context.Background()))
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := reconciler.Config{}.WithDefaults()
	assert.Equal(t, "@every 1m", cfg.Schedule)
	assert.Equal(t, 10*time.Minute, cfg.StaleAfter)
	assert.Equal(t, 100, cfg.SweepLimit)
}
