// Package worker keeps the configured Google Sheet in step with the durable
// expense state, driven by change events and a periodic full pass.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
)

// StateLoader reads the current durable state; *persistence.Adapter satisfies it.
type StateLoader interface {
	Load(ctx context.Context) core.State
}

// SyncWorker re-exports the whole expense table on every relevant change.
// Exports are serialized and events older than the last export start are
// skipped, since that export already saw their mutation.
type SyncWorker struct {
	source   StateLoader
	exporter sheets.Exporter
	logger   *applog.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastStart time.Time
	lastRef   string
}

func NewSyncWorker(source StateLoader, exporter sheets.Exporter, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &SyncWorker{
		source:   source,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentSheets),
		now:      time.Now,
	}
}

// HandleEvent is an amqp.EventHandler.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.lastStart.IsZero() && ev.Timestamp.Before(w.lastStart) {
		w.logger.DebugContext(ctx, "Skipping event already covered by last sync",
			"op", ev.Op,
			"id", ev.ID,
			"last_sync", w.lastStart)
		return nil
	}
	_, err := w.syncLocked(ctx, string(ev.Op))
	return err
}

// Sync exports the current state unconditionally.
func (w *SyncWorker) Sync(ctx context.Context) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.syncLocked(ctx, "manual")
}

// StartupSync covers whatever changed while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := w.syncLocked(ctx, "startup")
	return err
}

// RunPeriodic re-exports every interval until ctx is cancelled, as a backstop
// for lost events.
func (w *SyncWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.mu.Lock()
			if _, err := w.syncLocked(ctx, "periodic"); err != nil {
				w.logger.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
			w.mu.Unlock()
		}
	}
}

// LastRef reports the range written by the most recent successful export.
func (w *SyncWorker) LastRef() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRef
}

func (w *SyncWorker) syncLocked(ctx context.Context, reason string) (string, error) {
	start := w.now()
	state := w.source.Load(ctx)

	ref, err := w.exporter.Export(ctx, state.Expenses)
	if err != nil {
		return "", fmt.Errorf("sync %s: %w", reason, err)
	}

	w.lastStart = start
	w.lastRef = ref
	w.logger.InfoContext(ctx, "Synced expenses to sheet",
		applog.FieldOperation, applog.OpExport,
		applog.FieldCount, len(state.Expenses),
		"reason", reason,
		"ref", ref)
	return ref, nil
}
