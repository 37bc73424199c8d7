package services

import (
	"context"
	"errors"
	"fmt"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/export"
	"expensetracker/internal/filter"
	applog "expensetracker/internal/log"
	"expensetracker/internal/sheets"
	"expensetracker/internal/store"
	"expensetracker/internal/summary"
)

var ErrSheetsDisabled = errors.New("sheets export not configured")

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, op amqp.EventOp, id int64) error
	Close() error
}

// ExpenseService is the entry point the UI shell talks to. Store mutations are
// persisted by the store itself; the service adds change events and exports.
type ExpenseService struct {
	store  *store.Store
	events EventPublisher
	sheets sheets.Exporter
	logger *applog.Logger
}

type Option func(*ExpenseService)

func WithEvents(p EventPublisher) Option {
	return func(s *ExpenseService) { s.events = p }
}

func WithSheets(e sheets.Exporter) Option {
	return func(s *ExpenseService) { s.sheets = e }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l }
}

func NewExpenseService(st *store.Store, opts ...Option) *ExpenseService {
	s := &ExpenseService{store: st, logger: applog.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ExpenseService) CreateExpense(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.Create(ctx, in)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.OpCreated, e.ID)
	return e, nil
}

func (s *ExpenseService) UpdateExpense(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.Update(ctx, id, in)
	if err != nil {
		return core.Expense{}, err
	}
	s.publish(ctx, amqp.OpUpdated, e.ID)
	return e, nil
}

// DeleteExpense never fails; deleting an unknown ID does nothing.
func (s *ExpenseService) DeleteExpense(ctx context.Context, id int64) {
	if s.store.Delete(ctx, id) {
		s.publish(ctx, amqp.OpDeleted, id)
	}
}

func (s *ExpenseService) SetBudget(ctx context.Context, raw string) {
	s.store.SetBudget(ctx, raw)
	s.publish(ctx, amqp.OpBudgetSet, 0)
}

// Reset wipes everything. Callers must have confirmed with the user first.
func (s *ExpenseService) Reset(ctx context.Context) {
	s.store.Reset(ctx)
	s.publish(ctx, amqp.OpReset, 0)
}

func (s *ExpenseService) Get(id int64) (core.Expense, bool) {
	return s.store.Get(id)
}

func (s *ExpenseService) List(c filter.Criteria) filter.View {
	return c.View(s.store.Expenses())
}

func (s *ExpenseService) Overview() core.Overview {
	state := s.store.Snapshot()
	return summary.Overview(state.Expenses, state.Budget)
}

func (s *ExpenseService) CSV() string {
	return export.ToCSV(s.store.Expenses())
}

func (s *ExpenseService) SheetsEnabled() bool {
	return s.sheets != nil
}

func (s *ExpenseService) ExportToSheet(ctx context.Context) (string, error) {
	if s.sheets == nil {
		return "", ErrSheetsDisabled
	}
	ref, err := s.sheets.Export(ctx, s.store.Expenses())
	if err != nil {
		s.logger.WithComponent(applog.ComponentSheets).ErrorContext(ctx, "Sheets export failed",
			applog.NewFields().WithOperation(applog.OpExport).WithError(err).ToSlice()...)
		return "", fmt.Errorf("export to sheet: %w", err)
	}
	return ref, nil
}

func (s *ExpenseService) publish(ctx context.Context, op amqp.EventOp, id int64) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishExpenseEvent(ctx, op, id); err != nil {
		s.logger.WithComponent(applog.ComponentAMQP).WarnContext(ctx, "Failed to publish expense event",
			applog.NewFields().
				WithOperation(applog.OpPublish).
				WithError(err).
				ToSlice()...)
	}
}

// Close closes the event publisher, if any.
func (s *ExpenseService) Close() error {
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			return fmt.Errorf("close expense service: amqp: %w", err)
		}
	}
	return nil
}
