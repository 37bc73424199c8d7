// Package store owns the expense records and the budget for one session.
//
// Every mutation is validated, applied and then saved through the Persister
// before the call returns. The mutex is held across the save, so a mutation is
// only accepted once the previous one has been written.
package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
)

// Persister is the durable side of the store.
type Persister interface {
	Load(ctx context.Context) core.State
	Save(ctx context.Context, state core.State) error
	Clear(ctx context.Context) error
}

type Store struct {
	mu       sync.Mutex
	expenses []core.Expense
	budget   core.Budget
	lastID   int64

	persister Persister
	now       func() time.Time
	logger    *applog.Logger
}

type Option func(*Store)

// WithClock replaces time.Now for ID assignment.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *applog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Open builds a store initialized from the persister's current state.
func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		now:       time.Now,
		logger:    applog.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentStore)

	state := p.Load(ctx)
	s.expenses = state.Expenses
	s.budget = state.Budget
	for _, e := range s.expenses {
		s.lastID = max(s.lastID, e.ID)
	}
	s.logger.InfoContext(ctx, "Store opened",
		applog.FieldCount, len(s.expenses),
		"has_budget", !s.budget.IsEmpty())
	return s
}

// Create validates in, assigns a fresh ID and appends the expense.
func (s *Store) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.Parse()
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.nextID()
	s.expenses = append(s.expenses, e)
	s.save(ctx)

	s.logger.InfoContext(ctx, "Expense created", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithExpense(e.ID, e.Name, e.Amount.Cents, e.Category.String()).
		ToSlice()...)
	return e, nil
}

// Update replaces every editable field of the expense with the given ID.
func (s *Store) Update(ctx context.Context, id int64, in core.ExpenseInput) (core.Expense, error) {
	parsed, err := in.Parse()
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("update %d: %w", id, core.ErrNotFound)
	}
	parsed.ID = id
	s.expenses[i] = parsed
	s.save(ctx)

	s.logger.InfoContext(ctx, "Expense updated", applog.NewFields().
		WithOperation(applog.OpUpdate).
		WithExpense(parsed.ID, parsed.Name, parsed.Amount.Cents, parsed.Category.String()).
		ToSlice()...)
	return parsed, nil
}

// Delete removes the expense with the given ID. Unknown IDs are ignored.
// It reports whether something was removed.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", applog.FieldExpenseID, id)
		return false
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	s.save(ctx)

	s.logger.InfoContext(ctx, "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	return true
}

// SetBudget stores raw as-is; empty clears the budget.
func (s *Store) SetBudget(ctx context.Context, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.budget = core.Budget{Raw: raw}
	s.save(ctx)

	s.logger.InfoContext(ctx, "Budget set", applog.FieldOperation, applog.OpSetBudget, "budget", raw)
}

// Reset drops all records and the budget and erases the persisted state.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expenses = nil
	s.budget = core.Budget{}
	if err := s.persister.Clear(ctx); err != nil {
		s.logger.WarnContext(ctx, "Clearing persisted state failed, overwriting with empty state",
			applog.NewFields().WithOperation(applog.OpReset).WithError(err).ToSlice()...)
		_ = s.persister.Save(ctx, core.State{})
	}

	s.logger.InfoContext(ctx, "Store reset", applog.FieldOperation, applog.OpReset)
}

// Expenses returns a copy of the records in display order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses)
}

func (s *Store) Get(id int64) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.expenses[i], true
	}
	return core.Expense{}, false
}

func (s *Store) Budget() core.Budget {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget
}

// Snapshot returns records and budget read under one lock.
func (s *Store) Snapshot() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.State{Expenses: slices.Clone(s.expenses), Budget: s.budget}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.expenses)
}

// nextID follows the clock in milliseconds but never reuses or goes below
// the highest ID handed out so far.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.expenses, func(e core.Expense) bool { return e.ID == id })
}

// save must be called with mu held. Write failures are logged by the persister.
func (s *Store) save(ctx context.Context) {
	_ = s.persister.Save(ctx, core.State{
		Expenses: slices.Clone(s.expenses),
		Budget:   s.budget,
	})
}
