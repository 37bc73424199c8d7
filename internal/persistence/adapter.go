// Package persistence saves and restores store state through a kv.Store.
//
// The medium is a best-effort local cache: a missing, unreachable or corrupt
// medium yields the empty initial state, and failed writes are logged and
// skipped. The in-memory state stays authoritative for the session.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/kv"
	applog "expensetracker/internal/log"
)

const (
	KeyExpenses = "expenses"
	KeyBudget   = "budget"
)

var ErrCorrupt = errors.New("corrupt persisted state")

type Adapter struct {
	kv     kv.Store
	logger *applog.Logger
}

func New(store kv.Store, logger *applog.Logger) *Adapter {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Adapter{
		kv:     store,
		logger: logger.WithComponent(applog.ComponentPersistence),
	}
}

type record struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	AmountCents int64         `json:"amount_cents"`
	Category    core.Category `json:"category"`
	Notes       string        `json:"notes"`
}

// Load reads the persisted state, falling back to the empty state on any problem.
func (a *Adapter) Load(ctx context.Context) core.State {
	state, err := a.load(ctx)
	if err != nil {
		a.logger.WarnContext(ctx, "Persisted state unavailable, starting empty",
			applog.NewFields().WithOperation(applog.OpLoad).WithError(err).ToSlice()...)
		return core.State{}
	}
	a.logger.DebugContext(ctx, "Persisted state loaded",
		applog.FieldCount, len(state.Expenses))
	return state
}

func (a *Adapter) load(ctx context.Context) (core.State, error) {
	var state core.State

	rawExpenses, ok, err := a.kv.Get(ctx, KeyExpenses)
	if err != nil {
		return core.State{}, fmt.Errorf("read %s: %w", KeyExpenses, err)
	}
	if ok {
		state.Expenses, err = decodeExpenses(rawExpenses)
		if err != nil {
			return core.State{}, err
		}
	}

	rawBudget, ok, err := a.kv.Get(ctx, KeyBudget)
	if err != nil {
		return core.State{}, fmt.Errorf("read %s: %w", KeyBudget, err)
	}
	if ok {
		if err := json.Unmarshal([]byte(rawBudget), &state.Budget.Raw); err != nil {
			return core.State{}, fmt.Errorf("%w: budget: %v", ErrCorrupt, err)
		}
	}

	return state, nil
}

// Save writes records and budget together. A failure is logged and returned
// for callers that care; the store does not propagate it.
func (a *Adapter) Save(ctx context.Context, state core.State) error {
	entries, err := Encode(state)
	if err != nil {
		a.logger.WarnContext(ctx, "Skipping state write",
			applog.NewFields().WithOperation(applog.OpSave).WithError(err).ToSlice()...)
		return err
	}
	if err := a.kv.Put(ctx, entries); err != nil {
		a.logger.WarnContext(ctx, "Skipping state write",
			applog.NewFields().WithOperation(applog.OpSave).WithError(err).ToSlice()...)
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Clear erases every persisted key of this system.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.kv.Clear(ctx); err != nil {
		a.logger.WarnContext(ctx, "Failed to erase persisted state",
			applog.NewFields().WithOperation(applog.OpClear).WithError(err).ToSlice()...)
		return fmt.Errorf("clear state: %w", err)
	}
	a.logger.InfoContext(ctx, "Persisted state erased", applog.FieldOperation, applog.OpClear)
	return nil
}

// Encode renders the state as the two persisted key values.
func Encode(state core.State) (map[string]string, error) {
	records := make([]record, len(state.Expenses))
	for i, e := range state.Expenses {
		records[i] = record{
			ID:          e.ID,
			Name:        e.Name,
			AmountCents: e.Amount.Cents,
			Category:    e.Category,
			Notes:       e.Notes,
		}
	}
	expenses, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode expenses: %w", err)
	}
	budget, err := json.Marshal(state.Budget.Raw)
	if err != nil {
		return nil, fmt.Errorf("encode budget: %w", err)
	}
	return map[string]string{
		KeyExpenses: string(expenses),
		KeyBudget:   string(budget),
	}, nil
}

func decodeExpenses(raw string) ([]core.Expense, error) {
	var records []record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: expenses: %v", ErrCorrupt, err)
	}

	seen := make(map[int64]struct{}, len(records))
	expenses := make([]core.Expense, 0, len(records))
	for _, r := range records {
		e := core.Expense{
			ID:       r.ID,
			Name:     r.Name,
			Amount:   core.Money{Cents: r.AmountCents},
			Category: r.Category,
			Notes:    r.Notes,
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: expense %d: %v", ErrCorrupt, r.ID, err)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrCorrupt, r.ID)
		}
		seen[r.ID] = struct{}{}
		expenses = append(expenses, e)
	}
	return expenses, nil
}
