package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/filter"
	"expensetracker/internal/kv/memory"
	"expensetracker/internal/persistence"
	"expensetracker/internal/store"
)

type publishedEvent struct {
	op amqp.EventOp
	id int64
}

type fakePublisher struct {
	events []publishedEvent
	err    error
	closed bool
}

func (f *fakePublisher) PublishExpenseEvent(_ context.Context, op amqp.EventOp, id int64) error {
	f.events = append(f.events, publishedEvent{op, id})
	return f.err
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type fakeExporter struct {
	got []core.Expense
	err error
}

func (f *fakeExporter) Export(_ context.Context, records []core.Expense) (string, error) {
	f.got = records
	return "Expenses!A1:C3", f.err
}

func newService(t *testing.T, opts ...Option) *ExpenseService {
	t.Helper()
	st := store.Open(context.Background(), persistence.New(memory.New(), nil))
	return NewExpenseService(st, opts...)
}

func seed(t *testing.T, s *ExpenseService) (core.Expense, core.Expense) {
	t.Helper()
	ctx := context.Background()
	a, err := s.CreateExpense(ctx, core.ExpenseInput{Name: "Coffee", Amount: "4.50", Category: "Food"})
	require.NoError(t, err)
	b, err := s.CreateExpense(ctx, core.ExpenseInput{Name: "Bus", Amount: "2.00", Category: "Transport"})
	require.NoError(t, err)
	return a, b
}

func TestExpenseService_Scenario(t *testing.T) {
	s := newService(t)
	coffee, _ := seed(t, s)

	ov := s.Overview()
	assert.Equal(t, int64(650), ov.Total.Cents)
	assert.Equal(t, []core.CategoryAmount{
		{Category: core.Food, Amount: core.Money{Cents: 450}},
		{Category: core.Transport, Amount: core.Money{Cents: 200}},
	}, ov.ByCategory)

	view := s.List(filter.ParseCriteria("3", ""))
	assert.Equal(t, []core.Expense{coffee}, view.Items)

	s.DeleteExpense(context.Background(), 424242)
	assert.Equal(t, int64(650), s.Overview().Total.Cents)

	assert.Equal(t, "Name,Amount,Category\nCoffee,4.5,Food\nBus,2,Transport", s.CSV())
}

func TestExpenseService_PublishesOnMutations(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(t, WithEvents(pub))
	ctx := context.Background()

	a, _ := seed(t, s)
	_, err := s.UpdateExpense(ctx, a.ID, core.ExpenseInput{Name: "Tea", Amount: "3", Category: "Food"})
	require.NoError(t, err)
	s.DeleteExpense(ctx, a.ID)
	s.DeleteExpense(ctx, a.ID) // already gone, no event
	s.SetBudget(ctx, "100")
	s.Reset(ctx)

	ops := []amqp.EventOp{}
	for _, e := range pub.events {
		ops = append(ops, e.op)
	}
	assert.Equal(t, []amqp.EventOp{
		amqp.OpCreated, amqp.OpCreated, amqp.OpUpdated, amqp.OpDeleted, amqp.OpBudgetSet, amqp.OpReset,
	}, ops)

	require.NoError(t, s.Close())
	assert.True(t, pub.closed)
}

func TestExpenseService_NoEventOnFailedMutation(t *testing.T) {
	pub := &fakePublisher{}
	s := newService(t, WithEvents(pub))

	_, err := s.CreateExpense(context.Background(), core.ExpenseInput{Name: "", Amount: "1", Category: "Food"})
	assert.True(t, core.IsValidation(err))
	_, err = s.UpdateExpense(context.Background(), 1, core.ExpenseInput{Name: "x", Amount: "1", Category: "Food"})
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.Empty(t, pub.events)
}

func TestExpenseService_PublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	s := newService(t, WithEvents(pub))

	e, err := s.CreateExpense(context.Background(), core.ExpenseInput{Name: "Coffee", Amount: "1", Category: "Food"})
	require.NoError(t, err)
	_, ok := s.Get(e.ID)
	assert.True(t, ok)
}

func TestExpenseService_ExportToSheet(t *testing.T) {
	s := newService(t)
	_, err := s.ExportToSheet(context.Background())
	assert.ErrorIs(t, err, ErrSheetsDisabled)
	assert.False(t, s.SheetsEnabled())

	exp := &fakeExporter{}
	s = newService(t, WithSheets(exp))
	seed(t, s)
	ref, err := s.ExportToSheet(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Expenses!A1:C3", ref)
	assert.Len(t, exp.got, 2)

	exp.err = errors.New("quota")
	_, err = s.ExportToSheet(context.Background())
	assert.Error(t, err)
}

func TestExpenseService_CloseWithoutPublisher(t *testing.T) {
	assert.NoError(t, newService(t).Close())
}
