package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/kv/memory"
	"expensetracker/internal/storage"
)

func sampleState() core.State {
	return core.State{
		Expenses: []core.Expense{
			{ID: 1, Name: "Coffee", Amount: core.Money{Cents: 450}, Category: core.Food, Notes: "oat"},
			{ID: 2, Name: "Bus", Amount: core.Money{Cents: 200}, Category: core.Transport},
		},
		Budget: core.Budget{Raw: "100"},
	}
}

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Put(context.Context, map[string]string) error      { return f.err }
func (f failingKV) Clear(context.Context) error                       { return f.err }
func (f failingKV) Close() error                                      { return nil }

func TestLoad_EmptyMedium(t *testing.T) {
	a := New(memory.New(), nil)
	state := a.Load(context.Background())
	assert.Empty(t, state.Expenses)
	assert.True(t, state.Budget.IsEmpty())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := New(memory.New(), nil)

	require.NoError(t, a.Save(ctx, sampleState()))
	assert.Equal(t, sampleState(), a.Load(ctx))
}

func TestSaveLoad_RoundTripSQLite(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "state.db"), "expense-tracker")
	require.NoError(t, err)
	defer repo.Close()

	a := New(repo, nil)
	require.NoError(t, a.Save(ctx, sampleState()))
	assert.Equal(t, sampleState(), a.Load(ctx))

	require.NoError(t, a.Clear(ctx))
	assert.True(t, a.Load(ctx).IsEmpty())
}

func TestLoad_CorruptPayloadsDegradeToEmpty(t *testing.T) {
	cases := map[string]map[string]string{
		"not json":          {KeyExpenses: "{oops"},
		"unknown category":  {KeyExpenses: `[{"id":1,"name":"x","amount_cents":1,"category":"Pets"}]`},
		"negative amount":   {KeyExpenses: `[{"id":1,"name":"x","amount_cents":-5,"category":"Food"}]`},
		"empty name":        {KeyExpenses: `[{"id":1,"name":" ","amount_cents":5,"category":"Food"}]`},
		"duplicate ids":     {KeyExpenses: `[{"id":1,"name":"a","amount_cents":5,"category":"Food"},{"id":1,"name":"b","amount_cents":5,"category":"Food"}]`},
		"budget not string": {KeyExpenses: `[]`, KeyBudget: `{}`},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			a := New(memory.NewWithEntries(entries), nil)
			assert.True(t, a.Load(context.Background()).IsEmpty())
		})
	}
}

func TestLoad_UnavailableMediumDegradesToEmpty(t *testing.T) {
	a := New(failingKV{err: errors.New("disk gone")}, nil)
	assert.True(t, a.Load(context.Background()).IsEmpty())
}

func TestSave_FailureIsReturnedNotFatal(t *testing.T) {
	a := New(failingKV{err: errors.New("read-only")}, nil)
	err := a.Save(context.Background(), sampleState())
	assert.Error(t, err)
}

func TestEncode_Format(t *testing.T) {
	entries, err := Encode(core.State{
		Expenses: []core.Expense{{ID: 7, Name: "Rent", Amount: core.Money{Cents: 90000}, Category: core.Rent}},
		Budget:   core.Budget{Raw: "abc"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"name":"Rent","amount_cents":90000,"category":"Rent","notes":""}]`, entries[KeyExpenses])
	assert.Equal(t, `"abc"`, entries[KeyBudget])
}
