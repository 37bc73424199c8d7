// Package filter narrows a record set with an ordered list of predicates.
package filter

import (
	"strings"

	"expensetracker/internal/core"
)

type Predicate func(core.Expense) bool

// MinAmount keeps records whose amount is at least threshold (boundary included).
func MinAmount(threshold core.Money) Predicate {
	return func(e core.Expense) bool { return e.Amount.Cents >= threshold.Cents }
}

func InCategory(c core.Category) Predicate {
	return func(e core.Expense) bool { return e.Category == c }
}

func none(core.Expense) bool { return false }

// Apply returns the records accepted by every predicate, in input order.
// With no predicates it returns a copy of records.
func Apply(records []core.Expense, preds ...Predicate) []core.Expense {
	out := make([]core.Expense, 0, len(records))
next:
	for _, e := range records {
		for _, p := range preds {
			if !p(e) {
				continue next
			}
		}
		out = append(out, e)
	}
	return out
}

// Criteria is the optional filter state a caller submits.
type Criteria struct {
	MinAmount *core.Money
	// Category is the raw selection; empty means any.
	Category string
}

// ParseCriteria builds criteria from raw text. An empty or non-numeric
// minimum means no minimum; negative minimums are kept as given.
func ParseCriteria(minAmount, category string) Criteria {
	c := Criteria{Category: strings.TrimSpace(category)}
	if m, err := core.ParseDecimal(minAmount); err == nil {
		c.MinAmount = &m
	}
	return c
}

// Predicates lists the active predicates, minimum first.
func (c Criteria) Predicates() []Predicate {
	var preds []Predicate
	if c.MinAmount != nil {
		preds = append(preds, MinAmount(*c.MinAmount))
	}
	if c.Category != "" {
		cat, err := core.ParseCategory(c.Category)
		if err != nil {
			// Nothing can be in a category outside the set.
			preds = append(preds, none)
		} else {
			preds = append(preds, InCategory(cat))
		}
	}
	return preds
}

func (c Criteria) Apply(records []core.Expense) []core.Expense {
	return Apply(records, c.Predicates()...)
}

// View is a filtered listing. HasRecords tells "nothing matched" apart from
// "nothing recorded yet".
type View struct {
	Items      []core.Expense
	HasRecords bool
}

func (c Criteria) View(records []core.Expense) View {
	return View{
		Items:      c.Apply(records),
		HasRecords: len(records) > 0,
	}
}
