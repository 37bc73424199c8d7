// Package summary derives totals from a record set. Everything here is a pure
// function of its input; nothing is cached between calls.
package summary

import "expensetracker/internal/core"

// Total sums every amount. An empty set totals zero.
func Total(records []core.Expense) core.Money {
	var total core.Money
	for _, e := range records {
		total = total.Add(e.Amount)
	}
	return total
}

// ByCategory sums amounts per category in the order categories first appear.
// Categories without records are absent.
func ByCategory(records []core.Expense) []core.CategoryAmount {
	index := map[core.Category]int{}
	var out []core.CategoryAmount
	for _, e := range records {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, core.CategoryAmount{Category: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// ByCategoryMap is ByCategory keyed by category.
func ByCategoryMap(records []core.Expense) map[core.Category]core.Money {
	out := map[core.Category]core.Money{}
	for _, ca := range ByCategory(records) {
		out[ca.Category] = ca.Amount
	}
	return out
}

// Overview combines totals with the informational budget.
func Overview(records []core.Expense, budget core.Budget) core.Overview {
	ov := core.Overview{
		Count:      len(records),
		Total:      Total(records),
		ByCategory: ByCategory(records),
		Budget:     budget,
	}
	if limit, ok := budget.Amount(); ok {
		ov.HasBudget = true
		ov.Remaining = limit.Sub(ov.Total)
		ov.OverBudget = ov.Total.Cents > limit.Cents
	}
	return ov
}
