package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// Overview is the derived dashboard view of the whole store.
type Overview struct {
	Count      int
	Total      Money
	ByCategory []CategoryAmount
	Budget     Budget
	// Remaining and OverBudget are meaningful only when HasBudget is set.
	HasBudget  bool
	Remaining  Money
	OverBudget bool
}
