package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Food Category = iota + 1
	Rent
	Transport
	Entertainment
	Shopping
	Other
)

type (
	// Category is one label of a closed set. The zero value is not a category.
	Category uint8

	Expense struct {
		ID       int64
		Name     string
		Amount   Money
		Category Category
		Notes    string
	}

	// ExpenseInput carries the raw values submitted by a caller before parsing.
	ExpenseInput struct {
		Name     string
		Amount   string
		Category string
		Notes    string
	}

	// Budget is an informational ceiling stored exactly as entered.
	Budget struct {
		Raw string
	}

	// State is everything the store owns: records in display order plus the budget.
	State struct {
		Expenses []Expense
		Budget   Budget
	}

	// ValidationError reports which field of an input was rejected.
	ValidationError struct {
		Field string
		Err   error
	}
)

var (
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
	ErrNotFound        = errors.New("expense not found")
)

var categoryNames = [...]string{
	Food:          "Food",
	Rent:          "Rent",
	Transport:     "Transport",
	Entertainment: "Entertainment",
	Shopping:      "Shopping",
	Other:         "Other",
}

// Categories returns every category in declaration order.
func Categories() []Category {
	return []Category{Food, Rent, Transport, Entertainment, Shopping, Other}
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func (c Category) Valid() bool {
	return c >= Food && c <= Other
}

// ParseCategory matches a display name, ignoring case and surrounding spaces.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range Categories() {
		if strings.EqualFold(s, categoryNames[c]) {
			return c, nil
		}
	}
	return 0, ErrInvalidCategory
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, ErrInvalidCategory
	}
	return []byte(categoryNames[c]), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Parse turns raw input into an Expense without an ID.
func (in ExpenseInput) Parse() (Expense, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Expense{}, &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, &ValidationError{Field: "amount", Err: err}
	}
	category, err := ParseCategory(in.Category)
	if err != nil {
		return Expense{}, &ValidationError{Field: "category", Err: err}
	}
	return Expense{
		Name:     name,
		Amount:   amount,
		Category: category,
		Notes:    in.Notes,
	}, nil
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrEmptyName}
	}
	if err := e.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if !e.Category.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	return nil
}

func (b Budget) IsEmpty() bool {
	return strings.TrimSpace(b.Raw) == ""
}

// Amount returns the budget as money when the raw value is numeric.
func (b Budget) Amount() (Money, bool) {
	if b.IsEmpty() {
		return Money{}, false
	}
	m, err := ParseDecimal(b.Raw)
	if err != nil {
		return Money{}, false
	}
	return m, true
}

func (s State) IsEmpty() bool {
	return len(s.Expenses) == 0 && s.Budget.Raw == ""
}
