package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used for expense dates.
const DateLayout = "2006-01-02"

const (
	Food          Category = "Food"
	Travel        Category = "Travel"
	Shopping      Category = "Shopping"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
	Other         Category = "Other"

	// CategoryAll is the filter sentinel matching every category.
	// It is not a member of Categories().
	CategoryAll Category = "All"
)

type (
	Category string

	// Expense is an immutable expense record. Build it with NewExpense or
	// RestoreExpense; there are no setters.
	Expense struct {
		id       string
		amount   decimal.Decimal
		category Category
		date     string
		note     string
	}

	// ExpenseInput holds the raw fields of a candidate expense as supplied
	// by a form or an API request.
	ExpenseInput struct {
		Amount   string
		Category string
		Date     string
		Note     string
	}

	// ValidationError reports which field of a candidate expense was rejected.
	ValidationError struct {
		Field string
		Err   error
	}
)

var (
	ErrInvalidAmount   = errors.New("amount must be a number greater than zero")
	ErrMissingDate     = errors.New("date is required")
	ErrInvalidDate     = errors.New("date must be a valid YYYY-MM-DD calendar date")
	ErrInvalidCategory = errors.New("unknown category")
	ErrMissingID       = errors.New("id is required")
)

var categories = []Category{Food, Travel, Shopping, Bills, Entertainment, Other}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// Categories returns the closed set of expense categories in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// ParseCategory maps a string to a category. The filter sentinel "All" is
// not accepted.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.TrimSpace(s))
	return c, c.IsValid()
}

func (c Category) IsValid() bool {
	switch c {
	case Food, Travel, Shopping, Bills, Entertainment, Other:
		return true
	default:
		return false
	}
}

func (c Category) String() string {
	return string(c)
}

// Color is the chart color used for the category.
func (c Category) Color() string {
	switch c {
	case Food:
		return "#f97316"
	case Travel:
		return "#0ea5e9"
	case Shopping:
		return "#2563eb"
	case Bills:
		return "#dc2626"
	case Entertainment:
		return "#9333ea"
	case Other:
		return "#64748b"
	default:
		return "#cbd5e1"
	}
}

// NewExpense validates a candidate and builds a record with the given id.
// Validation is atomic: on any error no record is produced.
//
// An empty category defaults to Food, matching the entry form default.
func NewExpense(id string, in ExpenseInput) (Expense, error) {
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return Expense{}, invalid("amount", err)
	}

	category := Food
	if strings.TrimSpace(in.Category) != "" {
		c, ok := ParseCategory(in.Category)
		if !ok {
			return Expense{}, invalid("category", fmt.Errorf("%w %q", ErrInvalidCategory, in.Category))
		}
		category = c
	}

	return RestoreExpense(id, amount, category, in.Date, in.Note)
}

// RestoreExpense rebuilds a record from already-typed fields, for example
// when decoding persisted data. It enforces the same invariants as
// NewExpense.
func RestoreExpense(id string, amount decimal.Decimal, category Category, date, note string) (Expense, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Expense{}, invalid("id", ErrMissingID)
	}
	if amount.Sign() <= 0 {
		return Expense{}, invalid("amount", ErrInvalidAmount)
	}
	if !category.IsValid() {
		return Expense{}, invalid("category", fmt.Errorf("%w %q", ErrInvalidCategory, category))
	}
	date = strings.TrimSpace(date)
	if date == "" {
		return Expense{}, invalid("date", ErrMissingDate)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return Expense{}, invalid("date", ErrInvalidDate)
	}

	return Expense{
		id:       id,
		amount:   amount,
		category: category,
		date:     date,
		note:     strings.TrimSpace(note),
	}, nil
}

func (e Expense) ID() string              { return e.id }
func (e Expense) Amount() decimal.Decimal { return e.amount }
func (e Expense) Category() Category      { return e.category }
func (e Expense) Date() string            { return e.date }
func (e Expense) Note() string            { return e.note }

// Month returns the YYYY-MM part of the expense date.
func (e Expense) Month() string {
	if len(e.date) < 7 {
		return e.date
	}
	return e.date[:7]
}

// Equal compares field values. Amounts compare numerically, so 12.5 and
// 12.50 are equal.
func (e Expense) Equal(o Expense) bool {
	return e.id == o.id &&
		e.amount.Equal(o.amount) &&
		e.category == o.category &&
		e.date == o.date &&
		e.note == o.note
}

// expenseJSON is the serialized shape shared by storage and the API.
// The amount is written as a bare JSON number.
type expenseJSON struct {
	ID       string      `json:"id"`
	Amount   json.Number `json:"amount"`
	Category Category    `json:"category"`
	Date     string      `json:"date"`
	Note     string      `json:"note"`
}

func (e Expense) MarshalJSON() ([]byte, error) {
	return json.Marshal(expenseJSON{
		ID:       e.id,
		Amount:   json.Number(e.amount.String()),
		Category: e.category,
		Date:     e.date,
		Note:     e.note,
	})
}

// UnmarshalJSON decodes and validates a record.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var raw expenseJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(raw.Amount.String())
	if err != nil {
		return invalid("amount", ErrInvalidAmount)
	}
	restored, err := RestoreExpense(raw.ID, amount, raw.Category, raw.Date, raw.Note)
	if err != nil {
		return err
	}
	*e = restored
	return nil
}
