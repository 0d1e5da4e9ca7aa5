package core

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// MonthLayout is the format of FilterState.Month.
const MonthLayout = "2006-01"

// FilterState selects the visible subset of expenses.
type FilterState struct {
	Month    string   `json:"month"`    // YYYY-MM, matched as a date prefix
	Category Category `json:"category"` // a category or CategoryAll
	Search   string   `json:"search"`   // case-insensitive note substring
}

// CurrentMonth formats now as YYYY-MM.
func CurrentMonth(now time.Time) string {
	return now.Format(MonthLayout)
}

// DefaultFilterState is the filter a session starts with: the current
// month, every category and no search text.
func DefaultFilterState(now time.Time) FilterState {
	return FilterState{
		Month:    CurrentMonth(now),
		Category: CategoryAll,
	}
}

// MatchesMonth reports whether the expense date starts with month.
//
// This is a plain prefix match, not a calendar comparison: "2024-0"
// matches every date from 2024-01 to 2024-09 and the empty string
// matches everything.
func MatchesMonth(e Expense, month string) bool {
	return strings.HasPrefix(e.date, month)
}

// MatchesCategory reports whether the expense is in category. CategoryAll
// and the empty category match everything.
func MatchesCategory(e Expense, category Category) bool {
	if category == CategoryAll || category == "" {
		return true
	}
	return e.category == category
}

// Filter returns the expenses matching every predicate of f, newest date
// first. Expenses with the same date keep their relative input order.
// The input slice is not modified.
func Filter(expenses []Expense, f FilterState) []Expense {
	// A Caser is stateful, so one is created per call.
	fold := cases.Fold()
	search := fold.String(f.Search)

	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if !MatchesMonth(e, f.Month) {
			continue
		}
		if !MatchesCategory(e, f.Category) {
			continue
		}
		if search != "" && !strings.Contains(fold.String(e.note), search) {
			continue
		}
		out = append(out, e)
	}

	// Dates are validated YYYY-MM-DD, so lexical order is chronological.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].date > out[j].date
	})
	return out
}
