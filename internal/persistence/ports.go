// Package persistence holds the durable storage contract of the expense
// store. Slots serializes the expense list and the currency code into two
// key-value entries and turns every storage failure into a log record.
package persistence

import (
	"context"

	"wallet/internal/core"
)

// Slot keys, shared with the browser storage format.
const (
	ExpensesKey = "buckwheat_expenses"
	CurrencyKey = "buckwheat_currency"
)

// Ports for outbound adapters.
type (
	// KV is a durable string key-value store.
	KV interface {
		// Get returns the value stored under key; found is false when the
		// key was never written.
		Get(ctx context.Context, key string) (value string, found bool, err error)
		Set(ctx context.Context, key, value string) error
	}

	// Collaborator is what the expense store needs from persistence.
	// Implementations never return errors: failures are logged and reads
	// fall back to an empty list or the default currency.
	Collaborator interface {
		LoadExpenseList(ctx context.Context) []core.Expense
		SaveExpenseList(ctx context.Context, expenses []core.Expense)
		LoadCurrencyCode(ctx context.Context) string
		SaveCurrencyCode(ctx context.Context, code string)
	}
)
