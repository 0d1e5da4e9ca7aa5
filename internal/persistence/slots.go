package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"wallet/internal/core"
	"wallet/internal/log"
)

// Slots implements Collaborator on top of a KV backend.
type Slots struct {
	kv     KV
	logger *log.Logger
}

var _ Collaborator = (*Slots)(nil)

func NewSlots(kv KV, logger *log.Logger) *Slots {
	if logger == nil {
		logger = log.Discard()
	}
	return &Slots{kv: kv, logger: logger.WithComponent(log.ComponentPersistence)}
}

// LoadExpenseList returns the stored list, or an empty list when the slot
// is absent, unreadable or not a JSON array. Individual records that fail
// validation are dropped.
func (s *Slots) LoadExpenseList(ctx context.Context) []core.Expense {
	raw, found, err := s.kv.Get(ctx, ExpensesKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load expenses", log.NewFields().
			WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return []core.Expense{}
	}
	if !found {
		return []core.Expense{}
	}

	expenses, dropped, err := DecodeExpenses([]byte(raw))
	if err != nil {
		s.logger.ErrorContext(ctx, "Stored expenses are malformed, starting empty",
			log.FieldOperation, log.OpDecode, log.FieldError, err.Error())
		return []core.Expense{}
	}
	if dropped > 0 {
		s.logger.WarnContext(ctx, "Dropped invalid stored expenses",
			log.FieldOperation, log.OpDecode, "dropped", dropped)
	}

	s.logger.DebugContext(ctx, "Expenses loaded", log.FieldCount, len(expenses))
	return expenses
}

// SaveExpenseList writes the full list. Failures are logged only.
func (s *Slots) SaveExpenseList(ctx context.Context, expenses []core.Expense) {
	data, err := EncodeExpenses(expenses)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode expenses", log.NewFields().
			WithOperation(log.OpSave).WithError(err).ToSlice()...)
		return
	}
	if err := s.kv.Set(ctx, ExpensesKey, string(data)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save expenses", log.NewFields().
			WithOperation(log.OpSave).WithError(err).ToSlice()...)
		return
	}
	s.logger.DebugContext(ctx, "Expenses saved", log.FieldCount, len(expenses))
}

// LoadCurrencyCode returns the stored code or core.DefaultCurrencyCode.
// The code is returned as stored; validating it is the store's job.
func (s *Slots) LoadCurrencyCode(ctx context.Context) string {
	code, found, err := s.kv.Get(ctx, CurrencyKey)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to load currency", log.NewFields().
			WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		return core.DefaultCurrencyCode
	}
	code = strings.TrimSpace(code)
	if !found || code == "" {
		return core.DefaultCurrencyCode
	}
	return code
}

func (s *Slots) SaveCurrencyCode(ctx context.Context, code string) {
	if err := s.kv.Set(ctx, CurrencyKey, code); err != nil {
		s.logger.ErrorContext(ctx, "Failed to save currency", log.NewFields().
			WithOperation(log.OpSave).WithError(err).ToSlice()...)
	}
}

// EncodeExpenses serializes a list as a JSON array of
// {id, amount, category, date, note} records. A nil list encodes as [].
func EncodeExpenses(expenses []core.Expense) ([]byte, error) {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return json.Marshal(expenses)
}

// DecodeExpenses parses a JSON array of expenses. Records that are not
// valid expenses are skipped and counted in dropped; a payload that is not
// an array is an error. JSON null decodes to an empty list.
func DecodeExpenses(data []byte) (expenses []core.Expense, dropped int, err error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(data), &raws); err != nil {
		return nil, 0, fmt.Errorf("decode expense list: %w", err)
	}

	expenses = make([]core.Expense, 0, len(raws))
	for _, raw := range raws {
		var e core.Expense
		if err := json.Unmarshal(raw, &e); err != nil {
			dropped++
			continue
		}
		expenses = append(expenses, e)
	}
	return expenses, dropped, nil
}
