package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/persistence"
)

// Snapshot is the store state handed to listeners after a mutation.
type Snapshot struct {
	Expenses []core.Expense
	Currency core.Currency
}

// ExpenseStore owns the authoritative expense list and the selected
// currency. Every mutation is followed by a synchronous, best-effort save
// through the persistence collaborator.
type ExpenseStore struct {
	mu        sync.RWMutex
	expenses  []core.Expense // newest-added first
	currency  core.Currency
	persist   persistence.Collaborator
	newID     func() string
	logger    *log.Logger
	listeners []func(Snapshot)
}

// Option configures an ExpenseStore.
type Option func(*ExpenseStore)

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *ExpenseStore) { s.newID = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseStore) { s.logger = l }
}

// NewExpenseStore loads the persisted list and currency once and returns a
// ready store.
func NewExpenseStore(ctx context.Context, p persistence.Collaborator, opts ...Option) *ExpenseStore {
	s := &ExpenseStore{
		persist: p,
		newID:   uuid.NewString,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentStore)

	s.expenses = p.LoadExpenseList(ctx)
	if s.expenses == nil {
		s.expenses = []core.Expense{}
	}
	code := p.LoadCurrencyCode(ctx)
	s.currency = core.CurrencyOrDefault(code)
	if s.currency.Code != code {
		s.logger.WarnContext(ctx, "Unknown stored currency, using default",
			log.FieldCurrency, code, "fallback", s.currency.Code)
	}

	s.logger.InfoContext(ctx, "Expense store loaded",
		log.FieldCount, len(s.expenses), log.FieldCurrency, s.currency.Code)
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Listeners run synchronously, after the store lock is released.
func (s *ExpenseStore) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// ListAll returns a copy of every expense, newest-added first.
func (s *ExpenseStore) ListAll() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneExpenses(s.expenses)
}

// Currency returns the selected display currency.
func (s *ExpenseStore) Currency() core.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currency
}

// Add validates in, assigns a fresh id and prepends the new expense.
// On a *core.ValidationError the store is unchanged.
func (s *ExpenseStore) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := core.NewExpense(s.newID(), in)
	if err != nil {
		s.logger.DebugContext(ctx, "Rejected expense",
			log.FieldOperation, log.OpValidate, log.FieldError, err.Error())
		return core.Expense{}, err
	}

	s.mu.Lock()
	next := make([]core.Expense, 0, len(s.expenses)+1)
	next = append(next, e)
	s.expenses = append(next, s.expenses...)
	s.persist.SaveExpenseList(ctx, s.expenses)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Expense created", log.NewFields().
		WithExpense(e.ID(), e.Amount(), e.Category().String(), e.Date()).
		WithOperation(log.OpCreate).ToSlice()...)
	s.notify(snap)
	return e, nil
}

// Delete removes the first expense with id. An unknown id is not an error;
// the list is saved either way.
func (s *ExpenseStore) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	removed := false
	for i, e := range s.expenses {
		if e.ID() == id {
			next := make([]core.Expense, 0, len(s.expenses)-1)
			next = append(next, s.expenses[:i]...)
			s.expenses = append(next, s.expenses[i+1:]...)
			removed = true
			break
		}
	}
	s.persist.SaveExpenseList(ctx, s.expenses)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if removed {
		s.logger.InfoContext(ctx, "Expense deleted", log.FieldExpenseID, id, log.FieldOperation, log.OpDelete)
	} else {
		s.logger.DebugContext(ctx, "Delete of unknown expense ignored", log.FieldExpenseID, id)
	}
	s.notify(snap)
}

// SetCurrency selects the display currency. Unknown codes fall back to the
// default currency. The effective currency is returned and saved.
func (s *ExpenseStore) SetCurrency(ctx context.Context, code string) core.Currency {
	c := core.CurrencyOrDefault(code)
	if c.Code != code {
		s.logger.DebugContext(ctx, "Unknown currency, using default", log.FieldCurrency, code)
	}

	s.mu.Lock()
	s.currency = c
	s.persist.SaveCurrencyCode(ctx, c.Code)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return c
}

// snapshotLocked copies the state; the caller holds mu.
func (s *ExpenseStore) snapshotLocked() Snapshot {
	return Snapshot{
		Expenses: cloneExpenses(s.expenses),
		Currency: s.currency,
	}
}

func (s *ExpenseStore) notify(snap Snapshot) {
	s.mu.RLock()
	listeners := make([]func(Snapshot), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneExpenses(in []core.Expense) []core.Expense {
	out := make([]core.Expense, len(in))
	copy(out, in)
	return out
}
