package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"wallet/internal/persistence"
)

// Store is an in-process KV backend. Data lives as long as the process.
type Store struct {
	mu    sync.Mutex
	slots map[string]string

	// failWith, when set, is returned by every call. Tests use it to
	// exercise the best-effort persistence path.
	failWith error
}

var _ persistence.KV = (*Store)(nil)

func New() *Store {
	return &Store{slots: make(map[string]string)}
}

// NewFromFiles seeds the slots from base/expenses.json and base/currency.txt
// when they exist. Missing files leave the slot empty.
func NewFromFiles(base string) *Store {
	s := New()
	if data, err := os.ReadFile(filepath.Join(base, "expenses.json")); err == nil {
		s.slots[persistence.ExpensesKey] = string(data)
	}
	if lines := readLines(filepath.Join(base, "currency.txt")); len(lines) > 0 {
		s.slots[persistence.CurrencyKey] = lines[0]
	}
	return s
}

// FailWith makes every subsequent call return err; nil restores normal
// behavior.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", false, s.failWith
	}
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.slots[key] = value
	return nil
}

// readLines returns the non-blank, non-comment lines of a file.
func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
