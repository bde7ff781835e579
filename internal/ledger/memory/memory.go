package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
)

// Store is an in-process persistent ledger used by the memory backend. It has
// the same semantics as the SQLite store but forgets everything on restart.
type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
	now    func() time.Time
}

var (
	_ ledger.Ledger = (*Store)(nil)
	_ ledger.Opener = (*Store)(nil)
	_ ledger.Pinger = (*Store)(nil)
)

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock returns a store whose insertion timestamps come from now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Open returns the store itself; there is nothing to acquire per request.
func (s *Store) Open(_ context.Context) (ledger.Ledger, ledger.Release, error) {
	return s, ledger.NopRelease, nil
}

func (s *Store) Ping(_ context.Context) error { return nil }

// Record stores the entry with the next id and the current time.
func (s *Store) Record(_ context.Context, e core.Entry) (core.Transaction, error) {
	if err := e.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	tx := core.Transaction{
		ID:       s.nextID,
		Type:     e.Type,
		Category: e.Category,
		Amount:   e.Amount,
		Date:     s.now().UTC(),
	}
	s.items = append(s.items, tx)
	return tx, nil
}

func (s *Store) Sum(_ context.Context, t core.TransactionType) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, tx := range s.items {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// ListAll returns a copy ordered by date then id, both descending.
func (s *Store) ListAll(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.items...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}
