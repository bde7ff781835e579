package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
)

// GuestDateLayout is the stored date format of guest entries. Sorting relies
// on it being zero padded, largest unit first.
const GuestDateLayout = "2006-01-02 15:04:05"

// GuestEntry is the session representation of a guest transaction. Amount is
// kept as a decimal string so the session codec never sees a float.
type GuestEntry struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Date     string `json:"date"`
}

// GuestLedger is the ledger of an unauthenticated browser session. It lives
// only as long as the session that owns it.
type GuestLedger struct {
	mu      sync.Mutex
	entries []GuestEntry
	loc     *time.Location
	now     func() time.Time
	dirty   bool
}

var _ Ledger = (*GuestLedger)(nil)

// NewGuestLedger wraps entries previously loaded from the session.
func NewGuestLedger(entries []GuestEntry) *GuestLedger {
	return &GuestLedger{
		entries: append([]GuestEntry(nil), entries...),
		loc:     time.Local,
		now:     time.Now,
	}
}

// DecodeGuestLedger restores a ledger from its session encoding. An empty
// payload yields an empty ledger.
func DecodeGuestLedger(payload string) (*GuestLedger, error) {
	if payload == "" {
		return NewGuestLedger(nil), nil
	}
	var entries []GuestEntry
	if err := json.Unmarshal([]byte(payload), &entries); err != nil {
		return nil, fmt.Errorf("decode guest ledger: %w", err)
	}
	return NewGuestLedger(entries), nil
}

// Encode returns the session encoding of the ledger.
func (g *GuestLedger) Encode() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, err := json.Marshal(g.entries)
	if err != nil {
		return "", fmt.Errorf("encode guest ledger: %w", err)
	}
	return string(b), nil
}

// WithClock overrides the time source and zone, for tests.
func (g *GuestLedger) WithClock(now func() time.Time, loc *time.Location) *GuestLedger {
	g.now = now
	g.loc = loc
	return g
}

// Dirty reports whether the ledger changed since it was loaded.
func (g *GuestLedger) Dirty() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dirty
}

// Len returns the number of stored entries.
func (g *GuestLedger) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

func (g *GuestLedger) Record(_ context.Context, e core.Entry) (core.Transaction, error) {
	if err := e.Validate(); err != nil {
		return core.Transaction{}, err
	}
	at := g.now().In(g.loc)
	entry := GuestEntry{
		Type:     string(e.Type),
		Category: e.Category,
		Amount:   e.Amount.StringFixed(core.AmountPlaces),
		Date:     at.Format(GuestDateLayout),
	}

	g.mu.Lock()
	g.entries = append(g.entries, entry)
	g.dirty = true
	g.mu.Unlock()

	return g.toTransaction(entry)
}

func (g *GuestLedger) Sum(_ context.Context, t core.TransactionType) (decimal.Decimal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	total := decimal.Zero
	for _, e := range g.entries {
		if e.Type != string(t) {
			continue
		}
		amt, err := decimal.NewFromString(e.Amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", e.Amount, err)
		}
		total = total.Add(amt)
	}
	return total, nil
}

// ListAll orders entries by their stored date string, descending. Entries
// sharing a second are returned newest insertion first.
func (g *GuestLedger) ListAll(_ context.Context) ([]core.Transaction, error) {
	g.mu.Lock()
	entries := make([]GuestEntry, len(g.entries))
	// Reverse insertion order so the stable sort keeps later entries first on ties.
	for i, e := range g.entries {
		entries[len(g.entries)-1-i] = e
	}
	g.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date > entries[j].Date
	})

	out := make([]core.Transaction, 0, len(entries))
	for _, e := range entries {
		tx, err := g.toTransaction(e)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (g *GuestLedger) toTransaction(e GuestEntry) (core.Transaction, error) {
	amt, err := decimal.NewFromString(e.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored amount %q: %w", e.Amount, err)
	}
	date, err := time.ParseInLocation(GuestDateLayout, e.Date, g.loc)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", e.Date, err)
	}
	return core.Transaction{
		Type:     core.TransactionType(e.Type),
		Category: e.Category,
		Amount:   amt,
		Date:     date,
	}, nil
}
