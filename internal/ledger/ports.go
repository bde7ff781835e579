package ledger

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
)

// Ports shared by the persistent store, the in-memory store and the guest ledger.
//
//go:generate mockgen -destination=mocks/mock_ports.go -source=ports.go
type (
	// Ledger is an append-only collection of transactions.
	Ledger interface {
		// Record appends e and returns the stored transaction.
		Record(ctx context.Context, e core.Entry) (core.Transaction, error)
		// Sum returns the total of every transaction of type t, zero when none exist.
		Sum(ctx context.Context, t core.TransactionType) (decimal.Decimal, error)
		// ListAll returns every transaction, newest first.
		ListAll(ctx context.Context) ([]core.Transaction, error)
	}

	// Release returns a scoped ledger's resources. It is safe to call more than once.
	Release func() error

	// Opener hands out a ledger bound to resources acquired for one request.
	Opener interface {
		Open(ctx context.Context) (Ledger, Release, error)
	}

	// Pinger reports whether the backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// NopRelease is the Release of ledgers that hold no per-request resources.
func NopRelease() error { return nil }

// Summarize computes the budget aggregate of l against the initial budget.
func Summarize(ctx context.Context, l Ledger, initial decimal.Decimal) (core.Summary, error) {
	income, err := l.Sum(ctx, core.Income)
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum income: %w", err)
	}
	expense, err := l.Sum(ctx, core.Expense)
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum expense: %w", err)
	}
	return core.Compute(initial, income, expense), nil
}
