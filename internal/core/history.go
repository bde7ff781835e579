package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseTypeFilter reads a history filter. Empty and "all" select every type.
func ParseTypeFilter(s string) (TransactionType, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return "", nil
	}
	t := TransactionType(s)
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// FilterByType keeps the transactions of type t in their original order. An
// empty t keeps all of them.
func FilterByType(items []Transaction, t TransactionType) []Transaction {
	if t == "" {
		return items
	}
	out := make([]Transaction, 0, len(items))
	for _, tx := range items {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// Totals are the per-type sums of a transaction list.
type Totals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// TotalsOf sums items by type.
func TotalsOf(items []Transaction) Totals {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range items {
		switch tx.Type {
		case Income:
			totals.Income = totals.Income.Add(tx.Amount)
		case Expense:
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
	}
	return totals
}

// Net is income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}
