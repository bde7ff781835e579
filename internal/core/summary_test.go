package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeAndDisplay(t *testing.T) {
	initial := decimal.NewFromInt(DefaultInitialBudget)
	s := Compute(initial, decimal.RequireFromString("3000.00"), decimal.RequireFromString("1200.50"))

	want := decimal.RequireFromString("51799.50")
	if !s.RemainingBudget.Equal(want) {
		t.Fatalf("remaining = %s, want %s", s.RemainingBudget, want)
	}

	d := s.Display()
	if d.TotalIncome != "3,000" || d.TotalExpense != "1,201" || d.RemainingBudget != "51,800" || d.InitialBudget != "50,000" {
		t.Fatalf("unexpected display: %+v", d)
	}
}

func TestComputeEmptyLedger(t *testing.T) {
	initial := decimal.NewFromInt(DefaultInitialBudget)
	s := Compute(initial, decimal.Zero, decimal.Zero)
	if !s.RemainingBudget.Equal(initial) {
		t.Fatalf("remaining = %s, want %s", s.RemainingBudget, initial)
	}
	if got := s.Display().TotalIncome; got != "0" {
		t.Fatalf("income display = %q", got)
	}
}

func TestComputeOverspent(t *testing.T) {
	s := Compute(decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(250))
	if got := s.Display().RemainingBudget; got != "-150" {
		t.Fatalf("remaining display = %q, want -150", got)
	}
}
