package core

import "github.com/shopspring/decimal"

// DefaultInitialBudget is the starting balance the ledger is measured against.
const DefaultInitialBudget int64 = 50000

// Summary is the budget aggregate derived from a ledger. It is never stored.
type Summary struct {
	InitialBudget   decimal.Decimal
	TotalIncome     decimal.Decimal
	TotalExpense    decimal.Decimal
	RemainingBudget decimal.Decimal
}

// DisplaySummary holds the formatted values sent to views and API clients.
type DisplaySummary struct {
	InitialBudget   string `json:"initial_budget"`
	TotalIncome     string `json:"total_income"`
	TotalExpense    string `json:"total_expense"`
	RemainingBudget string `json:"remaining_budget"`
}

// Compute derives the remaining budget. Expenses are positive magnitudes and
// are subtracted.
func Compute(initial, income, expense decimal.Decimal) Summary {
	return Summary{
		InitialBudget:   initial,
		TotalIncome:     income,
		TotalExpense:    expense,
		RemainingBudget: initial.Add(income).Sub(expense),
	}
}

// Display formats every figure as a grouped whole number.
func (s Summary) Display() DisplaySummary {
	return DisplaySummary{
		InitialBudget:   FormatDisplay(s.InitialBudget),
		TotalIncome:     FormatDisplay(s.TotalIncome),
		TotalExpense:    FormatDisplay(s.TotalExpense),
		RemainingBudget: FormatDisplay(s.RemainingBudget),
	}
}
