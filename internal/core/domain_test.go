package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		category string
		amount   string
		wantErr  error
		wantMsg  string
	}{
		{name: "valid income", typ: "income", category: "salary", amount: "3000.00"},
		{name: "valid expense", typ: "expense", category: "rent", amount: "1200.50"},
		{name: "missing category", typ: "income", category: "", amount: "10", wantErr: ErrMissingField, wantMsg: MsgMissingField},
		{name: "missing type", typ: "", category: "food", amount: "10", wantErr: ErrMissingField, wantMsg: MsgMissingField},
		{name: "missing amount", typ: "expense", category: "food", amount: "  ", wantErr: ErrMissingField, wantMsg: MsgMissingField},
		{name: "presence checked before parse", typ: "expense", category: "", amount: "abc", wantErr: ErrMissingField, wantMsg: MsgMissingField},
		{name: "zero amount", typ: "expense", category: "food", amount: "0", wantErr: ErrInvalidAmount, wantMsg: MsgInvalidAmount},
		{name: "negative amount", typ: "expense", category: "food", amount: "-5", wantErr: ErrInvalidAmount, wantMsg: MsgInvalidAmount},
		{name: "non numeric amount", typ: "expense", category: "food", amount: "abc", wantErr: ErrInvalidAmount, wantMsg: MsgInvalidAmount},
		{name: "unknown type", typ: "transfer", category: "food", amount: "10", wantErr: ErrInvalidType, wantMsg: MsgInvalidType},
		{name: "category too long", typ: "income", category: strings.Repeat("あ", 51), amount: "10", wantErr: ErrInvalidCategory, wantMsg: MsgInvalidCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := ValidateEntry(tt.typ, tt.category, tt.amount)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, TransactionType(tt.typ), e.Type)
				assert.Equal(t, tt.category, e.Category)
				assert.True(t, e.Amount.IsPositive())
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantMsg, ve.Message)
		})
	}
}

func TestEntryValidate(t *testing.T) {
	ok := Entry{Type: Expense, Category: "rent", Amount: decimal.NewFromInt(1)}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Amount = decimal.Zero
	assert.ErrorIs(t, bad.Validate(), ErrInvalidAmount)

	bad = ok
	bad.Type = "other"
	assert.ErrorIs(t, bad.Validate(), ErrInvalidType)
}

func TestTransactionTypeLabel(t *testing.T) {
	assert.Equal(t, "収入", Income.Label())
	assert.Equal(t, "支出", Expense.Label())
	assert.Equal(t, "x", TransactionType("x").Label())
}
