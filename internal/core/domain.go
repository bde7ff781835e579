package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// MaxCategoryLength mirrors the width of the category column.
const MaxCategoryLength = 50

type (
	TransactionType string

	// Transaction is a recorded ledger row. Guest entries have no ID.
	Transaction struct {
		ID       int64
		Type     TransactionType
		Category string
		Amount   decimal.Decimal
		Date     time.Time
	}

	// Entry is a validated request to record a transaction.
	Entry struct {
		Type     TransactionType
		Category string
		Amount   decimal.Decimal
	}
)

var (
	ErrMissingField    = errors.New("missing field")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrInvalidCategory = errors.New("invalid category")
)

// User-facing messages. Both input error kinds share the response shape and
// differ only in text.
const (
	MsgMissingField    = "エラー: すべての項目を入力してください。"
	MsgInvalidAmount   = "エラー: 金額は正しい数値で入力してください。"
	MsgInvalidType     = "エラー: 種別は収入または支出を選択してください。"
	MsgInvalidCategory = "エラー: カテゴリは50文字以内で入力してください。"
	MsgRecorded        = "✓ 取引を追加しました。"
)

// ValidationError carries the failure kind and the message shown to the user.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Kind }

func newValidationError(kind error, msg string) *ValidationError {
	return &ValidationError{Kind: kind, Message: msg}
}

func (t TransactionType) String() string { return string(t) }

// IsValid reports whether t is income or expense.
func (t TransactionType) IsValid() bool {
	return t == Income || t == Expense
}

// Label returns the display label used by the history view.
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "収入"
	case Expense:
		return "支出"
	default:
		return string(t)
	}
}

// ValidateEntry checks loosely typed request fields and builds an Entry.
//
// Presence of all three fields is checked before the amount is parsed, so a
// request missing the category reports ErrMissingField even when the amount
// is also malformed.
func ValidateEntry(typ, category, amount string) (Entry, error) {
	typ = strings.TrimSpace(typ)
	category = strings.TrimSpace(category)
	amount = strings.TrimSpace(amount)

	if typ == "" || category == "" || amount == "" {
		return Entry{}, newValidationError(ErrMissingField, MsgMissingField)
	}

	amt, err := ParseAmount(amount)
	if err != nil {
		return Entry{}, newValidationError(ErrInvalidAmount, MsgInvalidAmount)
	}

	t := TransactionType(typ)
	if !t.IsValid() {
		return Entry{}, newValidationError(ErrInvalidType, MsgInvalidType)
	}

	if len([]rune(category)) > MaxCategoryLength {
		return Entry{}, newValidationError(ErrInvalidCategory, MsgInvalidCategory)
	}

	return Entry{Type: t, Category: category, Amount: amt}, nil
}

// Validate re-checks the invariants of an already constructed entry.
func (e Entry) Validate() error {
	if !e.Type.IsValid() {
		return newValidationError(ErrInvalidType, MsgInvalidType)
	}
	if strings.TrimSpace(e.Category) == "" {
		return newValidationError(ErrMissingField, MsgMissingField)
	}
	if len([]rune(e.Category)) > MaxCategoryLength {
		return newValidationError(ErrInvalidCategory, MsgInvalidCategory)
	}
	if !e.Amount.IsPositive() {
		return newValidationError(ErrInvalidAmount, MsgInvalidAmount)
	}
	return nil
}
