package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"kakeibo/internal/core"
	"kakeibo/internal/ledger"
	"kakeibo/internal/log"
)

// TransactionService runs the add, summary and history flows against
// whichever ledger the caller resolved for the request.
type TransactionService struct {
	initial decimal.Decimal
	events  EventPublisher
	logger  *log.Logger
}

// NewTransactionService wires the service. events may be nil.
func NewTransactionService(initial decimal.Decimal, events EventPublisher, logger *log.Logger) *TransactionService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &TransactionService{
		initial: initial,
		events:  events,
		logger:  logger.WithComponent(log.ComponentLedger),
	}
}

// AddResult is the stored transaction with the summary recomputed after it.
type AddResult struct {
	Transaction core.Transaction
	Summary     core.Summary
}

func (s *TransactionService) InitialBudget() decimal.Decimal {
	return s.initial
}

// Add validates the raw form values, records them on l and recomputes the
// summary. Validation failures are returned as *core.ValidationError and
// leave l untouched.
func (s *TransactionService) Add(ctx context.Context, l ledger.Ledger, accountID, typ, category, amount string) (AddResult, error) {
	entry, err := core.ValidateEntry(typ, category, amount)
	if err != nil {
		s.logger.InfoContext(ctx, "Transaction rejected",
			log.FieldOperation, log.OpValidate,
			log.FieldError, err)
		return AddResult{}, err
	}

	tx, err := l.Record(ctx, entry)
	if err != nil {
		return AddResult{}, fmt.Errorf("record transaction: %w", err)
	}

	fields := log.NewFields().
		WithOperation(log.OpRecord).
		WithEntry(tx.ID, string(tx.Type), tx.Category, tx.Amount.StringFixed(core.AmountPlaces)).
		WithAuthenticated(accountID != "")
	s.logger.InfoContext(ctx, "Transaction recorded", fields.ToSlice()...)

	// Only stored transactions carry an id; guest entries stay in the browser.
	if tx.ID > 0 && s.events != nil {
		if err := s.events.PublishTransactionRecorded(ctx, tx, accountID); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish transaction event",
				log.FieldOperation, log.OpPublish,
				log.FieldTxID, tx.ID,
				log.FieldError, err)
		}
	}

	summary, err := ledger.Summarize(ctx, l, s.initial)
	if err != nil {
		return AddResult{}, fmt.Errorf("recompute summary: %w", err)
	}
	return AddResult{Transaction: tx, Summary: summary}, nil
}

func (s *TransactionService) Summary(ctx context.Context, l ledger.Ledger) (core.Summary, error) {
	summary, err := ledger.Summarize(ctx, l, s.initial)
	if err != nil {
		return core.Summary{}, fmt.Errorf("compute summary: %w", err)
	}
	return summary, nil
}

// History lists every transaction on l, newest first.
func (s *TransactionService) History(ctx context.Context, l ledger.Ledger) ([]core.Transaction, error) {
	items, err := l.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return items, nil
}
