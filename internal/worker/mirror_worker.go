package worker

import (
	"context"
	"fmt"

	"kakeibo/internal/amqp"
	appLog "kakeibo/internal/log"
	"kakeibo/internal/sheets"
)

// MirrorWorker copies recorded transactions from AMQP events to a sheet.
type MirrorWorker struct {
	mirror sheets.TransactionMirror
	logger *appLog.Logger
}

func NewMirrorWorker(mirror sheets.TransactionMirror, logger *appLog.Logger) *MirrorWorker {
	if logger == nil {
		logger = appLog.New(appLog.DefaultConfig())
	}
	return &MirrorWorker{
		mirror: mirror,
		logger: logger.WithComponent(appLog.ComponentWorker),
	}
}

// HandleTransactionRecorded mirrors one event. Messages that cannot be
// turned back into a valid transaction are dropped; a mirror failure is
// returned so the delivery is requeued.
func (w *MirrorWorker) HandleTransactionRecorded(ctx context.Context, msg *amqp.TransactionRecordedMessage) error {
	tx, err := msg.Transaction()
	if err != nil {
		w.logger.WarnContext(ctx, "Dropping invalid transaction event",
			appLog.FieldTxID, msg.ID,
			appLog.FieldOperation, appLog.OpMirror,
			appLog.FieldError, err)
		return nil
	}

	ref, err := w.mirror.AppendTransaction(ctx, tx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to mirror transaction",
			appLog.FieldTxID, tx.ID,
			appLog.FieldOperation, appLog.OpMirror,
			appLog.FieldError, err)
		return fmt.Errorf("mirror transaction %d: %w", tx.ID, err)
	}

	w.logger.InfoContext(ctx, "Transaction mirrored",
		appLog.FieldTxID, tx.ID,
		appLog.FieldTxType, string(tx.Type),
		appLog.FieldOperation, appLog.OpMirror,
		"ref", ref)
	return nil
}
