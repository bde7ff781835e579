package sheets

import (
	"context"

	"kakeibo/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionMirror copies stored transactions to an external sheet.
	// Appending a transaction that is already present is a no-op that
	// returns the existing row reference.
	TransactionMirror interface {
		AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}
)

// Header is the first row of a mirror sheet.
var Header = []string{"id", "date", "type", "category", "amount"}
