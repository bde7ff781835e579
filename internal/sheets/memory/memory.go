package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"kakeibo/internal/core"
	"kakeibo/internal/sheets"
)

// Mirror keeps mirrored transactions in memory in append order.
type Mirror struct {
	mu   sync.Mutex
	rows []core.Transaction
	refs map[int64]string
}

var _ sheets.TransactionMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{refs: make(map[int64]string)}
}

// AppendTransaction stores tx once per id and returns a synthetic row reference.
func (m *Mirror) AppendTransaction(_ context.Context, tx core.Transaction) (string, error) {
	if tx.ID <= 0 {
		return "", errors.New("only stored transactions can be mirrored")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if ref, ok := m.refs[tx.ID]; ok {
		return ref, nil
	}
	m.rows = append(m.rows, tx)
	// Row 1 is the header.
	ref := fmt.Sprintf("mem:%d", len(m.rows)+1)
	m.refs[tx.ID] = ref
	return ref, nil
}

// Rows returns a copy of the mirrored transactions.
func (m *Mirror) Rows() []core.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Transaction(nil), m.rows...)
}
