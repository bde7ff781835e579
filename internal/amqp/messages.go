package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"kakeibo/internal/core"
)

// EventTransactionRecorded is the AMQP message type for a stored transaction.
const EventTransactionRecorded = "transaction.recorded"

// TransactionRecordedMessage carries a complete stored transaction, so
// consumers never need to read the store back.
type TransactionRecordedMessage struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"account_id"`
	Type      string    `json:"type"`
	Category  string    `json:"category"`
	Amount    string    `json:"amount"`
	Date      time.Time `json:"date"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionRecordedMessage(tx core.Transaction, accountID string) *TransactionRecordedMessage {
	return &TransactionRecordedMessage{
		ID:        tx.ID,
		AccountID: accountID,
		Type:      string(tx.Type),
		Category:  tx.Category,
		Amount:    tx.Amount.StringFixed(core.AmountPlaces),
		Date:      tx.Date,
		Timestamp: time.Now(),
	}
}

func (m *TransactionRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionRecordedMessageFromJSON(data []byte) (*TransactionRecordedMessage, error) {
	var msg TransactionRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("message without transaction id")
	}
	return &msg, nil
}

// Transaction rebuilds the domain value, rejecting messages that would not
// have passed validation when recorded.
func (m *TransactionRecordedMessage) Transaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(m.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.TransactionType(m.Type)
	if !t.IsValid() {
		return core.Transaction{}, core.ErrInvalidType
	}
	return core.Transaction{
		ID:       m.ID,
		Type:     t,
		Category: m.Category,
		Amount:   amount,
		Date:     m.Date,
	}, nil
}
