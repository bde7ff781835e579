package services

import (
	"context"

	"kakeibo/internal/core"
)

// EventPublisher announces stored transactions to other processes.
//
//go:generate mockgen -destination=mocks/mock_interface.go -source=interface.go EventPublisher
type EventPublisher interface {
	PublishTransactionRecorded(ctx context.Context, tx core.Transaction, accountID string) error
}
