package backend

import (
	"context"

	"kakeibo/internal/ledger"
	"kakeibo/internal/services"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Backend is the set of collaborators the web server needs from storage.
type Backend struct {
	Type BackendType

	// Ledgers hands out the authenticated ledger per request.
	Ledgers ledger.Opener
	// Health is pinged by /readyz.
	Health ledger.Pinger
	// Events is nil when AMQP publishing is disabled or unreachable.
	Events services.EventPublisher

	Cleanup CleanupFunc
}

// Close runs Cleanup when present.
func (b *Backend) Close() error {
	if b == nil || b.Cleanup == nil {
		return nil
	}
	return b.Cleanup()
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Backend, error)
}

// BackendType represents the type of backend.
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
