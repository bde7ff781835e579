package backend

import (
	"context"
	"errors"
	"fmt"

	"kakeibo/internal/amqp"
	"kakeibo/internal/ledger/memory"
	appLog "kakeibo/internal/log"
	"kakeibo/internal/services"
	"kakeibo/internal/storage"
)

// DefaultFactory implements the Factory interface.
type DefaultFactory struct {
	logger *appLog.Logger
}

func NewFactory(logger *appLog.Logger) Factory {
	if logger == nil {
		logger = appLog.New(appLog.DefaultConfig())
	}
	return &DefaultFactory{logger: logger.WithComponent(appLog.ComponentBackend)}
}

func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Backend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var b *Backend
	switch config.Type {
	case SQLiteBackend:
		repo, err := f.createSQLiteStore(ctx, config)
		if err != nil {
			return nil, err
		}
		b = &Backend{Type: SQLiteBackend, Ledgers: repo, Health: repo, Cleanup: repo.Close}
	case MemoryBackend:
		store := memory.New()
		f.logger.WarnContext(ctx, "Using in-memory ledger; transactions are lost on restart",
			appLog.FieldBackend, MemoryBackend.String())
		b = &Backend{Type: MemoryBackend, Ledgers: store, Health: store}
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	client := f.createPublisher(ctx, config)
	if client != nil {
		// Assigned only when non-nil so Events stays a nil interface otherwise.
		b.Events = client
		storeCleanup := b.Cleanup
		b.Cleanup = func() error {
			var errs []error
			if err := client.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close amqp client: %w", err))
			}
			if storeCleanup != nil {
				if err := storeCleanup(); err != nil {
					errs = append(errs, fmt.Errorf("close store: %w", err))
				}
			}
			return errors.Join(errs...)
		}
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		appLog.FieldBackend, b.Type.String(),
		"amqp_enabled", b.Events != nil)
	return b, nil
}

// createSQLiteStore opens the store and creates its table. A failing table
// initialization is logged and the store is returned anyway, so requests
// report the store error themselves.
func (f *DefaultFactory) createSQLiteStore(ctx context.Context, config Config) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	if err := repo.Init(ctx); err != nil {
		f.logger.ErrorContext(ctx, "Failed to initialize transactions table",
			appLog.FieldOperation, appLog.OpStartup,
			appLog.FieldError, err)
	}
	return repo, nil
}

// createPublisher dials AMQP when configured. A broker that cannot be reached
// disables publishing instead of failing startup.
func (f *DefaultFactory) createPublisher(ctx context.Context, config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events",
			appLog.FieldError, err)
		return nil
	}
	f.logger.InfoContext(ctx, "Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}

var _ services.EventPublisher = (*amqp.Client)(nil)
