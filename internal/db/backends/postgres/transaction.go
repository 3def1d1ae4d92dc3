package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Transaction wraps a pgx transaction
type Transaction struct {
	mu         sync.Mutex
	tx         pgx.Tx
	committed  bool
	rolledBack bool
}

// Commit commits the transaction
func (t *Transaction) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.committed || t.rolledBack {
		return interfaces.ErrTransactionCompleted
	}
	if err := t.tx.Commit(ctx); err != nil {
		return err
	}
	t.committed = true
	return nil
}

// Rollback rolls back the transaction
func (t *Transaction) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.committed || t.rolledBack {
		return interfaces.ErrTransactionCompleted
	}
	if err := t.tx.Rollback(ctx); err != nil {
		return err
	}
	t.rolledBack = true
	return nil
}

// IsCompleted reports whether Commit or Rollback already ran
func (t *Transaction) IsCompleted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.committed || t.rolledBack
}
