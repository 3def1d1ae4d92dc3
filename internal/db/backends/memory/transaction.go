package memory

import (
	"context"
	"sync"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// Transaction snapshots the database at creation time; Rollback restores
// the snapshot. Serialization of conflicting writers is left to the table
// lock, matching the backing-store model the service assumes.
type Transaction struct {
	mu         sync.RWMutex
	db         *Database
	snapshot   map[string]map[string]map[string]interface{}
	committed  bool
	rolledBack bool
}

// NewTransaction creates a transaction with a deep copy of the current state
func NewTransaction(db *Database) *Transaction {
	tx := &Transaction{
		db:       db,
		snapshot: make(map[string]map[string]map[string]interface{}),
	}

	db.mu.RLock()
	for tableName, table := range db.tables {
		tx.snapshot[tableName] = make(map[string]map[string]interface{}, len(table))
		for id, record := range table {
			tx.snapshot[tableName][id] = copyRecord(record)
		}
	}
	db.mu.RUnlock()

	return tx
}

// Commit finalizes the transaction
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return interfaces.ErrTransactionCompleted
	}

	tx.committed = true
	return nil
}

// Rollback restores the snapshot taken at transaction start
func (tx *Transaction) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return interfaces.ErrTransactionCompleted
	}

	tx.db.mu.Lock()
	tx.db.tables = tx.snapshot
	tx.db.mu.Unlock()

	tx.rolledBack = true
	return nil
}

// IsCompleted reports whether Commit or Rollback already ran
func (tx *Transaction) IsCompleted() bool {
	tx.mu.RLock()
	defer tx.mu.RUnlock()

	return tx.committed || tx.rolledBack
}

func copyRecord(record map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(record))
	for k, v := range record {
		out[k] = v
	}
	return out
}
