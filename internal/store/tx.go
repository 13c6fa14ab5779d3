package store

import (
	"database/sql"
	"fmt"
)

// Tx is the handle passed to a Transaction callback. It exposes the file,
// chunk and vector writes (UpsertFile, InsertChunks, DeleteChunksByFile,
// InsertVector, DeleteVectors), bound to a single SQLite transaction.
type Tx struct {
	tx *sql.Tx
}

// Transaction runs fn atomically. All store mutations performed through the
// Tx argument commit together or not at all. Transactions are serialized by
// writeMu since SQLite allows only one writer.
func (s *Store) Transaction(fn func(*Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sqlTx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}

	if err := fn(&Tx{tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("store: commit transaction: %w", err)
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting the Insert*/Delete*
// helpers below run either bare or inside a Transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func (s *Store) exec() execer { return s.db }
func (t *Tx) exec() execer    { return t.tx }
