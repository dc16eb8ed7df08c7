package store

import (
	"context"
	"database/sql"
	"fmt"
)

// appendEvent allocates the next global sequence number and runs insert in
// the same transaction, so a failed insert never consumes a number. LLM
// calls and attempts share the counter, which orders them against each
// other across processes.
func appendEvent(ctx context.Context, db *sql.DB, insert func(tx *sql.Tx, seq int64) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	err = tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	if err := insert(tx, seq); err != nil {
		return err
	}
	return tx.Commit()
}
