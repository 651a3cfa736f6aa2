package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"budgetzero/internal/core"
)

// GetSnapshot returns the cached ending balance for a month. ok is false when
// no snapshot is cached for that key.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, month, year int) (balance core.Money, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT ending_balance_cents FROM month_balances WHERE month = ? AND year = ?`,
		month, year,
	)
	if err := row.Scan(&balance.Cents); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Money{}, false, nil
		}
		return core.Money{}, false, fmt.Errorf("get snapshot %d/%d: %w", month, year, err)
	}
	return balance, true, nil
}

// PutSnapshot stores (or replaces) the ending balance for a month.
func (s *SQLiteStore) PutSnapshot(ctx context.Context, month, year int, balance core.Money) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO month_balances (month, year, ending_balance_cents, last_updated)
			VALUES (?, ?, ?, ?)
			ON CONFLICT (month, year) DO UPDATE SET
				ending_balance_cents = excluded.ending_balance_cents,
				last_updated = excluded.last_updated`,
			month, year, balance.Cents, encodeTime(time.Now()),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("put snapshot %d/%d: %w", month, year, err)
	}
	return nil
}

// DeleteSnapshotsFrom removes the snapshot for the given month and every
// chronologically later one. Deleting a key that holds no snapshots is a
// no-op, not an error.
func (s *SQLiteStore) DeleteSnapshotsFrom(ctx context.Context, month, year int) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM month_balances WHERE year * 12 + month >= ?`,
			core.YearMonth(month, year),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete snapshots from %d/%d: %w", month, year, err)
	}
	return nil
}
