package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"budgetzero/internal/core"
)

const entryColumns = `
	id, template_id, month, year, title, amount_cents, is_income, is_paid,
	due_date, actual_payment_date, display_order, category, notes, created_at
`

func scanEntry(sc scanner) (core.Entry, error) {
	var (
		e           core.Entry
		id          string
		templateID  sql.NullString
		dueDate     string
		paymentDate sql.NullString
		createdAt   string
	)

	if err := sc.Scan(
		&id, &templateID, &e.Month, &e.Year, &e.Title, &e.Amount.Cents,
		&e.IsIncome, &e.IsPaid, &dueDate, &paymentDate, &e.DisplayOrder,
		(*string)(&e.Category), &e.Notes, &createdAt,
	); err != nil {
		return core.Entry{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("parse entry id %q: %w", id, err)
	}
	e.ID = parsed

	if templateID.Valid {
		tid, err := uuid.Parse(templateID.String)
		if err != nil {
			return core.Entry{}, fmt.Errorf("parse template id %q: %w", templateID.String, err)
		}
		e.TemplateID = &tid
	}
	if e.DueDate, err = decodeDay(dueDate); err != nil {
		return core.Entry{}, err
	}
	if paymentDate.Valid {
		if e.ActualPaymentDate, err = decodeTime(paymentDate.String); err != nil {
			return core.Entry{}, err
		}
	}
	if e.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Entry{}, err
	}

	return e, nil
}

func entryWriteArgs(e core.Entry) []any {
	var templateID sql.NullString
	if e.TemplateID != nil {
		templateID = sql.NullString{String: e.TemplateID.String(), Valid: true}
	}
	var paymentDate sql.NullString
	if !e.ActualPaymentDate.IsZero() {
		paymentDate = sql.NullString{String: encodeTime(e.ActualPaymentDate), Valid: true}
	}
	return []any{
		templateID, e.Month, e.Year, e.Title, e.Amount.Cents, e.IsIncome,
		e.IsPaid, encodeDay(e.DueDate), paymentDate, e.DisplayOrder,
		string(e.Category), e.Notes,
	}
}

func (s *SQLiteStore) InsertEntry(ctx context.Context, e core.Entry) error {
	args := append([]any{e.ID.String()}, entryWriteArgs(e)...)
	args = append(args, encodeTime(e.CreatedAt))

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO entries (id, template_id, month, year, title, amount_cents, is_income, is_paid,
				due_date, actual_payment_date, display_order, category, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			args...,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UpdateEntry(ctx context.Context, e core.Entry) error {
	args := append(entryWriteArgs(e), e.ID.String())

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE entries SET
				template_id = ?, month = ?, year = ?, title = ?, amount_cents = ?,
				is_income = ?, is_paid = ?, due_date = ?, actual_payment_date = ?,
				display_order = ?, category = ?, notes = ?
			WHERE id = ?`,
			args...,
		)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return core.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("update entry %s: %w", e.ID, core.ErrNotFound)
		}
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id.String())
		return err
	})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// DeleteEntriesForTemplateFrom removes a template's materialized entries for
// the given month and every later month. Entries in strictly earlier months
// are kept as history.
func (s *SQLiteStore) DeleteEntriesForTemplateFrom(ctx context.Context, templateID uuid.UUID, month, year int) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM entries WHERE template_id = ? AND year * 12 + month >= ?`,
			templateID.String(), core.YearMonth(month, year),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete entries for template from %d/%d: %w", month, year, err)
	}
	return nil
}

func (s *SQLiteStore) GetEntry(ctx context.Context, id uuid.UUID) (core.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = ?`, id.String())

	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Entry{}, fmt.Errorf("get entry %s: %w", id, core.ErrNotFound)
		}
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntriesForMonth returns every entry for one month, paid entries first in
// payment order, then unpaid entries in display order. Ties break on
// insertion (created_at, then id) so the ordering is stable.
func (s *SQLiteStore) ListEntriesForMonth(ctx context.Context, month, year int) ([]core.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM entries
		WHERE month = ? AND year = ?
		ORDER BY is_paid DESC,
			CASE WHEN is_paid THEN COALESCE(actual_payment_date, due_date) ELSE '' END,
			CASE WHEN is_paid THEN 0 ELSE display_order END,
			created_at, id`,
		month, year,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries for %d/%d: %w", month, year, err)
	}
	return entries, nil
}

// EarliestEntryMonth reports the chronologically first month holding any
// entry. ok is false when the store is empty.
func (s *SQLiteStore) EarliestEntryMonth(ctx context.Context) (month, year int, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT month, year FROM entries ORDER BY year, month LIMIT 1`)

	if err := row.Scan(&month, &year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("earliest entry month: %w", err)
	}
	return month, year, true, nil
}
