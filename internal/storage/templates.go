package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"budgetzero/internal/core"
)

const templateColumns = `
	id, title, amount_cents, is_income, frequency, category, notes, created_at,
	due_day, start_date, semi_day1, semi_day2
`

func scanTemplate(sc scanner) (core.Template, error) {
	var (
		t         core.Template
		id        string
		createdAt string
		dueDay    sql.NullInt64
		startDate sql.NullString
		semiDay1  sql.NullInt64
		semiDay2  sql.NullInt64
	)

	if err := sc.Scan(
		&id, &t.Title, &t.Amount.Cents, &t.IsIncome, (*string)(&t.Frequency),
		(*string)(&t.Category), &t.Notes, &createdAt,
		&dueDay, &startDate, &semiDay1, &semiDay2,
	); err != nil {
		return core.Template{}, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return core.Template{}, fmt.Errorf("parse template id %q: %w", id, err)
	}
	t.ID = parsed

	if t.CreatedAt, err = decodeTime(createdAt); err != nil {
		return core.Template{}, err
	}
	if dueDay.Valid {
		t.DueDay = int(dueDay.Int64)
	}
	if startDate.Valid {
		if t.StartDate, err = decodeDay(startDate.String); err != nil {
			return core.Template{}, err
		}
	}
	if semiDay1.Valid {
		t.SemiDay1 = int(semiDay1.Int64)
	}
	if semiDay2.Valid {
		t.SemiDay2 = int(semiDay2.Int64)
	}

	return t, nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func (s *SQLiteStore) InsertTemplate(ctx context.Context, t core.Template) error {
	var startDate sql.NullString
	if !t.StartDate.IsZero() {
		startDate = sql.NullString{String: encodeDay(t.StartDate), Valid: true}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bill_templates (id, title, amount_cents, is_income, frequency, category, notes, created_at,
				due_day, start_date, semi_day1, semi_day2)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID.String(), t.Title, t.Amount.Cents, t.IsIncome, string(t.Frequency),
			string(t.Category), t.Notes, encodeTime(t.CreatedAt),
			nullInt(t.DueDay), startDate, nullInt(t.SemiDay1), nullInt(t.SemiDay2),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert template: %w", err)
	}

	slog.DebugContext(ctx, "Template saved",
		"template_id", t.ID, "title", t.Title, "frequency", t.Frequency)
	return nil
}

func (s *SQLiteStore) UpdateTemplate(ctx context.Context, t core.Template) error {
	var startDate sql.NullString
	if !t.StartDate.IsZero() {
		startDate = sql.NullString{String: encodeDay(t.StartDate), Valid: true}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE bill_templates SET
				title = ?, amount_cents = ?, is_income = ?, frequency = ?,
				category = ?, notes = ?, due_day = ?, start_date = ?,
				semi_day1 = ?, semi_day2 = ?
			WHERE id = ?`,
			t.Title, t.Amount.Cents, t.IsIncome, string(t.Frequency),
			string(t.Category), t.Notes, nullInt(t.DueDay), startDate,
			nullInt(t.SemiDay1), nullInt(t.SemiDay2), t.ID.String(),
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
			return fmt.Errorf("update template %s: %w", t.ID, core.ErrNotFound)
		}
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `DELETE FROM bill_templates WHERE id = ?`, id.String())
		return err
	})
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, id uuid.UUID) (core.Template, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM bill_templates WHERE id = ?`, id.String())

	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Template{}, fmt.Errorf("get template %s: %w", id, core.ErrNotFound)
		}
		return core.Template{}, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) ListTemplates(ctx context.Context) ([]core.Template, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+templateColumns+` FROM bill_templates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []core.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}
