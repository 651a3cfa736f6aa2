package services

import (
	"context"

	"github.com/google/uuid"

	"budgetzero/internal/core"
)

// Narrow store ports consumed by the services. *storage.SQLiteStore satisfies
// all of them; tests substitute in-memory fakes.
type (
	TemplateStore interface {
		InsertTemplate(ctx context.Context, t core.Template) error
		UpdateTemplate(ctx context.Context, t core.Template) error
		DeleteTemplate(ctx context.Context, id uuid.UUID) error
		GetTemplate(ctx context.Context, id uuid.UUID) (core.Template, error)
		ListTemplates(ctx context.Context) ([]core.Template, error)
	}

	EntryStore interface {
		InsertEntry(ctx context.Context, e core.Entry) error
		UpdateEntry(ctx context.Context, e core.Entry) error
		DeleteEntry(ctx context.Context, id uuid.UUID) error
		DeleteEntriesForTemplateFrom(ctx context.Context, templateID uuid.UUID, month, year int) error
		GetEntry(ctx context.Context, id uuid.UUID) (core.Entry, error)
		ListEntriesForMonth(ctx context.Context, month, year int) ([]core.Entry, error)
		EarliestEntryMonth(ctx context.Context) (month, year int, ok bool, err error)
	}

	SnapshotStore interface {
		GetSnapshot(ctx context.Context, month, year int) (balance core.Money, ok bool, err error)
		PutSnapshot(ctx context.Context, month, year int, balance core.Money) error
		DeleteSnapshotsFrom(ctx context.Context, month, year int) error
	}

	// Store is the full persistence surface the ledger service needs.
	Store interface {
		TemplateStore
		EntryStore
		SnapshotStore
	}
)
