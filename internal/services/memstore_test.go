package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"budgetzero/internal/core"
)

// memStore is an in-memory Store for service tests. It mirrors the SQLite
// store's ordering contract for ListEntriesForMonth so tests exercise the
// same sequences the real store would return.
type memStore struct {
	templates map[uuid.UUID]core.Template
	entries   map[uuid.UUID]core.Entry
	snapshots map[int]core.Money

	failInsertEntryFor map[uuid.UUID]bool // template IDs whose inserts fail
}

func newMemStore() *memStore {
	return &memStore{
		templates:          make(map[uuid.UUID]core.Template),
		entries:            make(map[uuid.UUID]core.Entry),
		snapshots:          make(map[int]core.Money),
		failInsertEntryFor: make(map[uuid.UUID]bool),
	}
}

var _ Store = (*memStore)(nil)

func (s *memStore) InsertTemplate(_ context.Context, t core.Template) error {
	s.templates[t.ID] = t
	return nil
}

func (s *memStore) UpdateTemplate(_ context.Context, t core.Template) error {
	if _, ok := s.templates[t.ID]; !ok {
		return core.ErrNotFound
	}
	s.templates[t.ID] = t
	return nil
}

func (s *memStore) DeleteTemplate(_ context.Context, id uuid.UUID) error {
	if _, ok := s.templates[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

func (s *memStore) GetTemplate(_ context.Context, id uuid.UUID) (core.Template, error) {
	t, ok := s.templates[id]
	if !ok {
		return core.Template{}, core.ErrNotFound
	}
	return t, nil
}

func (s *memStore) ListTemplates(_ context.Context) ([]core.Template, error) {
	out := make([]core.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *memStore) InsertEntry(_ context.Context, e core.Entry) error {
	if e.TemplateID != nil && s.failInsertEntryFor[*e.TemplateID] {
		return errors.New("simulated insert failure")
	}
	s.entries[e.ID] = e
	return nil
}

func (s *memStore) UpdateEntry(_ context.Context, e core.Entry) error {
	if _, ok := s.entries[e.ID]; !ok {
		return core.ErrNotFound
	}
	s.entries[e.ID] = e
	return nil
}

func (s *memStore) DeleteEntry(_ context.Context, id uuid.UUID) error {
	if _, ok := s.entries[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *memStore) DeleteEntriesForTemplateFrom(_ context.Context, templateID uuid.UUID, month, year int) error {
	from := core.YearMonth(month, year)
	for id, e := range s.entries {
		if e.TemplateID != nil && *e.TemplateID == templateID && core.YearMonth(e.Month, e.Year) >= from {
			delete(s.entries, id)
		}
	}
	return nil
}

func (s *memStore) GetEntry(_ context.Context, id uuid.UUID) (core.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return core.Entry{}, core.ErrNotFound
	}
	return e, nil
}

func (s *memStore) ListEntriesForMonth(_ context.Context, month, year int) ([]core.Entry, error) {
	var out []core.Entry
	for _, e := range s.entries {
		if e.Month == month && e.Year == year {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsPaid != b.IsPaid {
			return a.IsPaid
		}
		if a.IsPaid {
			pa, pb := paymentOrder(a), paymentOrder(b)
			if !pa.Equal(pb) {
				return pa.Before(pb)
			}
		} else if a.DisplayOrder != b.DisplayOrder {
			return a.DisplayOrder < b.DisplayOrder
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

func (s *memStore) EarliestEntryMonth(_ context.Context) (int, int, bool, error) {
	found := false
	best := 0
	for _, e := range s.entries {
		key := core.YearMonth(e.Month, e.Year)
		if !found || key < best {
			best = key
			found = true
		}
	}
	if !found {
		return 0, 0, false, nil
	}
	year := (best - 1) / 12
	return best - year*12, year, true, nil
}

func (s *memStore) GetSnapshot(_ context.Context, month, year int) (core.Money, bool, error) {
	b, ok := s.snapshots[core.YearMonth(month, year)]
	return b, ok, nil
}

func (s *memStore) PutSnapshot(_ context.Context, month, year int, balance core.Money) error {
	s.snapshots[core.YearMonth(month, year)] = balance
	return nil
}

func (s *memStore) DeleteSnapshotsFrom(_ context.Context, month, year int) error {
	from := core.YearMonth(month, year)
	for key := range s.snapshots {
		if key >= from {
			delete(s.snapshots, key)
		}
	}
	return nil
}

// Test helpers shared across the service tests.

func monthlyTemplate(title string, cents int64, dueDay int) core.Template {
	return core.Template{
		ID:        uuid.New(),
		Title:     title,
		Amount:    core.Money{Cents: cents},
		Frequency: core.Monthly,
		Category:  core.CategoryHousing,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DueDay:    dueDay,
	}
}

func incomeTemplate(title string, cents int64, dueDay int) core.Template {
	t := monthlyTemplate(title, cents, dueDay)
	t.IsIncome = true
	t.Category = core.CategoryIncome
	return t
}
