package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"safety-inspections/internal/domain/inspections"
)

type itemKey struct {
	inspectionID string
	fieldID      string
}

type inspectionsRepo struct {
	mu    sync.RWMutex
	byID  map[string]inspections.Inspection
	items map[itemKey]inspections.Item
}

func NewInspectionsRepo() inspections.Repository {
	return &inspectionsRepo{
		byID:  make(map[string]inspections.Inspection),
		items: make(map[itemKey]inspections.Item),
	}
}

func (r *inspectionsRepo) Create(ctx context.Context, i inspections.Inspection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i.ID == "" {
		return errors.New("inspection id required")
	}
	if _, exists := r.byID[i.ID]; exists {
		return errors.New("inspection already exists")
	}
	r.byID[i.ID] = i
	return nil
}

func (r *inspectionsRepo) GetByID(ctx context.Context, id string) (inspections.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.byID[id]
	if !ok {
		return inspections.Inspection{}, ErrNotFound
	}
	return i, nil
}

func (r *inspectionsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]inspections.Inspection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inspections.Inspection, 0)
	for _, i := range r.byID {
		if i.OwnerUserID == ownerUserID {
			out = append(out, i)
		}
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].CreatedAt.After(out[b].CreatedAt)
	})

	return out, nil
}

func (r *inspectionsRepo) SetStatus(ctx context.Context, id string, status inspections.Status, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	i.Status = status
	i.UpdatedAt = at
	r.byID[id] = i
	return nil
}

// UpsertItem reproduce el ON CONFLICT de Postgres: si el item de
// (inspection_id, field_id) existe, conserva id/created_at y pisa
// el resto.
func (r *inspectionsRepo) UpsertItem(ctx context.Context, it inspections.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := itemKey{inspectionID: it.InspectionID, fieldID: it.FieldID}
	if prev, exists := r.items[key]; exists {
		it.ID = prev.ID
		it.CreatedAt = prev.CreatedAt
	}
	r.items[key] = it
	return nil
}

func (r *inspectionsRepo) ListItems(ctx context.Context, inspectionID string) ([]inspections.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]inspections.Item, 0)
	for key, it := range r.items {
		if key.inspectionID == inspectionID {
			out = append(out, it)
		}
	}

	sort.Slice(out, func(a, b int) bool {
		return out[a].FieldID < out[b].FieldID
	})

	return out, nil
}
