package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"safety-inspections/internal/domain/shares"
)

var ErrNotFound = errors.New("not found")

type sharesRepo struct {
	mu      sync.RWMutex
	byID    map[string]shares.Grant
	byToken map[string]string // token -> id
}

func NewSharesRepo() shares.Repository {
	return &sharesRepo{
		byID:    make(map[string]shares.Grant),
		byToken: make(map[string]string),
	}
}

func (r *sharesRepo) Create(ctx context.Context, g shares.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g.ID == "" || g.Token == "" {
		return errors.New("grant id and token required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	// Unicidad del token: la colisión es un fallo de creación, nunca
	// se sobreescribe el grant existente.
	if _, exists := r.byToken[g.Token]; exists {
		return shares.ErrDuplicateToken
	}

	r.byID[g.ID] = g
	r.byToken[g.Token] = g.ID
	return nil
}

func (r *sharesRepo) GetByToken(ctx context.Context, token string) (shares.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byToken[token]
	if !ok {
		return shares.Grant{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *sharesRepo) GetByID(ctx context.Context, id string) (shares.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return shares.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *sharesRepo) ListByInspection(ctx context.Context, inspectionID string) ([]shares.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]shares.Grant, 0)
	for _, g := range r.byID {
		if g.InspectionID == inspectionID {
			out = append(out, g)
		}
	}

	// newest-first, con desempate estable por ID
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})

	return out, nil
}

func (r *sharesRepo) SetActive(ctx context.Context, token string, active bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[token]
	if !ok {
		return ErrNotFound
	}
	g := r.byID[id]
	g.IsActive = active
	g.UpdatedAt = at
	r.byID[id] = g
	return nil
}

// IncrementAccess incrementa bajo el lock de escritura: equivalente
// in-memory del UPDATE atómico de Postgres.
func (r *sharesRepo) IncrementAccess(ctx context.Context, token string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byToken[token]
	if !ok {
		return ErrNotFound
	}
	g := r.byID[id]
	g.AccessCount++
	g.UpdatedAt = at
	r.byID[id] = g
	return nil
}

func (r *sharesRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.byToken, g.Token)
	delete(r.byID, id)
	return nil
}
