package shares

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateToken lo devuelven los adapters cuando el token choca
// con uno ya emitido (unique constraint). El servicio reintenta con
// otro token; nunca se sobreescribe el grant existente.
var ErrDuplicateToken = errors.New("duplicate share token")

type Repository interface {
	Create(ctx context.Context, g Grant) error
	GetByToken(ctx context.Context, token string) (Grant, error)
	GetByID(ctx context.Context, id string) (Grant, error)

	// ListByInspection devuelve los grants más nuevos primero,
	// incluyendo revocados (solo el owner llega a esta vista).
	ListByInspection(ctx context.Context, inspectionID string) ([]Grant, error)

	SetActive(ctx context.Context, token string, active bool, at time.Time) error

	// IncrementAccess debe ser atómico en el storage
	// (count = count + 1), nunca read-modify-write desde acá.
	IncrementAccess(ctx context.Context, token string, at time.Time) error

	Delete(ctx context.Context, id string) error
}
