package inspections

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, i Inspection) error
	GetByID(ctx context.Context, id string) (Inspection, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Inspection, error)
	SetStatus(ctx context.Context, id string, status Status, at time.Time) error

	// UpsertItem escribe por (inspection_id, field_id):
	// si el item existe pisa value/comment/updated_at y conserva
	// id/created_at; si no, inserta.
	UpsertItem(ctx context.Context, it Item) error
	ListItems(ctx context.Context, inspectionID string) ([]Item, error)
}
