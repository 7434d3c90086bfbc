package inspections

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Title string
	Notes string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Inspection, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Inspection{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Title) == "" {
		return Inspection{}, ErrInvalidInput
	}

	now := s.now()
	i := Inspection{
		ID:          uuid.NewString(),
		OwnerUserID: strings.TrimSpace(ownerUserID),
		Title:       strings.TrimSpace(in.Title),
		Notes:       strings.TrimSpace(in.Notes),
		Status:      StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, i); err != nil {
		return Inspection{}, err
	}
	return i, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Inspection, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Inspection{}, ErrNotFound
	}
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Inspection{}, ErrNotFound
	}
	return i, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Inspection, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Snapshot devuelve la inspección con sus items, para el dereference
// anónimo de un share.
func (s *Service) Snapshot(ctx context.Context, id string) (Inspection, []Item, error) {
	i, err := s.GetByID(ctx, id)
	if err != nil {
		return Inspection{}, nil, err
	}
	items, err := s.repo.ListItems(ctx, i.ID)
	if err != nil {
		return Inspection{}, nil, err
	}
	return i, items, nil
}

// MarkInProgress transiciona draft -> in_progress. Si la inspección
// ya fue tocada no hace nada: la transición solo aplica a recursos
// vírgenes.
func (s *Service) MarkInProgress(ctx context.Context, id string) error {
	i, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if i.Status != StatusDraft {
		return nil
	}
	return s.repo.SetStatus(ctx, i.ID, StatusInProgress, s.now())
}

// UpsertResponse implementa shares.InspectionDirectory: vuelca una
// respuesta externa sobre el item (inspection_id, field_id) con
// last-write-wins.
func (s *Service) UpsertResponse(ctx context.Context, inspectionID, fieldID, fieldType, value, comment string) error {
	if strings.TrimSpace(inspectionID) == "" || strings.TrimSpace(fieldID) == "" {
		return ErrInvalidInput
	}

	now := s.now()
	return s.repo.UpsertItem(ctx, Item{
		ID:           uuid.NewString(),
		InspectionID: inspectionID,
		FieldID:      fieldID,
		FieldType:    fieldType,
		Value:        value,
		Comment:      comment,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}
