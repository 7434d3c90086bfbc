package shares

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

	// ErrExpired y ErrInactive se distinguen porque significan cosas
	// distintas para el usuario (link vencido vs. link revocado) y
	// mapean a status HTTP distintos.
	ErrExpired  = errors.New("expired")
	ErrInactive = errors.New("inactive")

	ErrPermissionDenied = errors.New("permission denied")
	ErrForbidden        = errors.New("forbidden")

	// ErrTokenExhausted: no se consiguió un token único tras los
	// reintentos. En la práctica solo pasa si el storage está roto.
	ErrTokenExhausted = errors.New("could not allocate a unique token")
)

// DefaultTTL es la expiración que se computa cuando el caller no
// manda una: "sin expiración explícita" no es lo mismo que "nunca
// expira"; el default se setea siempre en la creación.
const DefaultTTL = 30 * 24 * time.Hour

const maxTokenAttempts = 5

// InspectionDirectory evita importar el paquete inspections desde
// este servicio (rompe ciclos). Lo implementa inspections.Service.
// UpsertResponse usa tipos planos por la misma razón: es el contrato
// hacia el store de items, upsert por (inspection_id, field_id) con
// last-write-wins.
type InspectionDirectory interface {
	OwnerOf(ctx context.Context, inspectionID string) (string, error)
	MarkInProgress(ctx context.Context, inspectionID string) error
	UpsertResponse(ctx context.Context, inspectionID, fieldID, fieldType, value, comment string) error
}

type Service struct {
	repo Repository
	dir  InspectionDirectory
	now  func() time.Time

	// newToken es inyectable para forzar colisiones en tests.
	newToken func() (string, error)
}

func NewService(repo Repository, dir InspectionDirectory) *Service {
	return &Service{
		repo:     repo,
		dir:      dir,
		now:      time.Now,
		newToken: NewToken,
	}
}

type CreateInput struct {
	InspectionID string
	CreatedBy    string
	Permission   Permission
	ExpiresAt    *time.Time
}

// Create emite un grant nuevo. Reintenta la generación del token ante
// colisión de unicidad (acotado) y después falla; jamás pisa un grant
// existente.
func (s *Service) Create(ctx context.Context, in CreateInput) (Grant, error) {
	inspectionID := strings.TrimSpace(in.InspectionID)
	createdBy := strings.TrimSpace(in.CreatedBy)
	if inspectionID == "" || createdBy == "" {
		return Grant{}, ErrInvalidInput
	}

	perm := in.Permission
	if perm == "" {
		perm = PermissionView
	}
	if perm != PermissionView && perm != PermissionEdit {
		return Grant{}, ErrInvalidInput
	}

	now := s.now()

	expiresAt := in.ExpiresAt
	if expiresAt == nil {
		t := now.Add(DefaultTTL)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := s.newToken()
		if err != nil {
			// Fuente aleatoria caída: fatal para la creación.
			return Grant{}, err
		}

		g := Grant{
			ID:           uuid.NewString(),
			InspectionID: inspectionID,
			Token:        token,
			Permission:   perm,
			CreatedBy:    createdBy,
			ExpiresAt:    expiresAt,
			IsActive:     true,
			AccessCount:  0,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		err = s.repo.Create(ctx, g)
		if errors.Is(err, ErrDuplicateToken) {
			continue
		}
		if err != nil {
			return Grant{}, err
		}
		return g, nil
	}

	return Grant{}, ErrTokenExhausted
}

// Evaluate decide si el grant es usable ahora. Es read-only y sin
// efectos: la telemetría es un paso explícito aparte, para que los
// intentos fallidos no cuenten como accesos.
func (s *Service) Evaluate(ctx context.Context, token string) (Grant, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Grant{}, ErrNotFound
	}

	g, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	// Revocado gana sobre expirado: no revelamos la ventana de
	// validez de un grant que ya no existe para el portador.
	if !g.IsActive {
		return Grant{}, ErrInactive
	}
	if g.ExpiresAt != nil && !s.now().Before(*g.ExpiresAt) {
		return Grant{}, ErrExpired
	}

	return g, nil
}

// RecordAccess registra un dereference exitoso: incremento atómico
// del contador + bump de updated_at. Si el grant no es usable es un
// no-op silencioso.
func (s *Service) RecordAccess(ctx context.Context, token string) error {
	g, err := s.Evaluate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInactive) || errors.Is(err, ErrExpired) {
			return nil
		}
		return err
	}
	return s.repo.IncrementAccess(ctx, g.Token, s.now())
}

func (s *Service) ListByInspection(ctx context.Context, inspectionID string) ([]Grant, error) {
	inspectionID = strings.TrimSpace(inspectionID)
	if inspectionID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByInspection(ctx, inspectionID)
}

// Revoke desactiva el grant. Solo el creador del grant o el owner de
// la inspección pueden hacerlo. Es terminal (nunca se reactiva) e
// idempotente: revocar dos veces devuelve el grant ya inactivo.
func (s *Service) Revoke(ctx context.Context, token, requesterID string) (Grant, error) {
	token = strings.TrimSpace(token)
	requesterID = strings.TrimSpace(requesterID)
	if token == "" || requesterID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if err := s.authorizeLifecycle(ctx, g, requesterID); err != nil {
		return Grant{}, err
	}

	if !g.IsActive {
		return g, nil
	}

	now := s.now()
	if err := s.repo.SetActive(ctx, g.Token, false, now); err != nil {
		return Grant{}, err
	}
	g.IsActive = false
	g.UpdatedAt = now
	return g, nil
}

// DeleteGrant borra la fila. Misma regla de autorización que Revoke,
// pero sin rastro: para el flujo normal se prefiere Revoke porque
// preserva la auditoría.
func (s *Service) DeleteGrant(ctx context.Context, id, requesterID string) error {
	id = strings.TrimSpace(id)
	requesterID = strings.TrimSpace(requesterID)
	if id == "" || requesterID == "" {
		return ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.authorizeLifecycle(ctx, g, requesterID); err != nil {
		return err
	}

	return s.repo.Delete(ctx, g.ID)
}

// ApplyResponses es el merge engine: valida permiso edit y aplica el
// batch best-effort, tupla por tupla, con overwrite puro (por eso es
// idempotente). Al final dispara la transición draft -> in_progress
// de la inspección si se aplicó algo.
func (s *Service) ApplyResponses(ctx context.Context, token string, subs []ResponseSubmission) (ApplyResult, error) {
	g, err := s.Evaluate(ctx, token)
	if err != nil {
		return ApplyResult{}, err
	}

	// Un grant view jamás muta estado, por bien formado que venga
	// el payload.
	if g.Permission != PermissionEdit {
		return ApplyResult{}, ErrPermissionDenied
	}

	res := ApplyResult{
		InspectionID: g.InspectionID,
		Fields:       make([]FieldResult, 0, len(subs)),
	}

	for _, sub := range subs {
		fieldID := strings.TrimSpace(sub.FieldID)
		if fieldID == "" {
			res.Fields = append(res.Fields, FieldResult{FieldID: sub.FieldID, Error: "field_id required"})
			continue
		}

		value, err := normalizeValue(sub.FieldType, sub.Value)
		if err != nil {
			res.Fields = append(res.Fields, FieldResult{FieldID: fieldID, Error: err.Error()})
			continue
		}

		err = s.dir.UpsertResponse(ctx, g.InspectionID, fieldID, string(sub.FieldType), value, strings.TrimSpace(sub.Comment))
		if err != nil {
			res.Fields = append(res.Fields, FieldResult{FieldID: fieldID, Error: "could not store response"})
			continue
		}

		res.Applied++
		res.Fields = append(res.Fields, FieldResult{FieldID: fieldID, Applied: true})
	}

	if res.Applied > 0 {
		// La inspección decide si corresponde (solo desde draft).
		_ = s.dir.MarkInProgress(ctx, g.InspectionID)
	}

	return res, nil
}

func (s *Service) authorizeLifecycle(ctx context.Context, g Grant, requesterID string) error {
	if requesterID == g.CreatedBy {
		return nil
	}
	owner, err := s.dir.OwnerOf(ctx, g.InspectionID)
	if err != nil || owner != requesterID {
		return ErrForbidden
	}
	return nil
}
