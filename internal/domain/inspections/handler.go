package inspections

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"safety-inspections/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta el CRUD mínimo de inspecciones. El CRUD
// completo (checklists, CSV, PDF) vive en otro servicio; esto es lo
// justo para operar el subsistema de sharing.
// Las rutas van directo sobre el router raíz: el paquete shares
// también registra bajo /inspections/{inspectionID} y dos subrouters
// montados sobre el mismo prefijo se taparían entre sí.
func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/inspections", createInspectionHandler(svc))
	r.Get("/inspections", listInspectionsHandler(svc))
	r.Get("/inspections/{inspectionID}", getInspectionHandler(svc))
}

type createInspectionRequest struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type inspectionResponse struct {
	ID          string    `json:"id"`
	OwnerUserID string    `json:"owner_user_id"`
	Title       string    `json:"title"`
	Notes       string    `json:"notes"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type itemResponse struct {
	ID        string          `json:"id"`
	FieldID   string          `json:"field_id"`
	FieldType string          `json:"field_type"`
	Value     json.RawMessage `json:"value"`
	Comment   string          `json:"comment,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type inspectionDetailResponse struct {
	inspectionResponse
	Items []itemResponse `json:"items"`
}

// createInspectionHandler godoc
// @Summary Crear inspección
// @Description Registra una inspección en estado draft. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags inspections
// @Accept json
// @Produce json
// @Param payload body createInspectionRequest true "Datos de la inspección"
// @Success 201 {object} inspectionResponse
// @Failure 400 {string} string "invalid json / title required"
// @Failure 401 {string} string "unauthorized"
// @Router /inspections [post]
func createInspectionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createInspectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		i, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Title: req.Title,
			Notes: req.Notes,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toInspectionResponse(i))
	}
}

// listInspectionsHandler godoc
// @Summary Listar mis inspecciones
// @Tags inspections
// @Produce json
// @Success 200 {array} inspectionResponse
// @Failure 401 {string} string "unauthorized"
// @Router /inspections [get]
func listInspectionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]inspectionResponse, 0, len(items))
		for _, i := range items {
			out = append(out, toInspectionResponse(i))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getInspectionHandler godoc
// @Summary Ver una inspección con sus items
// @Tags inspections
// @Produce json
// @Param inspectionID path string true "ID de la inspección"
// @Success 200 {object} inspectionDetailResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "inspection not found"
// @Router /inspections/{inspectionID} [get]
func getInspectionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		inspectionID := chi.URLParam(r, "inspectionID")
		i, items, err := svc.Snapshot(r.Context(), inspectionID)
		if err != nil {
			http.Error(w, "inspection not found", http.StatusNotFound)
			return
		}
		if i.OwnerUserID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, inspectionDetailResponse{
			inspectionResponse: toInspectionResponse(i),
			Items:              toItemResponses(items),
		})
	}
}

func toInspectionResponse(i Inspection) inspectionResponse {
	return inspectionResponse{
		ID:          i.ID,
		OwnerUserID: i.OwnerUserID,
		Title:       i.Title,
		Notes:       i.Notes,
		Status:      i.Status,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

func toItemResponses(items []Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, itemResponse{
			ID:        it.ID,
			FieldID:   it.FieldID,
			FieldType: it.FieldType,
			Value:     json.RawMessage(it.Value),
			Comment:   it.Comment,
			UpdatedAt: it.UpdatedAt,
		})
	}
	return out
}

// writeJSON se duplica por módulo a propósito, igual que en el resto
// de handlers: todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
