package shares

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"safety-inspections/internal/domain/inspections"
	"safety-inspections/internal/middleware"
	"safety-inspections/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
)

// FeatureInspectionShare es la capability de plan que habilita el
// sharing. Solo se chequea si hay resolver configurado.
const FeatureInspectionShare = "inspections:share"

func RegisterRoutes(r chi.Router, svc *Service, inspSvc *inspections.Service, caps capabilities.CapabilitiesResolver, shareBaseURL string) {
	shareBaseURL = strings.TrimRight(strings.TrimSpace(shareBaseURL), "/")

	// Owner: emitir y listar grants de una inspección. Directo sobre
	// el router raíz porque el paquete inspections ya registra bajo
	// /inspections y un mount sobre {inspectionID} lo taparía.
	r.Post("/inspections/{inspectionID}/share", createShareHandler(svc, inspSvc, caps, shareBaseURL))
	r.Get("/inspections/{inspectionID}/shares", listSharesHandler(svc, inspSvc))

	// Anónimo: el token es la credencial. El DELETE del mismo path
	// es la revocación (autenticada).
	r.Route("/shared/{token}", func(sr chi.Router) {
		sr.Get("/", dereferenceHandler(svc, inspSvc))
		sr.Get("/details", shareDetailsHandler(svc))
		sr.Post("/access", recordAccessHandler(svc))
		sr.Post("/responses", submitResponsesHandler(svc))
		sr.Delete("/", revokeShareHandler(svc))
	})

	// Hard delete por ID de grant (distinto de revocar)
	r.Delete("/inspection-shares/{grantID}", deleteShareHandler(svc))
}

type createShareRequest struct {
	Permission Permission `json:"permission" enums:"view,edit"`
	ExpiresAt  string     `json:"expires_at"` // RFC3339, opcional (default: +30 días)
}

type createShareResponse struct {
	InspectionID string     `json:"inspection_id"`
	Token        string     `json:"token"`
	URL          string     `json:"url"`
	Permission   Permission `json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

type grantResponse struct {
	ID           string     `json:"id"`
	InspectionID string     `json:"inspection_id"`
	Token        string     `json:"token"`
	Permission   Permission `json:"permission"`
	CreatedBy    string     `json:"created_by"`
	ExpiresAt    *time.Time `json:"expires_at"`
	IsActive     bool       `json:"is_active"`
	AccessCount  int64      `json:"access_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// sharedInspectionResponse es la vista anónima del recurso: sin
// owner_user_id ni nada que identifique al dueño.
type sharedInspectionResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Notes     string             `json:"notes"`
	Status    inspections.Status `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type sharedItemResponse struct {
	FieldID   string          `json:"field_id"`
	FieldType string          `json:"field_type"`
	Value     json.RawMessage `json:"value"`
	Comment   string          `json:"comment,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type dereferenceResponse struct {
	Inspection sharedInspectionResponse `json:"inspection"`
	Items      []sharedItemResponse     `json:"items"`
	Permission Permission               `json:"permission"`
	ExpiresAt  *time.Time               `json:"expires_at"`
}

type shareDetailsResponse struct {
	InspectionID string     `json:"inspection_id"`
	Permission   Permission `json:"permission"`
	ExpiresAt    *time.Time `json:"expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type submitResponsesRequest struct {
	Responses []submissionPayload `json:"responses"`
}

type submissionPayload struct {
	FieldID   string          `json:"field_id"`
	FieldType FieldType       `json:"field_type" enums:"text,number,boolean,select,date"`
	Value     json.RawMessage `json:"value"`
	Comment   string          `json:"comment"`
}

type fieldResultPayload struct {
	FieldID string `json:"field_id"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

type submitResponsesResponse struct {
	InspectionID string               `json:"inspection_id"`
	Applied      int                  `json:"applied"`
	Results      []fieldResultPayload `json:"results"`
}

// createShareHandler godoc
// @Summary Compartir una inspección por link
// @Description Emite un grant con token impredecible. Solo el owner de la inspección. `permission` default `view`; `expires_at` default ahora+30 días. Autenticación: `X-Debug-User-ID` (dev) o `Authorization: Bearer <token>` (prod).
// @Tags shares
// @Accept json
// @Produce json
// @Param inspectionID path string true "ID de la inspección"
// @Param payload body createShareRequest true "Permiso y expiración opcional"
// @Success 200 {object} createShareResponse
// @Failure 400 {string} string "invalid json / expires_at inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden / sharing not available"
// @Failure 404 {string} string "inspection not found"
// @Router /inspections/{inspectionID}/share [post]
func createShareHandler(svc *Service, inspSvc *inspections.Service, caps capabilities.CapabilitiesResolver, shareBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		inspectionID := chi.URLParam(r, "inspectionID")
		ownerID, err := inspSvc.OwnerOf(r.Context(), inspectionID)
		if err != nil || strings.TrimSpace(ownerID) == "" {
			http.Error(w, "inspection not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		// Gate por plan: solo si hay resolver configurado.
		if caps != nil {
			allowed, err := caps.HasFeature(r.Context(), capabilities.CapabilityCheck{
				UserID:  claims.UserID,
				Feature: FeatureInspectionShare,
			})
			if err != nil || !allowed {
				http.Error(w, "sharing not available on current plan", http.StatusForbidden)
				return
			}
		}

		var req createShareRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var expiresAt *time.Time
		if strings.TrimSpace(req.ExpiresAt) != "" {
			t, err := time.Parse(time.RFC3339, req.ExpiresAt)
			if err != nil {
				http.Error(w, "expires_at must be RFC3339", http.StatusBadRequest)
				return
			}
			expiresAt = &t
		}

		g, err := svc.Create(r.Context(), CreateInput{
			InspectionID: inspectionID,
			CreatedBy:    claims.UserID,
			Permission:   req.Permission,
			ExpiresAt:    expiresAt,
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

		writeJSON(w, http.StatusOK, createShareResponse{
			InspectionID: g.InspectionID,
			Token:        g.Token,
			URL:          shareBaseURL + "/shared/" + g.Token,
			Permission:   g.Permission,
			ExpiresAt:    g.ExpiresAt,
		})
	}
}

// listSharesHandler godoc
// @Summary Listar los grants de una inspección
// @Description Vista del owner: incluye grants revocados y expirados (auditoría).
// @Tags shares
// @Produce json
// @Param inspectionID path string true "ID de la inspección"
// @Success 200 {array} grantResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "inspection not found"
// @Router /inspections/{inspectionID}/shares [get]
func listSharesHandler(svc *Service, inspSvc *inspections.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		inspectionID := chi.URLParam(r, "inspectionID")
		ownerID, err := inspSvc.OwnerOf(r.Context(), inspectionID)
		if err != nil || strings.TrimSpace(ownerID) == "" {
			http.Error(w, "inspection not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByInspection(r.Context(), inspectionID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]grantResponse, 0, len(items))
		for _, g := range items {
			out = append(out, toGrantResponse(g))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// dereferenceHandler godoc
// @Summary Abrir una inspección compartida
// @Description Acceso anónimo: el token es la credencial. La evaluación pasa antes de devolver cualquier dato del recurso; un link expirado o revocado nunca muestra contenido parcial. Cada acceso exitoso incrementa el contador.
// @Tags shared
// @Produce json
// @Param token path string true "Token del share"
// @Success 200 {object} dereferenceResponse
// @Failure 404 {string} string "not found (inexistente o revocado)"
// @Failure 410 {string} string "link expired"
// @Router /shared/{token} [get]
func dereferenceHandler(svc *Service, inspSvc *inspections.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := chi.URLParam(r, "token")

		g, err := svc.Evaluate(r.Context(), token)
		if err != nil {
			writeEvaluateError(w, err)
			return
		}

		i, items, err := inspSvc.Snapshot(r.Context(), g.InspectionID)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		// Telemetría después de evaluar y resolver el recurso; si el
		// update falla, el dereference igual responde.
		_ = svc.RecordAccess(r.Context(), g.Token)

		out := dereferenceResponse{
			Inspection: sharedInspectionResponse{
				ID:        i.ID,
				Title:     i.Title,
				Notes:     i.Notes,
				Status:    i.Status,
				CreatedAt: i.CreatedAt,
				UpdatedAt: i.UpdatedAt,
			},
			Items:      make([]sharedItemResponse, 0, len(items)),
			Permission: g.Permission,
			ExpiresAt:  g.ExpiresAt,
		}
		for _, it := range items {
			out.Items = append(out.Items, sharedItemResponse{
				FieldID:   it.FieldID,
				FieldType: it.FieldType,
				Value:     json.RawMessage(it.Value),
				Comment:   it.Comment,
				UpdatedAt: it.UpdatedAt,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// shareDetailsHandler godoc
// @Summary Metadata de un share
// @Description Acceso anónimo: devuelve la metadata del grant (sin datos del recurso), para que el cliente sepa qué permiso tiene y hasta cuándo.
// @Tags shared
// @Produce json
// @Param token path string true "Token del share"
// @Success 200 {object} shareDetailsResponse
// @Failure 404 {string} string "not found"
// @Failure 410 {string} string "link expired"
// @Router /shared/{token}/details [get]
func shareDetailsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, err := svc.Evaluate(r.Context(), chi.URLParam(r, "token"))
		if err != nil {
			writeEvaluateError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, shareDetailsResponse{
			InspectionID: g.InspectionID,
			Permission:   g.Permission,
			ExpiresAt:    g.ExpiresAt,
			CreatedAt:    g.CreatedAt,
		})
	}
}

// recordAccessHandler godoc
// @Summary Registrar un acceso
// @Description Registro explícito de telemetría. Si el grant no es usable, no-op silencioso (200 igual).
// @Tags shared
// @Produce json
// @Param token path string true "Token del share"
// @Success 200 {object} map[string]bool
// @Router /shared/{token}/access [post]
func recordAccessHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.RecordAccess(r.Context(), chi.URLParam(r, "token")); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// submitResponsesHandler godoc
// @Summary Enviar respuestas a través de un share editable
// @Description Aplica un batch de respuestas sobre los items de la inspección (upsert por campo, last-write-wins). Requiere permission=edit. El batch es best-effort: el resultado detalla qué campos se aplicaron.
// @Tags shared
// @Accept json
// @Produce json
// @Param token path string true "Token del share"
// @Param payload body submitResponsesRequest true "Batch de respuestas"
// @Success 200 {object} submitResponsesResponse
// @Failure 400 {string} string "invalid json"
// @Failure 403 {string} string "permission denied (grant view)"
// @Failure 404 {string} string "not found"
// @Failure 410 {string} string "link expired"
// @Router /shared/{token}/responses [post]
func submitResponsesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitResponsesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		subs := make([]ResponseSubmission, 0, len(req.Responses))
		for _, p := range req.Responses {
			subs = append(subs, ResponseSubmission{
				FieldID:   p.FieldID,
				FieldType: p.FieldType,
				Value:     p.Value,
				Comment:   p.Comment,
			})
		}

		res, err := svc.ApplyResponses(r.Context(), chi.URLParam(r, "token"), subs)
		if err != nil {
			switch err {
			case ErrPermissionDenied:
				http.Error(w, "permission denied", http.StatusForbidden)
			case ErrExpired:
				http.Error(w, "link expired", http.StatusGone)
			case ErrNotFound, ErrInactive:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := submitResponsesResponse{
			InspectionID: res.InspectionID,
			Applied:      res.Applied,
			Results:      make([]fieldResultPayload, 0, len(res.Fields)),
		}
		for _, f := range res.Fields {
			out.Results = append(out.Results, fieldResultPayload{
				FieldID: f.FieldID,
				Applied: f.Applied,
				Error:   f.Error,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// revokeShareHandler godoc
// @Summary Revocar un share
// @Description Desactiva el grant (terminal, idempotente). Solo el creador del grant o el owner de la inspección. Preferido sobre el delete porque preserva auditoría.
// @Tags shares
// @Produce json
// @Param token path string true "Token del share"
// @Success 200 {object} grantResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /shared/{token} [delete]
func revokeShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		g, err := svc.Revoke(r.Context(), chi.URLParam(r, "token"), claims.UserID)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toGrantResponse(g))
	}
}

// deleteShareHandler godoc
// @Summary Borrar la fila de un grant
// @Description Hard delete por ID de grant, misma autorización que revocar. Borra el historial de accesos; para el flujo normal usar revoke.
// @Tags shares
// @Produce json
// @Param grantID path string true "ID del grant"
// @Success 200 {object} map[string]bool
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "not found"
// @Router /inspection-shares/{grantID} [delete]
func deleteShareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		err := svc.DeleteGrant(r.Context(), chi.URLParam(r, "grantID"), claims.UserID)
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrForbidden:
				http.Error(w, "forbidden", http.StatusForbidden)
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

// writeEvaluateError mapea el resultado de Evaluate a HTTP:
// expirado se distingue (410) para que el cliente pueda renderizar
// "este link venció"; revocado se responde igual que inexistente
// (404) para no filtrar que el grant existió.
func writeEvaluateError(w http.ResponseWriter, err error) {
	switch err {
	case ErrExpired:
		http.Error(w, "link expired", http.StatusGone)
	case ErrNotFound, ErrInactive:
		http.Error(w, "not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toGrantResponse(g Grant) grantResponse {
	return grantResponse{
		ID:           g.ID,
		InspectionID: g.InspectionID,
		Token:        g.Token,
		Permission:   g.Permission,
		CreatedBy:    g.CreatedBy,
		ExpiresAt:    g.ExpiresAt,
		IsActive:     g.IsActive,
		AccessCount:  g.AccessCount,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

// writeJSON se duplica por módulo a propósito, igual que en el resto
// de handlers: todavía no amerita un helper compartido.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
