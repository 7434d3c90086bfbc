package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// doReq dispara un request contra el server de prueba. userID vacío
// significa request anónimo (sin X-Debug-User-ID).
func doReq(t *testing.T, method, url, userID string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("X-Debug-User-ID", userID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	raw, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %q: %v", string(raw), err)
	}
	return v
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	// fuerza el storage in-memory aunque el entorno tenga un DSN
	t.Setenv("DB_DSN", "")
	srv := httptest.NewServer(NewRouter(Options{ShareBaseURL: "https://app.example.com"}))
	t.Cleanup(srv.Close)
	return srv
}

func createInspection(t *testing.T, srv *httptest.Server, owner, title string) string {
	t.Helper()
	resp, raw := doReq(t, http.MethodPost, srv.URL+"/inspections", owner, map[string]string{"title": title})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create inspection: expected 201, got %d (%s)", resp.StatusCode, raw)
	}
	return decode[struct {
		ID string `json:"id"`
	}](t, raw).ID
}

func createShare(t *testing.T, srv *httptest.Server, owner, inspectionID string, body map[string]string) (token, url string) {
	t.Helper()
	resp, raw := doReq(t, http.MethodPost, srv.URL+"/inspections/"+inspectionID+"/share", owner, body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create share: expected 200, got %d (%s)", resp.StatusCode, raw)
	}
	out := decode[struct {
		Token string `json:"token"`
		URL   string `json:"url"`
	}](t, raw)
	return out.Token, out.URL
}

func TestE2E_ShareLifecycle(t *testing.T) {
	srv := newTestServer(t)
	inspectionID := createInspection(t, srv, "owner-1", "Depósito central")

	// compartir sin auth => 401
	resp, _ := doReq(t, http.MethodPost, srv.URL+"/inspections/"+inspectionID+"/share", "", map[string]string{})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", resp.StatusCode)
	}

	// compartir una inspección ajena => 403
	resp, _ = doReq(t, http.MethodPost, srv.URL+"/inspections/"+inspectionID+"/share", "intruder-9", map[string]string{})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", resp.StatusCode)
	}

	token, shareURL := createShare(t, srv, "owner-1", inspectionID, map[string]string{"permission": "view"})
	if want := "https://app.example.com/shared/" + token; shareURL != want {
		t.Fatalf("expected share url %s, got %s", want, shareURL)
	}

	// dereference anónimo: 200 y sin datos del dueño
	resp, raw := doReq(t, http.MethodGet, srv.URL+"/shared/"+token, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 dereferencing share, got %d (%s)", resp.StatusCode, raw)
	}
	deref := decode[map[string]json.RawMessage](t, raw)
	var insp map[string]any
	if err := json.Unmarshal(deref["inspection"], &insp); err != nil {
		t.Fatalf("decode inspection: %v", err)
	}
	if insp["title"] != "Depósito central" {
		t.Fatalf("unexpected title: %v", insp["title"])
	}
	if _, leaked := insp["owner_user_id"]; leaked {
		t.Fatalf("anonymous view must not expose the owner")
	}

	// token basura => 404
	resp, _ = doReq(t, http.MethodGet, srv.URL+"/shared/definitely-not-a-token", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token, got %d", resp.StatusCode)
	}

	// details devuelve metadata sin el recurso
	resp, raw = doReq(t, http.MethodGet, srv.URL+"/shared/"+token+"/details", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for details, got %d", resp.StatusCode)
	}
	details := decode[struct {
		InspectionID string `json:"inspection_id"`
		Permission   string `json:"permission"`
	}](t, raw)
	if details.InspectionID != inspectionID || details.Permission != "view" {
		t.Fatalf("unexpected details: %+v", details)
	}

	// el owner ve el contador de accesos en la lista
	resp, raw = doReq(t, http.MethodGet, srv.URL+"/inspections/"+inspectionID+"/shares", "owner-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 listing shares, got %d", resp.StatusCode)
	}
	grants := decode[[]struct {
		Token       string `json:"token"`
		AccessCount int64  `json:"access_count"`
		IsActive    bool   `json:"is_active"`
	}](t, raw)
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	if grants[0].AccessCount != 1 {
		t.Fatalf("expected 1 recorded access, got %d", grants[0].AccessCount)
	}

	// un extraño no puede revocar, y el link sigue vivo
	resp, _ = doReq(t, http.MethodDelete, srv.URL+"/shared/"+token, "intruder-9", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 revoking as stranger, got %d", resp.StatusCode)
	}
	resp, _ = doReq(t, http.MethodGet, srv.URL+"/shared/"+token, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected share still usable after failed revoke, got %d", resp.StatusCode)
	}

	// el owner revoca: terminal e idempotente
	resp, raw = doReq(t, http.MethodDelete, srv.URL+"/shared/"+token, "owner-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 revoking as owner, got %d (%s)", resp.StatusCode, raw)
	}
	resp, _ = doReq(t, http.MethodGet, srv.URL+"/shared/"+token, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after revoke, got %d", resp.StatusCode)
	}
	resp, raw = doReq(t, http.MethodDelete, srv.URL+"/shared/"+token, "owner-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on second revoke, got %d", resp.StatusCode)
	}
	revoked := decode[struct {
		IsActive bool `json:"is_active"`
	}](t, raw)
	if revoked.IsActive {
		t.Fatalf("expected grant inactive after second revoke")
	}
}

func TestE2E_EditShareSubmitsResponses(t *testing.T) {
	srv := newTestServer(t)
	inspectionID := createInspection(t, srv, "owner-1", "Planta baja")

	viewToken, _ := createShare(t, srv, "owner-1", inspectionID, map[string]string{"permission": "view"})
	editToken, _ := createShare(t, srv, "owner-1", inspectionID, map[string]string{"permission": "edit"})

	payload := map[string]any{
		"responses": []map[string]any{
			{"field_id": "10", "field_type": "text", "value": "sin novedades", "comment": "ok"},
			{"field_id": "11", "field_type": "number", "value": 42.5},
		},
	}

	// un share view no puede escribir
	resp, _ := doReq(t, http.MethodPost, srv.URL+"/shared/"+viewToken+"/responses", "", payload)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 submitting through view share, got %d", resp.StatusCode)
	}

	// un share edit sí
	resp, raw := doReq(t, http.MethodPost, srv.URL+"/shared/"+editToken+"/responses", "", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 submitting through edit share, got %d (%s)", resp.StatusCode, raw)
	}
	submit := decode[struct {
		Applied int `json:"applied"`
	}](t, raw)
	if submit.Applied != 2 {
		t.Fatalf("expected 2 applied, got %d", submit.Applied)
	}

	// reenviar el mismo batch no duplica items
	resp, _ = doReq(t, http.MethodPost, srv.URL+"/shared/"+editToken+"/responses", "", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on resubmit, got %d", resp.StatusCode)
	}

	// el owner ve los items y la inspección pasó a in_progress
	resp, raw = doReq(t, http.MethodGet, srv.URL+"/inspections/"+inspectionID, "owner-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching inspection, got %d (%s)", resp.StatusCode, raw)
	}
	detail := decode[struct {
		Status string `json:"status"`
		Items  []struct {
			FieldID string          `json:"field_id"`
			Value   json.RawMessage `json:"value"`
		} `json:"items"`
	}](t, raw)
	if detail.Status != "in_progress" {
		t.Fatalf("expected in_progress after responses, got %s", detail.Status)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("expected 2 items after resubmit, got %d", len(detail.Items))
	}
	if string(detail.Items[0].Value) != `"sin novedades"` {
		t.Fatalf("unexpected item value: %s", detail.Items[0].Value)
	}

	// batch parcialmente inválido: aplica lo que puede
	resp, raw = doReq(t, http.MethodPost, srv.URL+"/shared/"+editToken+"/responses", "", map[string]any{
		"responses": []map[string]any{
			{"field_id": "12", "field_type": "number", "value": "no es número"},
			{"field_id": "13", "field_type": "boolean", "value": true},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on partial batch, got %d", resp.StatusCode)
	}
	partial := decode[struct {
		Applied int `json:"applied"`
		Results []struct {
			FieldID string `json:"field_id"`
			Applied bool   `json:"applied"`
			Error   string `json:"error"`
		} `json:"results"`
	}](t, raw)
	if partial.Applied != 1 {
		t.Fatalf("expected 1 applied on partial batch, got %d", partial.Applied)
	}
	if partial.Results[0].Applied || partial.Results[0].Error == "" {
		t.Fatalf("expected failure detail for field 12: %+v", partial.Results[0])
	}
	if !partial.Results[1].Applied {
		t.Fatalf("expected field 13 applied: %+v", partial.Results[1])
	}
}

func TestE2E_ExpiredShareIsGone(t *testing.T) {
	srv := newTestServer(t)
	inspectionID := createInspection(t, srv, "owner-1", "Azotea")

	past := time.Now().Add(-time.Minute).UTC().Format(time.RFC3339)
	token, _ := createShare(t, srv, "owner-1", inspectionID, map[string]string{
		"permission": "edit",
		"expires_at": past,
	})

	resp, _ := doReq(t, http.MethodGet, srv.URL+"/shared/"+token, "", nil)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("expected 410 for expired share, got %d", resp.StatusCode)
	}

	// tampoco acepta escrituras
	resp, _ = doReq(t, http.MethodPost, srv.URL+"/shared/"+token+"/responses", "", map[string]any{
		"responses": []map[string]any{{"field_id": "10", "field_type": "text", "value": "tarde"}},
	})
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("expected 410 submitting through expired share, got %d", resp.StatusCode)
	}
}

func TestE2E_DefaultExpiryIsThirtyDays(t *testing.T) {
	srv := newTestServer(t)
	inspectionID := createInspection(t, srv, "owner-1", "Subsuelo")

	resp, raw := doReq(t, http.MethodPost, srv.URL+"/inspections/"+inspectionID+"/share", "owner-1", map[string]string{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, raw)
	}
	out := decode[struct {
		Permission string     `json:"permission"`
		ExpiresAt  *time.Time `json:"expires_at"`
	}](t, raw)

	if out.Permission != "view" {
		t.Fatalf("expected default permission view, got %s", out.Permission)
	}
	if out.ExpiresAt == nil {
		t.Fatalf("expected default expiry, got null")
	}
	want := time.Now().Add(30 * 24 * time.Hour)
	if diff := out.ExpiresAt.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Fatalf("expected expiry ~30 days out, got %v", out.ExpiresAt)
	}
}

func TestE2E_HardDeleteGrant(t *testing.T) {
	srv := newTestServer(t)
	inspectionID := createInspection(t, srv, "owner-1", "Archivo")

	token, _ := createShare(t, srv, "owner-1", inspectionID, map[string]string{"permission": "view"})

	resp, raw := doReq(t, http.MethodGet, srv.URL+"/inspections/"+inspectionID+"/shares", "owner-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 listing shares, got %d", resp.StatusCode)
	}
	grants := decode[[]struct {
		ID string `json:"id"`
	}](t, raw)
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	grantID := grants[0].ID

	resp, _ = doReq(t, http.MethodDelete, srv.URL+"/inspection-shares/"+grantID, "intruder-9", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting as stranger, got %d", resp.StatusCode)
	}

	resp, _ = doReq(t, http.MethodDelete, srv.URL+"/inspection-shares/"+grantID, "owner-1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 deleting as owner, got %d", resp.StatusCode)
	}

	// sin rastro: ni el token ni la fila existen
	resp, _ = doReq(t, http.MethodGet, srv.URL+"/shared/"+token, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after hard delete, got %d", resp.StatusCode)
	}
	resp, _ = doReq(t, http.MethodDelete, srv.URL+"/inspection-shares/"+grantID, "owner-1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 deleting twice, got %d", resp.StatusCode)
	}
}

func TestE2E_HealthAndSwagger(t *testing.T) {
	srv := newTestServer(t)

	resp, raw := doReq(t, http.MethodGet, srv.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK || string(raw) != "ok" {
		t.Fatalf("unexpected health response: %d %q", resp.StatusCode, raw)
	}

	resp, _ = doReq(t, http.MethodGet, srv.URL+"/swagger/doc.json", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for swagger doc, got %d", resp.StatusCode)
	}
}
