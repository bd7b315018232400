package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/adapters/auth/static"
	"vet-registry/internal/adapters/storage/memory"
	"vet-registry/internal/domain/visits"
	"vet-registry/internal/platform/logger"
	"vet-registry/internal/router"
)

func TestHTTP_EndToEnd_VisitLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{DefaultActor: "mariateresa", DebugUserHeader: true}))
	defer ts.Close()

	// 1) Alta sin número: toma el siguiente libre
	first := createVisit(t, ts.URL, map[string]any{
		"fecha":         "2024-05-10",
		"tipo_atencion": "castracion",
		"nombre_animal": "Firulais",
		"especie":       "Canino",
		"sexo":          "Macho",
		"tutor": map[string]any{
			"nombre_apellido": "María González",
			"dni":             "30111222",
			"barrio":          "Centro",
		},
	})
	if first != 1 {
		t.Fatalf("expected numero 1, got %d", first)
	}

	// 2) Mismo número explícito => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/api/atenciones", "", map[string]any{
			"numero":        1,
			"fecha":         "2024-05-11",
			"tipo_atencion": "castracion",
			"nombre_animal": "Otro",
			"especie":       "Felino",
			"sexo":          "Hembra",
			"tutor":         map[string]any{"nombre_apellido": "Ana", "dni": "1"},
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 duplicate number, got %d body=%s", st, string(body))
		}
	}

	// 3) Atención primaria sin motivo => 400 con el campo
	{
		st, body := doReq(t, ts.URL, "POST", "/api/atenciones", "", map[string]any{
			"numero":        2,
			"fecha":         "2024-05-11",
			"tipo_atencion": "atencion_primaria",
			"nombre_animal": "Mishi",
			"especie":       "Felino",
			"sexo":          "Hembra",
			"tutor":         map[string]any{"nombre_apellido": "Ana", "dni": "1"},
		})
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 missing motivo, got %d body=%s", st, string(body))
		}
		if !strings.Contains(string(body), "motivo") {
			t.Fatalf("expected motivo in field errors, body=%s", string(body))
		}
	}

	// 4) API vieja de castraciones
	{
		st, body := doReq(t, ts.URL, "POST", "/api/castraciones", "", map[string]any{
			"numero":          5,
			"fecha":           "2024-05-12",
			"nombre_animal":   "Toby",
			"especie":         "Canino",
			"sexo":            "Macho",
			"nombre_apellido": "Juan Pérez",
			"dni":             "20333444",
			"barrio":          "B° Norte",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 legacy create, got %d body=%s", st, string(body))
		}

		st, body = doReq(t, ts.URL, "GET", "/api/castraciones", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 legacy list, got %d body=%s", st, string(body))
		}
		var list []map[string]any
		if err := json.Unmarshal(body, &list); err != nil || len(list) != 2 {
			t.Fatalf("expected plain array with 2 visits, err=%v body=%s", err, string(body))
		}
	}

	// 5) Siguiente número: max + 1
	{
		st, body := doReq(t, ts.URL, "GET", "/api/siguiente-numero", "", nil)
		if st != http.StatusOK || !strings.Contains(string(body), `"numero":6`) {
			t.Fatalf("expected next number 6, got %d body=%s", st, string(body))
		}
	}

	// 6) Filtro por barrio (parcial, sin mayúsculas)
	{
		st, body := doReq(t, ts.URL, "GET", "/api/atenciones?barrio=norte", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 search, got %d body=%s", st, string(body))
		}
		var resp struct {
			Data []struct {
				Number int `json:"numero"`
			} `json:"data"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Data) != 1 || resp.Data[0].Number != 5 {
			t.Fatalf("expected only visit 5, body=%s", string(body))
		}
	}

	// 7) Edición firmada por el usuario del request
	{
		st, body := doReq(t, ts.URL, "PATCH", "/api/atenciones/1", "ana", map[string]any{
			"observaciones": "control en 10 días",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 edit, got %d body=%s", st, string(body))
		}
	}

	// 8) Borrado sin usuario => actor por defecto
	{
		st, body := doReq(t, ts.URL, "DELETE", "/api/atenciones/5", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 delete, got %d body=%s", st, string(body))
		}
		st, _ = doReq(t, ts.URL, "GET", "/api/atenciones/5", "", nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 after delete, got %d", st)
		}
	}

	// 9) Auditoría: más nueva primero
	{
		st, body := doReq(t, ts.URL, "GET", "/api/auditoria", "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 audit, got %d body=%s", st, string(body))
		}
		var resp struct {
			Data []struct {
				Operation string `json:"tipo_operacion"`
				Actor     string `json:"usuario"`
			} `json:"data"`
		}
		_ = json.Unmarshal(body, &resp)
		if len(resp.Data) != 2 {
			t.Fatalf("expected 2 audit entries, body=%s", string(body))
		}
		if resp.Data[0].Operation != "DELETE" || resp.Data[0].Actor != "mariateresa" {
			t.Fatalf("unexpected newest entry %+v", resp.Data[0])
		}
		if resp.Data[1].Operation != "UPDATE" || resp.Data[1].Actor != "ana" {
			t.Fatalf("unexpected oldest entry %+v", resp.Data[1])
		}
	}

	// 10) Estadísticas y dashboard
	for _, path := range []string{"/api/estadisticas", "/api/estadisticas/barrios", "/api/dashboard"} {
		st, body := doReq(t, ts.URL, "GET", path, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 %s, got %d body=%s", path, st, string(body))
		}
	}
	{
		st, _ := doReq(t, ts.URL, "GET", "/api/estadisticas?fecha_desde=2024-06-01&fecha_hasta=2024-05-01", "", nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 inverted range, got %d", st)
		}
	}
}

func TestHTTP_Appointments(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{Location: time.UTC}))
	defer ts.Close()

	today := time.Now().UTC().Format("2006-01-02")

	st, body := doReq(t, ts.URL, "POST", "/api/turnos", "", map[string]any{
		"fecha":         today,
		"hora":          "10:30",
		"nombre_animal": "Luna",
		"tutor_nombre":  "Carla",
		"tipo":          "castracion",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create appointment, got %d body=%s", st, string(body))
	}
	var created struct {
		Data struct {
			ID     int64  `json:"id"`
			Status string `json:"estado"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &created)
	if created.Data.ID == 0 || created.Data.Status != "pendiente" {
		t.Fatalf("unexpected appointment body=%s", string(body))
	}

	// hora inválida => 400
	st, _ = doReq(t, ts.URL, "POST", "/api/turnos", "", map[string]any{
		"fecha": today, "hora": "25:99", "nombre_animal": "X", "tutor_nombre": "Y", "tipo": "castracion",
	})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 invalid hora, got %d", st)
	}

	// ventana por defecto: hoy + 7 días
	st, body = doReq(t, ts.URL, "GET", "/api/turnos", "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"Luna"`) {
		t.Fatalf("expected appointment in default window, got %d body=%s", st, string(body))
	}

	id := strconv.FormatInt(created.Data.ID, 10)
	st, body = doReq(t, ts.URL, "PUT", "/api/turnos/"+id, "", map[string]any{"estado": "cancelado"})
	if st != http.StatusOK {
		t.Fatalf("expected 200 set status, got %d body=%s", st, string(body))
	}
	st, _ = doReq(t, ts.URL, "PUT", "/api/turnos/"+id, "", map[string]any{"estado": "perdido"})
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400 unknown status, got %d", st)
	}

	st, _ = doReq(t, ts.URL, "DELETE", "/api/turnos/"+id, "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 delete, got %d", st)
	}
	st, _ = doReq(t, ts.URL, "DELETE", "/api/turnos/"+id, "", nil)
	if st != http.StatusNotFound {
		t.Fatalf("expected 404 second delete, got %d", st)
	}
}

func TestHTTP_RequireAuthWithVerifier(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{
		AuthVerifier: static.NewVerifier("mariateresa", "s3cret"),
	}))
	defer ts.Close()

	// health y metrics quedan abiertos
	for _, path := range []string{"/health", "/metrics"} {
		st, _ := doReq(t, ts.URL, "GET", path, "", nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 %s without token, got %d", path, st)
		}
	}

	st, _ := doReq(t, ts.URL, "GET", "/api/atenciones", "", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", st)
	}

	// el header de debug no vale cuando hay verifier
	st, _ = doReq(t, ts.URL, "GET", "/api/atenciones", "intruso", nil)
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 with debug header, got %d", st)
	}

	req, _ := http.NewRequest("GET", ts.URL+"/api/atenciones", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", res.StatusCode)
	}
	if res.Header.Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header")
	}
}

func TestHTTP_TutorLookupAndDebugHeaderOff(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{DefaultActor: "mariateresa"}))
	defer ts.Close()

	createVisit(t, ts.URL, map[string]any{
		"fecha":         "2024-05-10",
		"tipo_atencion": "castracion",
		"nombre_animal": "Firulais",
		"especie":       "Canino",
		"sexo":          "Macho",
		"tutor": map[string]any{
			"nombre_apellido": "María González",
			"dni":             "30111222",
			"telefono":        "555-1234",
		},
	})

	// sin AUTH_DEBUG_HEADER el header no elige al actor
	st, body := doReq(t, ts.URL, "PATCH", "/api/atenciones/1", "intruso", map[string]any{
		"observaciones": "control",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 edit, got %d body=%s", st, string(body))
	}
	st, body = doReq(t, ts.URL, "GET", "/api/auditoria", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 audit, got %d body=%s", st, string(body))
	}
	if strings.Contains(string(body), "intruso") || !strings.Contains(string(body), `"usuario":"mariateresa"`) {
		t.Fatalf("expected default actor in audit, body=%s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/api/tutores?dni=30111222", "", nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 tutor by dni, got %d body=%s", st, string(body))
	}
	var found struct {
		Data struct {
			ID       int64  `json:"id"`
			FullName string `json:"nombre_apellido"`
			Phone    string `json:"telefono"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &found)
	if found.Data.ID == 0 || found.Data.FullName != "María González" || found.Data.Phone != "555-1234" {
		t.Fatalf("unexpected tutor body=%s", string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/api/tutores/"+strconv.FormatInt(found.Data.ID, 10), "", nil)
	if st != http.StatusOK || !strings.Contains(string(body), `"dni":"30111222"`) {
		t.Fatalf("expected 200 tutor by id, got %d body=%s", st, string(body))
	}

	for path, want := range map[string]int{
		"/api/tutores/999":          http.StatusNotFound,
		"/api/tutores/abc":          http.StatusBadRequest,
		"/api/tutores":              http.StatusBadRequest,
		"/api/tutores?dni=99999999": http.StatusNotFound,
	} {
		st, body := doReq(t, ts.URL, "GET", path, "", nil)
		if st != want {
			t.Fatalf("expected %d for %s, got %d body=%s", want, path, st, string(body))
		}
	}
}

// brokenStore falla en la búsqueda de atenciones como lo haría una base caída.
type brokenStore struct {
	*memory.Store
}

func (s brokenStore) Visits() visits.Repository {
	return brokenVisits{Repository: s.Store.Visits()}
}

type brokenVisits struct {
	visits.Repository
}

func (brokenVisits) Search(ctx context.Context, f visits.Filter) ([]visits.View, error) {
	return nil, errors.New("disk I/O error: database is locked")
}

func TestHTTP_StorageFailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Info, Format: logger.FormatJSON, Output: &buf})

	ts := httptest.NewServer(router.NewRouter(router.Options{
		Store:  brokenStore{Store: memory.NewStore()},
		Logger: log,
	}))
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/api/atenciones", "", nil)
	if st != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d body=%s", st, string(body))
	}
	// la respuesta no filtra la causa
	if strings.Contains(string(body), "database is locked") {
		t.Fatalf("storage cause leaked to client body=%s", string(body))
	}

	out := buf.String()
	if !strings.Contains(out, "database is locked") {
		t.Fatalf("expected storage cause in log output, got %q", out)
	}
	if !strings.Contains(out, "request_id") || !strings.Contains(out, "/api/atenciones") {
		t.Fatalf("expected request id and path in log output, got %q", out)
	}

	// los 4xx no se loguean como error
	buf.Reset()
	st, _ = doReq(t, ts.URL, "GET", "/api/atenciones/xyz", "", nil)
	if st != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", st)
	}
	if strings.Contains(buf.String(), "request failed") {
		t.Fatalf("unexpected error log for 400: %q", buf.String())
	}
}

func createVisit(t *testing.T, baseURL string, payload map[string]any) int {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/api/atenciones", "", payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create visit, got %d body=%s", st, string(body))
	}

	var resp struct {
		Data struct {
			Number int `json:"numero"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.Data.Number == 0 {
		t.Fatalf("create visit: missing numero body=%s", string(body))
	}
	return resp.Data.Number
}

func doReq(t *testing.T, baseURL, method, path, debugUserID string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if debugUserID != "" {
		req.Header.Set("X-Debug-User-ID", debugUserID)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
