package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-registry/internal/middleware"
	"vet-registry/internal/platform/apperr"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/auditoria", func(ar chi.Router) {
		ar.Get("/", listAuditHandler(svc))
		ar.Get("/{table}/{recordID}", historyHandler(svc))
	})
}

// entryResponse es una entrada del log de auditoría.
type entryResponse struct {
	ID          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Operation   Operation `json:"tipo_operacion"`
	Table       string    `json:"tabla"`
	RecordID    int64     `json:"registro_id"`
	Actor       string    `json:"usuario"`
	Before      string    `json:"datos_anteriores,omitempty"`
	After       string    `json:"datos_nuevos,omitempty"`
	Description string    `json:"descripcion,omitempty"`
}

type listResponse struct {
	Success bool            `json:"success"`
	Data    []entryResponse `json:"data"`
}

// listAuditHandler godoc
// @Summary Leer auditoría
// @Description Devuelve las entradas más recientes del log, de la más nueva a la más vieja.
// @Tags auditoria
// @Produce json
// @Param limite query int false "Máximo de entradas (por defecto 100, tope 1000)"
// @Success 200 {object} listResponse
// @Failure 400 {object} apperr.Result
// @Failure 500 {object} apperr.Result
// @Router /api/auditoria [get]
func listAuditHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limite")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				writeError(w, r, apperr.Invalid("limite", "must be a non-negative integer"))
				return
			}
			limit = n
		}

		entries, err := svc.ReadRecent(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Success: true, Data: toResponses(entries)})
	}
}

// historyHandler godoc
// @Summary Historial de un registro
// @Description Entradas de auditoría de un registro, en orden cronológico.
// @Tags auditoria
// @Produce json
// @Param table path string true "Tabla (atenciones, tutores)"
// @Param recordID path int true "ID interno del registro"
// @Success 200 {object} listResponse
// @Failure 400 {object} apperr.Result
// @Router /api/auditoria/{table}/{recordID} [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "recordID"), 10, 64)
		if err != nil {
			writeError(w, r, apperr.Invalid("registro_id", "must be an integer"))
			return
		}

		entries, err := svc.History(r.Context(), chi.URLParam(r, "table"), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, listResponse{Success: true, Data: toResponses(entries)})
	}
}

func toResponses(entries []Entry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:          e.ID,
			Timestamp:   e.Timestamp,
			Operation:   e.Operation,
			Table:       e.Table,
			RecordID:    e.RecordID,
			Actor:       e.Actor,
			Before:      e.Before,
			After:       e.After,
			Description: e.Description,
		})
	}
	return out
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		middleware.ReportError(r, err)
	}
	writeJSON(w, status, apperr.ToResult(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
