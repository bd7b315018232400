package appointments

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
	r.Route("/api/turnos", func(tr chi.Router) {
		tr.Post("/", createAppointmentHandler(svc))
		tr.Get("/", listAppointmentsHandler(svc))
		tr.Put("/{id}", setStatusHandler(svc))
		tr.Delete("/{id}", deleteAppointmentHandler(svc))
	})
}

// appointmentResponse representa un turno devuelto por la API.
type appointmentResponse struct {
	ID           int64  `json:"id"`
	Date         string `json:"fecha"`
	Time         string `json:"hora"`
	AnimalName   string `json:"nombre_animal"`
	TutorName    string `json:"tutor_nombre"`
	Phone        string `json:"telefono,omitempty"`
	Type         string `json:"tipo"`
	Status       string `json:"estado"`
	Observations string `json:"observaciones,omitempty"`
}

type setStatusRequest struct {
	Status string `json:"estado" enums:"pendiente,completado,cancelado"`
}

type appointmentEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    appointmentResponse `json:"data"`
}

type listEnvelope struct {
	Success bool                  `json:"success"`
	Data    []appointmentResponse `json:"data"`
}

// createAppointmentHandler godoc
// @Summary Agendar turno
// @Tags turnos
// @Accept json
// @Produce json
// @Param payload body CreateInput true "fecha YYYY-MM-DD, hora HH:MM"
// @Success 201 {object} appointmentEnvelope
// @Failure 400 {object} apperr.Result
// @Router /api/turnos [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, r, apperr.Invalid("body", "invalid json"))
			return
		}
		a, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, appointmentEnvelope{Success: true, Message: "Turno agendado", Data: toResponse(a)})
	}
}

// listAppointmentsHandler godoc
// @Summary Listar turnos
// @Description Turnos entre desde y hasta, ambos inclusive. Por defecto, de hoy a siete días.
// @Tags turnos
// @Produce json
// @Param desde query string false "YYYY-MM-DD"
// @Param hasta query string false "YYYY-MM-DD"
// @Success 200 {object} listEnvelope
// @Failure 400 {object} apperr.Result
// @Router /api/turnos [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ve := &apperr.ValidationError{}
		from := parseDate(ve, "desde", r.URL.Query().Get("desde"))
		to := parseDate(ve, "hasta", r.URL.Query().Get("hasta"))
		if err := ve.OrNil(); err != nil {
			writeError(w, r, err)
			return
		}

		list, err := svc.List(r.Context(), from, to)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp := make([]appointmentResponse, 0, len(list))
		for _, a := range list {
			resp = append(resp, toResponse(a))
		}
		writeJSON(w, http.StatusOK, listEnvelope{Success: true, Data: resp})
	}
}

// setStatusHandler godoc
// @Summary Cambiar estado de turno
// @Tags turnos
// @Accept json
// @Produce json
// @Param id path int true "ID del turno"
// @Param payload body setStatusRequest true "Nuevo estado"
// @Success 200 {object} apperr.Result
// @Failure 400 {object} apperr.Result
// @Failure 404 {object} apperr.Result
// @Router /api/turnos/{id} [put]
func setStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Invalid("body", "invalid json"))
			return
		}
		if err := svc.SetStatus(r.Context(), id, req.Status); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apperr.OK("Turno actualizado"))
	}
}

func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apperr.OK("Turno eliminado"))
	}
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, r, apperr.Invalid("id", "must be an integer"))
		return 0, false
	}
	return id, true
}

func parseDate(ve *apperr.ValidationError, field, raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		ve.Add(field, "must match the layout "+DateLayout)
		return nil
	}
	return &d
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           a.ID,
		Date:         a.Date.Format(DateLayout),
		Time:         a.Time,
		AnimalName:   a.AnimalName,
		TutorName:    a.TutorName,
		Phone:        a.Phone,
		Type:         a.Type,
		Status:       a.Status,
		Observations: a.Observations,
	}
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
