package tutors

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"vet-registry/internal/middleware"
	"vet-registry/internal/platform/apperr"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/api/tutores", func(tr chi.Router) {
		tr.Get("/", findTutorHandler(svc))
		tr.Get("/{id}", getTutorHandler(svc))
	})
}

type tutorResponse struct {
	ID           int64  `json:"id"`
	FullName     string `json:"nombre_apellido"`
	NationalID   string `json:"dni"`
	Address      string `json:"direccion,omitempty"`
	Neighborhood string `json:"barrio,omitempty"`
	Phone        string `json:"telefono,omitempty"`
}

type tutorEnvelope struct {
	Success bool          `json:"success"`
	Data    tutorResponse `json:"data"`
}

// getTutorHandler godoc
// @Summary Obtener tutor
// @Tags tutores
// @Produce json
// @Param id path int true "ID interno del tutor"
// @Success 200 {object} tutorEnvelope
// @Failure 400 {object} apperr.Result
// @Failure 404 {object} apperr.Result
// @Router /api/tutores/{id} [get]
func getTutorHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, r, apperr.Invalid("id", "must be an integer"))
			return
		}
		t, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tutorEnvelope{Success: true, Data: toResponse(t)})
	}
}

// findTutorHandler godoc
// @Summary Buscar tutor por DNI
// @Description Devuelve los datos más recientes registrados para ese DNI; sirve para autocompletar el alta.
// @Tags tutores
// @Produce json
// @Param dni query string true "DNI"
// @Success 200 {object} tutorEnvelope
// @Failure 400 {object} apperr.Result
// @Failure 404 {object} apperr.Result
// @Router /api/tutores [get]
func findTutorHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.FindByNationalID(r.Context(), r.URL.Query().Get("dni"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tutorEnvelope{Success: true, Data: toResponse(t)})
	}
}

func toResponse(t Tutor) tutorResponse {
	return tutorResponse{
		ID:           t.ID,
		FullName:     t.FullName,
		NationalID:   t.NationalID,
		Address:      t.Address,
		Neighborhood: t.Neighborhood,
		Phone:        t.Phone,
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
