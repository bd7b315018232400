package visits

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/middleware"
	"vet-registry/internal/platform/apperr"
)

func RegisterRoutes(r chi.Router, svc *Service, defaultActor string) {
	r.Route("/api/atenciones", func(ar chi.Router) {
		ar.Post("/", createVisitHandler(svc, defaultActor))
		ar.Get("/", searchVisitsHandler(svc, ""))
		ar.Get("/{numero}", getVisitHandler(svc))
		ar.Patch("/{numero}", editVisitHandler(svc, defaultActor))
		ar.Delete("/{numero}", deleteVisitHandler(svc, defaultActor))
		ar.Patch("/{numero}/tutor", editTutorHandler(svc, defaultActor))
	})
	r.Get("/api/siguiente-numero", nextNumberHandler(svc))

	// API vieja: sólo castraciones, tutor en campos planos.
	r.Post("/api/castraciones", createCastrationHandler(svc, defaultActor))
	r.Get("/api/castraciones", searchVisitsHandler(svc, TypeCastration))
}

// createVisitRequest es CreateInput con el número opcional.
type createVisitRequest struct {
	CreateInput
	Number *int `json:"numero"`
}

type tutorResponse struct {
	ID           int64  `json:"id"`
	FullName     string `json:"nombre_apellido"`
	NationalID   string `json:"dni"`
	Address      string `json:"direccion"`
	Neighborhood string `json:"barrio"`
	Phone        string `json:"telefono"`
}

// visitResponse es una atención con su tutor.
type visitResponse struct {
	Number       int           `json:"numero"`
	Date         string        `json:"fecha"`
	Type         Type          `json:"tipo_atencion"`
	AnimalName   string        `json:"nombre_animal"`
	Species      string        `json:"especie"`
	Sex          string        `json:"sexo"`
	Age          string        `json:"edad"`
	Reason       string        `json:"motivo,omitempty"`
	Diagnosis    string        `json:"diagnostico,omitempty"`
	Treatment    string        `json:"tratamiento,omitempty"`
	Referral     string        `json:"derivacion,omitempty"`
	Status       string        `json:"estado"`
	Observations string        `json:"observaciones,omitempty"`
	Tutor        tutorResponse `json:"tutor"`
}

type visitEnvelope struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Data    visitResponse `json:"data"`
}

type listEnvelope struct {
	Success bool            `json:"success"`
	Data    []visitResponse `json:"data"`
}

// createVisitHandler godoc
// @Summary Registrar atención
// @Description Registra una castración o atención primaria. Si no viene `numero` se asigna el siguiente libre.
// @Tags atenciones
// @Accept json
// @Produce json
// @Param payload body createVisitRequest true "Datos de la atención y del tutor"
// @Success 201 {object} visitEnvelope
// @Failure 400 {object} apperr.Result
// @Failure 409 {object} apperr.Result "número ya registrado"
// @Failure 500 {object} apperr.Result
// @Router /api/atenciones [post]
func createVisitHandler(svc *Service, defaultActor string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVisitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Invalid("body", "invalid json"))
			return
		}

		actor := middleware.Actor(r.Context(), defaultActor)
		in := req.CreateInput

		var (
			v   View
			err error
		)
		if req.Number == nil {
			v, err = svc.CreateNext(r.Context(), in, actor)
		} else {
			in.Number = *req.Number
			v, err = svc.Create(r.Context(), in, actor)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, visitEnvelope{Success: true, Message: "Atención registrada", Data: toResponse(v)})
	}
}

// castrationRequest es el formato de la API vieja, con el tutor en campos planos.
type castrationRequest struct {
	Number       int    `json:"numero"`
	Date         string `json:"fecha"`
	AnimalName   string `json:"nombre_animal"`
	Species      string `json:"especie"`
	Sex          string `json:"sexo"`
	Age          string `json:"edad"`
	FullName     string `json:"nombre_apellido"`
	NationalID   string `json:"dni"`
	Address      string `json:"direccion"`
	Neighborhood string `json:"barrio"`
	Phone        string `json:"telefono"`
	Observations string `json:"observaciones"`
}

func createCastrationHandler(svc *Service, defaultActor string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req castrationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, apperr.Invalid("body", "invalid json"))
			return
		}

		_, err := svc.Create(r.Context(), CreateInput{
			Number:       req.Number,
			Date:         req.Date,
			Type:         TypeCastration,
			AnimalName:   req.AnimalName,
			Species:      req.Species,
			Sex:          req.Sex,
			Age:          req.Age,
			Observations: req.Observations,
			Tutor: tutors.Input{
				FullName:     req.FullName,
				NationalID:   req.NationalID,
				Address:      req.Address,
				Neighborhood: req.Neighborhood,
				Phone:        req.Phone,
			},
		}, middleware.Actor(r.Context(), defaultActor))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apperr.OK("Castración registrada exitosamente"))
	}
}

// searchVisitsHandler godoc
// @Summary Buscar atenciones
// @Description Todos los filtros son opcionales y se combinan con AND. especie, dni, barrio y nombre_animal buscan coincidencias parciales.
// @Tags atenciones
// @Produce json
// @Param numero query int false "Número de registro"
// @Param tipo_atencion query string false "castracion | atencion_primaria"
// @Param especie query string false "Especie"
// @Param dni query string false "DNI del tutor"
// @Param barrio query string false "Barrio del tutor"
// @Param nombre_animal query string false "Nombre del animal"
// @Param fecha_desde query string false "YYYY-MM-DD inclusive"
// @Param fecha_hasta query string false "YYYY-MM-DD inclusive"
// @Param limite query int false "Máximo de resultados"
// @Success 200 {object} listEnvelope
// @Failure 400 {object} apperr.Result
// @Router /api/atenciones [get]
func searchVisitsHandler(svc *Service, fixed Type) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if fixed != "" {
			f.Type = fixed
		}

		out, err := svc.Search(r.Context(), f)
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := make([]visitResponse, 0, len(out))
		for _, v := range out {
			resp = append(resp, toResponse(v))
		}
		if fixed != "" {
			// la API vieja devuelve el arreglo sin envoltorio
			writeJSON(w, http.StatusOK, resp)
			return
		}
		writeJSON(w, http.StatusOK, listEnvelope{Success: true, Data: resp})
	}
}

func parseFilter(r *http.Request) (Filter, error) {
	q := r.URL.Query()
	ve := &apperr.ValidationError{}

	f := Filter{
		Type:         Type(q.Get("tipo_atencion")),
		Species:      q.Get("especie"),
		NationalID:   q.Get("dni"),
		Neighborhood: q.Get("barrio"),
		AnimalName:   q.Get("nombre_animal"),
	}

	if raw := strings.TrimSpace(q.Get("numero")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ve.Add("numero", "must be an integer")
		} else {
			f.Number = &n
		}
	}
	if raw := strings.TrimSpace(q.Get("limite")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			ve.Add("limite", "must be an integer")
		} else {
			f.Limit = n
		}
	}
	f.From = parseDate(ve, "fecha_desde", q.Get("fecha_desde"))
	f.To = parseDate(ve, "fecha_hasta", q.Get("fecha_hasta"))

	return f, ve.OrNil()
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

// getVisitHandler godoc
// @Summary Obtener atención
// @Tags atenciones
// @Produce json
// @Param numero path int true "Número de registro"
// @Success 200 {object} visitEnvelope
// @Failure 404 {object} apperr.Result
// @Router /api/atenciones/{numero} [get]
func getVisitHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := numberParam(w, r)
		if !ok {
			return
		}
		v, err := svc.Get(r.Context(), number)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, visitEnvelope{Success: true, Data: toResponse(v)})
	}
}

// editVisitHandler godoc
// @Summary Editar atención
// @Description Edición parcial. Sólo fecha, datos del animal y datos clínicos; queda registrada en auditoría.
// @Tags atenciones
// @Accept json
// @Produce json
// @Param numero path int true "Número de registro"
// @Param payload body Patch true "Campos a modificar"
// @Success 200 {object} visitEnvelope
// @Failure 400 {object} apperr.Result
// @Failure 404 {object} apperr.Result
// @Router /api/atenciones/{numero} [patch]
func editVisitHandler(svc *Service, defaultActor string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := numberParam(w, r)
		if !ok {
			return
		}
		var p Patch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeError(w, r, apperr.Invalid("body", "invalid json"))
			return
		}

		v, err := svc.Edit(r.Context(), number, p, middleware.Actor(r.Context(), defaultActor))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, visitEnvelope{Success: true, Message: "Atención actualizada", Data: toResponse(v)})
	}
}

func editTutorHandler(svc *Service, defaultActor string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := numberParam(w, r)
		if !ok {
			return
		}
		var c Contact
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, r, apperr.Invalid("body", "invalid json"))
			return
		}

		v, err := svc.EditTutorContact(r.Context(), number, c, middleware.Actor(r.Context(), defaultActor))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, visitEnvelope{Success: true, Message: "Tutor actualizado", Data: toResponse(v)})
	}
}

// deleteVisitHandler godoc
// @Summary Eliminar atención
// @Description Borra la atención; el snapshot queda en auditoría.
// @Tags atenciones
// @Produce json
// @Param numero path int true "Número de registro"
// @Success 200 {object} apperr.Result
// @Failure 404 {object} apperr.Result
// @Router /api/atenciones/{numero} [delete]
func deleteVisitHandler(svc *Service, defaultActor string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, ok := numberParam(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), number, middleware.Actor(r.Context(), defaultActor)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, apperr.OK("Atención eliminada"))
	}
}

// nextNumberHandler godoc
// @Summary Siguiente número de registro
// @Tags atenciones
// @Produce json
// @Success 200 {object} map[string]int
// @Router /api/siguiente-numero [get]
func nextNumberHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.NextNumber(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"numero": n})
	}
}

func numberParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, "numero"))
	if err != nil {
		writeError(w, r, apperr.Invalid("numero", "must be an integer"))
		return 0, false
	}
	return n, true
}

func toResponse(v View) visitResponse {
	return visitResponse{
		Number:       v.Number,
		Date:         v.Date.Format(DateLayout),
		Type:         v.Type,
		AnimalName:   v.AnimalName,
		Species:      v.Species,
		Sex:          v.Sex,
		Age:          v.Age,
		Reason:       v.Reason,
		Diagnosis:    v.Diagnosis,
		Treatment:    v.Treatment,
		Referral:     v.Referral,
		Status:       v.Status,
		Observations: v.Observations,
		Tutor: tutorResponse{
			ID:           v.Tutor.ID,
			FullName:     v.Tutor.FullName,
			NationalID:   v.Tutor.NationalID,
			Address:      v.Tutor.Address,
			Neighborhood: v.Tutor.Neighborhood,
			Phone:        v.Tutor.Phone,
		},
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
