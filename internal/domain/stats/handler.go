package stats

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vet-registry/internal/domain/visits"
	"vet-registry/internal/middleware"
	"vet-registry/internal/platform/apperr"
)

func RegisterRoutes(r chi.Router, e *Engine) {
	r.Get("/api/estadisticas", aggregateHandler(e))
	r.Get("/api/estadisticas/barrios", neighborhoodsHandler(e))
	r.Get("/api/dashboard", dashboardHandler(e))
}

type crossResponse struct {
	Species string `json:"especie"`
	Sex     string `json:"sexo"`
	Count   int    `json:"cantidad"`
}

// statsResponse conserva los nombres de campo que consume el frontend.
type statsResponse struct {
	Total         int              `json:"total"`
	ByType        []map[string]any `json:"por_tipo"`
	BySpecies     []map[string]any `json:"por_especie"`
	BySex         []map[string]any `json:"por_sexo"`
	ByDay         []map[string]any `json:"por_dia"`
	ByWeek        []map[string]any `json:"por_semana"`
	ByMonth       []map[string]any `json:"por_mes"`
	ByYear        []map[string]any `json:"por_anio"`
	Neighborhoods []map[string]any `json:"por_barrio"`
	SpeciesSex    []crossResponse  `json:"especie_sexo"`
}

type groupResponse struct {
	Key      string   `json:"clave"`
	Name     string   `json:"barrio"`
	Total    int      `json:"cantidad"`
	Variants []string `json:"variantes"`
}

type recentResponse struct {
	Number      int    `json:"numero"`
	Date        string `json:"fecha"`
	AnimalName  string `json:"nombre_animal"`
	Species     string `json:"especie"`
	Tutor       string `json:"tutor"`
	PrimaryCare bool   `json:"primaria"`
}

type appointmentResponse struct {
	ID         int64  `json:"id"`
	Date       string `json:"fecha"`
	Time       string `json:"hora"`
	AnimalName string `json:"nombre_animal"`
	TutorName  string `json:"tutor_nombre"`
	Type       string `json:"tipo"`
	Status     string `json:"estado"`
}

type dashboardResponse struct {
	Today             int                   `json:"hoy"`
	Week              int                   `json:"semana"`
	Month             int                   `json:"mes"`
	PrimaryToday      int                   `json:"primaria_hoy"`
	Recent            []recentResponse      `json:"ultimas"`
	AppointmentsToday []appointmentResponse `json:"turnos_hoy"`
	AppointmentsWeek  []appointmentResponse `json:"turnos_semana"`
}

// aggregateHandler godoc
// @Summary Estadísticas
// @Description Totales y desgloses por tipo, especie, sexo, día, semana ISO, mes, año y barrio.
// @Tags estadisticas
// @Produce json
// @Param fecha_desde query string false "YYYY-MM-DD inclusive"
// @Param fecha_hasta query string false "YYYY-MM-DD inclusive"
// @Success 200 {object} statsResponse
// @Failure 400 {object} apperr.Result
// @Router /api/estadisticas [get]
func aggregateHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		b, err := e.Aggregate(r.Context(), from, to)
		if err != nil {
			writeError(w, r, err)
			return
		}

		cross := make([]crossResponse, 0, len(b.SpeciesSex))
		for _, c := range b.SpeciesSex {
			cross = append(cross, crossResponse{Species: c.Species, Sex: c.Sex, Count: c.Count})
		}
		writeJSON(w, http.StatusOK, statsResponse{
			Total:         b.Total,
			ByType:        keyed(b.ByType, "tipo_atencion"),
			BySpecies:     keyed(b.BySpecies, "especie"),
			BySex:         keyed(b.BySex, "sexo"),
			ByDay:         keyed(b.ByDay, "dia"),
			ByWeek:        keyed(b.ByWeek, "semana"),
			ByMonth:       keyed(b.ByMonth, "mes"),
			ByYear:        keyed(b.ByYear, "anio"),
			Neighborhoods: keyed(b.Neighborhoods, "barrio"),
			SpeciesSex:    cross,
		})
	}
}

// neighborhoodsHandler godoc
// @Summary Barrios agrupados
// @Description Agrupa variantes de escritura del mismo barrio ("Barrio San José", "san jose").
// @Tags estadisticas
// @Produce json
// @Param fecha_desde query string false "YYYY-MM-DD inclusive"
// @Param fecha_hasta query string false "YYYY-MM-DD inclusive"
// @Success 200 {array} groupResponse
// @Router /api/estadisticas/barrios [get]
func neighborhoodsHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, to, err := dateRange(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		groups, err := e.Neighborhoods(r.Context(), from, to)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out := make([]groupResponse, 0, len(groups))
		for _, g := range groups {
			out = append(out, groupResponse{Key: g.Key, Name: g.Name, Total: g.Total, Variants: g.Variants})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// dashboardHandler godoc
// @Summary Tablero
// @Tags estadisticas
// @Produce json
// @Success 200 {object} dashboardResponse
// @Router /api/dashboard [get]
func dashboardHandler(e *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := e.Dashboard(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}

		resp := dashboardResponse{
			Today:             d.Today,
			Week:              d.Week,
			Month:             d.Month,
			PrimaryToday:      d.PrimaryToday,
			Recent:            make([]recentResponse, 0, len(d.Recent)),
			AppointmentsToday: make([]appointmentResponse, 0, len(d.AppointmentsToday)),
			AppointmentsWeek:  make([]appointmentResponse, 0, len(d.AppointmentsWeek)),
		}
		for _, v := range d.Recent {
			resp.Recent = append(resp.Recent, recentResponse{
				Number:      v.Number,
				Date:        v.Date.Format(visits.DateLayout),
				AnimalName:  v.AnimalName,
				Species:     v.Species,
				Tutor:       v.Tutor.FullName,
				PrimaryCare: v.Type == visits.TypePrimaryCare,
			})
		}
		for _, a := range d.AppointmentsToday {
			resp.AppointmentsToday = append(resp.AppointmentsToday, appointmentResponse{
				ID: a.ID, Date: a.Date.Format(visits.DateLayout), Time: a.Time,
				AnimalName: a.AnimalName, TutorName: a.TutorName, Type: a.Type, Status: a.Status,
			})
		}
		for _, a := range d.AppointmentsWeek {
			resp.AppointmentsWeek = append(resp.AppointmentsWeek, appointmentResponse{
				ID: a.ID, Date: a.Date.Format(visits.DateLayout), Time: a.Time,
				AnimalName: a.AnimalName, TutorName: a.TutorName, Type: a.Type, Status: a.Status,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func keyed(counts []Count, name string) []map[string]any {
	out := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		out = append(out, map[string]any{name: c.Key, "cantidad": c.Count})
	}
	return out
}

func dateRange(r *http.Request) (*time.Time, *time.Time, error) {
	ve := &apperr.ValidationError{}
	parse := func(field string) *time.Time {
		raw := strings.TrimSpace(r.URL.Query().Get(field))
		if raw == "" {
			return nil
		}
		d, err := time.Parse(visits.DateLayout, raw)
		if err != nil {
			ve.Add(field, "must match the layout "+visits.DateLayout)
			return nil
		}
		return &d
	}
	from := parse("fecha_desde")
	to := parse("fecha_hasta")
	return from, to, ve.OrNil()
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
