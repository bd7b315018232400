package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/domain/neighborhoods"
	"vet-registry/internal/domain/visits"
	"vet-registry/internal/platform/apperr"
)

type VisitSource interface {
	Search(ctx context.Context, f visits.Filter) ([]visits.View, error)
	Count(ctx context.Context, f visits.Filter) (int, error)
	Recent(ctx context.Context, limit int) ([]visits.View, error)
}

type AppointmentSource interface {
	ListBetween(ctx context.Context, from, to time.Time) ([]appointments.Appointment, error)
}

type Engine struct {
	visits       VisitSource
	appointments AppointmentSource

	loc *time.Location
	now func() time.Time
}

func NewEngine(v VisitSource, a AppointmentSource, loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{
		visits:       v,
		appointments: a,
		loc:          loc,
		now:          time.Now,
	}
}

// Aggregate calcula todos los desgloses sobre las atenciones con fecha en [from, to].
func (e *Engine) Aggregate(ctx context.Context, from, to *time.Time) (Bundle, error) {
	if from != nil && to != nil && from.After(*to) {
		return Bundle{}, apperr.Invalid("fecha_desde", "must not be after fecha_hasta")
	}

	rows, err := e.visits.Search(ctx, visits.Filter{From: from, To: to})
	if err != nil {
		return Bundle{}, err
	}
	return aggregate(rows), nil
}

func aggregate(rows []visits.View) Bundle {
	var (
		byType    = map[string]int{}
		bySpecies = map[string]int{}
		bySex     = map[string]int{}
		cross     = map[[2]string]int{}
		byDay     = map[string]int{}
		byWeek    = map[string]int{}
		byMonth   = map[string]int{}
		byYear    = map[string]int{}
		byHood    = map[string]int{}
	)

	for _, v := range rows {
		byType[string(v.Type)]++
		bySpecies[v.Species]++
		bySex[v.Sex]++
		cross[[2]string{v.Species, v.Sex}]++

		d := v.Date
		byDay[d.Format("2006-01-02")]++
		byWeek[isoWeekKey(d)]++
		byMonth[d.Format("2006-01")]++
		byYear[d.Format("2006")]++

		if hood := strings.TrimSpace(v.Tutor.Neighborhood); hood != "" {
			byHood[hood]++
		}
	}

	crossTab := make([]Cross, 0, len(cross))
	for k, n := range cross {
		crossTab = append(crossTab, Cross{Species: k[0], Sex: k[1], Count: n})
	}
	sort.Slice(crossTab, func(i, j int) bool {
		if crossTab[i].Species != crossTab[j].Species {
			return crossTab[i].Species < crossTab[j].Species
		}
		return crossTab[i].Sex < crossTab[j].Sex
	})

	hoods := byCount(byHood)
	if len(hoods) > TopNeighborhoods {
		hoods = hoods[:TopNeighborhoods]
	}

	return Bundle{
		Total:         len(rows),
		ByType:        byCount(byType),
		BySpecies:     byCount(bySpecies),
		BySex:         byCount(bySex),
		SpeciesSex:    crossTab,
		ByDay:         byKey(byDay),
		ByWeek:        byKey(byWeek),
		ByMonth:       byKey(byMonth),
		ByYear:        byKey(byYear),
		Neighborhoods: hoods,
	}
}

func isoWeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// byCount ordena por cantidad desc y clave asc.
func byCount(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// byKey ordena cronológicamente (las claves son ordenables como texto).
func byKey(m map[string]int) []Count {
	out := toCounts(m)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func toCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for k, n := range m {
		out = append(out, Count{Key: k, Count: n})
	}
	return out
}

// Neighborhoods agrupa los barrios de las atenciones en [from, to] por clave normalizada.
func (e *Engine) Neighborhoods(ctx context.Context, from, to *time.Time) ([]neighborhoods.Group, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, apperr.Invalid("fecha_desde", "must not be after fecha_hasta")
	}

	rows, err := e.visits.Search(ctx, visits.Filter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(rows))
	for _, v := range rows {
		names = append(names, v.Tutor.Neighborhood)
	}
	return neighborhoods.GroupNames(names), nil
}

// Dashboard se calcula siempre al momento de la llamada. Las lecturas son
// independientes y corren en paralelo.
func (e *Engine) Dashboard(ctx context.Context) (Dashboard, error) {
	now := e.now().In(e.loc)
	today := civilDate(now)
	weekStart, weekEnd := isoWeekBounds(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	out := Dashboard{GeneratedAt: now}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := e.visits.Count(gctx, visits.Filter{From: &today, To: &today})
		out.Today = n
		return err
	})
	g.Go(func() error {
		n, err := e.visits.Count(gctx, visits.Filter{From: &weekStart, To: &weekEnd})
		out.Week = n
		return err
	})
	g.Go(func() error {
		n, err := e.visits.Count(gctx, visits.Filter{From: &monthStart, To: &monthEnd})
		out.Month = n
		return err
	})
	g.Go(func() error {
		n, err := e.visits.Count(gctx, visits.Filter{Type: visits.TypePrimaryCare, From: &today, To: &today})
		out.PrimaryToday = n
		return err
	})
	g.Go(func() error {
		v, err := e.visits.Recent(gctx, RecentVisits)
		out.Recent = v
		return err
	})
	g.Go(func() error {
		a, err := e.appointments.ListBetween(gctx, today, today)
		out.AppointmentsToday = a
		return err
	})
	g.Go(func() error {
		a, err := e.appointments.ListBetween(gctx, today, today.AddDate(0, 0, 7))
		out.AppointmentsWeek = a
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return out, nil
}

// civilDate es la fecha local de t como medianoche UTC, igual que las fechas guardadas.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isoWeekBounds devuelve lunes y domingo de la semana de d.
func isoWeekBounds(d time.Time) (time.Time, time.Time) {
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}
