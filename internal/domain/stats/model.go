// Package stats calcula agregados sobre las atenciones y el resumen del tablero.
package stats

import (
	"time"

	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/domain/visits"
)

// TopNeighborhoods es la cantidad de barrios crudos en Bundle.
const TopNeighborhoods = 15

// RecentVisits es la cantidad de atenciones recientes del tablero.
const RecentVisits = 5

type Count struct {
	Key   string
	Count int
}

type Cross struct {
	Species string
	Sex     string
	Count   int
}

// Bundle se calcula sobre un único subconjunto filtrado por fecha, así que
// la suma de cada desglose coincide con Total.
type Bundle struct {
	Total int

	ByType     []Count
	BySpecies  []Count
	BySex      []Count
	SpeciesSex []Cross

	// Claves ordenables como texto: YYYY-MM-DD, YYYY-Www, YYYY-MM, YYYY.
	ByDay   []Count
	ByWeek  []Count
	ByMonth []Count
	ByYear  []Count

	// Barrios sin normalizar, vacíos excluidos.
	Neighborhoods []Count
}

type Dashboard struct {
	GeneratedAt time.Time

	Today        int
	Week         int
	Month        int
	PrimaryToday int

	Recent            []visits.View
	AppointmentsToday []appointments.Appointment
	AppointmentsWeek  []appointments.Appointment
}
