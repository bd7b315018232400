package audit

import "time"

type Operation string

const (
	OpCreate Operation = "CREATE"
	OpUpdate Operation = "UPDATE"
	OpDelete Operation = "DELETE"
)

func (o Operation) Valid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete:
		return true
	}
	return false
}

// Tablas auditadas. Son los nombres físicos, así el historial sigue siendo
// legible si alguien consulta la base directamente.
const (
	TableVisits  = "atenciones"
	TableTutors  = "tutores"
	SystemActor  = "sistema"
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Entry es inmutable una vez agregada al log.
type Entry struct {
	ID        int64
	Timestamp time.Time

	Operation Operation
	Table     string
	RecordID  int64
	Actor     string

	// Before/After son snapshots JSON del registro.
	Before string
	After  string

	Description string
}
