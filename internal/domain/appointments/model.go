package appointments

import "time"

const (
	StatusPending   = "pendiente"
	StatusCompleted = "completado"
	StatusCancelled = "cancelado"

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Appointment es un turno agendado. No se audita.
type Appointment struct {
	ID   int64
	Date time.Time
	// Time es "HH:MM"; ordena bien como texto.
	Time string

	AnimalName string
	TutorName  string
	Phone      string
	Type       string

	Status       string
	Observations string
}
