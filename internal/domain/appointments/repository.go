package appointments

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, a Appointment) (int64, error)
	GetByID(ctx context.Context, id int64) (Appointment, error)
	// UpdateStatus y Delete devuelven apperr.ErrNotFound si el id no existe.
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	// ListBetween incluye ambos extremos y ordena por fecha y hora.
	ListBetween(ctx context.Context, from, to time.Time) ([]Appointment, error)
}
