package visits

import (
	"context"

	"vet-registry/internal/domain/audit"
	"vet-registry/internal/domain/tutors"
)

type Repository interface {
	// Insert devuelve apperr.ErrDuplicateNumber si Number ya existe.
	Insert(ctx context.Context, v Visit) (int64, error)
	GetByNumber(ctx context.Context, number int) (View, error)
	// Search ordena por número descendente.
	Search(ctx context.Context, f Filter) ([]View, error)
	Count(ctx context.Context, f Filter) (int, error)
	// Recent ordena por fecha desc, número desc.
	Recent(ctx context.Context, limit int) ([]View, error)
	Update(ctx context.Context, v Visit) error
	Delete(ctx context.Context, id int64) error
	// MaxNumber devuelve 0 si no hay atenciones.
	MaxNumber(ctx context.Context) (int, error)

	// TutorLinks ordena por tutor, fecha y número.
	TutorLinks(ctx context.Context) ([]TutorLink, error)
	Relink(ctx context.Context, visitID, tutorID int64) error
}

// Repos agrupa los repositorios que participan de una mutación.
type Repos interface {
	Visits() Repository
	Tutors() tutors.Repository
	Audit() audit.Repository
}

// Store ejecuta fn dentro de una transacción: commit si fn devuelve nil,
// rollback en cualquier otro caso.
type Store interface {
	Repos
	WithinTx(ctx context.Context, fn func(Repos) error) error
}
