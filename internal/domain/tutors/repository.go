package tutors

import "context"

type Repository interface {
	Create(ctx context.Context, t Tutor) (int64, error)
	Update(ctx context.Context, t Tutor) error
	GetByID(ctx context.Context, id int64) (Tutor, error)
	// FindByNationalID devuelve la fila más reciente con ese DNI o apperr.ErrNotFound.
	FindByNationalID(ctx context.Context, nationalID string) (Tutor, error)
}
