package tutors

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/platform/apperr"
)

// Input son los datos de tutor que llegan con cada atención.
type Input struct {
	FullName     string `json:"nombre_apellido" validate:"required"`
	NationalID   string `json:"dni" validate:"required"`
	Address      string `json:"direccion"`
	Neighborhood string `json:"barrio"`
	Phone        string `json:"telefono"`
}

func (in Input) Trimmed() Input {
	return Input{
		FullName:     strings.TrimSpace(in.FullName),
		NationalID:   strings.TrimSpace(in.NationalID),
		Address:      strings.TrimSpace(in.Address),
		Neighborhood: strings.TrimSpace(in.Neighborhood),
		Phone:        strings.TrimSpace(in.Phone),
	}
}

// Resolver no guarda estado: recibe el repo en cada llamada para poder
// operar dentro de la transacción de quien lo invoca.
type Resolver struct {
	Mode Mode
}

// Resolve devuelve el id del tutor a vincular, creándolo o actualizándolo según Mode.
func (r Resolver) Resolve(ctx context.Context, repo Repository, in Input) (int64, error) {
	in = in.Trimmed()
	if err := apperr.Validate(in); err != nil {
		return 0, err
	}

	t := Tutor{
		FullName:     in.FullName,
		NationalID:   in.NationalID,
		Address:      in.Address,
		Neighborhood: in.Neighborhood,
		Phone:        in.Phone,
	}

	if r.Mode == ModeShared {
		existing, err := repo.FindByNationalID(ctx, in.NationalID)
		switch {
		case err == nil:
			// last-write-wins sobre los datos de contacto
			t.ID = existing.ID
			if err := repo.Update(ctx, t); err != nil {
				return 0, errors.Wrap(err, "update tutor")
			}
			return existing.ID, nil
		case !errors.Is(err, apperr.ErrNotFound):
			return 0, errors.Wrap(err, "find tutor")
		}
	}

	id, err := repo.Create(ctx, t)
	if err != nil {
		return 0, errors.Wrap(err, "create tutor")
	}
	return id, nil
}

// Service es la vista de consulta de tutores; la vinculación con atenciones
// pasa por Resolver dentro de la transacción de visits.
type Service struct {
	repo     Repository
	resolver Resolver
}

func NewService(repo Repository, mode Mode) *Service {
	return &Service{
		repo:     repo,
		resolver: Resolver{Mode: mode},
	}
}

func (s *Service) Resolver() Resolver {
	return s.resolver
}

func (s *Service) GetByID(ctx context.Context, id int64) (Tutor, error) {
	if id <= 0 {
		return Tutor{}, apperr.Invalid("tutor_id", "must be greater than 0")
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Tutor{}, lookupError(err, "get tutor")
	}
	return t, nil
}

// FindByNationalID devuelve la fila más reciente con ese DNI.
func (s *Service) FindByNationalID(ctx context.Context, nationalID string) (Tutor, error) {
	nationalID = strings.TrimSpace(nationalID)
	if nationalID == "" {
		return Tutor{}, apperr.Invalid("dni", "is required")
	}
	t, err := s.repo.FindByNationalID(ctx, nationalID)
	if err != nil {
		return Tutor{}, lookupError(err, "find tutor")
	}
	return t, nil
}

func lookupError(err error, msg string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return apperr.Storage(err, msg)
}
