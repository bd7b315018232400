package sqlstore

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/platform/apperr"
)

type tutorsRepo struct {
	q querier
	d Dialect
}

var tutorColumns = []string{"id", "nombre_apellido", "dni", "direccion", "barrio", "telefono"}

func (r tutorsRepo) Create(ctx context.Context, t tutors.Tutor) (int64, error) {
	query, args, err := r.d.builder().
		Insert("tutores").
		Columns("nombre_apellido", "dni", "direccion", "barrio", "telefono").
		Values(t.FullName, t.NationalID, optional(t.Address), optional(t.Neighborhood), optional(t.Phone)).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build insert tutor")
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert tutor")
	}
	return id, nil
}

func (r tutorsRepo) Update(ctx context.Context, t tutors.Tutor) error {
	query, args, err := r.d.builder().
		Update("tutores").
		SetMap(map[string]any{
			"nombre_apellido": t.FullName,
			"direccion":       optional(t.Address),
			"barrio":          optional(t.Neighborhood),
			"telefono":        optional(t.Phone),
		}).
		Where(squirrel.Eq{"id": t.ID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build update tutor")
	}
	return execOne(ctx, r.q, query, args, "update tutor")
}

func (r tutorsRepo) GetByID(ctx context.Context, id int64) (tutors.Tutor, error) {
	return r.getOne(ctx, r.d.builder().Select(tutorColumns...).From("tutores").Where(squirrel.Eq{"id": id}))
}

func (r tutorsRepo) FindByNationalID(ctx context.Context, nationalID string) (tutors.Tutor, error) {
	return r.getOne(ctx, r.d.builder().
		Select(tutorColumns...).
		From("tutores").
		Where(squirrel.Eq{"dni": nationalID}).
		OrderBy("id DESC").
		Limit(1))
}

func (r tutorsRepo) getOne(ctx context.Context, b squirrel.SelectBuilder) (tutors.Tutor, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return tutors.Tutor{}, errors.Wrap(err, "build select tutor")
	}

	t, err := scanTutor(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return tutors.Tutor{}, apperr.ErrNotFound
	}
	if err != nil {
		return tutors.Tutor{}, errors.Wrap(err, "select tutor")
	}
	return t, nil
}

func scanTutor(s scanner) (tutors.Tutor, error) {
	var (
		t                    tutors.Tutor
		address, hood, phone null.String
	)
	if err := s.Scan(&t.ID, &t.FullName, &t.NationalID, &address, &hood, &phone); err != nil {
		return tutors.Tutor{}, err
	}
	t.Address = address.ValueOrZero()
	t.Neighborhood = hood.ValueOrZero()
	t.Phone = phone.ValueOrZero()
	return t, nil
}

// execOne ejecuta una sentencia que debe afectar exactamente una fila.
func execOne(ctx context.Context, q querier, query string, args []any, what string) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrDuplicateNumber
		}
		return errors.Wrap(err, what)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, what)
	}
	if n == 0 {
		return errors.Wrap(apperr.ErrNotFound, what)
	}
	return nil
}
