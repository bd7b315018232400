package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/platform/apperr"
)

type appointmentsRepo struct {
	q querier
	d Dialect
}

var appointmentColumns = []string{
	"id", "fecha", "hora", "nombre_animal", "tutor_nombre",
	"telefono", "tipo", "estado", "observaciones",
}

func (r appointmentsRepo) Create(ctx context.Context, a appointments.Appointment) (int64, error) {
	query, args, err := r.d.builder().
		Insert("turnos").
		Columns(appointmentColumns[1:]...).
		Values(
			dateArg(a.Date), a.Time, a.AnimalName, a.TutorName,
			optional(a.Phone), a.Type, a.Status, optional(a.Observations),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build insert appointment")
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "insert appointment")
	}
	return id, nil
}

func (r appointmentsRepo) GetByID(ctx context.Context, id int64) (appointments.Appointment, error) {
	query, args, err := r.d.builder().
		Select(appointmentColumns...).
		From("turnos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return appointments.Appointment{}, errors.Wrap(err, "build select appointment")
	}

	a, err := scanAppointment(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return appointments.Appointment{}, errors.Wrapf(apperr.ErrNotFound, "appointment %d", id)
	}
	if err != nil {
		return appointments.Appointment{}, errors.Wrap(err, "select appointment")
	}
	return a, nil
}

func (r appointmentsRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	query, args, err := r.d.builder().
		Update("turnos").
		Set("estado", status).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build update appointment")
	}
	return execOne(ctx, r.q, query, args, "update appointment")
}

func (r appointmentsRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := r.d.builder().
		Delete("turnos").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build delete appointment")
	}
	return execOne(ctx, r.q, query, args, "delete appointment")
}

func (r appointmentsRepo) ListBetween(ctx context.Context, from, to time.Time) ([]appointments.Appointment, error) {
	query, args, err := r.d.builder().
		Select(appointmentColumns...).
		From("turnos").
		Where(squirrel.GtOrEq{"fecha": dateArg(from)}).
		Where(squirrel.LtOrEq{"fecha": dateArg(to)}).
		OrderBy("fecha", "hora", "id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build list appointments")
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list appointments")
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan appointment")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list appointments")
	}
	return out, nil
}

func scanAppointment(s scanner) (appointments.Appointment, error) {
	var (
		a                   appointments.Appointment
		date                any
		phone, observations null.String
	)
	if err := s.Scan(&a.ID, &date, &a.Time, &a.AnimalName, &a.TutorName, &phone, &a.Type, &a.Status, &observations); err != nil {
		return appointments.Appointment{}, err
	}
	d, err := asDate(date)
	if err != nil {
		return appointments.Appointment{}, err
	}
	a.Date = d
	a.Phone = phone.ValueOrZero()
	a.Observations = observations.ValueOrZero()
	return a, nil
}
