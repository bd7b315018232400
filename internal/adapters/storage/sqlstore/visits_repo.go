package sqlstore

import (
	"context"
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/guregu/null/v5"

	"vet-registry/internal/domain/visits"
	"vet-registry/internal/platform/apperr"
)

type visitsRepo struct {
	q querier
	d Dialect
}

var viewColumns = []string{
	"a.id", "a.numero", "a.fecha", "a.tipo_atencion",
	"a.nombre_animal", "a.especie", "a.sexo", "a.edad",
	"a.tutor_id", "a.motivo", "a.diagnostico", "a.tratamiento", "a.derivacion",
	"a.estado", "a.observaciones",
	"t.id", "t.nombre_apellido", "t.dni", "t.direccion", "t.barrio", "t.telefono",
}

func (r visitsRepo) selectViews(columns ...string) squirrel.SelectBuilder {
	return r.d.builder().
		Select(columns...).
		From("atenciones a").
		Join("tutores t ON t.id = a.tutor_id")
}

func (r visitsRepo) Insert(ctx context.Context, v visits.Visit) (int64, error) {
	query, args, err := r.d.builder().
		Insert("atenciones").
		Columns(
			"numero", "fecha", "tipo_atencion",
			"nombre_animal", "especie", "sexo", "edad", "tutor_id",
			"motivo", "diagnostico", "tratamiento", "derivacion",
			"estado", "observaciones",
		).
		Values(
			v.Number, dateArg(v.Date), string(v.Type),
			v.AnimalName, v.Species, v.Sex, optional(v.Age), v.TutorID,
			optional(v.Reason), optional(v.Diagnosis), optional(v.Treatment), optional(v.Referral),
			v.Status, optional(v.Observations),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build insert visit")
	}

	var id int64
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, apperr.ErrDuplicateNumber
		}
		return 0, errors.Wrap(err, "insert visit")
	}
	return id, nil
}

func (r visitsRepo) GetByNumber(ctx context.Context, number int) (visits.View, error) {
	query, args, err := r.selectViews(viewColumns...).
		Where(squirrel.Eq{"a.numero": number}).
		ToSql()
	if err != nil {
		return visits.View{}, errors.Wrap(err, "build select visit")
	}

	v, err := scanView(r.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return visits.View{}, errors.Wrapf(apperr.ErrNotFound, "visit #%d", number)
	}
	if err != nil {
		return visits.View{}, errors.Wrap(err, "select visit")
	}
	return v, nil
}

func (r visitsRepo) Search(ctx context.Context, f visits.Filter) ([]visits.View, error) {
	b := r.applyFilter(r.selectViews(viewColumns...), f).OrderBy("a.numero DESC")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	return r.list(ctx, b)
}

func (r visitsRepo) Count(ctx context.Context, f visits.Filter) (int, error) {
	query, args, err := r.applyFilter(r.selectViews("COUNT(*)"), f).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "build count visits")
	}
	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count visits")
	}
	return n, nil
}

func (r visitsRepo) Recent(ctx context.Context, limit int) ([]visits.View, error) {
	b := r.selectViews(viewColumns...).OrderBy("a.fecha DESC", "a.numero DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return r.list(ctx, b)
}

func (r visitsRepo) list(ctx context.Context, b squirrel.SelectBuilder) ([]visits.View, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build list visits")
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list visits")
	}
	defer rows.Close()

	out := make([]visits.View, 0)
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan visit")
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list visits")
	}
	return out, nil
}

func (r visitsRepo) Update(ctx context.Context, v visits.Visit) error {
	query, args, err := r.d.builder().
		Update("atenciones").
		SetMap(map[string]any{
			"numero":        v.Number,
			"fecha":         dateArg(v.Date),
			"nombre_animal": v.AnimalName,
			"especie":       v.Species,
			"sexo":          v.Sex,
			"edad":          optional(v.Age),
			"motivo":        optional(v.Reason),
			"diagnostico":   optional(v.Diagnosis),
			"tratamiento":   optional(v.Treatment),
			"derivacion":    optional(v.Referral),
			"estado":        v.Status,
			"observaciones": optional(v.Observations),
		}).
		Where(squirrel.Eq{"id": v.ID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build update visit")
	}
	return execOne(ctx, r.q, query, args, "update visit")
}

func (r visitsRepo) Delete(ctx context.Context, id int64) error {
	query, args, err := r.d.builder().
		Delete("atenciones").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build delete visit")
	}
	return execOne(ctx, r.q, query, args, "delete visit")
}

func (r visitsRepo) MaxNumber(ctx context.Context) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, "SELECT COALESCE(MAX(numero), 0) FROM atenciones").Scan(&n)
	if err != nil {
		return 0, errors.Wrap(err, "max number")
	}
	return n, nil
}

func (r visitsRepo) TutorLinks(ctx context.Context) ([]visits.TutorLink, error) {
	query, args, err := r.d.builder().
		Select("id", "numero", "tutor_id").
		From("atenciones").
		OrderBy("tutor_id", "fecha", "numero").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build tutor links")
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "tutor links")
	}
	defer rows.Close()

	var out []visits.TutorLink
	for rows.Next() {
		var l visits.TutorLink
		if err := rows.Scan(&l.VisitID, &l.Number, &l.TutorID); err != nil {
			return nil, errors.Wrap(err, "scan tutor link")
		}
		out = append(out, l)
	}
	return out, errors.Wrap(rows.Err(), "tutor links")
}

func (r visitsRepo) Relink(ctx context.Context, visitID, tutorID int64) error {
	query, args, err := r.d.builder().
		Update("atenciones").
		Set("tutor_id", tutorID).
		Where(squirrel.Eq{"id": visitID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "build relink")
	}
	return execOne(ctx, r.q, query, args, "relink visit")
}

func (r visitsRepo) applyFilter(b squirrel.SelectBuilder, f visits.Filter) squirrel.SelectBuilder {
	if f.Number != nil {
		b = b.Where(squirrel.Eq{"a.numero": *f.Number})
	}
	if f.Type != "" {
		b = b.Where(squirrel.Eq{"a.tipo_atencion": string(f.Type)})
	}

	contains := []struct {
		column string
		value  string
	}{
		{"a.especie", f.Species},
		{"t.dni", f.NationalID},
		{"t.barrio", f.Neighborhood},
		{"a.nombre_animal", f.AnimalName},
	}
	for _, c := range contains {
		if c.value == "" {
			continue
		}
		b = b.Where(squirrel.Expr(r.d.lower(c.column)+" LIKE "+r.d.lower("?")+" ESCAPE '\\'", likePattern(c.value)))
	}

	if f.From != nil {
		b = b.Where(squirrel.GtOrEq{"a.fecha": dateArg(*f.From)})
	}
	if f.To != nil {
		b = b.Where(squirrel.LtOrEq{"a.fecha": dateArg(*f.To)})
	}
	return b
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func scanView(s scanner) (visits.View, error) {
	var (
		v                                        visits.View
		date                                     any
		typ                                      string
		age, reason, diagnosis, treatment, refer null.String
		observations, address, neighborhood, tel null.String
	)
	err := s.Scan(
		&v.ID, &v.Number, &date, &typ,
		&v.AnimalName, &v.Species, &v.Sex, &age,
		&v.TutorID, &reason, &diagnosis, &treatment, &refer,
		&v.Status, &observations,
		&v.Tutor.ID, &v.Tutor.FullName, &v.Tutor.NationalID, &address, &neighborhood, &tel,
	)
	if err != nil {
		return visits.View{}, err
	}

	d, err := asDate(date)
	if err != nil {
		return visits.View{}, err
	}
	v.Date = d
	v.Type = visits.Type(typ)
	v.Age = age.ValueOrZero()
	v.Reason = reason.ValueOrZero()
	v.Diagnosis = diagnosis.ValueOrZero()
	v.Treatment = treatment.ValueOrZero()
	v.Referral = refer.ValueOrZero()
	v.Observations = observations.ValueOrZero()
	v.Tutor.Address = address.ValueOrZero()
	v.Tutor.Neighborhood = neighborhood.ValueOrZero()
	v.Tutor.Phone = tel.ValueOrZero()
	return v, nil
}
