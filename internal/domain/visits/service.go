package visits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/cockroachdb/errors"

	"vet-registry/internal/domain/audit"
	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/platform/apperr"
	"vet-registry/internal/platform/logger"
	"vet-registry/internal/platform/metrics"
)

// CreateInput son los datos de alta de una atención.
type CreateInput struct {
	Number int    `json:"numero" validate:"gt=0"`
	Date   string `json:"fecha" validate:"required,datetime=2006-01-02"`
	Type   Type   `json:"tipo_atencion" validate:"required,oneof=castracion atencion_primaria"`

	AnimalName string `json:"nombre_animal" validate:"required"`
	Species    string `json:"especie" validate:"required"`
	Sex        string `json:"sexo" validate:"required"`
	Age        string `json:"edad"`

	Reason       string `json:"motivo" validate:"required_if=Type atencion_primaria"`
	Diagnosis    string `json:"diagnostico"`
	Treatment    string `json:"tratamiento"`
	Referral     string `json:"derivacion"`
	Observations string `json:"observaciones"`

	Tutor tutors.Input `json:"tutor"`
}

func (in CreateInput) trimmed() CreateInput {
	in.Date = strings.TrimSpace(in.Date)
	in.Type = Type(strings.TrimSpace(string(in.Type)))
	in.AnimalName = strings.TrimSpace(in.AnimalName)
	in.Species = strings.TrimSpace(in.Species)
	in.Sex = strings.TrimSpace(in.Sex)
	in.Age = strings.TrimSpace(in.Age)
	in.Reason = strings.TrimSpace(in.Reason)
	in.Diagnosis = strings.TrimSpace(in.Diagnosis)
	in.Treatment = strings.TrimSpace(in.Treatment)
	in.Referral = strings.TrimSpace(in.Referral)
	in.Observations = strings.TrimSpace(in.Observations)
	in.Tutor = in.Tutor.Trimmed()
	return in
}

// Patch es una edición parcial. Tutor y tipo no se editan por acá.
type Patch struct {
	Date         *string `json:"fecha"`
	AnimalName   *string `json:"nombre_animal"`
	Species      *string `json:"especie"`
	Sex          *string `json:"sexo"`
	Age          *string `json:"edad"`
	Reason       *string `json:"motivo"`
	Diagnosis    *string `json:"diagnostico"`
	Treatment    *string `json:"tratamiento"`
	Referral     *string `json:"derivacion"`
	Observations *string `json:"observaciones"`
}

func (p Patch) empty() bool {
	return p.Date == nil && p.AnimalName == nil && p.Species == nil && p.Sex == nil &&
		p.Age == nil && p.Reason == nil && p.Diagnosis == nil && p.Treatment == nil &&
		p.Referral == nil && p.Observations == nil
}

// Contact son los datos del tutor editables desde una atención.
type Contact struct {
	FullName     *string `json:"nombre_apellido"`
	Address      *string `json:"direccion"`
	Neighborhood *string `json:"barrio"`
	Phone        *string `json:"telefono"`
}

type Service struct {
	store    Store
	resolver tutors.Resolver
	audit    *audit.Service
	log      logger.Logger

	now      func() time.Time
	attempts uint
}

func NewService(store Store, resolver tutors.Resolver, auditSvc *audit.Service, log logger.Logger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		audit:    auditSvc,
		log:      log,
		now:      time.Now,
		attempts: 3,
	}
}

// Create da de alta una atención con un número elegido por el llamador.
// Resolución de tutor e inserción van en la misma transacción.
func (s *Service) Create(ctx context.Context, in CreateInput, actor string) (View, error) {
	in = in.trimmed()
	if err := apperr.Validate(in); err != nil {
		return View{}, err
	}
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return View{}, apperr.Invalid("fecha", "must match the layout "+DateLayout)
	}

	var out View
	err = s.store.WithinTx(ctx, func(r Repos) error {
		tutorID, err := s.resolver.Resolve(ctx, r.Tutors(), in.Tutor)
		if err != nil {
			return err
		}

		v := Visit{
			Number:       in.Number,
			Date:         date,
			Type:         in.Type,
			AnimalName:   in.AnimalName,
			Species:      in.Species,
			Sex:          in.Sex,
			Age:          in.Age,
			TutorID:      tutorID,
			Reason:       in.Reason,
			Diagnosis:    in.Diagnosis,
			Treatment:    in.Treatment,
			Referral:     in.Referral,
			Status:       StatusCompleted,
			Observations: in.Observations,
		}
		id, err := r.Visits().Insert(ctx, v)
		if err != nil {
			return err
		}
		v.ID = id

		t, err := r.Tutors().GetByID(ctx, tutorID)
		if err != nil {
			return errors.Wrap(err, "reload tutor")
		}
		out = View{Visit: v, Tutor: t}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperr.ErrDuplicateNumber) {
			metrics.DuplicateNumbers.Inc()
		}
		return View{}, classify(err, "create visit")
	}

	metrics.VisitMutations.WithLabelValues("create").Inc()
	s.log.Info("visit created", map[string]any{
		"numero": out.Number,
		"tipo":   string(out.Type),
		"actor":  actor,
	})
	return out, nil
}

// CreateNext asigna NextNumber y reintenta si otro alta ganó ese número.
func (s *Service) CreateNext(ctx context.Context, in CreateInput, actor string) (View, error) {
	var out View
	err := retry.Do(
		func() error {
			n, err := s.NextNumber(ctx)
			if err != nil {
				return err
			}
			in.Number = n
			out, err = s.Create(ctx, in, actor)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, apperr.ErrDuplicateNumber)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("record number taken, retrying", map[string]any{
				"attempt": n + 1,
				"numero":  in.Number,
			})
		}),
	)
	if err != nil {
		return View{}, err
	}
	return out, nil
}

func (s *Service) Search(ctx context.Context, f Filter) ([]View, error) {
	f = f.trimmed()
	if err := f.validate(); err != nil {
		return nil, err
	}
	out, err := s.store.Visits().Search(ctx, f)
	if err != nil {
		return nil, classify(err, "search visits")
	}
	return out, nil
}

// Count cuenta las atenciones que cumplen f (Limit se ignora).
func (s *Service) Count(ctx context.Context, f Filter) (int, error) {
	f = f.trimmed()
	f.Limit = 0
	if err := f.validate(); err != nil {
		return 0, err
	}
	n, err := s.store.Visits().Count(ctx, f)
	if err != nil {
		return 0, classify(err, "count visits")
	}
	return n, nil
}

// Recent devuelve las últimas limit atenciones por fecha.
func (s *Service) Recent(ctx context.Context, limit int) ([]View, error) {
	if limit <= 0 {
		return nil, apperr.Invalid("limite", "must be greater than 0")
	}
	out, err := s.store.Visits().Recent(ctx, limit)
	if err != nil {
		return nil, classify(err, "recent visits")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, number int) (View, error) {
	if number <= 0 {
		return View{}, apperr.Invalid("numero", "must be greater than 0")
	}
	v, err := s.store.Visits().GetByNumber(ctx, number)
	if err != nil {
		return View{}, classify(err, "get visit")
	}
	return v, nil
}

// Edit aplica p y deja una entrada UPDATE en la auditoría, todo o nada.
func (s *Service) Edit(ctx context.Context, number int, p Patch, actor string) (View, error) {
	if number <= 0 {
		return View{}, apperr.Invalid("numero", "must be greater than 0")
	}
	if p.empty() {
		return View{}, apperr.Invalid("patch", "no fields to update")
	}

	var out View
	err := s.store.WithinTx(ctx, func(r Repos) error {
		before, err := r.Visits().GetByNumber(ctx, number)
		if err != nil {
			return err
		}

		after, err := applyPatch(before, p)
		if err != nil {
			return err
		}
		if err := r.Visits().Update(ctx, after.Visit); err != nil {
			return err
		}

		_, err = s.audit.AppendTx(ctx, r.Audit(), audit.Entry{
			Operation:   audit.OpUpdate,
			Table:       audit.TableVisits,
			RecordID:    before.ID,
			Actor:       actor,
			Before:      audit.Snapshot(toRecord(before)),
			After:       audit.Snapshot(toRecord(after)),
			Description: fmt.Sprintf("Edición de atención #%d", number),
		})
		if err != nil {
			return err
		}
		out = after
		return nil
	})
	if err != nil {
		return View{}, classify(err, "edit visit")
	}

	metrics.VisitMutations.WithLabelValues("edit").Inc()
	s.log.Info("visit edited", map[string]any{"numero": number, "actor": actor})
	return out, nil
}

func applyPatch(v View, p Patch) (View, error) {
	ve := &apperr.ValidationError{}

	required := func(field string, src *string, dst *string) {
		if src == nil {
			return
		}
		val := strings.TrimSpace(*src)
		if val == "" {
			ve.Add(field, "is required")
			return
		}
		*dst = val
	}
	optional := func(src *string, dst *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}

	if p.Date != nil {
		d, err := time.Parse(DateLayout, strings.TrimSpace(*p.Date))
		if err != nil {
			ve.Add("fecha", "must match the layout "+DateLayout)
		} else {
			v.Date = d
		}
	}
	required("nombre_animal", p.AnimalName, &v.AnimalName)
	required("especie", p.Species, &v.Species)
	required("sexo", p.Sex, &v.Sex)
	optional(p.Age, &v.Age)
	if v.Type == TypePrimaryCare {
		required("motivo", p.Reason, &v.Reason)
	} else {
		optional(p.Reason, &v.Reason)
	}
	optional(p.Diagnosis, &v.Diagnosis)
	optional(p.Treatment, &v.Treatment)
	optional(p.Referral, &v.Referral)
	optional(p.Observations, &v.Observations)

	if err := ve.OrNil(); err != nil {
		return View{}, err
	}
	return v, nil
}

// Delete borra la atención. El snapshot completo queda en la auditoría.
func (s *Service) Delete(ctx context.Context, number int, actor string) error {
	if number <= 0 {
		return apperr.Invalid("numero", "must be greater than 0")
	}

	err := s.store.WithinTx(ctx, func(r Repos) error {
		before, err := r.Visits().GetByNumber(ctx, number)
		if err != nil {
			return err
		}
		if err := r.Visits().Delete(ctx, before.ID); err != nil {
			return err
		}
		_, err = s.audit.AppendTx(ctx, r.Audit(), audit.Entry{
			Operation:   audit.OpDelete,
			Table:       audit.TableVisits,
			RecordID:    before.ID,
			Actor:       actor,
			Before:      audit.Snapshot(toRecord(before)),
			Description: fmt.Sprintf("Eliminación de atención #%d", number),
		})
		return err
	})
	if err != nil {
		return classify(err, "delete visit")
	}

	metrics.VisitMutations.WithLabelValues("delete").Inc()
	s.log.Info("visit deleted", map[string]any{"numero": number, "actor": actor})
	return nil
}

// NextNumber es max(numero)+1, o 1 si no hay atenciones. No rellena huecos.
func (s *Service) NextNumber(ctx context.Context) (int, error) {
	n, err := s.store.Visits().MaxNumber(ctx)
	if err != nil {
		return 0, classify(err, "max number")
	}
	return n + 1, nil
}

// EditTutorContact actualiza el tutor vinculado a la atención number.
// En modo compartido el cambio se ve en todas sus atenciones.
func (s *Service) EditTutorContact(ctx context.Context, number int, c Contact, actor string) (View, error) {
	if number <= 0 {
		return View{}, apperr.Invalid("numero", "must be greater than 0")
	}
	if c.FullName == nil && c.Address == nil && c.Neighborhood == nil && c.Phone == nil {
		return View{}, apperr.Invalid("patch", "no fields to update")
	}

	var out View
	err := s.store.WithinTx(ctx, func(r Repos) error {
		v, err := r.Visits().GetByNumber(ctx, number)
		if err != nil {
			return err
		}

		before := v.Tutor
		after := before
		if c.FullName != nil {
			after.FullName = strings.TrimSpace(*c.FullName)
			if after.FullName == "" {
				return apperr.Invalid("nombre_apellido", "is required")
			}
		}
		if c.Address != nil {
			after.Address = strings.TrimSpace(*c.Address)
		}
		if c.Neighborhood != nil {
			after.Neighborhood = strings.TrimSpace(*c.Neighborhood)
		}
		if c.Phone != nil {
			after.Phone = strings.TrimSpace(*c.Phone)
		}

		if err := r.Tutors().Update(ctx, after); err != nil {
			return err
		}
		_, err = s.audit.AppendTx(ctx, r.Audit(), audit.Entry{
			Operation:   audit.OpUpdate,
			Table:       audit.TableTutors,
			RecordID:    before.ID,
			Actor:       actor,
			Before:      audit.Snapshot(tutorRecord(before)),
			After:       audit.Snapshot(tutorRecord(after)),
			Description: fmt.Sprintf("Edición de tutor desde atención #%d", number),
		})
		if err != nil {
			return err
		}

		v.Tutor = after
		out = v
		return nil
	})
	if err != nil {
		return View{}, classify(err, "edit tutor contact")
	}

	s.log.Info("tutor contact edited", map[string]any{"numero": number, "tutor_id": out.TutorID, "actor": actor})
	return out, nil
}

// classify deja pasar los errores de negocio y marca el resto como storage.
func classify(err error, msg string) error {
	if _, ok := apperr.AsValidation(err); ok {
		return err
	}
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrDuplicateNumber) {
		return err
	}
	return apperr.Storage(err, msg)
}

func (f Filter) trimmed() Filter {
	f.Type = Type(strings.TrimSpace(string(f.Type)))
	f.Species = strings.TrimSpace(f.Species)
	f.NationalID = strings.TrimSpace(f.NationalID)
	f.Neighborhood = strings.TrimSpace(f.Neighborhood)
	f.AnimalName = strings.TrimSpace(f.AnimalName)
	return f
}

func (f Filter) validate() error {
	ve := &apperr.ValidationError{}
	if f.Type != "" && !f.Type.Valid() {
		ve.Add("tipo_atencion", "must be one of castracion, atencion_primaria")
	}
	if f.Limit < 0 {
		ve.Add("limite", "must be at least 0")
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		ve.Add("fecha_desde", "must not be after fecha_hasta")
	}
	return ve.OrNil()
}

type tutorSnapshot struct {
	ID           int64  `json:"id"`
	FullName     string `json:"nombre_apellido"`
	NationalID   string `json:"dni"`
	Address      string `json:"direccion,omitempty"`
	Neighborhood string `json:"barrio,omitempty"`
	Phone        string `json:"telefono,omitempty"`
}

func tutorRecord(t tutors.Tutor) tutorSnapshot {
	return tutorSnapshot{
		ID:           t.ID,
		FullName:     t.FullName,
		NationalID:   t.NationalID,
		Address:      t.Address,
		Neighborhood: t.Neighborhood,
		Phone:        t.Phone,
	}
}
