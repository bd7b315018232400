package appointments

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"vet-registry/internal/platform/apperr"
	"vet-registry/internal/platform/logger"
)

// DefaultWindow es el rango de List cuando no se indica hasta.
const DefaultWindow = 7 * 24 * time.Hour

type CreateInput struct {
	Date         string `json:"fecha" validate:"required,datetime=2006-01-02"`
	Time         string `json:"hora" validate:"required,datetime=15:04"`
	AnimalName   string `json:"nombre_animal" validate:"required"`
	TutorName    string `json:"tutor_nombre" validate:"required"`
	Phone        string `json:"telefono"`
	Type         string `json:"tipo" validate:"required"`
	Observations string `json:"observaciones"`
}

type Service struct {
	repo Repository
	log  logger.Logger
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo Repository, loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo: repo,
		log:  log,
		loc:  loc,
		now:  time.Now,
	}
}

// Create agenda un turno en estado pendiente.
func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	in = CreateInput{
		Date:         strings.TrimSpace(in.Date),
		Time:         strings.TrimSpace(in.Time),
		AnimalName:   strings.TrimSpace(in.AnimalName),
		TutorName:    strings.TrimSpace(in.TutorName),
		Phone:        strings.TrimSpace(in.Phone),
		Type:         strings.TrimSpace(in.Type),
		Observations: strings.TrimSpace(in.Observations),
	}
	if err := apperr.Validate(in); err != nil {
		return Appointment{}, err
	}
	date, err := time.Parse(DateLayout, in.Date)
	if err != nil {
		return Appointment{}, apperr.Invalid("fecha", "must match the layout "+DateLayout)
	}

	a := Appointment{
		Date:         date,
		Time:         in.Time,
		AnimalName:   in.AnimalName,
		TutorName:    in.TutorName,
		Phone:        in.Phone,
		Type:         in.Type,
		Status:       StatusPending,
		Observations: in.Observations,
	}
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return Appointment{}, apperr.Storage(err, "create appointment")
	}
	a.ID = id

	s.log.Info("appointment created", map[string]any{"id": id, "fecha": in.Date, "hora": in.Time})
	return a, nil
}

// SetStatus permite cualquier transición entre estados válidos.
func (s *Service) SetStatus(ctx context.Context, id int64, status string) error {
	status = strings.TrimSpace(status)
	if id <= 0 {
		return apperr.Invalid("id", "must be greater than 0")
	}
	if !ValidStatus(status) {
		return apperr.Invalid("estado", "must be one of pendiente, completado, cancelado")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return classify(err, "update appointment status")
	}
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperr.Invalid("id", "must be greater than 0")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return classify(err, "delete appointment")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (Appointment, error) {
	if id <= 0 {
		return Appointment{}, apperr.Invalid("id", "must be greater than 0")
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, classify(err, "get appointment")
	}
	return a, nil
}

// ListBetween devuelve los turnos con fecha en [from, to], por fecha y hora.
func (s *Service) ListBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	from, to = dateOnly(from), dateOnly(to)
	if from.After(to) {
		return nil, apperr.Invalid("desde", "must not be after hasta")
	}
	out, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, apperr.Storage(err, "list appointments")
	}
	return out, nil
}

// List es ListBetween con valores por defecto: desde hoy y hasta desde+7 días.
func (s *Service) List(ctx context.Context, from, to *time.Time) ([]Appointment, error) {
	start := s.Today()
	if from != nil {
		start = *from
	}
	end := dateOnly(start).Add(DefaultWindow)
	if to != nil {
		end = *to
	}
	return s.ListBetween(ctx, start, end)
}

// Today es la fecha local de hoy, normalizada a medianoche UTC.
func (s *Service) Today() time.Time {
	y, m, d := s.now().In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func classify(err error, msg string) error {
	if errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return apperr.Storage(err, msg)
}
