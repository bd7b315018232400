// Package memory implementa los repositorios en memoria. Se usa en tests y
// cuando el servicio corre sin base de datos.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"vet-registry/internal/domain/appointments"
	"vet-registry/internal/domain/audit"
	"vet-registry/internal/domain/tutors"
	"vet-registry/internal/domain/visits"
)

type state struct {
	tutors       map[int64]tutors.Tutor
	visits       map[int64]visits.Visit
	audit        []audit.Entry
	appointments map[int64]appointments.Appointment

	tutorSeq       int64
	visitSeq       int64
	auditSeq       int64
	appointmentSeq int64
}

func newState() *state {
	return &state{
		tutors:       make(map[int64]tutors.Tutor),
		visits:       make(map[int64]visits.Visit),
		appointments: make(map[int64]appointments.Appointment),
	}
}

func (s *state) clone() *state {
	c := *s
	c.tutors = maps.Clone(s.tutors)
	c.visits = maps.Clone(s.visits)
	c.audit = slices.Clone(s.audit)
	c.appointments = maps.Clone(s.appointments)
	return &c
}

// Store serializa todas las operaciones con un único mutex. WithinTx trabaja
// sobre una copia y la publica sólo si fn termina sin error.
type Store struct {
	mu sync.Mutex
	st *state
}

func NewStore() *Store {
	return &Store{st: newState()}
}

// scope resuelve sobre qué estado opera un repo: el de la transacción en
// curso o el publicado (tomando el lock).
type scope struct {
	store *Store
	tx    *state
}

func (sc scope) run(fn func(*state) error) error {
	if sc.tx != nil {
		return fn(sc.tx)
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	return fn(sc.store.st)
}

func (s *Store) Visits() visits.Repository { return visitRepo{scope{store: s}} }

func (s *Store) Tutors() tutors.Repository { return tutorRepo{scope{store: s}} }

func (s *Store) Audit() audit.Repository { return auditRepo{scope{store: s}} }

func (s *Store) Appointments() appointments.Repository { return appointmentRepo{scope{store: s}} }

type txRepos struct {
	sc scope
}

func (t txRepos) Visits() visits.Repository { return visitRepo{t.sc} }
func (t txRepos) Tutors() tutors.Repository { return tutorRepo{t.sc} }
func (t txRepos) Audit() audit.Repository   { return auditRepo{t.sc} }

func (s *Store) WithinTx(ctx context.Context, fn func(visits.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(txRepos{scope{store: s, tx: work}}); err != nil {
		return err
	}
	s.st = work
	return nil
}
