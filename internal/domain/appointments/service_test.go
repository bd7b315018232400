package appointments

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-registry/internal/platform/apperr"
	"vet-registry/internal/platform/logger"
)

type testRepo struct {
	byID   map[int64]Appointment
	nextID int64
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Appointment{}}
}

func (r *testRepo) Create(ctx context.Context, a Appointment) (int64, error) {
	r.nextID++
	a.ID = r.nextID
	r.byID[a.ID] = a
	return a.ID, nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Appointment, error) {
	a, ok := r.byID[id]
	if !ok {
		return Appointment{}, apperr.ErrNotFound
	}
	return a, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	a, ok := r.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	a.Status = status
	r.byID[id] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.byID[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) ListBetween(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	var out []Appointment
	for _, a := range r.byID {
		if !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Time < out[j].Time
	})
	return out, nil
}

func newTestService(repo Repository) *Service {
	svc := NewService(repo, time.UTC, logger.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 13, 15, 0, 0, 0, time.UTC) }
	return svc
}

func TestCreate_DefaultsToPending(t *testing.T) {
	svc := newTestService(newTestRepo())

	a, err := svc.Create(context.Background(), CreateInput{
		Date: "2024-05-14", Time: "09:30", AnimalName: "Toby", TutorName: "Ana", Type: "castracion",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, a.Status)
	assert.NotZero(t, a.ID)
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newTestRepo())

	_, err := svc.Create(context.Background(), CreateInput{Date: "14/05/2024", Time: "9.30"})
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "fecha")
	assert.Contains(t, ve.Fields, "hora")
	assert.Contains(t, ve.Fields, "nombre_animal")
	assert.Contains(t, ve.Fields, "tutor_nombre")
	assert.Contains(t, ve.Fields, "tipo")
}

func TestSetStatus_AnyTransitionAndUnknownStatus(t *testing.T) {
	repo := newTestRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, CreateInput{Date: "2024-05-14", Time: "10:00", AnimalName: "Luna", TutorName: "Eva", Type: "atencion_primaria"})
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, a.ID, StatusCancelled))
	require.NoError(t, svc.SetStatus(ctx, a.ID, StatusPending))
	assert.Equal(t, StatusPending, repo.byID[a.ID].Status)

	err = svc.SetStatus(ctx, a.ID, "reprogramado")
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)

	assert.ErrorIs(t, svc.SetStatus(ctx, 999, StatusCompleted), apperr.ErrNotFound)
}

func TestDelete_Missing(t *testing.T) {
	svc := newTestService(newTestRepo())
	assert.ErrorIs(t, svc.Delete(context.Background(), 42), apperr.ErrNotFound)
}

func TestList_DefaultWindowOrderedByDateAndTime(t *testing.T) {
	svc := newTestService(newTestRepo())
	ctx := context.Background()

	for _, in := range []CreateInput{
		{Date: "2024-05-13", Time: "11:00", AnimalName: "B", TutorName: "x", Type: "t"},
		{Date: "2024-05-13", Time: "08:15", AnimalName: "A", TutorName: "x", Type: "t"},
		{Date: "2024-05-20", Time: "09:00", AnimalName: "C", TutorName: "x", Type: "t"},
		{Date: "2024-05-21", Time: "09:00", AnimalName: "late", TutorName: "x", Type: "t"},
		{Date: "2024-05-12", Time: "09:00", AnimalName: "past", TutorName: "x", Type: "t"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	got, err := svc.List(ctx, nil, nil)
	require.NoError(t, err)

	names := make([]string, 0, len(got))
	for _, a := range got {
		names = append(names, a.AnimalName)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
}

func TestListBetween_RejectsInvertedRange(t *testing.T) {
	svc := newTestService(newTestRepo())
	from := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.ListBetween(context.Background(), from, to)
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)
}
