package tutors

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-registry/internal/platform/apperr"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID    map[int64]Tutor
	nextID  int64
	updates int
	failOn  string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[int64]Tutor{}}
}

func (r *testRepo) Create(ctx context.Context, t Tutor) (int64, error) {
	if r.failOn == "create" {
		return 0, errors.New("repo: create failed")
	}
	r.nextID++
	t.ID = r.nextID
	r.byID[t.ID] = t
	return t.ID, nil
}

func (r *testRepo) Update(ctx context.Context, t Tutor) error {
	if _, ok := r.byID[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	r.updates++
	r.byID[t.ID] = t
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id int64) (Tutor, error) {
	t, ok := r.byID[id]
	if !ok {
		return Tutor{}, apperr.ErrNotFound
	}
	return t, nil
}

func (r *testRepo) FindByNationalID(ctx context.Context, nationalID string) (Tutor, error) {
	if r.failOn == "find" {
		return Tutor{}, errors.New("repo: find failed")
	}
	var found Tutor
	for _, t := range r.byID {
		if t.NationalID == nationalID && t.ID > found.ID {
			found = t
		}
	}
	if found.ID == 0 {
		return Tutor{}, apperr.ErrNotFound
	}
	return found, nil
}

// -------------------------
// Tests
// -------------------------

func TestResolve_Shared_ReusesAndOverwritesContact(t *testing.T) {
	repo := newTestRepo()
	r := Resolver{Mode: ModeShared}
	ctx := context.Background()

	id1, err := r.Resolve(ctx, repo, Input{FullName: "María González", NationalID: "111", Neighborhood: "Centro", Phone: "351-1"})
	require.NoError(t, err)

	id2, err := r.Resolve(ctx, repo, Input{FullName: "María G. González", NationalID: " 111 ", Neighborhood: "Belgrano", Phone: "351-2"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Len(t, repo.byID, 1)
	assert.Equal(t, 1, repo.updates)

	got := repo.byID[id1]
	assert.Equal(t, "María G. González", got.FullName)
	assert.Equal(t, "Belgrano", got.Neighborhood)
	assert.Equal(t, "351-2", got.Phone)
}

func TestResolve_Independent_AlwaysCreates(t *testing.T) {
	repo := newTestRepo()
	r := Resolver{Mode: ModeIndependent}
	ctx := context.Background()

	id1, err := r.Resolve(ctx, repo, Input{FullName: "Juan Pérez", NationalID: "222", Neighborhood: "Alberdi"})
	require.NoError(t, err)
	id2, err := r.Resolve(ctx, repo, Input{FullName: "Juan Pérez", NationalID: "222", Neighborhood: "Güemes"})
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, "Alberdi", repo.byID[id1].Neighborhood, "earlier snapshot must stay untouched")
	assert.Equal(t, "Güemes", repo.byID[id2].Neighborhood)
	assert.Zero(t, repo.updates)
}

func TestResolve_RequiresNameAndNationalID(t *testing.T) {
	repo := newTestRepo()
	r := Resolver{Mode: ModeShared}

	_, err := r.Resolve(context.Background(), repo, Input{FullName: "   ", NationalID: ""})
	require.Error(t, err)

	ve, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "dni")
	assert.Contains(t, ve.Fields, "nombre_apellido")
	assert.Empty(t, repo.byID)
}

func TestResolve_PropagatesLookupFailure(t *testing.T) {
	repo := newTestRepo()
	repo.failOn = "find"

	_, err := Resolver{Mode: ModeShared}.Resolve(context.Background(), repo, Input{FullName: "Ana", NationalID: "333"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, apperr.ErrNotFound))
	assert.Empty(t, repo.byID)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("SHARED")
	require.NoError(t, err)
	assert.Equal(t, ModeShared, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeIndependent, m)

	_, err = ParseMode("merge")
	assert.Error(t, err)
}

func TestService_Lookups(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	svc := NewService(repo, ModeIndependent)

	id, err := svc.Resolver().Resolve(ctx, repo, Input{FullName: "Laura", NationalID: "444"})
	require.NoError(t, err)
	newer, err := svc.Resolver().Resolve(ctx, repo, Input{FullName: "Laura M.", NationalID: "444"})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "444", got.NationalID)

	_, err = svc.GetByID(ctx, 99)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.GetByID(ctx, 0)
	_, isValidation := apperr.AsValidation(err)
	assert.True(t, isValidation)

	latest, err := svc.FindByNationalID(ctx, " 444 ")
	require.NoError(t, err)
	assert.Equal(t, newer, latest.ID)
	assert.Equal(t, "Laura M.", latest.FullName)

	_, err = svc.FindByNationalID(ctx, "")
	_, isValidation = apperr.AsValidation(err)
	assert.True(t, isValidation)

	repo.failOn = "find"
	_, err = svc.FindByNationalID(ctx, "444")
	assert.True(t, errors.Is(err, apperr.ErrStorage))
}
