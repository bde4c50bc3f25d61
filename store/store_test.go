package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/riskfolio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := riskfolio.Profile{Age: riskfolio.Ptr(45), NumberOfDependents: riskfolio.Ptr(0), MaritalStatus: riskfolio.Single}
	created, err := s.Create(ctx, "Asha", "asha@example.com", p)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.RiskScore)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, 0, *got.Profile.NumberOfDependents, "explicit zero survives storage")
	assert.Nil(t, got.Profile.AnnualIncome, "missing fields stay missing")
}

func TestStore_CreateAssignsDistinctIDs(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, "A", "a@example.com", riskfolio.Profile{})
	require.NoError(t, err)
	b, err := s.Create(ctx, "B", "b@example.com", riskfolio.Profile{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestStore_GetUnknown(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateProfile(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	day := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return day }

	u, err := s.Create(ctx, "Ravi", "ravi@example.com", riskfolio.Profile{
		Age:           riskfolio.Ptr(30),
		AnnualIncome:  riskfolio.Ptr(800000.0),
		RiskTolerance: riskfolio.Ptr(4),
	})
	require.NoError(t, err)

	day = day.Add(time.Hour)
	updated, err := s.UpdateProfile(ctx, u.ID, riskfolio.Profile{
		RiskTolerance:     riskfolio.Ptr(8),
		InvestmentHorizon: riskfolio.LongTerm,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, *updated.Profile.Age)
	assert.Equal(t, 800000.0, *updated.Profile.AnnualIncome)
	assert.Equal(t, 8, *updated.Profile.RiskTolerance)
	assert.Equal(t, riskfolio.LongTerm, updated.Profile.InvestmentHorizon)
	assert.Equal(t, day, updated.UpdatedAt)
	assert.Equal(t, day.Add(-time.Hour), updated.CreatedAt)

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = s.UpdateProfile(ctx, "no-such-user", riskfolio.Profile{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_SetRiskScore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.Create(ctx, "Meera", "meera@example.com", riskfolio.Profile{})
	require.NoError(t, err)

	require.NoError(t, s.SetRiskScore(ctx, u.ID, 5.3))
	require.NoError(t, s.SetRiskScore(ctx, u.ID, 7.9))

	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RiskScore)
	assert.Equal(t, riskfolio.RiskScore(7.9), *got.RiskScore, "only the latest score is kept")

	assert.ErrorIs(t, s.SetRiskScore(ctx, "no-such-user", 5), ErrNotFound)
}

func TestStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "riskfolio.db")
	ctx := context.Background()

	s, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	u, err := s.Create(ctx, "Kiran", "kiran@example.com", riskfolio.Profile{Savings: riskfolio.Ptr(250000.0)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 250000.0, *got.Profile.Savings)
}
