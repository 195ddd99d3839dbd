package repos_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentalcar/internal/domain"
	"rentalcar/internal/kv"
	"rentalcar/internal/repos"
)

func memdb(t *testing.T) *repos.KVRepo {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos.NewKVRepo(db)
}

var _ kv.Store = (*repos.KVRepo)(nil)

func TestKVRepoRoundTrip(t *testing.T) {
	r := memdb(t)
	ctx := context.Background()

	_, ok, err := r.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Set(ctx, "s:favorites", `["a"]`))
	require.NoError(t, r.Set(ctx, "s:favorites", `["a","b"]`))
	v, ok, err := r.Get(ctx, "s:favorites")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `["a","b"]`, v)

	require.NoError(t, r.Remove(ctx, "s:favorites"))
	_, ok, err = r.Get(ctx, "s:favorites")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBookingRepo(t *testing.T) {
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	defer db.Close()
	r := repos.NewBookingRepo(db)
	ctx := context.Background()

	b := domain.BookingRequest{
		ID: "b-1", SessionID: "s-1", CarID: "car-9",
		Name: "Olena", Email: "olena@example.com",
		StartDate: "2026-10-20", EndDate: "2026-10-22",
	}
	require.NoError(t, r.Create(ctx, b))

	got, err := r.Get(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "car-9", got.CarID)
	assert.Equal(t, "2026-10-22", got.EndDate)
	assert.NotEmpty(t, got.CreatedAt)

	list, err := r.ListBySession(ctx, "s-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
