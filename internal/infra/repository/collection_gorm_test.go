package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/remote"
	"github.com/BruksfildServices01/schedmate/internal/testutil"
)

func TestSelectFiltersByOwnerAndOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	clients := NewGormCollection[models.Client](testutil.NewDB(t))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"Ann", "Ben", "Cid"} {
		rec := models.Client{OwnerID: 1, Name: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		require.NoError(t, clients.Insert(ctx, &rec))
	}
	require.NoError(t, clients.Insert(ctx, &models.Client{OwnerID: 2, Name: "Other"}))

	got, err := clients.Select(ctx, remote.Query{
		Filter: remote.Owned(1),
		Order:  []remote.Order{{Column: "created_at", Desc: true}},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Cid", got[0].Name)
	assert.Equal(t, "Ann", got[2].Name)
}

func TestSingleReturnsErrNoRows(t *testing.T) {
	profiles := NewGormCollection[models.BusinessProfile](testutil.NewDB(t))

	_, err := profiles.Single(context.Background(), remote.Query{Filter: remote.Owned(7)})
	assert.ErrorIs(t, err, remote.ErrNoRows)
}

func TestUpdateAndDeleteRespectOwnerFilter(t *testing.T) {
	ctx := context.Background()
	clients := NewGormCollection[models.Client](testutil.NewDB(t))

	rec := models.Client{OwnerID: 1, Name: "Jane"}
	require.NoError(t, clients.Insert(ctx, &rec))

	n, err := clients.Update(ctx, remote.Owned(2).Eq("id", rec.ID), map[string]any{"name": "Hijacked"})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = clients.Delete(ctx, remote.Owned(2).Eq("id", rec.ID))
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := clients.Single(ctx, remote.Query{Filter: remote.Owned(1).Eq("id", rec.ID)})
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)

	n, err = clients.Update(ctx, remote.Owned(1).Eq("id", rec.ID), map[string]any{"name": "Janet"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUnscopedMutationsAreRejected(t *testing.T) {
	ctx := context.Background()
	clients := NewGormCollection[models.Client](testutil.NewDB(t))

	_, err := clients.Update(ctx, nil, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, remote.ErrUnscoped)

	_, err = clients.Delete(ctx, remote.Filter{})
	assert.ErrorIs(t, err, remote.ErrUnscoped)
}

func TestUpsertKeepsOneRowPerOwner(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	profiles := NewGormCollection[models.BusinessProfile](db)

	for i := 0; i < 2; i++ {
		rec := models.BusinessProfile{
			OwnerID:      5,
			BusinessName: "Sparkle Cleaning",
			ContactEmail: "hi@sparkle.test",
			StartTime:    "08:00",
			EndTime:      "18:00",
		}
		require.NoError(t, profiles.Upsert(ctx, &rec, remote.ColumnOwnerID))
		assert.NotZero(t, rec.ID)
	}

	rec := models.BusinessProfile{OwnerID: 5, BusinessName: "Sparkle Co", StartTime: "09:00", EndTime: "17:00"}
	require.NoError(t, profiles.Upsert(ctx, &rec, remote.ColumnOwnerID))
	assert.Equal(t, "Sparkle Co", rec.BusinessName)

	var count int64
	require.NoError(t, db.Model(&models.BusinessProfile{}).Where("owner_id = ?", 5).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertRejectsUnknownConflictColumn(t *testing.T) {
	profiles := NewGormCollection[models.BusinessProfile](testutil.NewDB(t))

	err := profiles.Upsert(context.Background(), &models.BusinessProfile{OwnerID: 1}, "nope")
	assert.Error(t, err)
}
