package database

import (
	"accordee/internal/types"
	"context"
	"encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func createDashboard(t *testing.T, db *gorm.DB, url string) *types.Dashboard {
	t.Helper()
	user := &types.User{Username: url + "-owner", Email: url + "@example.com", Password: "x"}
	dashboard := &types.Dashboard{URL: url, Title: url}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user, dashboard))
	return dashboard
}

func TestDashboardRepository_SetToken(t *testing.T) {
	db := openTestDB(t)
	repo := NewDashboardRepository(db)
	ctx := context.Background()
	dashboard := createDashboard(t, db, "home")

	rec, err := repo.GetVerification(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateUnconfigured, rec.State())

	require.NoError(t, repo.SetToken(ctx, dashboard.ID, "tok1", "a.example.com"))
	require.NoError(t, repo.SetVerified(ctx, dashboard.ID, types.VerificationPair{Token: "tok1", Domain: "a.example.com"}, true))

	rec, err = repo.GetVerification(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.True(t, rec.IsVerified)
	assert.NotNil(t, rec.VerifiedAt)

	// a new token always resets the verified flag
	require.NoError(t, repo.SetToken(ctx, dashboard.ID, "tok2", "a.example.com"))
	rec, err = repo.GetVerification(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.False(t, rec.IsVerified)
	assert.Nil(t, rec.VerifiedAt)
	assert.Equal(t, "tok2", rec.VerificationToken)
	assert.Equal(t, types.StatePendingVerification, rec.State())

	err = repo.SetToken(ctx, 9999, "tok", "a.example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDashboardRepository_SetVerifiedCompareAndSet(t *testing.T) {
	db := openTestDB(t)
	repo := NewDashboardRepository(db)
	ctx := context.Background()
	dashboard := createDashboard(t, db, "home")

	require.NoError(t, repo.SetToken(ctx, dashboard.ID, "tok1", "a.example.com"))

	tests := []struct {
		name        string
		id          uint
		pair        types.VerificationPair
		expectedErr error
	}{
		{
			name:        "stale token",
			id:          dashboard.ID,
			pair:        types.VerificationPair{Token: "old", Domain: "a.example.com"},
			expectedErr: ErrStaleVerification,
		},
		{
			name:        "stale domain",
			id:          dashboard.ID,
			pair:        types.VerificationPair{Token: "tok1", Domain: "b.example.com"},
			expectedErr: ErrStaleVerification,
		},
		{
			name:        "missing dashboard",
			id:          dashboard.ID + 100,
			pair:        types.VerificationPair{Token: "tok1", Domain: "a.example.com"},
			expectedErr: gorm.ErrRecordNotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := repo.SetVerified(ctx, test.id, test.pair, true)
			assert.ErrorIs(t, err, test.expectedErr)
		})
	}

	rec, err := repo.GetVerification(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.False(t, rec.IsVerified)
}

func TestDashboardRepository_SetProvisioned(t *testing.T) {
	db := openTestDB(t)
	repo := NewDashboardRepository(db)
	ctx := context.Background()
	dashboard := createDashboard(t, db, "home")

	require.NoError(t, repo.SetToken(ctx, dashboard.ID, "tok1", "a.example.com"))
	require.NoError(t, repo.SetVerified(ctx, dashboard.ID, types.VerificationPair{Token: "tok1", Domain: "a.example.com"}, true))

	awaiting, err := repo.FindAwaitingVerification(ctx)
	require.NoError(t, err)
	assert.Len(t, awaiting, 1)

	err = repo.SetProvisioned(ctx, dashboard.ID, "b.example.com", json.RawMessage(`{"id":1}`))
	assert.ErrorIs(t, err, ErrStaleVerification)

	require.NoError(t, repo.SetProvisioned(ctx, dashboard.ID, "a.example.com", json.RawMessage(`{"id":7}`)))

	rec, err := repo.GetVerification(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StateVerified, rec.State())
	assert.JSONEq(t, `{"id":7}`, string(rec.ProxyHostResponse))

	awaiting, err = repo.FindAwaitingVerification(ctx)
	require.NoError(t, err)
	assert.Empty(t, awaiting)

	// switching domains leaves the old registration behind and needs a new one
	require.NoError(t, repo.SetToken(ctx, dashboard.ID, "tok2", "c.example.com"))
	rec, err = repo.GetVerification(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.False(t, rec.IsProvisioned())
	assert.Equal(t, types.StatePendingVerification, rec.State())
}

func TestDashboardRepository_ReplaceSections(t *testing.T) {
	db := openTestDB(t)
	repo := NewDashboardRepository(db)
	ctx := context.Background()
	dashboard := createDashboard(t, db, "home")

	_, err := repo.ReplaceSections(ctx, dashboard.ID, []*types.Section{
		{Title: "first", OrderNum: 1},
		{Title: "second", OrderNum: 2},
	})
	require.NoError(t, err)

	sections, err := repo.ReplaceSections(ctx, dashboard.ID, []*types.Section{
		{Title: "b", OrderNum: 2},
		{Title: "a", OrderNum: 1},
	})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "a", sections[0].Title)
	assert.Equal(t, "b", sections[1].Title)

	found, err := repo.FindByID(ctx, dashboard.ID)
	require.NoError(t, err)
	assert.Len(t, found.Sections, 2)
}

func TestDashboardRepository_Delete(t *testing.T) {
	db := openTestDB(t)
	repo := NewDashboardRepository(db)
	ctx := context.Background()
	dashboard := createDashboard(t, db, "home")

	_, err := repo.ReplaceSections(ctx, dashboard.ID, []*types.Section{{Title: "first"}})
	require.NoError(t, err)
	require.NoError(t, repo.SetToken(ctx, dashboard.ID, "tok1", "a.example.com"))

	require.NoError(t, repo.Delete(ctx, dashboard.ID))

	_, err = repo.GetVerification(ctx, dashboard.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&types.Section{}).Where("dashboard_id = ?", dashboard.ID).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, repo.Delete(ctx, dashboard.ID), gorm.ErrRecordNotFound)
}

func TestUserRepository_Create(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	ctx := context.Background()
	dashboard := createDashboard(t, db, "alice")

	user, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, dashboard.UserID)

	byName, err := users.FindByUsername(ctx, "alice-owner")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	// a taken dashboard url rolls the user back too
	err = users.Create(ctx, &types.User{Username: "bob", Email: "bob@example.com", Password: "x"}, &types.Dashboard{URL: "alice"})
	assert.Error(t, err)
	_, err = users.FindByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
