package service

import (
	"accordee/internal/auth"
	"accordee/internal/database"
	"accordee/internal/types"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	return db
}

func newUserService(t *testing.T, db *gorm.DB) (UserService, auth.TokenIssuer) {
	t.Helper()
	tokens := auth.NewTokenIssuer("test-secret-key-123", time.Hour)
	return NewUserService(database.NewUserRepository(db), database.NewDashboardRepository(db), tokens), tokens
}

func TestUserService_Signup(t *testing.T) {
	db := openTestDB(t)
	users, tokens := newUserService(t, db)
	ctx := context.Background()

	resp, err := users.Signup(ctx, types.SignupParams{Email: " Alice@Example.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)

	claims, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UID)

	dashboard, err := database.NewDashboardRepository(db).FindByURL(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, dashboard.UserID)
	assert.Equal(t, types.DefaultLayout, dashboard.Layout)
}

func TestUserService_SignupRejects(t *testing.T) {
	db := openTestDB(t)
	users, _ := newUserService(t, db)
	ctx := context.Background()

	_, err := users.Signup(ctx, types.SignupParams{Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	tests := []struct {
		name         string
		params       types.SignupParams
		expectedKind types.ErrorKind
	}{
		{name: "bad email", params: types.SignupParams{Email: "alice", Password: "password1"}, expectedKind: types.KindInvalidInput},
		{name: "short password", params: types.SignupParams{Email: "bob@example.com", Password: "short"}, expectedKind: types.KindInvalidInput},
		{name: "email exists", params: types.SignupParams{Email: "ALICE@example.com", Password: "password1"}, expectedKind: types.KindConflict},
		{name: "username taken", params: types.SignupParams{Email: "alice@other.org", Password: "password1"}, expectedKind: types.KindConflict},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := users.Signup(ctx, test.params)
			require.Error(t, err)
			assert.Equal(t, test.expectedKind, types.KindOf(err))
		})
	}
}

func TestUserService_SignupSlugifiesLocalPart(t *testing.T) {
	db := openTestDB(t)
	users, _ := newUserService(t, db)
	ctx := context.Background()

	resp, err := users.Signup(ctx, types.SignupParams{Email: "John.Doe+news@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "john-doe-news", resp.Username)

	owner := &types.User{ID: resp.UserID, Username: resp.Username}
	dashboards := NewDashboardService(database.NewDashboardRepository(db), database.NewUserRepository(db), 5, 10)
	list, err := dashboards.ListByUsername(ctx, resp.Username)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "john-doe-news", list[0].URL)

	url := list[0].URL
	_, err = dashboards.Update(ctx, owner, list[0].ID, types.UpdateDashboardParams{URL: &url})
	assert.NoError(t, err)
}

// unseenURLs hides existing dashboards from the availability check so the insert itself has to
// catch the duplicate.
type unseenURLs struct {
	database.DashboardRepository
}

func (unseenURLs) FindByURL(context.Context, string) (*types.Dashboard, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestUserService_SignupDuplicateOnInsertIsConflict(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	dashboardRepo := database.NewDashboardRepository(db)

	first, err := NewUserService(database.NewUserRepository(db), dashboardRepo, auth.NewTokenIssuer("test-secret-key-123", time.Hour)).
		Signup(ctx, types.SignupParams{Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, db.Model(&types.User{}).Where("id = ?", first.UserID).Update("username", "renamed").Error)

	users := NewUserService(database.NewUserRepository(db), unseenURLs{dashboardRepo}, auth.NewTokenIssuer("test-secret-key-123", time.Hour))
	_, err = users.Signup(ctx, types.SignupParams{Email: "alice@other.org", Password: "password1"})
	require.Error(t, err)
	assert.Equal(t, types.KindConflict, types.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&types.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserService_Login(t *testing.T) {
	db := openTestDB(t)
	users, _ := newUserService(t, db)
	ctx := context.Background()

	signup, err := users.Signup(ctx, types.SignupParams{Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	for _, login := range []string{"alice", "alice@example.com", "ALICE@example.com"} {
		resp, err := users.Login(ctx, types.LoginParams{Login: login, Password: "password1"})
		require.NoError(t, err, login)
		assert.Equal(t, signup.UserID, resp.UserID)
	}

	_, err = users.Login(ctx, types.LoginParams{Login: "alice", Password: "wrong-password"})
	assert.Equal(t, types.KindUnauthorized, types.KindOf(err))

	_, err = users.Login(ctx, types.LoginParams{Login: "nobody", Password: "password1"})
	assert.Equal(t, types.KindUnauthorized, types.KindOf(err))

	_, err = users.Login(ctx, types.LoginParams{})
	assert.Equal(t, types.KindInvalidInput, types.KindOf(err))
}

func TestUserService_Authenticate(t *testing.T) {
	db := openTestDB(t)
	users, tokens := newUserService(t, db)
	ctx := context.Background()

	signup, err := users.Signup(ctx, types.SignupParams{Email: "alice@example.com", Password: "password1"})
	require.NoError(t, err)

	user, err := users.Authenticate(ctx, signup.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = users.Authenticate(ctx, "garbage")
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	ghost, err := tokens.Generate(999, "ghost")
	require.NoError(t, err)
	_, err = users.Authenticate(ctx, ghost)
	assert.Equal(t, types.KindForbidden, types.KindOf(err))
}
