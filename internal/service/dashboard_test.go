package service

import (
	"accordee/internal/database"
	"accordee/internal/types"
	"context"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"testing"
)

func newDashboardService(t *testing.T, db *gorm.DB) DashboardService {
	t.Helper()
	return NewDashboardService(database.NewDashboardRepository(db), database.NewUserRepository(db), 3, 2)
}

func signup(t *testing.T, db *gorm.DB, email string) *types.User {
	t.Helper()
	users, _ := newUserService(t, db)
	resp, err := users.Signup(context.Background(), types.SignupParams{Email: email, Password: "password1"})
	require.NoError(t, err)
	user, err := database.NewUserRepository(db).FindByID(context.Background(), resp.UserID)
	require.NoError(t, err)
	return user
}

func TestDashboardService_Create(t *testing.T) {
	db := openTestDB(t)
	dashboards := newDashboardService(t, db)
	ctx := context.Background()
	alice := signup(t, db, "alice@example.com")

	created, err := dashboards.Create(ctx, alice, types.CreateDashboardParams{URL: "portfolio"})
	require.NoError(t, err)
	assert.Equal(t, "portfolio", created.Title)
	assert.Equal(t, types.DefaultLayout, created.Layout)

	_, err = dashboards.Create(ctx, alice, types.CreateDashboardParams{URL: "portfolio"})
	assert.Equal(t, types.KindConflict, types.KindOf(err))

	_, err = dashboards.Create(ctx, alice, types.CreateDashboardParams{URL: "Not A Slug"})
	assert.Equal(t, types.KindInvalidInput, types.KindOf(err))

	_, err = dashboards.Create(ctx, alice, types.CreateDashboardParams{URL: "third"})
	require.NoError(t, err)

	// signup created the first one, the limit is three
	_, err = dashboards.Create(ctx, alice, types.CreateDashboardParams{URL: "fourth"})
	assert.Equal(t, types.KindConflict, types.KindOf(err))

	list, err := dashboards.ListByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "portfolio", "third"}, lo.Map(list, func(item *types.Dashboard, _ int) string {
		return item.URL
	}))

	_, err = dashboards.ListByUsername(ctx, "nobody")
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestDashboardService_OwnerChecks(t *testing.T) {
	db := openTestDB(t)
	dashboards := newDashboardService(t, db)
	ctx := context.Background()
	alice := signup(t, db, "alice@example.com")
	bob := signup(t, db, "bob@example.com")

	own, err := dashboards.GetByURL(ctx, "alice")
	require.NoError(t, err)

	title := "stolen"
	_, err = dashboards.Update(ctx, bob, own.ID, types.UpdateDashboardParams{Title: &title})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	assert.Equal(t, types.KindForbidden, types.KindOf(dashboards.Delete(ctx, bob, own.ID)))

	_, err = dashboards.ReplaceSections(ctx, bob, own.ID, types.ReplaceSectionsParams{})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	_, err = dashboards.GetOwned(ctx, alice, own.ID+100)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}

func TestDashboardService_Update(t *testing.T) {
	db := openTestDB(t)
	dashboards := newDashboardService(t, db)
	ctx := context.Background()
	alice := signup(t, db, "alice@example.com")
	signup(t, db, "bob@example.com")

	own, err := dashboards.GetByURL(ctx, "alice")
	require.NoError(t, err)

	taken := "bob"
	_, err = dashboards.Update(ctx, alice, own.ID, types.UpdateDashboardParams{URL: &taken})
	assert.Equal(t, types.KindConflict, types.KindOf(err))

	url, title, style := "alice-home", "Home", "style2"
	updated, err := dashboards.Update(ctx, alice, own.ID, types.UpdateDashboardParams{
		URL:             &url,
		Title:           &title,
		BackgroundStyle: &style,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice-home", updated.URL)
	assert.Equal(t, "Home", updated.Title)
	assert.Equal(t, "style2", updated.BackgroundStyle)
	assert.Equal(t, types.DefaultLayout, updated.Layout)

	same := "alice-home"
	_, err = dashboards.Update(ctx, alice, own.ID, types.UpdateDashboardParams{URL: &same})
	assert.NoError(t, err)
}

func TestDashboardService_ReplaceSectionsAndDelete(t *testing.T) {
	db := openTestDB(t)
	dashboards := newDashboardService(t, db)
	ctx := context.Background()
	alice := signup(t, db, "alice@example.com")

	own, err := dashboards.GetByURL(ctx, "alice")
	require.NoError(t, err)

	_, err = dashboards.ReplaceSections(ctx, alice, own.ID, types.ReplaceSectionsParams{Sections: []types.SectionParams{
		{Title: "a"}, {Title: "b"}, {Title: "c"},
	}})
	assert.Equal(t, types.KindConflict, types.KindOf(err))

	sections, err := dashboards.ReplaceSections(ctx, alice, own.ID, types.ReplaceSectionsParams{Sections: []types.SectionParams{
		{Title: "second", OrderNum: 2},
		{Title: "first", OrderNum: 1},
	}})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "first", sections[0].Title)

	page, err := dashboards.GetByURL(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, page.Sections, 2)

	require.NoError(t, dashboards.Delete(ctx, alice, own.ID))
	_, err = dashboards.GetByURL(ctx, "alice")
	assert.Equal(t, types.KindNotFound, types.KindOf(err))
}
