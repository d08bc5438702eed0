package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newUsers(env *testEnv) *Users {
	return NewUsers(env.repos.Users, env.sessions, zap.NewNop())
}

func ptr[T any](v T) *T { return &v }

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	me := env.user(t, "Abram", models.RoleUser)

	u, err := users.UpdateProfile(ctx, me.ID, ProfileUpdate{Name: ptr(" Abraham "), Age: ptr(99)})
	require.NoError(t, err)
	assert.Equal(t, "Abraham", u.Name)
	assert.Equal(t, 99, *u.Age)

	_, err = users.UpdateProfile(ctx, me.ID, ProfileUpdate{Age: ptr(175)})
	assertKind(t, apperr.KindValidation, err)

	stored, err := users.Get(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, 99, *stored.Age, "rejected update must not be written")

	_, err = users.UpdateProfile(ctx, missingID, ProfileUpdate{})
	assertKind(t, apperr.KindNotFound, err)
}

func TestUpdatePreferences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	me := env.user(t, "Sarah", models.RoleUser)

	prefs, err := users.UpdatePreferences(ctx, me.ID, PreferencesUpdate{Theme: ptr("dark")})
	require.NoError(t, err)
	assert.Equal(t, "dark", prefs.Theme)
	assert.Equal(t, "medium", prefs.FontSize)

	_, err = users.UpdatePreferences(ctx, me.ID, PreferencesUpdate{FontSize: ptr("huge")})
	assertKind(t, apperr.KindValidation, err)
}

func TestBookmarksAndHighlights(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	me := env.user(t, "Isaac", models.RoleUser)

	_, err := users.AddBookmark(ctx, me.ID, VerseRef{Reference: "Genesis 22:8"})
	assertKind(t, apperr.KindValidation, err)

	marks, err := users.AddBookmark(ctx, me.ID, VerseRef{Verse: "God will provide", Reference: "Genesis 22:8"})
	require.NoError(t, err)
	require.Len(t, marks, 1)

	marks, err = users.RemoveBookmark(ctx, me.ID, missingID)
	require.NoError(t, err)
	assert.Len(t, marks, 1)
	marks, err = users.RemoveBookmark(ctx, me.ID, marks[0].ID)
	require.NoError(t, err)
	assert.Empty(t, marks)

	hl, err := users.AddHighlight(ctx, me.ID, VerseRef{Verse: "Fear not", Reference: "Genesis 26:24"})
	require.NoError(t, err)
	require.Len(t, hl, 1)
	assert.Equal(t, "yellow", hl[0].Color)

	hl, err = users.RemoveHighlight(ctx, me.ID, hl[0].ID)
	require.NoError(t, err)
	assert.Empty(t, hl)
}

func TestStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	me := env.user(t, "Jacob", models.RoleUser)

	stats, err := users.SetStreak(ctx, me.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Streak)
	_, err = users.SetStreak(ctx, me.ID, -1)
	assertKind(t, apperr.KindValidation, err)

	stats, err = users.AddPoints(ctx, me.ID, 30)
	require.NoError(t, err)
	stats, err = users.AddPoints(ctx, me.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 42, stats.TotalPoints)
	_, err = users.AddPoints(ctx, me.ID, 0)
	assertKind(t, apperr.KindValidation, err)
}

func TestMood(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	me := env.user(t, "Hagar", models.RoleUser)

	today, err := users.TodayMood(ctx, me.ID)
	require.NoError(t, err)
	assert.Nil(t, today)

	_, err = users.LogMood(ctx, me.ID, "")
	assertKind(t, apperr.KindValidation, err)
	assert.EqualError(t, err, "Mood is required")
	_, err = users.LogMood(ctx, me.ID, "furious")
	assert.EqualError(t, err, "Invalid mood value")

	_, err = users.LogMood(ctx, me.ID, "anxious")
	require.NoError(t, err)
	_, err = users.LogMood(ctx, me.ID, " Hopeful ")
	require.NoError(t, err)

	today, err = users.TodayMood(ctx, me.ID)
	require.NoError(t, err)
	require.NotNil(t, today)
	assert.Equal(t, "hopeful", today.Mood)

	history, err := users.MoodHistory(ctx, me.ID, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1, "one entry per day")
}

func TestTouchThrottlesWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	me := env.user(t, "Enoch", models.RoleUser)

	users.Touch(ctx, me.ID)
	first, err := env.repos.Users.Get(ctx, me.ID)
	require.NoError(t, err)
	assert.False(t, first.LastActive.IsZero())

	users.Touch(ctx, me.ID)
	second, err := env.repos.Users.Get(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)

	users.Touch(ctx, missingID)
}

func TestAdminDirectory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	env.user(t, "Admin", models.RoleAdmin)
	env.user(t, "Moses", models.RoleUser)
	aaron := env.user(t, "Aaron", models.RoleUser)

	token, err := env.sessions.Create(ctx, aaron.ID)
	require.NoError(t, err)

	u, err := users.SetActive(ctx, aaron.ID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	_, ok, err := env.sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	page, err := users.List(ctx, UserFilter{Role: models.RoleUser}, NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = users.List(ctx, UserFilter{IsActive: ptr(false)}, NewPageRequest(1, 10, 10))
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, aaron.ID, page.Items[0].ID)

	u, err = users.SetRole(ctx, aaron.ID, models.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, models.RoleModerator, u.Role)
	_, err = users.SetRole(ctx, aaron.ID, models.Role("pope"))
	assertKind(t, apperr.KindValidation, err)

	require.NoError(t, users.Delete(ctx, aaron.ID))
	_, err = users.Get(ctx, aaron.ID)
	assertKind(t, apperr.KindNotFound, err)
	assertKind(t, apperr.KindNotFound, users.Delete(ctx, aaron.ID))
}

func TestAuthors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	users := newUsers(env)
	sarah := env.user(t, "Sarah", models.RoleUser)
	hagar := env.user(t, "Hagar", models.RoleUser)

	got, err := users.Authors(ctx, []primitive.ObjectID{sarah.ID, missingID, hagar.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, models.Author{ID: sarah.ID, Name: "Sarah"}, got[sarah.ID.Hex()])
	assert.Equal(t, "Hagar", got[hagar.ID.Hex()].Name)

	empty, err := users.Authors(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
