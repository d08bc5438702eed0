package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (e *testEnv) verseOfDay(t *testing.T, owner models.Actor, date time.Time, status models.Status) *models.VerseOfDay {
	t.Helper()
	v := models.NewVerseOfDay()
	v.Verse = "This is the day the Lord has made."
	v.Reference = "Psalm 118:24"
	v.Date = date
	v.Status = status
	created, err := e.catalog.VersesOfDay.Create(context.Background(), v, owner)
	require.NoError(t, err)
	return created
}

func TestVerseToday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	daily := NewDaily(env.catalog, NewCache(nil), zap.NewNop())
	admin := env.user(t, "Admin", models.RoleAdmin)

	_, err := daily.VerseToday(ctx)
	assertKind(t, apperr.KindNotFound, err)

	today := time.Now().UTC()
	env.verseOfDay(t, admin, today, models.StatusDraft)
	env.verseOfDay(t, admin, today.AddDate(0, 0, -1), models.StatusPublished)
	_, err = daily.VerseToday(ctx)
	assertKind(t, apperr.KindNotFound, err)

	// any time of day is stored as that day
	want := env.verseOfDay(t, admin, today, models.StatusPublished)
	assert.Equal(t, models.Day(today), want.Date)

	got, err := daily.VerseToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
}

func TestVerseTodayFollowsClock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	daily := NewDaily(env.catalog, nil, zap.NewNop())
	admin := env.user(t, "Admin", models.RoleAdmin)

	christmas := time.Date(2025, time.December, 25, 0, 0, 0, 0, time.UTC)
	want := env.verseOfDay(t, admin, christmas, models.StatusPublished)
	daily.now = func() time.Time { return christmas.Add(20 * time.Hour) }

	got, err := daily.VerseToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)

	daily.now = func() time.Time { return christmas.Add(25 * time.Hour) }
	_, err = daily.VerseToday(ctx)
	assertKind(t, apperr.KindNotFound, err)
}

func TestDevotionalToday(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	daily := NewDaily(env.catalog, nil, zap.NewNop())
	admin := env.user(t, "Admin", models.RoleAdmin)
	today := models.Day(time.Now().UTC())

	_, err := daily.DevotionalToday(ctx)
	assertKind(t, apperr.KindNotFound, err)

	env.devotional(t, admin, models.StatusPublished, today.AddDate(0, 0, -3))
	_, err = daily.DevotionalToday(ctx)
	assertKind(t, apperr.KindNotFound, err)

	yesterday := env.devotional(t, admin, models.StatusPublished, today.AddDate(0, 0, -1))
	got, err := daily.DevotionalToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, yesterday.ID, got.ID)

	env.devotional(t, admin, models.StatusDraft, today.Add(6*time.Hour))
	latest := env.devotional(t, admin, models.StatusPublished, today.Add(2*time.Hour))
	got, err = daily.DevotionalToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
}
