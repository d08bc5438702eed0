package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bucketCounts(buckets []store.Bucket) map[any]int64 {
	out := make(map[any]int64, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b.Count
	}
	return out
}

func TestAnalyticsReports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	analytics := NewAnalytics(env.repos)
	eng := newEngagement(env)
	part := newParticipation(env)
	users := newUsers(env)

	admin := env.user(t, "Admin", models.RoleAdmin)
	mod := env.user(t, "Deborah", models.RoleModerator)
	reader := env.user(t, "Lydia", models.RoleUser)
	_, err := users.SetActive(ctx, mod.ID, false)
	require.NoError(t, err)
	_, err = users.SetStreak(ctx, reader.ID, 9)
	require.NoError(t, err)

	hot := env.devotional(t, admin, models.StatusPublished, now())
	env.devotional(t, admin, models.StatusDraft, now())
	for range 3 {
		_, err := eng.IncrementCounter(ctx, models.KindDevotional, hot.ID, models.CounterReadCount)
		require.NoError(t, err)
	}
	q := env.quest(t, admin)
	_, err = part.JoinQuest(ctx, q.ID, reader.ID)
	require.NoError(t, err)
	_, err = part.CompleteQuest(ctx, q.ID, reader.ID)
	require.NoError(t, err)
	env.plan(t, admin)
	env.prayer(t, reader, "Thessalonica")
	env.verseArt(t, reader)

	dash, err := analytics.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, dash.Users.Total)
	assert.EqualValues(t, 2, dash.Users.Active)
	assert.EqualValues(t, 3, dash.Users.NewThisMonth)
	assert.EqualValues(t, 2, dash.Content.Devotionals.Total)
	assert.EqualValues(t, 1, dash.Content.Devotionals.Published)
	assert.EqualValues(t, 1, dash.Content.Quests.Total)
	assert.EqualValues(t, 1, dash.Content.ReadingPlans.Total)
	assert.EqualValues(t, 1, dash.Content.Prayers)
	assert.EqualValues(t, 1, dash.Content.VerseArt)

	ua, err := analytics.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, ua.Users, 3)
	roles := bucketCounts(ua.RoleDistribution)
	assert.EqualValues(t, 1, roles[string(models.RoleAdmin)])
	assert.EqualValues(t, 1, roles[string(models.RoleUser)])
	assert.InDelta(t, 3.0, ua.AverageStats.AvgStreak, 1e-9)

	ea, err := analytics.Engagement(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ea.TotalReads)
	assert.EqualValues(t, 1, ea.TotalQuestCompletions)
	require.Len(t, ea.TopDevotionals, 1)
	assert.Equal(t, hot.ID, ea.TopDevotionals[0].ID)

	ca, err := analytics.Content(ctx)
	require.NoError(t, err)
	byStatus := bucketCounts(ca.DevotionalsByStatus)
	assert.EqualValues(t, 1, byStatus[string(models.StatusPublished)])
	assert.EqualValues(t, 1, byStatus[string(models.StatusDraft)])

	growth, err := analytics.Growth(ctx)
	require.NoError(t, err)
	var signups int64
	for _, b := range growth.UserGrowth {
		signups += b.Count
	}
	assert.EqualValues(t, 3, signups)
}

type brokenCounts struct {
	store.Repository[models.User]
}

func (brokenCounts) Count(context.Context, store.Filter) (int64, error) {
	return 0, assert.AnError
}

func TestAnalyticsFailure(t *testing.T) {
	env := newTestEnv(t)
	repos := env.repos
	repos.Users = brokenCounts{repos.Users}

	_, err := NewAnalytics(repos).Dashboard(context.Background())
	assertKind(t, apperr.KindInternal, err)
	assert.ErrorIs(t, err, assert.AnError)
}
