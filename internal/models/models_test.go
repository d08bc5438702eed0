package models

import (
	"testing"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLikeSetToggleIsInvolution(t *testing.T) {
	other := primitive.NewObjectID()
	user := primitive.NewObjectID()
	likes := LikeSet{other}

	assert.True(t, likes.Toggle(user))
	assert.Len(t, likes, 2)
	assert.True(t, likes.Has(user))

	assert.False(t, likes.Toggle(user))
	assert.Equal(t, LikeSet{other}, likes)
	assert.False(t, likes.Has(user))
}

func TestCommentsApproveAndRemove(t *testing.T) {
	now := time.Now()
	var thread Comments
	a := thread.Add(primitive.NewObjectID(), "first", now)
	b := thread.Add(primitive.NewObjectID(), "second", now)
	c := thread.Add(primitive.NewObjectID(), "third", now)

	require.True(t, thread.Approve(b.ID))
	assert.Len(t, thread, 3)
	assert.True(t, thread[1].IsModerated)
	assert.Len(t, thread.Pending(), 2)

	require.True(t, thread.Remove(b.ID))
	require.Len(t, thread, 2)
	assert.Equal(t, a.ID, thread[0].ID)
	assert.Equal(t, c.ID, thread[1].ID)

	assert.False(t, thread.Remove(b.ID))
	assert.False(t, thread.Approve(primitive.NewObjectID()))
}

func TestPrayerRecordPrayedForOnce(t *testing.T) {
	p := NewPrayer()
	now := time.Now()
	users := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()}

	for _, u := range users {
		assert.True(t, p.RecordPrayedFor(u, now))
	}
	assert.EqualValues(t, 3, p.PrayerCount)

	assert.False(t, p.RecordPrayedFor(users[0], now))
	assert.EqualValues(t, 3, p.PrayerCount)
	assert.Len(t, p.PrayedBy, 3)
}

func TestFlagTransitions(t *testing.T) {
	prayer := &Prayer{Status: StatusActive}
	prayer.Flag()
	assert.Equal(t, StatusFlagged, prayer.Status)
	prayer.Unflag()
	assert.Equal(t, StatusActive, prayer.Status)

	art := &VerseArt{Status: StatusActive}
	art.Flag()
	assert.Equal(t, StatusFlagged, art.Status)
	art.Unflag()
	assert.Equal(t, StatusActive, art.Status)

	devotional := &Devotional{Status: StatusPublished}
	devotional.Flag()
	assert.Equal(t, StatusArchived, devotional.Status)
	devotional.Unflag()
	assert.Equal(t, StatusPublished, devotional.Status)
}

func TestKindLifecycle(t *testing.T) {
	assert.True(t, KindDevotional.Allows(StatusArchived))
	assert.False(t, KindDevotional.Allows(StatusFlagged))
	assert.True(t, KindPrayer.Allows(StatusFlagged))
	assert.False(t, KindPrayer.Creatable(StatusFlagged))
	assert.True(t, KindVerseOfDay.Creatable(StatusPublished))
	assert.Equal(t, StatusDraft, KindDevotional.InitialStatus())
	assert.Equal(t, "Reading plan", KindReadingPlan.Label())

	k, ok := ParseKind("verseArt")
	assert.True(t, ok)
	assert.Equal(t, KindVerseArt, k)
	_, ok = ParseKind("vent")
	assert.False(t, ok)
}

func TestPrayerValidate(t *testing.T) {
	long := make([]byte, MaxTitleLength+1)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name  string
		p     Prayer
		field string
	}{
		{name: "missing title", p: Prayer{Content: "c", Category: "Personal"}, field: "title"},
		{name: "title too long", p: Prayer{Title: string(long), Content: "c", Category: "Personal"}, field: "title"},
		{name: "missing content", p: Prayer{Title: "t", Category: "Personal"}, field: "content"},
		{name: "bad category", p: Prayer{Title: "t", Content: "c", Category: "Weather"}, field: "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Equal(t, tt.field, e.Field)
		})
	}

	ok := Prayer{Title: string(long[:MaxTitleLength]), Content: "c", Category: "Health"}
	assert.NoError(t, ok.Validate())
}

func TestPrayerPreserveKeepsProtectedFields(t *testing.T) {
	parent := primitive.NewObjectID()
	prev := &Prayer{
		Base:        Base{ID: primitive.NewObjectID(), Version: 4},
		User:        primitive.NewObjectID(),
		Title:       "old",
		Status:      StatusFlagged,
		PrayerCount: 7,
		ParentNode:  &parent,
		ChildNodes:  []primitive.ObjectID{primitive.NewObjectID()},
	}
	next := &Prayer{Title: "new", Status: StatusActive, PrayerCount: 100}
	next.Preserve(prev)

	assert.Equal(t, "new", next.Title)
	assert.Equal(t, prev.Base, next.Base)
	assert.Equal(t, StatusFlagged, next.Status)
	assert.EqualValues(t, 7, next.PrayerCount)
	assert.Equal(t, prev.ParentNode, next.ParentNode)
	assert.Equal(t, prev.ChildNodes, next.ChildNodes)
}

func TestCounters(t *testing.T) {
	art := NewVerseArt()
	n, ok := art.Increment(CounterShares)
	assert.True(t, ok)
	assert.EqualValues(t, 1, n)
	n, _ = art.Increment(CounterDownloads)
	assert.EqualValues(t, 1, n)
	_, ok = art.Increment(CounterReadCount)
	assert.False(t, ok)

	d := NewDevotional()
	d.Increment(CounterReadCount)
	n, ok = d.Increment(CounterReadCount)
	assert.True(t, ok)
	assert.EqualValues(t, 2, n)
}

func TestReadingPlanRateAndComplete(t *testing.T) {
	now := time.Now()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	plan := NewReadingPlan()

	plan.Enroll(a, now)
	plan.Enroll(b, now)
	assert.EqualValues(t, 2, plan.TotalEnrollments)

	assert.True(t, plan.Complete(plan.Enrollment(a), now))
	assert.False(t, plan.Complete(plan.Enrollment(a), now))
	assert.InDelta(t, 50.0, plan.CompletionRate, 0.001)

	plan.Rate(a, 5, "", now)
	plan.Rate(b, 3, "", now)
	assert.InDelta(t, 4.0, plan.AverageRating, 0.001)
	plan.Rate(b, 1, "changed my mind", now)
	assert.Len(t, plan.Ratings, 2)
	assert.InDelta(t, 3.0, plan.AverageRating, 0.001)
}

func TestUserLogMoodOncePerDay(t *testing.T) {
	u := NewUser("Ruth", "ruth@example.com")
	morning := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	evening := morning.Add(10 * time.Hour)
	tomorrow := morning.Add(24 * time.Hour)

	u.LogMood("hopeful", morning)
	u.LogMood("grateful", evening)
	require.Len(t, u.MoodTracking, 1)
	assert.Equal(t, "grateful", u.MoodOn(morning).Mood)

	u.LogMood("peaceful", tomorrow)
	assert.Len(t, u.MoodTracking, 2)
	assert.Nil(t, u.MoodOn(tomorrow.Add(24*time.Hour)))
}

func TestActorPermissions(t *testing.T) {
	owner := primitive.NewObjectID()
	assert.True(t, Actor{ID: owner, Role: RoleUser}.CanModify(owner))
	assert.False(t, Actor{ID: primitive.NewObjectID(), Role: RoleUser}.CanModify(owner))
	assert.True(t, Actor{ID: primitive.NewObjectID(), Role: RoleModerator}.CanModify(owner))
	assert.False(t, Actor{Role: RoleModerator}.IsAdmin())
}
