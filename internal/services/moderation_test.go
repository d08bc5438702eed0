package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Record(ctx context.Context, a AuditAction) error {
	return m.Called(ctx, a).Error(0)
}

func (m *mockAudit) Recent(ctx context.Context, limit int) ([]AuditAction, error) {
	args := m.Called(ctx, limit)
	actions, _ := args.Get(0).([]AuditAction)
	return actions, args.Error(1)
}

func newModeration(env *testEnv, audit AuditLog) *Moderation {
	return NewModeration(env.catalog, env.repos.Users, env.sessions, audit, env.hub, zap.NewNop())
}

func TestFlagTransitionsPerKind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := newModeration(env, nil)
	admin := env.user(t, "Admin", models.RoleAdmin)
	moderator := env.user(t, "Deborah", models.RoleModerator)

	tests := []struct {
		name      string
		kind      models.Kind
		id        primitive.ObjectID
		flagged   models.Status
		unflagged models.Status
	}{
		{"prayer", models.KindPrayer, env.prayer(t, admin, "Rain").ID, models.StatusFlagged, models.StatusActive},
		{"verse art", models.KindVerseArt, env.verseArt(t, admin).ID, models.StatusFlagged, models.StatusActive},
		{"devotional", models.KindDevotional, env.devotional(t, admin, models.StatusPublished, now()).ID, models.StatusArchived, models.StatusPublished},
	}
	status := func(doc any) models.Status {
		return doc.(interface{ CurrentStatus() models.Status }).CurrentStatus()
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := mod.Flag(ctx, tt.kind, tt.id, moderator, "spam")
			require.NoError(t, err)
			assert.Equal(t, tt.flagged, status(doc))

			doc, err = mod.Unflag(ctx, tt.kind, tt.id, moderator)
			require.NoError(t, err)
			assert.Equal(t, tt.unflagged, status(doc))
		})
	}
}

func TestFlagRequiresModerator(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &mockAudit{}
	mod := newModeration(env, audit)
	owner := env.user(t, "Achan", models.RoleUser)
	p := env.prayer(t, owner, "Jericho")

	_, err := mod.Flag(ctx, models.KindPrayer, p.ID, owner, "")
	assertKind(t, apperr.KindForbidden, err)

	moderator := env.user(t, "Joshua", models.RoleModerator)
	_, err = mod.Flag(ctx, models.KindQuest, p.ID, moderator, "")
	assertKind(t, apperr.KindValidation, err)
	assert.EqualError(t, err, "Invalid content type")

	_, err = mod.Flag(ctx, models.KindPrayer, missingID, moderator, "")
	assertKind(t, apperr.KindNotFound, err)

	audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestFlagIsAudited(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &mockAudit{}
	mod := newModeration(env, audit)
	owner := env.user(t, "Achan", models.RoleUser)
	moderator := env.user(t, "Joshua", models.RoleModerator)
	p := env.prayer(t, owner, "Jericho")

	audit.On("Record", mock.Anything, mock.MatchedBy(func(a AuditAction) bool {
		return a.Action == ActionFlag && a.ActorID == moderator.ID.Hex() &&
			a.ContentType == string(models.KindPrayer) && a.ContentID == p.ID.Hex() && a.Reason == "spam"
	})).Return(nil).Once()

	sub := env.hub.Subscribe()
	defer env.hub.Unsubscribe(sub)

	_, err := mod.Flag(ctx, models.KindPrayer, p.ID, moderator, "spam")
	require.NoError(t, err)
	audit.AssertExpectations(t)

	ev := nextEvent(t, sub)
	assert.Equal(t, EventContentFlagged, ev.Type)
	assert.Equal(t, moderator.ID.Hex(), ev.ActorID)
}

func TestFlagSurvivesAuditFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &mockAudit{}
	audit.On("Record", mock.Anything, mock.Anything).Return(assert.AnError)
	mod := newModeration(env, audit)
	moderator := env.user(t, "Joshua", models.RoleModerator)
	art := env.verseArt(t, moderator)

	_, err := mod.Flag(ctx, models.KindVerseArt, art.ID, moderator, "")
	require.NoError(t, err)

	stored, err := env.catalog.VerseArt.Get(ctx, art.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFlagged, stored.Status)
}

func TestCommentModeration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eng := newEngagement(env)
	mod := newModeration(env, nil)
	owner := env.user(t, "Lydia", models.RoleUser)
	moderator := env.user(t, "Priscilla", models.RoleModerator)
	p := env.prayer(t, owner, "Household")

	var ids []primitive.ObjectID
	for _, text := range []string{"first", "second", "third"} {
		c, err := eng.AddComment(ctx, models.KindPrayer, p.ID, owner, text)
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	require.NoError(t, mod.ApproveComment(ctx, models.KindPrayer, p.ID, ids[0], moderator))
	stored, err := env.catalog.Prayers.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 3)
	assert.True(t, stored.Comments[0].IsModerated)
	assert.False(t, stored.Comments[1].IsModerated)

	require.NoError(t, mod.RejectComment(ctx, models.KindPrayer, p.ID, ids[1], moderator))
	stored, err = env.catalog.Prayers.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Comments, 2)
	assert.Equal(t, "first", stored.Comments[0].Text)
	assert.Equal(t, "third", stored.Comments[1].Text)

	err = mod.RejectComment(ctx, models.KindPrayer, p.ID, ids[1], moderator)
	assertKind(t, apperr.KindNotFound, err)
	assert.EqualError(t, err, "Comment not found")

	err = mod.ApproveComment(ctx, models.KindDevotional, p.ID, ids[2], moderator)
	assertKind(t, apperr.KindValidation, err)

	err = mod.ApproveComment(ctx, models.KindPrayer, p.ID, ids[2], owner)
	assertKind(t, apperr.KindForbidden, err)
}

func TestPendingComments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	eng := newEngagement(env)
	mod := newModeration(env, nil)
	owner := env.user(t, "Lydia", models.RoleUser)
	moderator := env.user(t, "Priscilla", models.RoleModerator)

	art := env.verseArt(t, owner)
	time.Sleep(5 * time.Millisecond)
	p := env.prayer(t, owner, "Household")

	pc, err := eng.AddComment(ctx, models.KindPrayer, p.ID, owner, "on the prayer")
	require.NoError(t, err)
	ac1, err := eng.AddComment(ctx, models.KindVerseArt, art.ID, owner, "lovely")
	require.NoError(t, err)
	ac2, err := eng.AddComment(ctx, models.KindVerseArt, art.ID, owner, "beautiful")
	require.NoError(t, err)
	require.NoError(t, mod.ApproveComment(ctx, models.KindVerseArt, art.ID, ac1.ID, moderator))

	pending, err := mod.PendingComments(ctx, moderator)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	assert.Equal(t, models.KindVerseArt, pending[0].Type)
	assert.Equal(t, ac2.ID, pending[0].CommentID)
	assert.Equal(t, "Psalm 23:1", pending[0].ContentTitle)
	assert.Equal(t, models.KindPrayer, pending[1].Type)
	assert.Equal(t, pc.ID, pending[1].CommentID)
	assert.Equal(t, "Household", pending[1].ContentTitle)

	_, err = mod.PendingComments(ctx, owner)
	assertKind(t, apperr.KindForbidden, err)
}

func TestFlaggedContent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := newModeration(env, nil)
	moderator := env.user(t, "Priscilla", models.RoleModerator)

	flagged := env.prayer(t, moderator, "Flag me")
	env.prayer(t, moderator, "Leave me")
	art := env.verseArt(t, moderator)
	for _, target := range []struct {
		kind models.Kind
		id   primitive.ObjectID
	}{{models.KindPrayer, flagged.ID}, {models.KindVerseArt, art.ID}} {
		_, err := mod.Flag(ctx, target.kind, target.id, moderator, "")
		require.NoError(t, err)
	}

	got, err := mod.FlaggedContent(ctx, moderator)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Total)
	require.Len(t, got.Prayers, 1)
	assert.Equal(t, flagged.ID, got.Prayers[0].ID)
	require.Len(t, got.VerseArt, 1)

	users, err := mod.ReportedUsers(ctx, moderator)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestWarnUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &mockAudit{}
	mod := newModeration(env, audit)
	moderator := env.user(t, "Nathan", models.RoleModerator)
	target := env.user(t, "David", models.RoleUser)

	audit.On("Record", mock.Anything, mock.MatchedBy(func(a AuditAction) bool {
		return a.Action == ActionWarnUser && a.TargetID == target.ID.Hex() && a.Reason == "tone"
	})).Return(nil).Once()

	u, err := mod.WarnUser(ctx, target.ID, moderator, "tone")
	require.NoError(t, err)
	assert.Equal(t, target.ID, u.ID)
	audit.AssertExpectations(t)

	_, err = mod.WarnUser(ctx, missingID, moderator, "")
	assertKind(t, apperr.KindNotFound, err)
}

func TestSuspendUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mod := newModeration(env, nil)
	admin := env.user(t, "Admin", models.RoleAdmin)
	moderator := env.user(t, "Nathan", models.RoleModerator)
	target := env.user(t, "Saul", models.RoleUser)

	token, err := env.sessions.Create(ctx, target.ID)
	require.NoError(t, err)

	_, err = mod.SuspendUser(ctx, target.ID, moderator, "")
	assertKind(t, apperr.KindForbidden, err)

	u, err := mod.SuspendUser(ctx, target.ID, admin, "repeated abuse")
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	_, ok, err := env.sessions.Lookup(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok, "suspension must end the session")
}

func TestRecentActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	audit := &mockAudit{}
	mod := newModeration(env, audit)
	admin := env.user(t, "Admin", models.RoleAdmin)
	moderator := env.user(t, "Nathan", models.RoleModerator)

	want := []AuditAction{{ID: "a1", Action: ActionFlag}}
	audit.On("Recent", mock.Anything, 50).Return(want, nil).Once()
	audit.On("Recent", mock.Anything, 5).Return(nil, assert.AnError).Once()

	got, err := mod.RecentActions(ctx, admin, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = mod.RecentActions(ctx, admin, 5)
	assertKind(t, apperr.KindInternal, err)

	_, err = mod.RecentActions(ctx, moderator, 10)
	assertKind(t, apperr.KindForbidden, err)
	audit.AssertExpectations(t)
}
