package services

import (
	"context"
	"errors"
	"testing"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func childPrayer(title string) *models.Prayer {
	p := models.NewPrayer()
	p.Title = title
	p.Content = "Follow-up on " + title
	p.IsPrivate = false
	return p
}

func TestAttachChild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tree := NewTree(env.catalog.Prayers, env.repos.Tx, zap.NewNop())
	owner := env.user(t, "Ruth", models.RoleUser)
	friend := env.user(t, "Naomi", models.RoleUser)

	root := env.prayer(t, owner, "Harvest")
	child, err := tree.AttachChild(ctx, root.ID, childPrayer("Gleaning"), friend)
	require.NoError(t, err)
	require.NotNil(t, child.ParentNode)
	assert.Equal(t, root.ID, *child.ParentNode)
	assert.Equal(t, friend.ID, child.User)

	stored, err := env.catalog.Prayers.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{child.ID}, stored.ChildNodes)
}

func TestAttachChildErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tree := NewTree(env.catalog.Prayers, nil, zap.NewNop())
	owner := env.user(t, "Ruth", models.RoleUser)
	stranger := env.user(t, "Orpah", models.RoleUser)

	_, err := tree.AttachChild(ctx, missingID, childPrayer("Nowhere"), owner)
	assertKind(t, apperr.KindNotFound, err)
	assert.EqualError(t, err, "Parent prayer not found")

	hidden := models.NewPrayer()
	hidden.Title = "Hidden"
	hidden.Content = "Only mine"
	parent, err := env.catalog.Prayers.Create(ctx, hidden, owner)
	require.NoError(t, err)
	_, err = tree.AttachChild(ctx, parent.ID, childPrayer("Peek"), stranger)
	assertKind(t, apperr.KindForbidden, err)

	_, err = tree.AttachChild(ctx, parent.ID, models.NewPrayer(), owner)
	assertKind(t, apperr.KindValidation, err)

	n, err := env.repos.Prayers.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// failingLinks lets inserts through but refuses to update documents.
type failingLinks struct {
	store.Repository[models.Prayer]
}

func (f failingLinks) Mutate(context.Context, primitive.ObjectID, func(*models.Prayer) error) (*models.Prayer, error) {
	return nil, errors.New("disk full")
}

func TestAttachChildRemovesChildWhenLinkFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.user(t, "Ruth", models.RoleUser)
	root := env.prayer(t, owner, "Harvest")

	prayers := NewEntityService[models.Prayer, *models.Prayer](failingLinks{env.repos.Prayers}, zap.NewNop())
	tree := NewTree(prayers, store.NoTransactions{}, zap.NewNop())

	_, err := tree.AttachChild(ctx, root.ID, childPrayer("Lost"), owner)
	assertKind(t, apperr.KindInternal, err)

	n, err := env.repos.Prayers.Count(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n, "child must not outlive a failed link")

	stored, err := env.repos.Prayers.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.ChildNodes)
}

func TestGetTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tree := NewTree(env.catalog.Prayers, env.repos.Tx, zap.NewNop())
	owner := env.user(t, "Ruth", models.RoleUser)
	friend := env.user(t, "Boaz", models.RoleUser)
	viewer := env.user(t, "Obed", models.RoleUser)

	root := env.prayer(t, owner, "Harvest")
	first, err := tree.AttachChild(ctx, root.ID, childPrayer("Barley"), owner)
	require.NoError(t, err)
	second, err := tree.AttachChild(ctx, root.ID, childPrayer("Wheat"), friend)
	require.NoError(t, err)

	secret := models.NewPrayer()
	secret.Title = "Threshing floor"
	secret.Content = "Between us"
	_, err = tree.AttachChild(ctx, root.ID, secret, friend)
	require.NoError(t, err)

	// grandchildren stay unresolved ids
	grandchild, err := tree.AttachChild(ctx, first.ID, childPrayer("Gleaning"), viewer)
	require.NoError(t, err)

	got, err := tree.GetTree(ctx, root.ID, viewer)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	assert.Len(t, got.Prayer.ChildNodes, 3)

	titles := make([]string, 0, len(got.ChildNodes))
	for _, c := range got.ChildNodes {
		titles = append(titles, c.Title)
	}
	if diff := cmp.Diff([]string{"Barley", "Wheat"}, titles); diff != "" {
		t.Errorf("children (-want +got):\n%s", diff)
	}
	assert.Equal(t, []primitive.ObjectID{grandchild.ID}, got.ChildNodes[0].ChildNodes)
	assert.Equal(t, second.ID, got.ChildNodes[1].ID)

	withSecret, err := tree.GetTree(ctx, root.ID, friend)
	require.NoError(t, err)
	assert.Len(t, withSecret.ChildNodes, 3)

	_, err = tree.GetTree(ctx, missingID, viewer)
	assertKind(t, apperr.KindNotFound, err)
}

func TestGetTreeShowsRootOwnerEveryChild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	tree := NewTree(env.catalog.Prayers, env.repos.Tx, zap.NewNop())
	owner := env.user(t, "Ruth", models.RoleUser)
	friend := env.user(t, "Boaz", models.RoleUser)
	other := env.user(t, "Obed", models.RoleUser)
	mod := env.user(t, "Eli", models.RoleModerator)

	root := env.prayer(t, owner, "Harvest")
	reply := models.NewPrayer()
	reply.Title = "Redeemer"
	reply.Content = "Standing with you"
	child, err := tree.AttachChild(ctx, root.ID, reply, friend)
	require.NoError(t, err)
	require.True(t, child.IsPrivate)

	for _, viewer := range []models.Actor{owner, friend, mod} {
		got, err := tree.GetTree(ctx, root.ID, viewer)
		require.NoError(t, err)
		require.Len(t, got.ChildNodes, 1, "viewer %s", viewer.ID.Hex())
		assert.Equal(t, child.ID, got.ChildNodes[0].ID)
	}

	got, err := tree.GetTree(ctx, root.ID, other)
	require.NoError(t, err)
	assert.Empty(t, got.ChildNodes)
	assert.Equal(t, []primitive.ObjectID{child.ID}, got.Prayer.ChildNodes)
}
