package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PrayerTree is a prayer whose childNodes are resolved to the child
// documents instead of ids.
type PrayerTree struct {
	models.Prayer
	ChildNodes []models.Prayer `json:"childNodes"`
}

// Tree links prayers into parent/child chains. Children are always created
// fresh under an existing parent, so the structure cannot contain cycles.
type Tree struct {
	prayers *EntityService[models.Prayer, *models.Prayer]
	tx      store.Transactor
	log     *zap.Logger
}

func NewTree(prayers *EntityService[models.Prayer, *models.Prayer], tx store.Transactor, log *zap.Logger) *Tree {
	if tx == nil {
		tx = store.NoTransactions{}
	}
	return &Tree{prayers: prayers, tx: tx, log: log.Named("tree")}
}

// AttachChild creates child under parentID on behalf of requester. The
// child insert and the parent's link are written together: inside a
// transaction when the store has them, otherwise the child is removed again
// if linking fails.
func (t *Tree) AttachChild(ctx context.Context, parentID primitive.ObjectID, child *models.Prayer, requester models.Actor) (*models.Prayer, error) {
	parent, err := t.prayers.Repo().Get(ctx, parentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Parent prayer")
	}
	if err != nil {
		return nil, storeErr(err, "Parent prayer")
	}
	if !parent.VisibleTo(requester) {
		return nil, apperr.Forbidden("Not authorized to view this prayer")
	}

	if err := t.prayers.Prepare(child, requester); err != nil {
		return nil, err
	}
	child.ParentNode = &parentID

	repo := t.prayers.Repo()
	err = t.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := repo.Insert(ctx, child); err != nil {
			return err
		}
		_, err := repo.Mutate(ctx, parentID, func(p *models.Prayer) error {
			p.AttachChild(child.ID)
			return nil
		})
		if err != nil && !t.tx.Atomic() {
			if derr := repo.Delete(ctx, child.ID); derr != nil {
				t.log.Error("orphaned child prayer",
					zap.String("child", child.ID.Hex()),
					zap.String("parent", parentID.Hex()),
					zap.Error(derr))
			}
		}
		return err
	})
	if err != nil {
		return nil, storeErr(err, "Parent prayer")
	}

	t.log.Info("child attached",
		zap.String("parent", parentID.Hex()),
		zap.String("child", child.ID.Hex()))
	return child, nil
}

// GetTree resolves one level of children. The root's owner sees every child
// attached to their prayer; other viewers only those they may see.
func (t *Tree) GetTree(ctx context.Context, rootID primitive.ObjectID, viewer models.Actor) (*PrayerTree, error) {
	root, err := t.prayers.GetFor(ctx, rootID, viewer)
	if err != nil {
		return nil, err
	}
	children, err := t.prayers.Repo().GetMany(ctx, root.ChildNodes)
	if err != nil {
		return nil, storeErr(err, "Prayer")
	}
	tree := &PrayerTree{Prayer: *root, ChildNodes: make([]models.Prayer, 0, len(children))}
	for _, c := range children {
		if root.User == viewer.ID || c.VisibleTo(viewer) {
			tree.ChildNodes = append(tree.ChildNodes, c)
		}
	}
	return tree, nil
}
