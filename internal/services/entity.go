package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Entity is the behaviour every content kind provides to the generic
// content service.
type Entity[T any] interface {
	*T
	store.Document
	Kind() models.Kind
	Owner() primitive.ObjectID
	SetOwner(primitive.ObjectID)
	CurrentStatus() models.Status
	SetStatus(models.Status)
	Normalize()
	Validate() error
	Preserve(prev *T)
}

type visibility interface {
	VisibleTo(models.Actor) bool
}

// ListQuery selects and orders a page of entities.
type ListQuery struct {
	Filter store.Filter
	Sort   []store.SortField
	Page   PageRequest
}

// EntityService implements create/read/update/delete/list for one kind.
type EntityService[T any, PT Entity[T]] struct {
	repo     store.Repository[T]
	kind     models.Kind
	log      *zap.Logger
	onChange []func(ctx context.Context, doc *T)
}

func NewEntityService[T any, PT Entity[T]](repo store.Repository[T], log *zap.Logger) *EntityService[T, PT] {
	var zero T
	kind := PT(&zero).Kind()
	return &EntityService[T, PT]{
		repo: repo,
		kind: kind,
		log:  log.Named(string(kind)),
	}
}

func (s *EntityService[T, PT]) Kind() models.Kind {
	return s.kind
}

func (s *EntityService[T, PT]) Repo() store.Repository[T] {
	return s.repo
}

// OnChange registers a hook run after every successful write.
func (s *EntityService[T, PT]) OnChange(fn func(ctx context.Context, doc *T)) {
	s.onChange = append(s.onChange, fn)
}

func (s *EntityService[T, PT]) changed(ctx context.Context, doc *T) {
	for _, fn := range s.onChange {
		fn(ctx, doc)
	}
}

func (s *EntityService[T, PT]) notFound() string {
	return s.kind.Label()
}

// Prepare strips client supplied bookkeeping from doc, assigns the owner
// and initial status, and validates the result.
func (s *EntityService[T, PT]) Prepare(doc *T, owner models.Actor) error {
	p := PT(doc)
	requested := p.CurrentStatus()

	var blank T
	p.Preserve(&blank)
	p.SetOwner(owner.ID)
	if requested != "" && s.kind.Creatable(requested) {
		p.SetStatus(requested)
	} else {
		p.SetStatus(s.kind.InitialStatus())
	}

	p.Normalize()
	return p.Validate()
}

func (s *EntityService[T, PT]) Create(ctx context.Context, doc *T, owner models.Actor) (*T, error) {
	if err := s.Prepare(doc, owner); err != nil {
		return nil, err
	}
	if err := s.repo.Insert(ctx, doc); err != nil {
		return nil, storeErr(err, s.notFound())
	}
	s.log.Info("created",
		zap.String("id", PT(doc).Meta().ID.Hex()),
		zap.String("owner", owner.ID.Hex()))
	s.changed(ctx, doc)
	return doc, nil
}

func (s *EntityService[T, PT]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, storeErr(err, s.notFound())
	}
	return doc, nil
}

// GetFor is Get with visibility rules applied for viewer.
func (s *EntityService[T, PT]) GetFor(ctx context.Context, id primitive.ObjectID, viewer models.Actor) (*T, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := any(PT(doc)).(visibility); ok && !v.VisibleTo(viewer) {
		return nil, apperr.Forbidden("Not authorized to view this " + lower(s.kind.Label()))
	}
	return doc, nil
}

// Apply runs fn against the current document under the store's
// compare-and-swap loop.
func (s *EntityService[T, PT]) Apply(ctx context.Context, id primitive.ObjectID, fn func(doc *T) error) (*T, error) {
	doc, err := s.repo.Mutate(ctx, id, fn)
	if err != nil {
		return nil, storeErr(err, s.notFound())
	}
	s.changed(ctx, doc)
	return doc, nil
}

// Update merges a JSON patch onto the entity. Fields covered by Preserve
// keep their stored values.
func (s *EntityService[T, PT]) Update(ctx context.Context, id primitive.ObjectID, patch []byte, requester models.Actor) (*T, error) {
	updated, err := s.Apply(ctx, id, func(cur *T) error {
		if !requester.CanModify(PT(cur).Owner()) {
			return apperr.Forbidden("Not authorized to update this " + lower(s.kind.Label()))
		}
		next, err := clone(cur)
		if err != nil {
			return apperr.Internal("Server error", err)
		}
		if err := json.Unmarshal(patch, next); err != nil {
			return apperr.Validation("body", "Invalid request body")
		}
		PT(next).Preserve(cur)
		PT(next).Normalize()
		if err := PT(next).Validate(); err != nil {
			return err
		}
		*cur = *next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("updated", zap.String("id", id.Hex()), zap.String("by", requester.ID.Hex()))
	return updated, nil
}

func (s *EntityService[T, PT]) Delete(ctx context.Context, id primitive.ObjectID, requester models.Actor) error {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !requester.CanModify(PT(doc).Owner()) {
		return apperr.Forbidden("Not authorized to delete this " + lower(s.kind.Label()))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err, s.notFound())
	}
	s.log.Info("deleted", zap.String("id", id.Hex()), zap.String("by", requester.ID.Hex()))
	s.changed(ctx, doc)
	return nil
}

// SetStatus moves the entity to status. Only staff may do this and the
// status must belong to the kind.
func (s *EntityService[T, PT]) SetStatus(ctx context.Context, id primitive.ObjectID, status models.Status, requester models.Actor) (*T, error) {
	if !requester.Elevated() {
		return nil, apperr.Forbidden("Not authorized to change status")
	}
	if !s.kind.Allows(status) {
		return nil, apperr.Validation("status", fmt.Sprintf("Invalid status %q for %s", status, lower(s.kind.Label())))
	}
	return s.Apply(ctx, id, func(doc *T) error {
		PT(doc).SetStatus(status)
		return nil
	})
}

func (s *EntityService[T, PT]) List(ctx context.Context, q ListQuery) (Page[T], error) {
	total, err := s.repo.Count(ctx, q.Filter)
	if err != nil {
		return Page[T]{}, storeErr(err, s.notFound())
	}
	items, err := s.repo.List(ctx, q.Filter, store.ListOptions{
		Sort:  q.Sort,
		Skip:  q.Page.skip(),
		Limit: q.Page.Size,
	})
	if err != nil {
		return Page[T]{}, storeErr(err, s.notFound())
	}
	return Page[T]{
		Items:       items,
		Total:       total,
		TotalPages:  TotalPages(total, q.Page.Size),
		CurrentPage: q.Page.Page,
	}, nil
}

// Find returns every entity matching filter, up to limit when positive.
func (s *EntityService[T, PT]) Find(ctx context.Context, filter store.Filter, sort []store.SortField, limit int64) ([]T, error) {
	items, err := s.repo.List(ctx, filter, store.ListOptions{Sort: sort, Limit: limit})
	if err != nil {
		return nil, storeErr(err, s.notFound())
	}
	return items, nil
}

// clone deep copies a document through its BSON form so slices are not
// shared with doc.
func clone[T any](doc *T) (*T, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	out := new(T)
	if err := bson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func now() time.Time {
	return time.Now().UTC()
}

func lower(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
