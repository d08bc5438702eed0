package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type likeableEntity[T any] interface {
	Entity[T]
	models.Likeable
}

type countedEntity[T any] interface {
	Entity[T]
	models.Counted
}

type commentableEntity[T any] interface {
	Entity[T]
	models.Commentable
}

type reflectiveEntity[T any] interface {
	Entity[T]
	models.Reflective
}

type (
	likeFunc    func(ctx context.Context, id primitive.ObjectID, user models.Actor) (LikeResult, error)
	counterFunc func(ctx context.Context, id primitive.ObjectID, c models.Counter) (int64, error)
	commentFunc func(ctx context.Context, id primitive.ObjectID, author models.Actor, text string) (models.Comment, error)
	reflectFunc func(ctx context.Context, id primitive.ObjectID, fn func(*models.Reflections) error) error
)

// Engagement owns likes, counters, comments and reflections across kinds.
type Engagement struct {
	catalog *Catalog
	users   store.Repository[models.User]
	events  EventPublisher
	log     *zap.Logger

	likes       map[models.Kind]likeFunc
	counters    map[models.Kind]counterFunc
	comments    map[models.Kind]commentFunc
	reflections map[models.Kind]reflectFunc
}

func NewEngagement(c *Catalog, users store.Repository[models.User], events EventPublisher, log *zap.Logger) *Engagement {
	return &Engagement{
		catalog: c,
		users:   users,
		events:  events,
		log:     log.Named("engagement"),
		likes: map[models.Kind]likeFunc{
			models.KindDevotional: toggleLike(c.Devotionals),
			models.KindPrayer:     toggleLike(c.Prayers),
			models.KindVerseArt:   toggleLike(c.VerseArt),
			models.KindVerseOfDay: toggleLike(c.VersesOfDay),
		},
		counters: map[models.Kind]counterFunc{
			models.KindDevotional: increment(c.Devotionals),
			models.KindVerseArt:   increment(c.VerseArt),
			models.KindVerseOfDay: increment(c.VersesOfDay),
		},
		comments: map[models.Kind]commentFunc{
			models.KindPrayer:   addComment(c.Prayers),
			models.KindVerseArt: addComment(c.VerseArt),
		},
		reflections: map[models.Kind]reflectFunc{
			models.KindDevotional: reflectOn(c.Devotionals),
			models.KindVerseOfDay: reflectOn(c.VersesOfDay),
		},
	}
}

// checkVisible rejects engagement with content the actor may not see.
func checkVisible(doc any, actor models.Actor, label string) error {
	if v, ok := doc.(visibility); ok && !v.VisibleTo(actor) {
		return apperr.Forbidden("Not authorized to view this " + lower(label))
	}
	return nil
}

func toggleLike[T any, PT likeableEntity[T]](svc *EntityService[T, PT]) likeFunc {
	return func(ctx context.Context, id primitive.ObjectID, user models.Actor) (LikeResult, error) {
		var res LikeResult
		_, err := svc.Apply(ctx, id, func(doc *T) error {
			if err := checkVisible(PT(doc), user, svc.kind.Label()); err != nil {
				return err
			}
			res.Liked = PT(doc).ToggleLike(user.ID)
			res.Likes = PT(doc).LikeCount()
			return nil
		})
		return res, err
	}
}

func increment[T any, PT countedEntity[T]](svc *EntityService[T, PT]) counterFunc {
	return func(ctx context.Context, id primitive.ObjectID, c models.Counter) (int64, error) {
		var value int64
		_, err := svc.Apply(ctx, id, func(doc *T) error {
			v, ok := PT(doc).Increment(c)
			if !ok {
				return apperr.Validation("counter", "Unknown counter "+string(c))
			}
			value = v
			return nil
		})
		return value, err
	}
}

func addComment[T any, PT commentableEntity[T]](svc *EntityService[T, PT]) commentFunc {
	return func(ctx context.Context, id primitive.ObjectID, author models.Actor, text string) (models.Comment, error) {
		var comment models.Comment
		_, err := svc.Apply(ctx, id, func(doc *T) error {
			if err := checkVisible(PT(doc), author, svc.kind.Label()); err != nil {
				return err
			}
			comment = PT(doc).Thread().Add(author.ID, text, now())
			return nil
		})
		return comment, err
	}
}

func reflectOn[T any, PT reflectiveEntity[T]](svc *EntityService[T, PT]) reflectFunc {
	return func(ctx context.Context, id primitive.ObjectID, fn func(*models.Reflections) error) error {
		_, err := svc.Apply(ctx, id, func(doc *T) error {
			return fn(PT(doc).ReflectionLog())
		})
		return err
	}
}

func unsupported(kind models.Kind, what string) error {
	return apperr.Validation("type", what+" are not supported for "+lower(kind.Label()))
}

// ToggleLike adds or removes user from the entity's likes and returns the
// new like count.
func (e *Engagement) ToggleLike(ctx context.Context, kind models.Kind, id primitive.ObjectID, user models.Actor) (LikeResult, error) {
	fn, ok := e.likes[kind]
	if !ok {
		return LikeResult{}, unsupported(kind, "Likes")
	}
	return fn(ctx, id, user)
}

// IncrementCounter bumps a named counter by one and returns its new value.
func (e *Engagement) IncrementCounter(ctx context.Context, kind models.Kind, id primitive.ObjectID, c models.Counter) (int64, error) {
	fn, ok := e.counters[kind]
	if !ok {
		return 0, unsupported(kind, "Counters")
	}
	return fn(ctx, id, c)
}

// RecordPrayedFor adds user to the prayer's intercessors once and returns
// the prayer count.
func (e *Engagement) RecordPrayedFor(ctx context.Context, prayerID primitive.ObjectID, user models.Actor) (int64, error) {
	p, err := e.catalog.Prayers.Apply(ctx, prayerID, func(p *models.Prayer) error {
		if err := checkVisible(p, user, "prayer"); err != nil {
			return err
		}
		p.RecordPrayedFor(user.ID, now())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return p.PrayerCount, nil
}

// MarkAnswered is reserved for the prayer's owner.
func (e *Engagement) MarkAnswered(ctx context.Context, prayerID primitive.ObjectID, owner models.Actor, note string) (*models.Prayer, error) {
	return e.catalog.Prayers.Apply(ctx, prayerID, func(p *models.Prayer) error {
		if p.User != owner.ID {
			return apperr.Forbidden("Not authorized")
		}
		p.MarkAnswered(strings.TrimSpace(note), now())
		return nil
	})
}

// AddComment appends an unmoderated comment and notifies moderators.
func (e *Engagement) AddComment(ctx context.Context, kind models.Kind, id primitive.ObjectID, author models.Actor, text string) (models.Comment, error) {
	fn, ok := e.comments[kind]
	if !ok {
		return models.Comment{}, unsupported(kind, "Comments")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, apperr.Validation("text", "Comment text is required")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return models.Comment{}, apperr.Validation("text", "Comment cannot exceed 1000 characters")
	}
	if err := e.commentsAllowed(ctx, author); err != nil {
		return models.Comment{}, err
	}

	comment, err := fn(ctx, id, author, text)
	if err != nil {
		return models.Comment{}, err
	}

	event := ModerationEvent{
		Type:        EventCommentPending,
		ContentType: kind,
		ContentID:   id.Hex(),
		CommentID:   comment.ID.Hex(),
		UserID:      author.ID.Hex(),
	}
	e.events.Publish(ctx, event)
	if s := ScreenText(text); s.Alert() {
		event.Type = EventContentAlert
		event.Keywords = s.Keywords
		e.events.Publish(ctx, event)
		e.log.Warn("comment needs prompt review",
			zap.String("content_id", id.Hex()),
			zap.String("comment_id", comment.ID.Hex()),
			zap.Strings("keywords", s.Keywords))
	}
	return comment, nil
}

func (e *Engagement) commentsAllowed(ctx context.Context, author models.Actor) error {
	u, err := e.users.Get(ctx, author.ID)
	if err != nil {
		return storeErr(err, "User")
	}
	if pc := u.ParentalControls; pc.Enabled && pc.Restrictions.Comments {
		return apperr.Forbidden("Comments are disabled by parental controls")
	}
	return nil
}

func (e *Engagement) AddReflection(ctx context.Context, kind models.Kind, id primitive.ObjectID, author models.Actor, text string, private bool) (models.Reflection, error) {
	fn, ok := e.reflections[kind]
	if !ok {
		return models.Reflection{}, unsupported(kind, "Reflections")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Reflection{}, apperr.Validation("text", "Reflection text is required")
	}
	var added models.Reflection
	err := fn(ctx, id, func(r *models.Reflections) error {
		added = r.Add(author.ID, text, private, now())
		return nil
	})
	return added, err
}

// UpdateReflection lets the reflection's author rewrite it.
func (e *Engagement) UpdateReflection(ctx context.Context, kind models.Kind, id, reflectionID primitive.ObjectID, author models.Actor, text string, private *bool) (models.Reflection, error) {
	fn, ok := e.reflections[kind]
	if !ok {
		return models.Reflection{}, unsupported(kind, "Reflections")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Reflection{}, apperr.Validation("text", "Reflection text is required")
	}
	var updated models.Reflection
	err := fn(ctx, id, func(r *models.Reflections) error {
		found := r.Find(reflectionID)
		if found == nil {
			return apperr.NotFound("Reflection")
		}
		if found.User != author.ID {
			return apperr.Forbidden("Not authorized")
		}
		found.Text = text
		if private != nil {
			found.IsPrivate = *private
		}
		updated = *found
		return nil
	})
	return updated, err
}
