package services

import (
	"context"
	"sort"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PendingComment is an unmoderated comment with the content it belongs to.
type PendingComment struct {
	Type         models.Kind        `json:"type"`
	ContentID    primitive.ObjectID `json:"contentId"`
	ContentTitle string             `json:"contentTitle"`
	CommentID    primitive.ObjectID `json:"commentId"`
	Comment      models.Comment     `json:"comment"`

	contentCreated time.Time
}

type FlaggedContent struct {
	Prayers  []models.Prayer   `json:"prayers"`
	VerseArt []models.VerseArt `json:"verseArt"`
	Total    int               `json:"total"`
}

type flaggableEntity[T any] interface {
	Entity[T]
	models.Flaggable
}

type flagOps struct {
	flag   func(ctx context.Context, id primitive.ObjectID) (any, error)
	unflag func(ctx context.Context, id primitive.ObjectID) (any, error)
}

type threadOps struct {
	approve func(ctx context.Context, id, commentID primitive.ObjectID) error
	reject  func(ctx context.Context, id, commentID primitive.ObjectID) error
	pending func(ctx context.Context) ([]PendingComment, error)
}

// Moderation drives the flag/unflag state machine and the comment queue.
// Content only changes status here or through an explicit SetStatus.
type Moderation struct {
	catalog  *Catalog
	users    store.Repository[models.User]
	sessions SessionStore
	audit    AuditLog
	events   EventPublisher
	log      *zap.Logger

	flaggable   map[models.Kind]flagOps
	commentable map[models.Kind]threadOps
}

func NewModeration(c *Catalog, users store.Repository[models.User], sessions SessionStore, audit AuditLog, events EventPublisher, log *zap.Logger) *Moderation {
	if audit == nil {
		audit = NopAuditLog{}
	}
	return &Moderation{
		catalog:  c,
		users:    users,
		sessions: sessions,
		audit:    audit,
		events:   events,
		log:      log.Named("moderation"),
		flaggable: map[models.Kind]flagOps{
			models.KindPrayer:     flagging(c.Prayers),
			models.KindVerseArt:   flagging(c.VerseArt),
			models.KindDevotional: flagging(c.Devotionals),
		},
		commentable: map[models.Kind]threadOps{
			models.KindPrayer:   threads(c.Prayers),
			models.KindVerseArt: threads(c.VerseArt),
		},
	}
}

func flagging[T any, PT flaggableEntity[T]](svc *EntityService[T, PT]) flagOps {
	apply := func(fn func(PT)) func(context.Context, primitive.ObjectID) (any, error) {
		return func(ctx context.Context, id primitive.ObjectID) (any, error) {
			doc, err := svc.Apply(ctx, id, func(doc *T) error {
				fn(PT(doc))
				return nil
			})
			if err != nil {
				return nil, err
			}
			return doc, nil
		}
	}
	return flagOps{
		flag:   apply(func(p PT) { p.Flag() }),
		unflag: apply(func(p PT) { p.Unflag() }),
	}
}

func threads[T any, PT commentableEntity[T]](svc *EntityService[T, PT]) threadOps {
	return threadOps{
		approve: func(ctx context.Context, id, commentID primitive.ObjectID) error {
			_, err := svc.Apply(ctx, id, func(doc *T) error {
				if !PT(doc).Thread().Approve(commentID) {
					return apperr.NotFound("Comment")
				}
				return nil
			})
			return err
		},
		reject: func(ctx context.Context, id, commentID primitive.ObjectID) error {
			_, err := svc.Apply(ctx, id, func(doc *T) error {
				if !PT(doc).Thread().Remove(commentID) {
					return apperr.NotFound("Comment")
				}
				return nil
			})
			return err
		},
		pending: func(ctx context.Context) ([]PendingComment, error) {
			docs, err := svc.Find(ctx, store.Filter{"comments.isModerated": false}, nil, 0)
			if err != nil {
				return nil, err
			}
			var out []PendingComment
			for i := range docs {
				doc := PT(&docs[i])
				meta := doc.Meta()
				for _, c := range doc.Thread().Pending() {
					out = append(out, PendingComment{
						Type:           svc.Kind(),
						ContentID:      meta.ID,
						ContentTitle:   doc.DisplayTitle(),
						CommentID:      c.ID,
						Comment:        c,
						contentCreated: meta.CreatedAt,
					})
				}
			}
			return out, nil
		},
	}
}

func requireModerator(a models.Actor) error {
	if !a.Elevated() {
		return apperr.Forbidden("Moderator access required")
	}
	return nil
}

func requireAdmin(a models.Actor) error {
	if !a.IsAdmin() {
		return apperr.Forbidden("Admin access required")
	}
	return nil
}

func invalidContentType() error {
	return apperr.Validation("contentType", "Invalid content type")
}

// record writes the audit row and broadcasts the event. Audit failures are
// logged; the moderation action itself has already been applied.
func (m *Moderation) record(ctx context.Context, action AuditAction, event ModerationEvent) {
	if err := m.audit.Record(ctx, action); err != nil {
		m.log.Error("audit record failed", zap.String("action", action.Action), zap.Error(err))
	}
	event.ActorID = action.ActorID
	m.events.Publish(ctx, event)
	m.log.Info(action.Action,
		zap.String("actor", action.ActorID),
		zap.String("content_type", action.ContentType),
		zap.String("content_id", action.ContentID),
		zap.String("target", action.TargetID))
}

func (m *Moderation) Flag(ctx context.Context, kind models.Kind, id primitive.ObjectID, mod models.Actor, reason string) (any, error) {
	return m.setFlag(ctx, kind, id, mod, reason, true)
}

func (m *Moderation) Unflag(ctx context.Context, kind models.Kind, id primitive.ObjectID, mod models.Actor) (any, error) {
	return m.setFlag(ctx, kind, id, mod, "", false)
}

func (m *Moderation) setFlag(ctx context.Context, kind models.Kind, id primitive.ObjectID, mod models.Actor, reason string, flag bool) (any, error) {
	if err := requireModerator(mod); err != nil {
		return nil, err
	}
	ops, ok := m.flaggable[kind]
	if !ok {
		return nil, invalidContentType()
	}
	apply, action, event := ops.unflag, ActionUnflag, EventContentUnflag
	if flag {
		apply, action, event = ops.flag, ActionFlag, EventContentFlagged
	}
	doc, err := apply(ctx, id)
	if err != nil {
		return nil, err
	}
	m.record(ctx,
		AuditAction{ActorID: mod.ID.Hex(), Action: action, ContentType: string(kind), ContentID: id.Hex(), Reason: reason},
		ModerationEvent{Type: event, ContentType: kind, ContentID: id.Hex()})
	return doc, nil
}

func (m *Moderation) ApproveComment(ctx context.Context, kind models.Kind, contentID, commentID primitive.ObjectID, mod models.Actor) error {
	return m.moderateComment(ctx, kind, contentID, commentID, mod, true)
}

// RejectComment deletes the comment. There is no way back.
func (m *Moderation) RejectComment(ctx context.Context, kind models.Kind, contentID, commentID primitive.ObjectID, mod models.Actor) error {
	return m.moderateComment(ctx, kind, contentID, commentID, mod, false)
}

func (m *Moderation) moderateComment(ctx context.Context, kind models.Kind, contentID, commentID primitive.ObjectID, mod models.Actor, approve bool) error {
	if err := requireModerator(mod); err != nil {
		return err
	}
	ops, ok := m.commentable[kind]
	if !ok {
		return invalidContentType()
	}
	apply, action, event := ops.reject, ActionRejectComment, EventCommentRejected
	if approve {
		apply, action, event = ops.approve, ActionApproveComment, EventCommentApproved
	}
	if err := apply(ctx, contentID, commentID); err != nil {
		return err
	}
	m.record(ctx,
		AuditAction{ActorID: mod.ID.Hex(), Action: action, ContentType: string(kind), ContentID: contentID.Hex(), TargetID: commentID.Hex()},
		ModerationEvent{Type: event, ContentType: kind, ContentID: contentID.Hex(), CommentID: commentID.Hex()})
	return nil
}

// PendingComments lists every unmoderated comment on commentable content,
// oldest content first and in thread order within one item.
func (m *Moderation) PendingComments(ctx context.Context, mod models.Actor) ([]PendingComment, error) {
	if err := requireModerator(mod); err != nil {
		return nil, err
	}
	all := []PendingComment{}
	for _, kind := range []models.Kind{models.KindPrayer, models.KindVerseArt} {
		items, err := m.commentable[kind].pending(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].contentCreated.Before(all[j].contentCreated)
	})
	return all, nil
}

func (m *Moderation) FlaggedContent(ctx context.Context, mod models.Actor) (*FlaggedContent, error) {
	if err := requireModerator(mod); err != nil {
		return nil, err
	}
	newest := []store.SortField{{Field: "createdAt", Desc: true}}
	flagged := store.Filter{"status": models.StatusFlagged}

	prayers, err := m.catalog.Prayers.Find(ctx, flagged, newest, 0)
	if err != nil {
		return nil, err
	}
	art, err := m.catalog.VerseArt.Find(ctx, flagged, newest, 0)
	if err != nil {
		return nil, err
	}
	return &FlaggedContent{Prayers: prayers, VerseArt: art, Total: len(prayers) + len(art)}, nil
}

// ReportedUsers is always empty: there is no user reporting flow yet.
func (m *Moderation) ReportedUsers(_ context.Context, mod models.Actor) ([]models.User, error) {
	if err := requireModerator(mod); err != nil {
		return nil, err
	}
	return []models.User{}, nil
}

func (m *Moderation) WarnUser(ctx context.Context, userID primitive.ObjectID, mod models.Actor, reason string) (*models.User, error) {
	if err := requireModerator(mod); err != nil {
		return nil, err
	}
	u, err := m.users.Get(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "User")
	}
	m.record(ctx,
		AuditAction{ActorID: mod.ID.Hex(), Action: ActionWarnUser, TargetID: userID.Hex(), Reason: reason},
		ModerationEvent{Type: EventUserWarned, UserID: userID.Hex()})
	return u, nil
}

// SuspendUser deactivates the account and ends its session.
func (m *Moderation) SuspendUser(ctx context.Context, userID primitive.ObjectID, admin models.Actor, reason string) (*models.User, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	u, err := m.users.Mutate(ctx, userID, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	if err := m.sessions.RevokeUser(ctx, userID); err != nil {
		m.log.Error("revoke sessions of suspended user", zap.String("user", userID.Hex()), zap.Error(err))
	}
	m.record(ctx,
		AuditAction{ActorID: admin.ID.Hex(), Action: ActionSuspendUser, TargetID: userID.Hex(), Reason: reason},
		ModerationEvent{Type: EventUserSuspended, UserID: userID.Hex()})
	return u, nil
}

func (m *Moderation) RecentActions(ctx context.Context, admin models.Actor, limit int) ([]AuditAction, error) {
	if err := requireAdmin(admin); err != nil {
		return nil, err
	}
	if limit < 1 || limit > MaxPageSize {
		limit = 50
	}
	actions, err := m.audit.Recent(ctx, limit)
	if err != nil {
		return nil, apperr.Internal("Server error", err)
	}
	return actions, nil
}
