package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// resource serves the create/read/update/delete endpoints shared by every
// content kind. one and many are the envelope keys, e.g. "prayer" and
// "prayers".
type resource[T any, PT services.Entity[T]] struct {
	h     *Handler
	svc   *services.EntityService[T, PT]
	one   string
	many  string
	fresh func() *T
}

func (res resource[T, PT]) label() string {
	return res.svc.Kind().Label()
}

func (res resource[T, PT]) list(w http.ResponseWriter, r *http.Request, q services.ListQuery) {
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	page, err := res.svc.List(ctx, q)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	payload := pageData(res.many, page)
	response.Success(w, res.h.withAuthors(ctx, payload, authorIDs[T, PT](page.Items...)), "")
}

// all lists every match without paging.
func (res resource[T, PT]) all(w http.ResponseWriter, r *http.Request, filter store.Filter, sort []store.SortField) {
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	items, err := res.svc.Find(ctx, filter, sort, 0)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	response.Success(w, res.h.withAuthors(ctx, data(res.many, items), authorIDs[T, PT](items...)), "")
}

func (res resource[T, PT]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	doc, err := res.svc.GetFor(ctx, id, actor(r))
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, res.h.withAuthors(ctx, data(res.one, doc), authorIDs[T, PT](*doc)), "")
}

func (res resource[T, PT]) create(w http.ResponseWriter, r *http.Request) {
	doc := res.fresh()
	if err := decode(r, doc); err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	created, err := res.svc.Create(ctx, doc, actor(r))
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Created(w, data(res.one, created), res.label()+" created successfully")
}

func (res resource[T, PT]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	patch, err := readBody(r)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	doc, err := res.svc.Update(ctx, id, patch, actor(r))
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, data(res.one, doc), res.label()+" updated successfully")
}

func (res resource[T, PT]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	if err := res.svc.Delete(ctx, id, actor(r)); err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, nil, res.label()+" deleted successfully")
}

func (res resource[T, PT]) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	var req struct {
		Status models.Status `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	doc, err := res.svc.SetStatus(ctx, id, req.Status, actor(r))
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, data(res.one, doc), "Status updated successfully")
}

// like toggles the caller's like on the entity.
func (res resource[T, PT]) like(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	result, err := res.h.svc.Engagement.ToggleLike(ctx, res.svc.Kind(), id, actor(r))
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	msg := "Unliked"
	if result.Liked {
		msg = "Liked"
	}
	response.Success(w, result, msg)
}

// count bumps counter by one and reports the new value under its own name.
func (res resource[T, PT]) count(counter models.Counter, msg string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			res.h.fail(w, r, err)
			return
		}
		ctx, cancel := res.h.ctx(r)
		defer cancel()
		n, err := res.h.svc.Engagement.IncrementCounter(ctx, res.svc.Kind(), id, counter)
		if err != nil {
			res.h.fail(w, r, err)
			return
		}
		response.Success(w, data(string(counter), n), msg)
	}
}

func (res resource[T, PT]) comment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	c, err := res.h.svc.Engagement.AddComment(ctx, res.svc.Kind(), id, actor(r), req.Text)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Created(w, data("comment", c), "Comment added successfully")
}

// removeComment is the moderator shortcut for rejecting one comment.
func (res resource[T, PT]) removeComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	if err := res.h.svc.Moderation.RejectComment(ctx, res.svc.Kind(), id, commentID, actor(r)); err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, nil, "Comment deleted successfully")
}

func (res resource[T, PT]) flag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeOptional(r, &req); err != nil {
		res.h.fail(w, r, err)
		return
	}

	ctx, cancel := res.h.ctx(r)
	defer cancel()
	doc, err := res.h.svc.Moderation.Flag(ctx, res.svc.Kind(), id, actor(r), req.Reason)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, data(res.one, doc), res.label()+" flagged successfully")
}

type reflectionRequest struct {
	Text      string `json:"text"`
	IsPrivate *bool  `json:"isPrivate"`
}

func (res resource[T, PT]) reflect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	var req reflectionRequest
	if err := decode(r, &req); err != nil {
		res.h.fail(w, r, err)
		return
	}
	private := req.IsPrivate != nil && *req.IsPrivate
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	ref, err := res.h.svc.Engagement.AddReflection(ctx, res.svc.Kind(), id, actor(r), req.Text, private)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Created(w, data("reflection", ref), "Reflection added successfully")
}

func (res resource[T, PT]) updateReflection(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	refID, err := pathID(r, "reflectionId")
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	var req reflectionRequest
	if err := decode(r, &req); err != nil {
		res.h.fail(w, r, err)
		return
	}
	ctx, cancel := res.h.ctx(r)
	defer cancel()
	ref, err := res.h.svc.Engagement.UpdateReflection(ctx, res.svc.Kind(), id, refID, actor(r), req.Text, req.IsPrivate)
	if err != nil {
		res.h.fail(w, r, err)
		return
	}
	response.Success(w, data("reflection", ref), "Reflection updated successfully")
}

// newest is the default listing order.
var newest = []store.SortField{{Field: "createdAt", Desc: true}}

// exact copies the named query parameters into an equality filter.
func exact(r *http.Request, filter store.Filter, params ...string) store.Filter {
	for _, p := range params {
		if v := r.URL.Query().Get(p); v != "" {
			filter[p] = v
		}
	}
	return filter
}

// authorIDs collects the owners of docs and the authors of their comments.
func authorIDs[T any, PT services.Entity[T]](docs ...T) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if !id.IsZero() && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for i := range docs {
		doc := PT(&docs[i])
		add(doc.Owner())
		if c, ok := any(doc).(models.Commentable); ok {
			for _, cm := range *c.Thread() {
				add(cm.User)
			}
		}
	}
	return ids
}

// withAuthors adds an authors map (hex id to name and avatar) next to the
// content. A failed lookup is logged and leaves the map empty.
func (h *Handler) withAuthors(ctx context.Context, payload map[string]any, ids []primitive.ObjectID) map[string]any {
	authors, err := h.svc.Users.Authors(ctx, ids)
	if err != nil {
		h.log.Warn("author lookup failed", zap.Error(err))
		authors = map[string]models.Author{}
	}
	payload["authors"] = authors
	return payload
}
