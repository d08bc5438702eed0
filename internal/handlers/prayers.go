package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

// ListPrayers shows active prayers, optionally by ?category=. Only staff
// see private requests here; members find their own under my-prayers.
func (h *Handler) ListPrayers(w http.ResponseWriter, r *http.Request) {
	filter := exact(r, store.Filter{"status": models.StatusActive}, "category")
	if !actor(r).Elevated() {
		filter["isPrivate"] = false
	}
	h.prayers.list(w, r, services.ListQuery{Filter: filter, Sort: newest, Page: pageRequest(r, 20)})
}

func (h *Handler) MyPrayers(w http.ResponseWriter, r *http.Request) {
	h.prayers.list(w, r, services.ListQuery{
		Filter: store.Filter{"user": actor(r).ID, "status": models.StatusActive},
		Sort:   newest,
		Page:   pageRequest(r, 20),
	})
}

func (h *Handler) PublicPrayers(w http.ResponseWriter, r *http.Request) {
	h.prayers.list(w, r, services.ListQuery{
		Filter: store.Filter{"isPrivate": false, "status": models.StatusActive},
		Sort:   newest,
		Page:   pageRequest(r, 20),
	})
}

func (h *Handler) GetPrayer(w http.ResponseWriter, r *http.Request) { h.prayers.get(w, r) }

func (h *Handler) CreatePrayer(w http.ResponseWriter, r *http.Request) { h.prayers.create(w, r) }

func (h *Handler) UpdatePrayer(w http.ResponseWriter, r *http.Request) { h.prayers.update(w, r) }

func (h *Handler) DeletePrayer(w http.ResponseWriter, r *http.Request) { h.prayers.delete(w, r) }

func (h *Handler) LikePrayer(w http.ResponseWriter, r *http.Request) { h.prayers.like(w, r) }

func (h *Handler) CommentOnPrayer(w http.ResponseWriter, r *http.Request) { h.prayers.comment(w, r) }

func (h *Handler) FlagPrayer(w http.ResponseWriter, r *http.Request) { h.prayers.flag(w, r) }

func (h *Handler) DeletePrayerComment(w http.ResponseWriter, r *http.Request) {
	h.prayers.removeComment(w, r)
}

// PrayFor records that the caller prayed. Repeat calls by the same user
// do not raise the count.
func (h *Handler) PrayFor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	n, err := h.svc.Engagement.RecordPrayedFor(ctx, id, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("prayerCount", n), "Prayer recorded")
}

func (h *Handler) MarkPrayerAnswered(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeOptional(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.svc.Engagement.MarkAnswered(ctx, id, actor(r), req.Note)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("prayer", p), "Prayer marked as answered")
}

func (h *Handler) AddChildPrayer(w http.ResponseWriter, r *http.Request) {
	parentID, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	child := models.NewPrayer()
	if err := decode(r, child); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	created, err := h.svc.Tree.AttachChild(ctx, parentID, child, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, data("prayer", created), "Child prayer added successfully")
}

func (h *Handler) PrayerTree(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	tree, err := h.svc.Tree.GetTree(ctx, id, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	docs := append([]models.Prayer{tree.Prayer}, tree.ChildNodes...)
	response.Success(w, h.withAuthors(ctx, data("prayer", tree), authorIDs[models.Prayer, *models.Prayer](docs...)), "")
}
