package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

var byDate = []store.SortField{{Field: "date", Desc: true}}

// ListDevotionals filters by ?status= and ?category=, newest date first.
func (h *Handler) ListDevotionals(w http.ResponseWriter, r *http.Request) {
	h.devotionals.list(w, r, services.ListQuery{
		Filter: exact(r, store.Filter{}, "status", "category"),
		Sort:   byDate,
		Page:   pageRequest(r, 10),
	})
}

func (h *Handler) PublishedDevotionals(w http.ResponseWriter, r *http.Request) {
	h.devotionals.list(w, r, services.ListQuery{
		Filter: store.Filter{"status": models.StatusPublished},
		Sort:   byDate,
		Page:   pageRequest(r, 10),
	})
}

func (h *Handler) TodayDevotional(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	d, err := h.svc.Daily.DevotionalToday(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("devotional", d), "")
}

func (h *Handler) GetDevotional(w http.ResponseWriter, r *http.Request) { h.devotionals.get(w, r) }

func (h *Handler) CreateDevotional(w http.ResponseWriter, r *http.Request) {
	h.devotionals.create(w, r)
}

func (h *Handler) UpdateDevotional(w http.ResponseWriter, r *http.Request) {
	h.devotionals.update(w, r)
}

func (h *Handler) DeleteDevotional(w http.ResponseWriter, r *http.Request) {
	h.devotionals.delete(w, r)
}

func (h *Handler) SetDevotionalStatus(w http.ResponseWriter, r *http.Request) {
	h.devotionals.setStatus(w, r)
}

func (h *Handler) LikeDevotional(w http.ResponseWriter, r *http.Request) { h.devotionals.like(w, r) }

func (h *Handler) ReadDevotional(w http.ResponseWriter, r *http.Request) {
	h.devotionals.count(models.CounterReadCount, "Marked as read")(w, r)
}

func (h *Handler) ReflectOnDevotional(w http.ResponseWriter, r *http.Request) {
	h.devotionals.reflect(w, r)
}

func (h *Handler) UpdateDevotionalReflection(w http.ResponseWriter, r *http.Request) {
	h.devotionals.updateReflection(w, r)
}
