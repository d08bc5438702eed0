package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

func (h *Handler) ListVerses(w http.ResponseWriter, r *http.Request) {
	h.verses.list(w, r, services.ListQuery{
		Filter: exact(r, store.Filter{}, "status", "theme"),
		Sort:   byDate,
		Page:   pageRequest(r, 30),
	})
}

func (h *Handler) TodayVerse(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	v, err := h.svc.Daily.VerseToday(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("verse", v), "")
}

func (h *Handler) GetVerse(w http.ResponseWriter, r *http.Request) { h.verses.get(w, r) }

func (h *Handler) CreateVerse(w http.ResponseWriter, r *http.Request) { h.verses.create(w, r) }

func (h *Handler) UpdateVerse(w http.ResponseWriter, r *http.Request) { h.verses.update(w, r) }

func (h *Handler) DeleteVerse(w http.ResponseWriter, r *http.Request) { h.verses.delete(w, r) }

func (h *Handler) SetVerseStatus(w http.ResponseWriter, r *http.Request) { h.verses.setStatus(w, r) }

func (h *Handler) LikeVerse(w http.ResponseWriter, r *http.Request) { h.verses.like(w, r) }

func (h *Handler) ReflectOnVerse(w http.ResponseWriter, r *http.Request) { h.verses.reflect(w, r) }

func (h *Handler) ShareVerse(w http.ResponseWriter, r *http.Request) {
	h.verses.count(models.CounterShares, "Share counted")(w, r)
}
