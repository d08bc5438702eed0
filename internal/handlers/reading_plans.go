package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

func (h *Handler) ListReadingPlans(w http.ResponseWriter, r *http.Request) {
	h.readingPlans.list(w, r, services.ListQuery{
		Filter: exact(r, store.Filter{}, "status", "category"),
		Sort:   newest,
		Page:   pageRequest(r, 10),
	})
}

func (h *Handler) ActiveReadingPlans(w http.ResponseWriter, r *http.Request) {
	h.readingPlans.all(w, r, store.Filter{"status": models.StatusActive}, newest)
}

func (h *Handler) GetReadingPlan(w http.ResponseWriter, r *http.Request) { h.readingPlans.get(w, r) }

func (h *Handler) CreateReadingPlan(w http.ResponseWriter, r *http.Request) {
	h.readingPlans.create(w, r)
}

func (h *Handler) UpdateReadingPlan(w http.ResponseWriter, r *http.Request) {
	h.readingPlans.update(w, r)
}

func (h *Handler) DeleteReadingPlan(w http.ResponseWriter, r *http.Request) {
	h.readingPlans.delete(w, r)
}

func (h *Handler) SetReadingPlanStatus(w http.ResponseWriter, r *http.Request) {
	h.readingPlans.setStatus(w, r)
}

func (h *Handler) EnrollInPlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.svc.Participation.Enroll(ctx, id, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("plan", p), "Enrolled successfully")
}

func (h *Handler) UpdatePlanProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var progress models.PlanProgress
	if err := decode(r, &progress); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	saved, err := h.svc.Participation.UpdatePlanProgress(ctx, id, actor(r).ID, progress)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("progress", saved), "Progress updated successfully")
}

func (h *Handler) CompletePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.svc.Participation.CompletePlan(ctx, id, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("plan", p), "Plan completed!")
}

func (h *Handler) RatePlan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		Rating int    `json:"rating"`
		Review string `json:"review"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	avg, err := h.svc.Participation.RatePlan(ctx, id, actor(r).ID, req.Rating, req.Review)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("averageRating", avg), "Rating submitted successfully")
}

func (h *Handler) MyPlanProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.svc.Participation.MyPlanProgress(ctx, id, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("progress", p), "")
}

func (h *Handler) EnrolledPlans(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	plans, err := h.svc.Participation.MyPlans(ctx, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if plans == nil {
		plans = []models.ReadingPlan{}
	}
	response.Success(w, data("plans", plans), "")
}
