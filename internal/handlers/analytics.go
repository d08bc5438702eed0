package handlers

import (
	"context"
	"net/http"

	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

func analyticsView[T any](h *Handler, load func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := h.ctx(r)
		defer cancel()
		report, err := load(ctx)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		response.Success(w, report, "")
	}
}

func (h *Handler) DashboardAnalytics(w http.ResponseWriter, r *http.Request) {
	analyticsView(h, h.svc.Analytics.Dashboard)(w, r)
}

func (h *Handler) UserAnalytics(w http.ResponseWriter, r *http.Request) {
	analyticsView(h, h.svc.Analytics.Users)(w, r)
}

func (h *Handler) EngagementAnalytics(w http.ResponseWriter, r *http.Request) {
	analyticsView(h, h.svc.Analytics.Engagement)(w, r)
}

func (h *Handler) ContentAnalytics(w http.ResponseWriter, r *http.Request) {
	analyticsView(h, h.svc.Analytics.Content)(w, r)
}

func (h *Handler) GrowthAnalytics(w http.ResponseWriter, r *http.Request) {
	analyticsView(h, h.svc.Analytics.Growth)(w, r)
}
