package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var req services.PreferencesUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	prefs, err := h.svc.Users.UpdatePreferences(ctx, actor(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("preferences", prefs), "Preferences updated successfully")
}

func (h *Handler) UpdateParentalControls(w http.ResponseWriter, r *http.Request) {
	var req models.ParentalControls
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	pc, err := h.svc.Users.UpdateParentalControls(ctx, actor(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("parentalControls", pc), "Parental controls updated successfully")
}

// userView answers with one slice of the caller's own document.
func (h *Handler) userView(key string, pick func(*models.User) any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := h.ctx(r)
		defer cancel()
		u, err := h.svc.Users.Get(ctx, actor(r).ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		response.Success(w, data(key, pick(u)), "")
	}
}

func (h *Handler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	h.userView("bookmarks", func(u *models.User) any { return u.Bookmarks })(w, r)
}

func (h *Handler) Highlights(w http.ResponseWriter, r *http.Request) {
	h.userView("highlights", func(u *models.User) any { return u.Highlights })(w, r)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.userView("stats", func(u *models.User) any { return u.Stats })(w, r)
}

func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	var req services.VerseRef
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.svc.Users.AddBookmark(ctx, actor(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("bookmarks", list), "Bookmark added successfully")
}

func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "bookmarkId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.svc.Users.RemoveBookmark(ctx, actor(r).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("bookmarks", list), "Bookmark removed successfully")
}

func (h *Handler) AddHighlight(w http.ResponseWriter, r *http.Request) {
	var req services.VerseRef
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.svc.Users.AddHighlight(ctx, actor(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("highlights", list), "Highlight added successfully")
}

func (h *Handler) RemoveHighlight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "highlightId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	list, err := h.svc.Users.RemoveHighlight(ctx, actor(r).ID, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("highlights", list), "Highlight removed successfully")
}

func (h *Handler) UpdateStreak(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Streak int `json:"streak"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	stats, err := h.svc.Users.SetStreak(ctx, actor(r).ID, req.Streak)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("stats", stats), "Streak updated successfully")
}

func (h *Handler) AddPoints(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Points int `json:"points"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	stats, err := h.svc.Users.AddPoints(ctx, actor(r).ID, req.Points)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("stats", stats), "Points added successfully")
}

// ListUsers is the staff directory, filtered by ?role= and ?isActive=.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var f services.UserFilter
	q := r.URL.Query()
	if role := q.Get("role"); role != "" {
		f.Role = models.Role(role)
	}
	if v := q.Get("isActive"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.fail(w, r, apperr.Validation("isActive", "isActive must be true or false"))
			return
		}
		f.IsActive = &active
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	page, err := h.svc.Users.List(ctx, f, pageRequest(r, 20))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, pageData("users", page), "")
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Users.Get(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("user", u), "")
}

func (h *Handler) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		IsActive *bool `json:"isActive"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.IsActive == nil {
		h.fail(w, r, apperr.Validation("isActive", "isActive is required"))
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Users.SetActive(ctx, id, *req.IsActive)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("user", u), "User status updated successfully")
}

func (h *Handler) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req struct {
		Role models.Role `json:"role"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Users.SetRole(ctx, id, req.Role)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("user", u), "User role updated successfully")
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.svc.Users.Delete(ctx, id); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, nil, "User deleted successfully")
}

func (h *Handler) LogMood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mood string `json:"mood"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	entry, err := h.svc.Users.LogMood(ctx, actor(r).ID, req.Mood)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("mood", entry), "Mood updated successfully")
}

func (h *Handler) TodayMood(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	entry, err := h.svc.Users.TodayMood(ctx, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entry == nil {
		h.fail(w, r, apperr.NotFound("Mood for today"))
		return
	}
	response.Success(w, data("mood", entry), "")
}

// MoodHistory covers the last ?days= days, 30 by default.
func (h *Handler) MoodHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	entries, err := h.svc.Users.MoodHistory(ctx, actor(r).ID, int(queryInt(r, "days")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, map[string]any{"history": entries, "total": len(entries)}, "")
}
