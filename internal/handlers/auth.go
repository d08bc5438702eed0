package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/middleware"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

func session(u *models.User, token string) map[string]any {
	return map[string]any{"user": u, "token": token}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterInput
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, token, err := h.svc.Auth.Register(ctx, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Created(w, session(u, token), "User registered successfully")
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, token, err := h.svc.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, session(u, token), "Login successful")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	if err := h.svc.Auth.Logout(ctx, middleware.Token(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, nil, "Logged out successfully")
}

// Me returns the caller's account. /api/users/profile is the same view.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Users.Get(ctx, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("user", u), "")
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.ProfileUpdate
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Users.UpdateProfile(ctx, actor(r).ID, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("user", u), "Profile updated successfully")
}

// UpdatePassword rotates the session: the old token stops working.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	token, err := h.svc.Auth.UpdatePassword(ctx, actor(r).ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("token", token), "Password updated successfully")
}
