package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contentRef struct {
	ContentType string `json:"contentType"`
	ContentID   string `json:"contentId"`
	Reason      string `json:"reason"`
}

func (c contentRef) parse() (models.Kind, primitive.ObjectID, error) {
	kind, ok := models.ParseKind(c.ContentType)
	if !ok {
		return "", primitive.NilObjectID, apperr.Validation("contentType", "Invalid content type")
	}
	id, err := bodyID("contentId", c.ContentID)
	return kind, id, err
}

func (h *Handler) FlaggedContent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	fc, err := h.svc.Moderation.FlaggedContent(ctx, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, fc, "")
}

func (h *Handler) PendingComments(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	pending, err := h.svc.Moderation.PendingComments(ctx, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, map[string]any{"comments": pending, "total": len(pending)}, "")
}

func (h *Handler) ReportedUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	users, err := h.svc.Moderation.ReportedUsers(ctx, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, map[string]any{"users": users, "total": len(users)}, "")
}

func (h *Handler) ApproveComment(w http.ResponseWriter, r *http.Request) {
	h.moderateComment(w, r, true)
}

func (h *Handler) RejectComment(w http.ResponseWriter, r *http.Request) {
	h.moderateComment(w, r, false)
}

func (h *Handler) moderateComment(w http.ResponseWriter, r *http.Request, approve bool) {
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var ref contentRef
	if err := decode(r, &ref); err != nil {
		h.fail(w, r, err)
		return
	}
	kind, id, err := ref.parse()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	if approve {
		err = h.svc.Moderation.ApproveComment(ctx, kind, id, commentID, actor(r))
	} else {
		err = h.svc.Moderation.RejectComment(ctx, kind, id, commentID, actor(r))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "Comment rejected and deleted successfully"
	if approve {
		msg = "Comment approved successfully"
	}
	response.Success(w, nil, msg)
}

func (h *Handler) FlagContent(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, true)
}

func (h *Handler) UnflagContent(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, false)
}

func (h *Handler) setFlag(w http.ResponseWriter, r *http.Request, flag bool) {
	var ref contentRef
	if err := decode(r, &ref); err != nil {
		h.fail(w, r, err)
		return
	}
	kind, id, err := ref.parse()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	var content any
	if flag {
		content, err = h.svc.Moderation.Flag(ctx, kind, id, actor(r), ref.Reason)
	} else {
		content, err = h.svc.Moderation.Unflag(ctx, kind, id, actor(r))
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	msg := "Content unflagged successfully"
	if flag {
		msg = "Content flagged successfully"
	}
	response.Success(w, data("content", content), msg)
}

type userAction struct {
	Reason   string `json:"reason"`
	Duration string `json:"duration"`
}

func (h *Handler) WarnUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req userAction
	if err := decodeOptional(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Moderation.WarnUser(ctx, id, actor(r), req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("reason", req.Reason), "Warning sent to user: "+u.Name)
}

func (h *Handler) SuspendUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req userAction
	if err := decodeOptional(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	ctx, cancel := h.ctx(r)
	defer cancel()
	u, err := h.svc.Moderation.SuspendUser(ctx, id, actor(r), req.Reason)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, map[string]any{"user": u, "reason": req.Reason, "duration": req.Duration},
		"User suspended successfully")
}

// ModerationActions lists the audit log, newest first, ?limit= rows.
func (h *Handler) ModerationActions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.ctx(r)
	defer cancel()
	actions, err := h.svc.Moderation.RecentActions(ctx, actor(r), int(queryInt(r, "limit")))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, map[string]any{"actions": actions, "total": len(actions)}, "")
}
