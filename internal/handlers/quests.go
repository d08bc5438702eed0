package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

func (h *Handler) ListQuests(w http.ResponseWriter, r *http.Request) {
	h.quests.list(w, r, services.ListQuery{
		Filter: exact(r, store.Filter{}, "status", "difficulty"),
		Sort:   newest,
		Page:   pageRequest(r, 10),
	})
}

func (h *Handler) ActiveQuests(w http.ResponseWriter, r *http.Request) {
	h.quests.all(w, r, store.Filter{"status": models.StatusActive}, newest)
}

func (h *Handler) GetQuest(w http.ResponseWriter, r *http.Request) { h.quests.get(w, r) }

func (h *Handler) CreateQuest(w http.ResponseWriter, r *http.Request) { h.quests.create(w, r) }

func (h *Handler) UpdateQuest(w http.ResponseWriter, r *http.Request) { h.quests.update(w, r) }

func (h *Handler) DeleteQuest(w http.ResponseWriter, r *http.Request) { h.quests.delete(w, r) }

func (h *Handler) SetQuestStatus(w http.ResponseWriter, r *http.Request) { h.quests.setStatus(w, r) }

func (h *Handler) JoinQuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	q, err := h.svc.Participation.JoinQuest(ctx, id, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("quest", q), "Joined quest successfully")
}

func (h *Handler) UpdateQuestProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var progress models.QuestProgress
	if err := decode(r, &progress); err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	saved, err := h.svc.Participation.UpdateQuestProgress(ctx, id, actor(r).ID, progress)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("progress", saved), "Progress updated successfully")
}

func (h *Handler) CompleteQuest(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	q, err := h.svc.Participation.CompleteQuest(ctx, id, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("quest", q), "Quest completed!")
}

func (h *Handler) MyQuestProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ctx, cancel := h.ctx(r)
	defer cancel()
	p, err := h.svc.Participation.MyQuestProgress(ctx, id, actor(r).ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("progress", p), "")
}
