package handlers

import (
	"net/http"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
)

const maxImageBytes = 10 << 20

func (h *Handler) ListVerseArt(w http.ResponseWriter, r *http.Request) {
	h.verseArt.list(w, r, services.ListQuery{
		Filter: store.Filter{"status": models.StatusActive},
		Sort:   newest,
		Page:   pageRequest(r, 20),
	})
}

func (h *Handler) PublicVerseArt(w http.ResponseWriter, r *http.Request) {
	h.verseArt.list(w, r, services.ListQuery{
		Filter: store.Filter{"isPublic": true, "status": models.StatusActive},
		Sort:   newest,
		Page:   pageRequest(r, 20),
	})
}

func (h *Handler) MyVerseArt(w http.ResponseWriter, r *http.Request) {
	h.verseArt.all(w, r, store.Filter{"user": actor(r).ID, "status": models.StatusActive}, newest)
}

func (h *Handler) GetVerseArt(w http.ResponseWriter, r *http.Request) { h.verseArt.get(w, r) }

func (h *Handler) CreateVerseArt(w http.ResponseWriter, r *http.Request) { h.verseArt.create(w, r) }

func (h *Handler) UpdateVerseArt(w http.ResponseWriter, r *http.Request) { h.verseArt.update(w, r) }

func (h *Handler) DeleteVerseArt(w http.ResponseWriter, r *http.Request) { h.verseArt.delete(w, r) }

func (h *Handler) LikeVerseArt(w http.ResponseWriter, r *http.Request) { h.verseArt.like(w, r) }

func (h *Handler) ShareVerseArt(w http.ResponseWriter, r *http.Request) {
	h.verseArt.count(models.CounterShares, "Share counted")(w, r)
}

func (h *Handler) DownloadVerseArt(w http.ResponseWriter, r *http.Request) {
	h.verseArt.count(models.CounterDownloads, "Download counted")(w, r)
}

func (h *Handler) CommentOnVerseArt(w http.ResponseWriter, r *http.Request) {
	h.verseArt.comment(w, r)
}

func (h *Handler) FlagVerseArt(w http.ResponseWriter, r *http.Request) { h.verseArt.flag(w, r) }

func (h *Handler) DeleteVerseArtComment(w http.ResponseWriter, r *http.Request) {
	h.verseArt.removeComment(w, r)
}

// UploadVerseArtImage takes a multipart form with the file under "image".
func (h *Handler) UploadVerseArtImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		h.fail(w, r, apperr.Validation("image", "Image must be a multipart upload under 10MB"))
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		h.fail(w, r, apperr.Validation("image", "Image file is required"))
		return
	}
	defer file.Close()

	ctx, cancel := h.ctx(r)
	defer cancel()
	art, err := h.svc.ArtImages.Attach(ctx, id, file, actor(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	response.Success(w, data("art", art), "Image uploaded successfully")
}
