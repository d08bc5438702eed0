// Package handlers exposes the services over HTTP. Every response uses the
// envelope in pkg/response.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/middleware"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/services"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Services is everything the handlers call into.
type Services struct {
	Catalog       *services.Catalog
	Engagement    *services.Engagement
	Moderation    *services.Moderation
	Tree          *services.Tree
	Participation *services.Participation
	Users         *services.Users
	Auth          *services.Auth
	Daily         *services.Daily
	ArtImages     *services.ArtImages
	Analytics     *services.Analytics
	Events        *services.EventHub
}

// Check reports whether a backing dependency is reachable.
type Check func(ctx context.Context) error

type Options struct {
	Production     bool
	RequestTimeout time.Duration
	AllowedOrigins []string
	// Checks are run by the health endpoint, keyed by dependency name.
	Checks map[string]Check
}

type Handler struct {
	svc      Services
	opts     Options
	log      *zap.Logger
	upgrader websocket.Upgrader

	devotionals  resource[models.Devotional, *models.Devotional]
	prayers      resource[models.Prayer, *models.Prayer]
	verseArt     resource[models.VerseArt, *models.VerseArt]
	verses       resource[models.VerseOfDay, *models.VerseOfDay]
	quests       resource[models.Quest, *models.Quest]
	readingPlans resource[models.ReadingPlan, *models.ReadingPlan]
}

func New(svc Services, opts Options, log *zap.Logger) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	h := &Handler{svc: svc, opts: opts, log: log.Named("handlers")}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	c := svc.Catalog
	h.devotionals = resource[models.Devotional, *models.Devotional]{h, c.Devotionals, "devotional", "devotionals", models.NewDevotional}
	h.prayers = resource[models.Prayer, *models.Prayer]{h, c.Prayers, "prayer", "prayers", models.NewPrayer}
	h.verseArt = resource[models.VerseArt, *models.VerseArt]{h, c.VerseArt, "art", "arts", models.NewVerseArt}
	h.verses = resource[models.VerseOfDay, *models.VerseOfDay]{h, c.VersesOfDay, "verse", "verses", models.NewVerseOfDay}
	h.quests = resource[models.Quest, *models.Quest]{h, c.Quests, "quest", "quests", models.NewQuest}
	h.readingPlans = resource[models.ReadingPlan, *models.ReadingPlan]{h, c.ReadingPlans, "plan", "plans", models.NewReadingPlan}
	return h
}

// ctx bounds the work a request may do against the stores.
func (h *Handler) ctx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.opts.RequestTimeout)
}

// actor is the caller, or the zero Actor on public routes.
func actor(r *http.Request) models.Actor {
	a, _ := middleware.ActorFrom(r.Context())
	return a
}

// fail maps err onto the envelope. Internal causes are logged and only
// shown to clients outside production.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	e, labelled := apperr.As(err)

	if !labelled || e.Kind == apperr.KindInternal {
		h.log.Error("request failed",
			zap.String("request_id", middleware.RequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		var detail any
		if !h.opts.Production {
			detail = err.Error()
		}
		response.Fail(w, status, "Server error", detail)
		return
	}
	var detail any
	if e.Field != "" {
		detail = response.FieldError{Field: e.Field}
	}
	response.Fail(w, status, e.Message, detail)
}

func decode(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("body", "Request body is required")
		}
		return apperr.Validation("body", "Invalid request body")
	}
	return nil
}

// decodeOptional is decode for endpoints whose body may be left out.
// Malformed JSON is still rejected.
func decodeOptional(r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apperr.Validation("body", "Invalid request body")
}

// readBody returns the raw JSON body for patch style updates.
func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validation("body", "Invalid request body")
	}
	if len(raw) == 0 {
		return nil, apperr.Validation("body", "Request body is required")
	}
	return raw, nil
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, name))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(name, "Invalid "+name)
	}
	return id, nil
}

func bodyID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(field, "Invalid "+field)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int64 {
	n, _ := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	return n
}

// pageRequest reads ?page= and ?limit=.
func pageRequest(r *http.Request, defaultSize int64) services.PageRequest {
	return services.NewPageRequest(queryInt(r, "page"), queryInt(r, "limit"), defaultSize)
}

// pageData shapes a page as {<key>, totalPages, currentPage, total}.
func pageData[T any](key string, p services.Page[T]) map[string]any {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		key:           items,
		"totalPages":  p.TotalPages,
		"currentPage": p.CurrentPage,
		"total":       p.Total,
	}
}

func data(key string, v any) map[string]any {
	return map[string]any{key: v}
}
