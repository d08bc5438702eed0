package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type actorKey struct{}

// Authenticator resolves a session token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.Actor, error)
}

// ActivityTracker is told about every authenticated request.
type ActivityTracker interface {
	Touch(ctx context.Context, id primitive.ObjectID)
}

// Auth attaches the caller to the request context.
type Auth struct {
	authn    Authenticator
	activity ActivityTracker
}

// NewAuth builds the authentication middleware. activity may be nil.
func NewAuth(authn Authenticator, activity ActivityTracker) *Auth {
	return &Auth{authn: authn, activity: activity}
}

// Token extracts the bearer token. Websocket handshakes cannot set headers
// from a browser, so they may pass it as the token query parameter.
func Token(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

func (a *Auth) resolve(r *http.Request) (models.Actor, error) {
	token := Token(r)
	if token == "" {
		return models.Actor{}, apperr.Unauthorized("Not authorized, no token")
	}
	actor, err := a.authn.Authenticate(r.Context(), token)
	if err != nil {
		return models.Actor{}, err
	}
	if a.activity != nil {
		a.activity.Touch(r.Context(), actor.ID)
	}
	return actor, nil
}

// Require rejects requests without a valid session.
func (a *Auth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := a.resolve(r)
		if err != nil {
			fail(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// Optional attaches the caller when a valid token is present and lets
// anonymous requests through otherwise.
func (a *Auth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Token(r) == "" {
			next.ServeHTTP(w, r)
			return
		}
		actor, err := a.resolve(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

// RequireRole admits authenticated callers holding one of roles. Use after Require.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFrom(r.Context())
			if !ok {
				fail(w, apperr.Unauthorized("Not authorized, no token"))
				return
			}
			if !slices.Contains(roles, actor.Role) {
				fail(w, apperr.Forbidden("User role "+string(actor.Role)+" is not authorized to access this route"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	RequireElevated = RequireRole(models.RoleModerator, models.RoleAdmin)
	RequireAdmin    = RequireRole(models.RoleAdmin)
)

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the authenticated caller, if any.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}

func fail(w http.ResponseWriter, err error) {
	status := apperr.HTTPStatus(err)
	msg := "Server error"
	if e, ok := apperr.As(err); ok && e.Kind != apperr.KindInternal {
		msg = e.Message
	}
	response.Fail(w, status, msg, nil)
}
