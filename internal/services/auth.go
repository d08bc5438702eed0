package services

import (
	"context"
	"errors"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/AnshRaj112/graceway-backend/internal/store"
	"github.com/AnshRaj112/graceway-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age"`
}

// Auth issues and checks session tokens for accounts stored in users.
type Auth struct {
	users    store.Repository[models.User]
	sessions SessionStore
	log      *zap.Logger
}

func NewAuth(users store.Repository[models.User], sessions SessionStore, log *zap.Logger) *Auth {
	return &Auth{users: users, sessions: sessions, log: log.Named("auth")}
}

var errBadCredentials = apperr.Unauthorized("Invalid credentials")

func validatePassword(pw string) error {
	if len(pw) < utils.MinPasswordLength {
		return apperr.Validation("password", "Password must be at least 6 characters")
	}
	return nil
}

func (a *Auth) byEmail(ctx context.Context, email string) (*models.User, error) {
	found, err := a.users.List(ctx, store.Filter{"email": models.NormalizeEmail(email)}, store.ListOptions{Limit: 1})
	if err != nil {
		return nil, storeErr(err, "User")
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

// Register creates a regular user account and signs it in.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	u := models.NewUser(in.Name, in.Email)
	u.Age = in.Age
	if err := u.Validate(); err != nil {
		return nil, "", err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, "", err
	}

	existing, err := a.byEmail(ctx, u.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", apperr.Conflict("User already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, "", apperr.Internal("Server error", err)
	}
	u.Password = hash
	u.LastActive = now()
	if err := a.users.Insert(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, "", apperr.Conflict("User already exists")
		}
		return nil, "", storeErr(err, "User")
	}

	token, err := a.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", apperr.Internal("Server error", err)
	}
	a.log.Info("user registered", zap.String("user", u.ID.Hex()))
	return u, token, nil
}

func (a *Auth) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	u, err := a.byEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", errBadCredentials
	}
	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil {
		a.log.Error("stored password hash unreadable", zap.String("user", u.ID.Hex()), zap.Error(err))
		return nil, "", errBadCredentials
	}
	if !ok {
		return nil, "", errBadCredentials
	}
	if !u.IsActive {
		return nil, "", apperr.Unauthorized("Account is deactivated")
	}

	token, err := a.sessions.Create(ctx, u.ID)
	if err != nil {
		return nil, "", apperr.Internal("Server error", err)
	}
	a.log.Info("user logged in", zap.String("user", u.ID.Hex()))
	return u, token, nil
}

func (a *Auth) Logout(ctx context.Context, token string) error {
	if err := a.sessions.Revoke(ctx, token); err != nil {
		return apperr.Internal("Server error", err)
	}
	return nil
}

// Authenticate resolves a bearer token to the acting user. Deactivated
// accounts are rejected even with a live session.
func (a *Auth) Authenticate(ctx context.Context, token string) (models.Actor, error) {
	id, ok, err := a.sessions.Lookup(ctx, token)
	if err != nil {
		return models.Actor{}, apperr.Internal("Server error", err)
	}
	if !ok {
		return models.Actor{}, apperr.Unauthorized("Not authorized, invalid or expired session")
	}
	u, err := a.users.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Actor{}, apperr.Unauthorized("Not authorized, user no longer exists")
	}
	if err != nil {
		return models.Actor{}, storeErr(err, "User")
	}
	if !u.IsActive {
		return models.Actor{}, apperr.Unauthorized("Account is deactivated")
	}
	return u.Actor(), nil
}

// UpdatePassword checks the current password, stores the new hash and
// issues a fresh session.
func (a *Auth) UpdatePassword(ctx context.Context, id primitive.ObjectID, current, next string) (string, error) {
	if err := validatePassword(next); err != nil {
		return "", err
	}
	hash, err := utils.HashPassword(next)
	if err != nil {
		return "", apperr.Internal("Server error", err)
	}
	_, err = a.users.Mutate(ctx, id, func(u *models.User) error {
		ok, err := utils.VerifyPassword(current, u.Password)
		if err != nil || !ok {
			return apperr.Unauthorized("Current password is incorrect")
		}
		u.Password = hash
		return nil
	})
	if err != nil {
		return "", storeErr(err, "User")
	}
	token, err := a.sessions.Create(ctx, id)
	if err != nil {
		return "", apperr.Internal("Server error", err)
	}
	return token, nil
}
