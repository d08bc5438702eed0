package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/graceway-backend/internal/apperr"
	"github.com/AnshRaj112/graceway-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuth(env *testEnv) *Auth {
	return NewAuth(env.repos.Users, env.sessions, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuth(env)

	u, token, err := auth.Register(ctx, RegisterInput{Name: "Lois", Email: " Lois@Example.com ", Password: "sincere faith"})
	require.NoError(t, err)
	assert.Equal(t, "lois@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "sincere faith", u.Password)
	assert.NotEmpty(t, token)

	actor, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, actor.ID)

	_, _, err = auth.Register(ctx, RegisterInput{Name: "Lois", Email: "lois@example.com", Password: "another one"})
	assertKind(t, apperr.KindConflict, err)
	assert.EqualError(t, err, "User already exists")

	_, second, err := auth.Login(ctx, "LOIS@example.com", "sincere faith")
	require.NoError(t, err)

	// one session per user: logging in again retires the first token
	_, err = auth.Authenticate(ctx, token)
	assertKind(t, apperr.KindUnauthorized, err)
	_, err = auth.Authenticate(ctx, second)
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, second))
	_, err = auth.Authenticate(ctx, second)
	assertKind(t, apperr.KindUnauthorized, err)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuth(env)

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "secret1"}, "name"},
		{"bad email", RegisterInput{Name: "A", Email: "nope", Password: "secret1"}, "email"},
		{"short password", RegisterInput{Name: "A", Email: "a@example.com", Password: "12345"}, "password"},
		{"age out of range", RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1", Age: ptr(0)}, "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := auth.Register(ctx, tt.in)
			assertKind(t, apperr.KindValidation, err)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuth(env)
	users := newUsers(env)

	u, _, err := auth.Register(ctx, RegisterInput{Name: "Demas", Email: "demas@example.com", Password: "loved this world"})
	require.NoError(t, err)

	_, _, err = auth.Login(ctx, "demas@example.com", "wrong")
	assert.EqualError(t, err, "Invalid credentials")
	_, _, err = auth.Login(ctx, "nobody@example.com", "loved this world")
	assert.EqualError(t, err, "Invalid credentials")

	_, err = users.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	_, _, err = auth.Login(ctx, "demas@example.com", "loved this world")
	assertKind(t, apperr.KindUnauthorized, err)
	assert.EqualError(t, err, "Account is deactivated")
}

func TestAuthenticateRejectsDeactivated(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuth(env)

	u, token, err := auth.Register(ctx, RegisterInput{Name: "Onesimus", Email: "o@example.com", Password: "useful one"})
	require.NoError(t, err)
	_, err = env.repos.Users.Mutate(ctx, u.ID, func(u *models.User) error {
		u.IsActive = false
		return nil
	})
	require.NoError(t, err)

	_, err = auth.Authenticate(ctx, token)
	assertKind(t, apperr.KindUnauthorized, err)
	_, err = auth.Authenticate(ctx, "not-a-token")
	assertKind(t, apperr.KindUnauthorized, err)
}

func TestUpdatePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := newAuth(env)

	u, _, err := auth.Register(ctx, RegisterInput{Name: "Saul", Email: "saul@example.com", Password: "damascus"})
	require.NoError(t, err)

	_, err = auth.UpdatePassword(ctx, u.ID, "tarsus", "new creation")
	assertKind(t, apperr.KindUnauthorized, err)
	_, err = auth.UpdatePassword(ctx, u.ID, "damascus", "new")
	assertKind(t, apperr.KindValidation, err)

	token, err := auth.UpdatePassword(ctx, u.ID, "damascus", "new creation")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = auth.Login(ctx, "saul@example.com", "damascus")
	assertKind(t, apperr.KindUnauthorized, err)
	_, _, err = auth.Login(ctx, "saul@example.com", "new creation")
	require.NoError(t, err)
}
