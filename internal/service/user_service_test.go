package service

import (
	"context"
	"io"
	"testing"

	"backend/internal/repository"
	"backend/pkg/apperr"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) UserService {
	t.Helper()
	env := newTestEnv(t)

	log := logrus.New()
	log.SetOutput(io.Discard)
	activity := NewActivityService(repository.NewActivityRepository(env.db), log)
	return NewUserService(repository.NewUserRepository(env.db), activity, log)
}

func TestRegisterAndLogin(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()

	created, err := users.Register(ctx, "", RegisterUserRequest{
		Username: "pharmacist1",
		Email:    "pharmacist1@example.com",
		Password: "secret123",
		Role:     "pharmacist",
	})
	require.NoError(t, err)
	assert.Equal(t, "pharmacist", created.Role)

	tokens, err := users.Login(ctx, LoginUserRequest{
		Email:    "pharmacist1@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()

	req := RegisterUserRequest{
		Username: "manager1",
		Email:    "manager1@example.com",
		Password: "secret123",
		Role:     "manager",
	}
	_, err := users.Register(ctx, "", req)
	require.NoError(t, err)

	req.Email = "other@example.com"
	_, err = users.Register(ctx, "", req)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "", RegisterUserRequest{
		Username: "admin1",
		Email:    "admin1@example.com",
		Password: "secret123",
		Role:     "admin",
	})
	require.NoError(t, err)

	_, err = users.Login(ctx, LoginUserRequest{
		Email:    "admin1@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = users.Login(ctx, LoginUserRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestRefreshRotatesToken(t *testing.T) {
	users := newUserService(t)
	ctx := context.Background()

	_, err := users.Register(ctx, "", RegisterUserRequest{
		Username: "rotator",
		Email:    "rotator@example.com",
		Password: "secret123",
		Role:     "manager",
	})
	require.NoError(t, err)

	tokens, err := users.Login(ctx, LoginUserRequest{
		Email:    "rotator@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	rotated, err := users.Refresh(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, rotated.RefreshToken)

	// The presented token was consumed by the rotation.
	_, err = users.Refresh(ctx, tokens.RefreshToken)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
