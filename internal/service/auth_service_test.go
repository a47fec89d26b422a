package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/exchange-service/internal/config"
	"github.com/spec-kit/exchange-service/internal/domain"
	"github.com/spec-kit/exchange-service/internal/service"
	apperrors "github.com/spec-kit/exchange-service/pkg/util"
)

func newAuthEnv(t *testing.T) (*memStore, *service.AuthService) {
	t.Helper()
	store := newMemStore()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 15,
			BcryptCost:            4,
		},
		Exchange: config.ExchangeConfig{StartingCredits: 5},
	}
	svc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:  &memUsers{s: store},
		SkillRepo: &memSkills{s: store},
	})
	return store, svc
}

func registerInput() service.RegisterInput {
	return service.RegisterInput{
		Name:     "Rosa Jiménez",
		Email:    "rosa@mail.com",
		Password: "contraseña-segura",
		Age:      70,
		Location: "Sevilla",
	}
}

func TestRegisterUser(t *testing.T) {
	_, svc := newAuthEnv(t)

	user, token, exp, err := svc.RegisterUser(context.Background(), registerInput())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, 5, user.Credits)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "contraseña-segura", user.PasswordHash)
	assert.NotEmpty(t, token)
	assert.False(t, exp.IsZero())
}

func TestRegisterUserNormalizesEmail(t *testing.T) {
	_, svc := newAuthEnv(t)

	input := registerInput()
	input.Email = "  Rosa@Mail.com "
	user, _, _, err := svc.RegisterUser(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "rosa@mail.com", user.Email)
}

func TestRegisterUserAgeBounds(t *testing.T) {
	_, svc := newAuthEnv(t)

	for _, age := range []int{17, 121} {
		input := registerInput()
		input.Age = age
		_, _, _, err := svc.RegisterUser(context.Background(), input)
		assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"), "age %d", age)
	}
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	_, svc := newAuthEnv(t)

	_, _, _, err := svc.RegisterUser(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, _, err = svc.RegisterUser(context.Background(), registerInput())
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLoginUser(t *testing.T) {
	_, svc := newAuthEnv(t)
	registered, _, _, err := svc.RegisterUser(context.Background(), registerInput())
	require.NoError(t, err)

	user, token, _, err := svc.LoginUser(context.Background(), "rosa@mail.com", "contraseña-segura")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginUserBadCredentials(t *testing.T) {
	_, svc := newAuthEnv(t)
	_, _, _, err := svc.RegisterUser(context.Background(), registerInput())
	require.NoError(t, err)

	_, _, _, err = svc.LoginUser(context.Background(), "rosa@mail.com", "incorrecta")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	_, _, _, err = svc.LoginUser(context.Background(), "nadie@mail.com", "lo-que-sea")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
}

func TestProfileUnknownUser(t *testing.T) {
	_, svc := newAuthEnv(t)

	_, _, err := svc.Profile(context.Background(), "user-missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
