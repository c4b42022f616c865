package service

import (
	"Duet/internal/api/dto"
	"Duet/internal/repository"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepo(db))
	ctx := context.Background()

	name := "Alice"
	user, err := svc.Register(ctx, &dto.RegisterDTO{
		Email:    "alice@example.com",
		Password: "secret-password",
		Name:     &name,
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email)

	result, err := svc.Login(ctx, &dto.CredentialDTO{Email: "alice@example.com", Password: "secret-password"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepo(db))
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterDTO{Email: "alice@example.com", Password: "secret-password"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.RegisterDTO{Email: "alice@example.com", Password: "another-password"})
	assert.ErrorIs(t, err, ErrEmailExist)
}

func TestLoginFailures(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(repository.NewUserRepo(db))
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterDTO{Email: "alice@example.com", Password: "secret-password"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, &dto.CredentialDTO{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrPasswordIncorrect)

	_, err = svc.Login(ctx, &dto.CredentialDTO{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
