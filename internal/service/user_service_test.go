package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.userSvc.Register(ctx, "john", "secret")
	assert.NoError(t, err)
	assert.NotZero(t, u.ID)
	// в базе лежит bcrypt-хеш, не исходный пароль
	assert.NotEqual(t, "secret", u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("secret")))

	// квота создана вместе с учёткой
	usage, err := env.storageSvc.GetUsage(ctx, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1000), usage.BytesTotal)
	assert.Equal(t, int64(0), usage.BytesUsed)

	// занятый логин
	_, err = env.userSvc.Register(ctx, "john", "other")
	assert.ErrorIs(t, err, ErrLoginTaken)

	// аутентификация
	got, err := env.userSvc.Authenticate(ctx, "john", "secret")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = env.userSvc.Authenticate(ctx, "john", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = env.userSvc.Authenticate(ctx, "ghost", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.userSvc.Register(ctx, "anna", "pw")
	assert.NoError(t, err)

	got, err := env.userSvc.GetUser(ctx, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, "anna", got.Login)

	_, err = env.userSvc.GetUser(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_DefaultQuota(t *testing.T) {
	// нулевой лимит в конструкторе означает дефолтные 50 MiB
	svc := NewUserService(nil, 0)
	assert.Equal(t, int64(DefaultQuotaBytes), svc.quota)
}
