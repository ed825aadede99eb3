package service

import (
	"context"
	"errors"

	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultQuotaBytes — квота нового пользователя: 50 MiB.
const DefaultQuotaBytes = 50 * 1024 * 1024

// ErrInvalidCredentials — пара логин/пароль не подошла.
var ErrInvalidCredentials = errors.New("invalid login or password")

// UserService — регистрация и аутентификация.
type UserService struct {
	repo  repo.UserRepository
	quota int64
}

// NewUserService создаёт сервис пользователей. quota — лимит хранилища
// для новых пользователей; 0 означает DefaultQuotaBytes.
func NewUserService(r repo.UserRepository, quota int64) *UserService {
	if quota <= 0 {
		quota = DefaultQuotaBytes
	}
	return &UserService{repo: r, quota: quota}
}

// Register создаёт пользователя с bcrypt-хешем пароля. Запись квоты
// создаётся автоматически вместе с учёткой и ровно один раз.
func (s *UserService) Register(ctx context.Context, login, password string) (*model.User, error) {
	existing, err := s.repo.GetUserByLogin(ctx, login)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrLoginTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Login: login, Password: string(hash)}
	return s.repo.CreateUser(ctx, user, s.quota)
}

// Authenticate проверяет пару логин/пароль и возвращает пользователя.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*model.User, error) {
	user, err := s.repo.GetUserByLogin(ctx, login)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser возвращает пользователя по id либо ErrNotFound.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
