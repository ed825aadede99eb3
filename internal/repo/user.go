package repo

import (
	"context"

	"GopherDrive/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository — контракт доступа к пользователям и их квотам.
type UserRepository interface {
	// CreateUser создаёт пользователя и в той же транзакции — запись квоты
	// с лимитом bytesTotal. Запись квоты появляется ровно один раз.
	CreateUser(ctx context.Context, user *model.User, bytesTotal int64) (*model.User, error)

	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type userRepo struct {
	db *gorm.DB
}

// NewUserRepository создаёт реализацию репозитория для User.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *model.User, bytesTotal int64) (*model.User, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		storage := &model.UserStorage{
			ID:         uuid.NewString(),
			UserID:     user.ID,
			BytesUsed:  0,
			BytesTotal: bytesTotal,
		}
		return tx.Create(storage).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepo) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("login = ?", login).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("login").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
