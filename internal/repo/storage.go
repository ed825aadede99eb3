package repo

import (
	"context"

	"GopherDrive/internal/model"

	"gorm.io/gorm"
)

// StorageRepository — контракт доступа к записям квот.
type StorageRepository interface {
	GetByUser(ctx context.Context, userID int64) (*model.UserStorage, error)
	// AddUsage атомарно сдвигает bytes_used на delta (может быть отрицательной).
	// Именно дельта-апдейт, не read-modify-write: параллельные загрузки
	// одного пользователя не должны терять обновления.
	AddUsage(ctx context.Context, userID int64, delta int64) error
}

type storageRepo struct {
	db *gorm.DB
}

// NewStorageRepository создаёт реализацию репозитория для UserStorage.
func NewStorageRepository(db *gorm.DB) StorageRepository {
	return &storageRepo{db: db}
}

func (r *storageRepo) GetByUser(ctx context.Context, userID int64) (*model.UserStorage, error) {
	var s model.UserStorage
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storageRepo) AddUsage(ctx context.Context, userID int64, delta int64) error {
	tx := r.db.WithContext(ctx).Model(&model.UserStorage{}).
		Where("user_id = ?", userID).
		Update("bytes_used", gorm.Expr("bytes_used + ?", delta))
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
