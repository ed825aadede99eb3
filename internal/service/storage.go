package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"

	"gorm.io/gorm"
)

// Статусы заполненности квоты.
const (
	StorageOK       = "ok"       // < 60%
	StorageWarning  = "warning"  // 60–89%
	StorageCritical = "critical" // 90–100%
)

// StorageService — учёт занятого места и квоты.
type StorageService struct {
	storage repo.StorageRepository
}

// NewStorageService создаёт сервис учёта квот.
func NewStorageService(storage repo.StorageRepository) *StorageService {
	return &StorageService{storage: storage}
}

// GetUsage возвращает запись квоты пользователя.
func (s *StorageService) GetUsage(ctx context.Context, userID int64) (*model.UserStorage, error) {
	u, err := s.storage.GetByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// IncreaseUsage прибавляет bytes к занятому месту пользователя.
func (s *StorageService) IncreaseUsage(ctx context.Context, userID int64, bytes int64) error {
	err := s.storage.AddUsage(ctx, userID, bytes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ReduceUsage вычитает bytes из занятого места пользователя.
func (s *StorageService) ReduceUsage(ctx context.Context, userID int64, bytes int64) error {
	err := s.storage.AddUsage(ctx, userID, -bytes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Fits сообщает, поместится ли загрузка размером bytes в квоту.
func (s *StorageService) Fits(ctx context.Context, userID int64, bytes int64) (bool, error) {
	u, err := s.GetUsage(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.BytesUsed+bytes <= u.BytesTotal, nil
}

// Percentage — занятая доля квоты, округление вверх до целого процента.
func Percentage(u *model.UserStorage) int {
	if u.BytesTotal == 0 {
		return 0
	}
	return int(math.Ceil(float64(u.BytesUsed) / float64(u.BytesTotal) * 100))
}

// Status переводит процент в метку ok/warning/critical. Значение вне
// [0,100] — дефект учёта, сигнализируется ошибкой, а не зажимается.
func Status(u *model.UserStorage) (string, error) {
	p := Percentage(u)
	switch {
	case p >= 0 && p < 60:
		return StorageOK, nil
	case p >= 60 && p < 90:
		return StorageWarning, nil
	case p >= 90 && p <= 100:
		return StorageCritical, nil
	}
	return "", fmt.Errorf("storage percentage %d out of range: %w", p, ErrInvalidState)
}

// HumanBytes — человекочитаемый размер для выдачи наружу.
func HumanBytes(size int64) string {
	const unit = 1024.0
	n := float64(size)
	for _, label := range []string{"bytes", "KB", "MB", "GB", "TB"} {
		if n < unit {
			if label == "bytes" {
				return fmt.Sprintf("%d %s", size, label)
			}
			return fmt.Sprintf("%.1f %s", n, label)
		}
		n /= unit
	}
	return fmt.Sprintf("%.1f PB", n)
}
