package model

import "time"

// User — учётная запись пользователя сервиса.
type User struct {
	ID       int64  `gorm:"primaryKey"`
	Login    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt-хеш, не исходный пароль

	Storage *UserStorage `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// UserStorage — квота пользователя, одна запись на пользователя.
// Создаётся автоматически при регистрации.
type UserStorage struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	UserID     int64  `gorm:"uniqueIndex;not null"`
	BytesUsed  int64  `gorm:"not null;default:0"`
	BytesTotal int64  `gorm:"not null;default:0"`
}
