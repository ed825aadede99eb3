package model

import "time"

// GroupFile — шара узла на группу. Пара (group, file) уникальна.
// Запись не владеет файлом: это отдельный грант с собственной тройкой прав.
type GroupFile struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_group_file"`
	FileID  string `gorm:"type:uuid;not null;uniqueIndex:idx_group_file"`

	Permissions `gorm:"embedded"`

	SharedByID *int64 // кто выдал шару

	Group *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	File  *File  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// UserFile — шара узла на отдельного пользователя. Пара (user, file) уникальна.
type UserFile struct {
	ID     string `gorm:"primaryKey;type:uuid"`
	UserID int64  `gorm:"not null;uniqueIndex:idx_user_file"`
	FileID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_file"`

	Permissions `gorm:"embedded"`

	SharedByID *int64

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	File *File `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
