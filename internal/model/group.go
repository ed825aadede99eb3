package model

import "time"

// Group — группа пользователей, может владеть файлами.
type Group struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Name        string `gorm:"not null"`
	Description string
	IsPublic    bool `gorm:"not null;default:false"`
	IsRemoved   bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// UserGroup — членство пользователя в группе; admin-бит на ребре связи.
type UserGroup struct {
	ID      string `gorm:"primaryKey;type:uuid"`
	UserID  int64  `gorm:"not null;uniqueIndex:idx_user_group"`
	GroupID string `gorm:"type:uuid;not null;uniqueIndex:idx_user_group"`
	IsAdmin bool   `gorm:"not null;default:false"`

	User  *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Group *Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
