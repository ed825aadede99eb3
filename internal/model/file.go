package model

import "time"

// Permissions — тройка прав доступа. Используется и на самом узле,
// и на выданных шарах (GroupFile/UserFile). Колонки без default:
// gorm при default не пишет нулевые значения в INSERT, и выключенный
// флаг превращался бы во включённый. Значения по умолчанию задаёт
// DefaultPermissions на стороне кода.
type Permissions struct {
	CanRead   bool `gorm:"not null"`
	CanWrite  bool `gorm:"not null"`
	CanDelete bool `gorm:"not null"`
}

// DefaultPermissions — права нового узла: чтение и запись, без удаления.
func DefaultPermissions() Permissions {
	return Permissions{CanRead: true, CanWrite: true, CanDelete: false}
}

// Access возвращает строку вида "RWD" по установленным флагам.
func (p Permissions) Access() string {
	s := ""
	if p.CanRead {
		s += "R"
	}
	if p.CanWrite {
		s += "W"
	}
	if p.CanDelete {
		s += "D"
	}
	return s
}

// Allows сообщает, разрешено ли действие action ("read"|"write"|"delete").
func (p Permissions) Allows(action string) bool {
	switch action {
	case "read":
		return p.CanRead
	case "write":
		return p.CanWrite
	case "delete":
		return p.CanDelete
	}
	return false
}

// File — узел дерева: папка или документ.
// Дискриминатор типа — OriginalFilename: nil означает папку.
type File struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Name        string `gorm:"not null"`
	Description string

	BlobHandle       *string // ссылка на содержимое в blob-хранилище
	OriginalFilename *string // nil ⇒ папка, иначе документ

	ParentID *string `gorm:"type:uuid;index"`
	Parent   *File   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	GroupID *string `gorm:"type:uuid;index"` // nil ⇒ личный файл
	Group   *Group  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	AuthorID     int64 `gorm:"not null;index"`
	ModifiedByID int64 `gorm:"not null;index"`

	Published   bool `gorm:"not null;default:false"`
	Permissions `gorm:"embedded"`

	IsRemoved bool `gorm:"not null;default:false;index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// IsFolder — узел без исходного имени файла считается папкой.
func (f *File) IsFolder() bool { return f.OriginalFilename == nil }

// IsDocument — узел с загруженным содержимым.
func (f *File) IsDocument() bool { return f.OriginalFilename != nil }

// IsRoot — узел верхнего уровня (без родителя).
func (f *File) IsRoot() bool { return f.ParentID == nil }

// HasGroup сообщает, принадлежит ли узел группе.
func (f *File) HasGroup() bool { return f.GroupID != nil }
