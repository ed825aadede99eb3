package service

import (
	"context"

	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"
)

// Действия, известные модели прав.
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

// PermissionService вычисляет эффективный доступ пары (пользователь, файл).
// Проверки никогда не возвращают ошибок: любой внутренний сбой
// (отсутствующая запись, ошибка запроса) трактуется как отказ по
// данному правилу. Отсутствие свидетельства — отсутствие права.
type PermissionService struct {
	groups repo.GroupRepository
	shares repo.ShareRepository
}

// NewPermissionService создаёт сервис проверки прав.
func NewPermissionService(groups repo.GroupRepository, shares repo.ShareRepository) *PermissionService {
	return &PermissionService{groups: groups, shares: shares}
}

// правило 1: файл принадлежит группе пользователя, и собственный флаг
// файла разрешает действие
func (s *PermissionService) hasDirectPermission(ctx context.Context, userID int64, file *model.File, action string) bool {
	if file.GroupID == nil {
		return false
	}
	member, err := s.groups.IsMember(ctx, *file.GroupID, userID)
	if err != nil || !member {
		return false
	}
	return file.Permissions.Allows(action)
}

// правило 3: админ владеющей группы обходит явные флаги
func (s *PermissionService) isFileAdmin(ctx context.Context, userID int64, file *model.File) bool {
	if file.GroupID == nil {
		return false
	}
	admin, err := s.groups.IsAdmin(ctx, *file.GroupID, userID)
	return err == nil && admin
}

// правило 4: персональный грант с нужным флагом
func (s *PermissionService) hasUserFilePermission(ctx context.Context, userID int64, file *model.File, action string) bool {
	grant, err := s.shares.GetUserGrant(ctx, userID, file.ID)
	if err != nil || grant == nil {
		return false
	}
	return grant.Permissions.Allows(action)
}

// правило 5: грант любой из групп пользователя с нужным флагом
func (s *PermissionService) hasGroupFilePermission(ctx context.Context, userID int64, file *model.File, action string) bool {
	groups, err := s.groups.ListGroupsOf(ctx, userID)
	if err != nil || len(groups) == 0 {
		return false
	}
	ids := make([]string, 0, len(groups))
	for i := range groups {
		ids = append(ids, groups[i].ID)
	}
	grant, err := s.shares.FirstGroupGrantForGroups(ctx, file.ID, ids)
	if err != nil || grant == nil {
		return false
	}
	return grant.Permissions.Allows(action)
}

// HasPermission отвечает, разрешено ли пользователю действие над файлом.
// Правила проверяются по порядку, первое сработавшее завершает проверку;
// все они — чистые булевы условия, порядок влияет лишь на стоимость.
func (s *PermissionService) HasPermission(ctx context.Context, userID int64, file *model.File, action string) bool {
	if file == nil {
		return false
	}
	if s.hasDirectPermission(ctx, userID, file, action) {
		return true
	}
	if file.AuthorID == userID {
		return true
	}
	if s.isFileAdmin(ctx, userID, file) {
		return true
	}
	if s.hasUserFilePermission(ctx, userID, file, action) {
		return true
	}
	if s.hasGroupFilePermission(ctx, userID, file, action) {
		return true
	}
	return false
}

// CanRead/CanWrite/CanDelete — ярлыки для конкретных действий.
func (s *PermissionService) CanRead(ctx context.Context, userID int64, file *model.File) bool {
	return s.HasPermission(ctx, userID, file, ActionRead)
}

func (s *PermissionService) CanWrite(ctx context.Context, userID int64, file *model.File) bool {
	return s.HasPermission(ctx, userID, file, ActionWrite)
}

func (s *PermissionService) CanDelete(ctx context.Context, userID int64, file *model.File) bool {
	return s.HasPermission(ctx, userID, file, ActionDelete)
}

// CanAccess — хоть какой-то доступ к файлу.
func (s *PermissionService) CanAccess(ctx context.Context, userID int64, file *model.File) bool {
	return s.CanRead(ctx, userID, file) ||
		s.CanWrite(ctx, userID, file) ||
		s.CanDelete(ctx, userID, file)
}
