package service

import (
	"context"
	"errors"

	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"

	"gorm.io/gorm"
)

// GroupService — реестр групп и членства.
type GroupService struct {
	groups repo.GroupRepository
}

// NewGroupService создаёт сервис групп.
func NewGroupService(groups repo.GroupRepository) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroup регистрирует новую группу.
func (s *GroupService) CreateGroup(ctx context.Context, name, description string, isPublic bool) (*model.Group, error) {
	return s.groups.CreateGroup(ctx, &model.Group{
		Name:        name,
		Description: description,
		IsPublic:    isPublic,
	})
}

// GetGroup возвращает живую группу либо ErrNotFound.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	g, err := s.groups.GetGroupByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// AddMember добавляет пользователя в группу; повторное добавление — no-op.
func (s *GroupService) AddMember(ctx context.Context, groupID string, userID int64) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}
	return s.groups.AddMember(ctx, groupID, userID)
}

// AddMembers — пакетное добавление.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, userIDs []int64) error {
	for _, id := range userIDs {
		if err := s.AddMember(ctx, groupID, id); err != nil {
			return err
		}
	}
	return nil
}

// RemoveMember исключает пользователя; если он не состоял — no-op.
func (s *GroupService) RemoveMember(ctx context.Context, groupID string, userID int64) error {
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// RemoveMembers — пакетное исключение.
func (s *GroupService) RemoveMembers(ctx context.Context, groupID string, userIDs []int64) error {
	for _, id := range userIDs {
		if err := s.RemoveMember(ctx, groupID, id); err != nil {
			return err
		}
	}
	return nil
}

// SetAdmin ставит или снимает admin-бит на ребре членства.
func (s *GroupService) SetAdmin(ctx context.Context, groupID string, userID int64, isAdmin bool) error {
	err := s.groups.SetAdmin(ctx, groupID, userID, isAdmin)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// IsGroupMember сообщает, состоит ли пользователь в группе.
func (s *GroupService) IsGroupMember(ctx context.Context, groupID string, userID int64) (bool, error) {
	return s.groups.IsMember(ctx, groupID, userID)
}

// IsGroupAdmin сообщает, админ ли пользователь в группе.
func (s *GroupService) IsGroupAdmin(ctx context.Context, groupID string, userID int64) (bool, error) {
	return s.groups.IsAdmin(ctx, groupID, userID)
}

// GroupsVisibleTo — группы, где пользователь состоит, плюс публичные.
func (s *GroupService) GroupsVisibleTo(ctx context.Context, userID int64) ([]model.Group, error) {
	return s.groups.ListVisibleTo(ctx, userID)
}

// Members — членство группы с admin-битами.
func (s *GroupService) Members(ctx context.Context, groupID string) ([]model.UserGroup, error) {
	return s.groups.ListMembers(ctx, groupID)
}

// NonMembers — пользователи вне группы, кандидаты на добавление.
func (s *GroupService) NonMembers(ctx context.Context, groupID string) ([]model.User, error) {
	return s.groups.ListNonMembers(ctx, groupID)
}
