package repo

import (
	"context"
	"errors"

	"GopherDrive/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GroupRepository — контракт доступа к группам и членству.
type GroupRepository interface {
	CreateGroup(ctx context.Context, group *model.Group) (*model.Group, error)
	GetGroupByID(ctx context.Context, id string) (*model.Group, error)

	// AddMember — no-op, если пользователь уже состоит в группе.
	AddMember(ctx context.Context, groupID string, userID int64) error
	// RemoveMember — no-op, если пользователь не состоит в группе.
	RemoveMember(ctx context.Context, groupID string, userID int64) error
	SetAdmin(ctx context.Context, groupID string, userID int64, isAdmin bool) error

	IsMember(ctx context.Context, groupID string, userID int64) (bool, error)
	IsAdmin(ctx context.Context, groupID string, userID int64) (bool, error)

	ListMembers(ctx context.Context, groupID string) ([]model.UserGroup, error)
	// ListNonMembers — пользователи вне группы (пикер «кого добавить»).
	ListNonMembers(ctx context.Context, groupID string) ([]model.User, error)
	// ListGroupsOf — группы, где пользователь состоит членом.
	ListGroupsOf(ctx context.Context, userID int64) ([]model.Group, error)
	// ListVisibleTo — группы пользователя плюс публичные.
	ListVisibleTo(ctx context.Context, userID int64) ([]model.Group, error)
}

type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepository создаёт реализацию репозитория для Group.
func NewGroupRepository(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) CreateGroup(ctx context.Context, group *model.Group) (*model.Group, error) {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return nil, err
	}
	return group, nil
}

func (r *groupRepo) GetGroupByID(ctx context.Context, id string) (*model.Group, error) {
	var g model.Group
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_removed = ?", id, false).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *groupRepo) AddMember(ctx context.Context, groupID string, userID int64) error {
	member, err := r.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}
	ug := &model.UserGroup{ID: uuid.NewString(), GroupID: groupID, UserID: userID}
	return r.db.WithContext(ctx).Create(ug).Error
}

func (r *groupRepo) RemoveMember(ctx context.Context, groupID string, userID int64) error {
	return r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&model.UserGroup{}).Error
}

func (r *groupRepo) SetAdmin(ctx context.Context, groupID string, userID int64, isAdmin bool) error {
	tx := r.db.WithContext(ctx).Model(&model.UserGroup{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("is_admin", isAdmin)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *groupRepo) IsMember(ctx context.Context, groupID string, userID int64) (bool, error) {
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&model.UserGroup{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *groupRepo) IsAdmin(ctx context.Context, groupID string, userID int64) (bool, error) {
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ? AND is_admin = ?", groupID, userID, true).
		First(&model.UserGroup{}).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *groupRepo) ListMembers(ctx context.Context, groupID string) ([]model.UserGroup, error) {
	var members []model.UserGroup
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", groupID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *groupRepo) ListNonMembers(ctx context.Context, groupID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("id NOT IN (?)", r.db.Model(&model.UserGroup{}).Select("user_id").Where("group_id = ?", groupID)).
		Order("login").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *groupRepo) ListGroupsOf(ctx context.Context, userID int64) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN user_groups ug ON ug.group_id = groups.id").
		Where("ug.user_id = ? AND groups.is_removed = ?", userID, false).
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *groupRepo) ListVisibleTo(ctx context.Context, userID int64) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Distinct("groups.*").
		Joins("LEFT JOIN user_groups ug ON ug.group_id = groups.id AND ug.user_id = ?", userID).
		Where("groups.is_removed = ?", false).
		Where("ug.user_id IS NOT NULL OR groups.is_public = ?", true).
		Order("groups.name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}
