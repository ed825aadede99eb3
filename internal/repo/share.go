package repo

import (
	"context"
	"errors"

	"GopherDrive/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShareRepository — контракт доступа к грантам (GroupFile/UserFile).
type ShareRepository interface {
	GetGroupGrant(ctx context.Context, groupID, fileID string) (*model.GroupFile, error)
	GetUserGrant(ctx context.Context, userID int64, fileID string) (*model.UserFile, error)

	// CreateGroupGrants вставляет набор грантов одной транзакцией.
	CreateGroupGrants(ctx context.Context, grants []model.GroupFile) error
	CreateUserGrants(ctx context.Context, grants []model.UserFile) error

	DeleteGroupGrants(ctx context.Context, groupID string, fileIDs []string) error
	DeleteUserGrants(ctx context.Context, userID int64, fileIDs []string) error

	GroupGrantsForFile(ctx context.Context, fileID string) ([]model.GroupFile, error)
	UserGrantsForFile(ctx context.Context, fileID string) ([]model.UserFile, error)

	// FirstGroupGrantForGroups — первый грант на файл для любой из групп.
	FirstGroupGrantForGroups(ctx context.Context, fileID string, groupIDs []string) (*model.GroupFile, error)

	// ListUserSharedTopLevel — живые узлы верхнего уровня с грантом на пользователя.
	ListUserSharedTopLevel(ctx context.Context, userID int64) ([]model.File, error)
	// ListGroupSharedTopLevel — живые узлы верхнего уровня с грантом на группу.
	ListGroupSharedTopLevel(ctx context.Context, groupID string) ([]model.File, error)

	// SharedFileIDs — id файлов, на которые есть хоть один грант, из заданного набора.
	SharedFileIDs(ctx context.Context, fileIDs []string) (map[string]bool, error)

	// Выборки для пикеров «с кем поделиться»: группы/люди с грантом
	// на файл и их дополнение.
	ListSharedGroups(ctx context.Context, fileID string) ([]model.Group, error)
	ListNonSharedGroups(ctx context.Context, fileID string) ([]model.Group, error)
	ListSharedUsers(ctx context.Context, fileID string) ([]model.User, error)
	ListNonSharedUsers(ctx context.Context, fileID string) ([]model.User, error)
}

type shareRepo struct {
	db *gorm.DB
}

// NewShareRepository создаёт реализацию репозитория для грантов.
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &shareRepo{db: db}
}

func (r *shareRepo) GetGroupGrant(ctx context.Context, groupID, fileID string) (*model.GroupFile, error) {
	var g model.GroupFile
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND file_id = ?", groupID, fileID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *shareRepo) GetUserGrant(ctx context.Context, userID int64, fileID string) (*model.UserFile, error) {
	var u model.UserFile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND file_id = ?", userID, fileID).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *shareRepo) CreateGroupGrants(ctx context.Context, grants []model.GroupFile) error {
	if len(grants) == 0 {
		return nil
	}
	for i := range grants {
		if grants[i].ID == "" {
			grants[i].ID = uuid.NewString()
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&grants).Error
	})
}

func (r *shareRepo) CreateUserGrants(ctx context.Context, grants []model.UserFile) error {
	if len(grants) == 0 {
		return nil
	}
	for i := range grants {
		if grants[i].ID == "" {
			grants[i].ID = uuid.NewString()
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&grants).Error
	})
}

func (r *shareRepo) DeleteGroupGrants(ctx context.Context, groupID string, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("group_id = ? AND file_id IN ?", groupID, fileIDs).
		Delete(&model.GroupFile{}).Error
}

func (r *shareRepo) DeleteUserGrants(ctx context.Context, userID int64, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("user_id = ? AND file_id IN ?", userID, fileIDs).
		Delete(&model.UserFile{}).Error
}

func (r *shareRepo) GroupGrantsForFile(ctx context.Context, fileID string) ([]model.GroupFile, error) {
	var grants []model.GroupFile
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *shareRepo) UserGrantsForFile(ctx context.Context, fileID string) ([]model.UserFile, error) {
	var grants []model.UserFile
	err := r.db.WithContext(ctx).
		Where("file_id = ?", fileID).
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

func (r *shareRepo) FirstGroupGrantForGroups(ctx context.Context, fileID string, groupIDs []string) (*model.GroupFile, error) {
	if len(groupIDs) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	var g model.GroupFile
	err := r.db.WithContext(ctx).
		Where("file_id = ? AND group_id IN ?", fileID, groupIDs).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *shareRepo) ListUserSharedTopLevel(ctx context.Context, userID int64) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Joins("JOIN user_files uf ON uf.file_id = files.id").
		Where("uf.user_id = ? AND files.parent_id IS NULL AND files.is_removed = ?", userID, false).
		Order("files.name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *shareRepo) ListGroupSharedTopLevel(ctx context.Context, groupID string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Joins("JOIN group_files gf ON gf.file_id = files.id").
		Where("gf.group_id = ? AND files.parent_id IS NULL AND files.is_removed = ?", groupID, false).
		Order("files.name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *shareRepo) ListSharedGroups(ctx context.Context, fileID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_files gf ON gf.group_id = groups.id").
		Where("gf.file_id = ? AND groups.is_removed = ?", fileID, false).
		Order("groups.name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *shareRepo) ListNonSharedGroups(ctx context.Context, fileID string) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.WithContext(ctx).
		Where("is_removed = ?", false).
		Where("id NOT IN (?)", r.db.Model(&model.GroupFile{}).Select("group_id").Where("file_id = ?", fileID)).
		Order("name").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *shareRepo) ListSharedUsers(ctx context.Context, fileID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_files uf ON uf.user_id = users.id").
		Where("uf.file_id = ?", fileID).
		Order("users.login").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *shareRepo) ListNonSharedUsers(ctx context.Context, fileID string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Where("id NOT IN (?)", r.db.Model(&model.UserFile{}).Select("user_id").Where("file_id = ?", fileID)).
		Order("login").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *shareRepo) SharedFileIDs(ctx context.Context, fileIDs []string) (map[string]bool, error) {
	shared := make(map[string]bool, len(fileIDs))
	if len(fileIDs) == 0 {
		return shared, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.GroupFile{}).
		Where("file_id IN ?", fileIDs).
		Distinct().
		Pluck("file_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		shared[id] = true
	}
	ids = ids[:0]
	err = r.db.WithContext(ctx).Model(&model.UserFile{}).
		Where("file_id IN ?", fileIDs).
		Distinct().
		Pluck("file_id", &ids).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared, nil
	}
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		shared[id] = true
	}
	return shared, nil
}
