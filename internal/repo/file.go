package repo

import (
	"context"
	"errors"

	"GopherDrive/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileRepository — контракт доступа к узлам дерева файлов.
// Методы с суффиксом Many применяются к наборам узлов одним запросом:
// каскады (удаление, права) должны быть атомарными.
type FileRepository interface {
	CreateFile(ctx context.Context, file *model.File) error
	// GetFileByID возвращает живой (не удалённый) узел.
	GetFileByID(ctx context.Context, id string) (*model.File, error)
	// GetAnyFileByID возвращает узел независимо от флага удаления.
	GetAnyFileByID(ctx context.Context, id string) (*model.File, error)
	SaveFile(ctx context.Context, file *model.File) error

	// FolderExists — есть ли живая папка с таким именем под (parent, group).
	FolderExists(ctx context.Context, name string, parentID, groupID *string) (bool, error)
	// DocumentExists — есть ли живой документ с таким именем под (parent, author).
	DocumentExists(ctx context.Context, name string, parentID *string, authorID int64) (bool, error)

	// ChildrenOf — живые прямые дети узла, по имени.
	ChildrenOf(ctx context.Context, parentID string) ([]model.File, error)
	// AnyChildrenOf — прямые дети независимо от флага удаления:
	// безвозвратное удаление идёт из корзины, где поддерево уже помечено.
	AnyChildrenOf(ctx context.Context, parentID string) ([]model.File, error)

	SetModifiedByMany(ctx context.Context, ids []string, userID int64) error
	// SoftDeleteMany помечает набор узлов удалёнными и записывает, кто удалил.
	// Одна транзакция: поддерево не должно остаться удалённым наполовину.
	SoftDeleteMany(ctx context.Context, ids []string, userID int64) error
	SetPermissionsMany(ctx context.Context, ids []string, perms model.Permissions) error
	// DeleteFilesMany удаляет узлы и их гранты безвозвратно, одной транзакцией.
	DeleteFilesMany(ctx context.Context, ids []string) error

	ListPersonalRoot(ctx context.Context, userID int64) ([]model.File, error)
	ListGroupRoot(ctx context.Context, groupID string) ([]model.File, error)
	ListRecent(ctx context.Context, userID int64, limit int) ([]model.File, error)
	ListTrash(ctx context.Context, userID int64) ([]model.File, error)
	// RestoreTrash снимает флаг удаления с мусора пользователя; если ids
	// не пуст, ограничивается перечисленными узлами. Детей не трогает.
	RestoreTrash(ctx context.Context, userID int64, ids []string) error
}

type fileRepo struct {
	db *gorm.DB
}

// NewFileRepository создаёт реализацию репозитория для File.
func NewFileRepository(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) CreateFile(ctx context.Context, file *model.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(file).Error
}

func (r *fileRepo) GetFileByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_removed = ?", id, false).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) GetAnyFileByID(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) SaveFile(ctx context.Context, file *model.File) error {
	return r.db.WithContext(ctx).Save(file).Error
}

// withNullable добавляет условие "col = ?" либо "col IS NULL" для nullable-колонок.
func withNullable(tx *gorm.DB, col string, val *string) *gorm.DB {
	if val == nil {
		return tx.Where(col + " IS NULL")
	}
	return tx.Where(col+" = ?", *val)
}

func (r *fileRepo) FolderExists(ctx context.Context, name string, parentID, groupID *string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Where("name = ? AND is_removed = ? AND original_filename IS NULL", name, false)
	tx = withNullable(tx, "parent_id", parentID)
	tx = withNullable(tx, "group_id", groupID)

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *fileRepo) DocumentExists(ctx context.Context, name string, parentID *string, authorID int64) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Where("name = ? AND is_removed = ? AND original_filename IS NOT NULL AND author_id = ?",
			name, false, authorID)
	tx = withNullable(tx, "parent_id", parentID)

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *fileRepo) ChildrenOf(ctx context.Context, parentID string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("parent_id = ? AND is_removed = ?", parentID, false).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) AnyChildrenOf(ctx context.Context, parentID string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) SetModifiedByMany(ctx context.Context, ids []string, userID int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.File{}).
		Where("id IN ?", ids).
		Update("modified_by_id", userID).Error
}

func (r *fileRepo) SoftDeleteMany(ctx context.Context, ids []string, userID int64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&model.File{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"is_removed":     true,
				"modified_by_id": userID,
			}).Error
	})
}

func (r *fileRepo) SetPermissionsMany(ctx context.Context, ids []string, perms model.Permissions) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.File{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"can_read":   perms.CanRead,
			"can_write":  perms.CanWrite,
			"can_delete": perms.CanDelete,
		}).Error
}

func (r *fileRepo) DeleteFilesMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("file_id IN ?", ids).Delete(&model.GroupFile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("file_id IN ?", ids).Delete(&model.UserFile{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.File{}).Error
	})
}

func (r *fileRepo) ListPersonalRoot(ctx context.Context, userID int64) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND group_id IS NULL AND parent_id IS NULL AND is_removed = ?", userID, false).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) ListGroupRoot(ctx context.Context, groupID string) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND parent_id IS NULL AND is_removed = ?", groupID, false).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) ListRecent(ctx context.Context, userID int64, limit int) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND group_id IS NULL AND parent_id IS NULL AND is_removed = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) ListTrash(ctx context.Context, userID int64) ([]model.File, error) {
	var files []model.File
	err := r.db.WithContext(ctx).
		Where("modified_by_id = ? AND is_removed = ?", userID, true).
		Order("name").
		Find(&files).Error
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (r *fileRepo) RestoreTrash(ctx context.Context, userID int64, ids []string) error {
	tx := r.db.WithContext(ctx).Model(&model.File{}).
		Where("modified_by_id = ? AND is_removed = ?", userID, true)
	if len(ids) > 0 {
		tx = tx.Where("id IN ?", ids)
	}
	err := tx.Update("is_removed", false).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
