package service

import (
	"context"
	"errors"
	"fmt"

	"GopherDrive/internal/blob"
	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"

	"gorm.io/gorm"
)

// maxTreeDepth ограничивает обход по цепочке предков. Конструирующие
// операции циклов не создают; упереться в лимит можно только при
// повреждённых данных — это ErrInvalidState, а не рабочий сценарий.
const maxTreeDepth = 256

// TreeService — операции над деревом папок и документов.
type TreeService struct {
	files   repo.FileRepository
	blobs   blob.Store
	storage repo.StorageRepository
	sharing *SharingService
}

// NewTreeService создаёт сервис дерева. sharing нужен для автокаскада шар
// на свежесозданные узлы внутри уже расшаренных папок.
func NewTreeService(files repo.FileRepository, blobs blob.Store, storage repo.StorageRepository, sharing *SharingService) *TreeService {
	return &TreeService{files: files, blobs: blobs, storage: storage, sharing: sharing}
}

// GetFile возвращает живой узел либо ErrNotFound.
func (s *TreeService) GetFile(ctx context.Context, id string) (*model.File, error) {
	f, err := s.files.GetFileByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// GetAnyFile возвращает узел независимо от флага удаления (для корзины).
func (s *TreeService) GetAnyFile(ctx context.Context, id string) (*model.File, error) {
	f, err := s.files.GetAnyFileByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// CreateFolder создаёт папку под (parent, group). Живой сосед-папка
// с тем же именем — ErrDuplicateEntry.
func (s *TreeService) CreateFolder(ctx context.Context, name string, parentID, groupID *string, authorID int64) (*model.File, error) {
	if parentID != nil {
		if _, err := s.GetFile(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	exists, err := s.files.FolderExists(ctx, name, parentID, groupID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("folder %q: %w", name, ErrDuplicateEntry)
	}

	folder := &model.File{
		Name:         name,
		ParentID:     parentID,
		GroupID:      groupID,
		AuthorID:     authorID,
		ModifiedByID: authorID,
		Permissions:  model.DefaultPermissions(),
	}
	if err := s.files.CreateFile(ctx, folder); err != nil {
		return nil, err
	}
	if err := s.Touch(ctx, folder, authorID); err != nil {
		return nil, err
	}
	if err := s.sharing.CascadeShare(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// CreateDocument создаёт документ с уже записанным blob-содержимым.
// Живой документ-сосед того же автора с тем же именем — ErrDuplicateEntry.
// Использованные байты списываются с квоты автора как побочный эффект.
func (s *TreeService) CreateDocument(ctx context.Context, name string, parentID, groupID *string, authorID int64, blobHandle, originalFilename string, sizeBytes int64) (*model.File, error) {
	if parentID != nil {
		if _, err := s.GetFile(ctx, *parentID); err != nil {
			return nil, err
		}
	}
	exists, err := s.files.DocumentExists(ctx, name, parentID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("document %q: %w", name, ErrDuplicateEntry)
	}

	doc := &model.File{
		Name:             name,
		ParentID:         parentID,
		GroupID:          groupID,
		AuthorID:         authorID,
		ModifiedByID:     authorID,
		BlobHandle:       &blobHandle,
		OriginalFilename: &originalFilename,
		Permissions:      model.DefaultPermissions(),
	}
	if err := s.files.CreateFile(ctx, doc); err != nil {
		// запись в дереве не состоялась — blob не должен остаться сиротой
		_ = s.blobs.Delete(blobHandle)
		return nil, err
	}
	if err := s.storage.AddUsage(ctx, authorID, sizeBytes); err != nil {
		return nil, err
	}
	if err := s.Touch(ctx, doc, authorID); err != nil {
		return nil, err
	}
	if err := s.sharing.CascadeShare(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ancestorIDs собирает id предков узла снизу вверх, не включая сам узел.
// Явный итеративный подъём с ограничением глубины вместо рекурсии.
func (s *TreeService) ancestorIDs(ctx context.Context, file *model.File) ([]string, error) {
	var ids []string
	parentID := file.ParentID
	for depth := 0; parentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("ancestor chain of %s exceeds %d: %w", file.ID, maxTreeDepth, ErrInvalidState)
		}
		parent, err := s.files.GetAnyFileByID(ctx, *parentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		ids = append(ids, parent.ID)
		parentID = parent.ParentID
	}
	return ids, nil
}

// Touch проставляет modified_by на узле и всех его предках до корня:
// папка отражает последнее изменение в любом месте под ней.
func (s *TreeService) Touch(ctx context.Context, file *model.File, userID int64) error {
	ids, err := s.ancestorIDs(ctx, file)
	if err != nil {
		return err
	}
	ids = append(ids, file.ID)
	file.ModifiedByID = userID
	return s.files.SetModifiedByMany(ctx, ids, userID)
}

// Move переносит узел под нового родителя. Перенос под собственного
// потомка создал бы цикл — это ErrInvalidState. Уникальность имени в
// точке назначения не перепроверяется.
func (s *TreeService) Move(ctx context.Context, id string, newParentID *string, userID int64) (*model.File, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	if newParentID != nil {
		dest, err := s.GetFile(ctx, *newParentID)
		if err != nil {
			return nil, err
		}
		if dest.ID == file.ID {
			return nil, fmt.Errorf("move %s into itself: %w", file.ID, ErrInvalidState)
		}
		destAncestors, err := s.ancestorIDs(ctx, dest)
		if err != nil {
			return nil, err
		}
		for _, aid := range destAncestors {
			if aid == file.ID {
				return nil, fmt.Errorf("move %s under its descendant: %w", file.ID, ErrInvalidState)
			}
		}
	}
	file.ParentID = newParentID
	if err := s.files.SaveFile(ctx, file); err != nil {
		return nil, err
	}
	return file, s.Touch(ctx, file, userID)
}

// Rename меняет имя узла.
func (s *TreeService) Rename(ctx context.Context, id, newName string, userID int64) (*model.File, error) {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return nil, err
	}
	file.Name = newName
	if err := s.files.SaveFile(ctx, file); err != nil {
		return nil, err
	}
	return file, s.Touch(ctx, file, userID)
}

// Children возвращает детей узла по имени; при direct=false — всё
// поддерево: сначала прямые дети, затем их поддеревья в том же порядке.
func (s *TreeService) Children(ctx context.Context, id string, direct bool) ([]model.File, error) {
	if direct {
		return s.files.ChildrenOf(ctx, id)
	}
	return collectSubtree(ctx, s.files, id)
}

// collectSubtree — итеративный обход живого поддерева в ширину, без самого корня.
func collectSubtree(ctx context.Context, files repo.FileRepository, rootID string) ([]model.File, error) {
	return walkSubtree(ctx, rootID, files.ChildrenOf)
}

// walkSubtree обходит поддерево в ширину через переданный запрос детей.
// Лимит глубины ловит повреждённые данные вместо бесконечного цикла.
func walkSubtree(ctx context.Context, rootID string, childrenOf func(context.Context, string) ([]model.File, error)) ([]model.File, error) {
	frontier, err := childrenOf(ctx, rootID)
	if err != nil {
		return nil, err
	}
	all := make([]model.File, 0, len(frontier))
	all = append(all, frontier...)
	for depth := 0; len(frontier) > 0; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("subtree of %s deeper than %d: %w", rootID, maxTreeDepth, ErrInvalidState)
		}
		var next []model.File
		for _, f := range frontier {
			if f.IsDocument() {
				continue
			}
			sub, err := childrenOf(ctx, f.ID)
			if err != nil {
				return nil, err
			}
			next = append(next, sub...)
		}
		all = append(all, next...)
		frontier = next
	}
	return all, nil
}

// Size: для документа — фактический размер blob, для папки — сумма по
// всему поддереву. Никогда не кешируется, пересчитывается на каждый вызов.
func (s *TreeService) Size(ctx context.Context, file *model.File) (int64, error) {
	if file.IsDocument() {
		if file.BlobHandle == nil {
			return 0, fmt.Errorf("document %s without blob: %w", file.ID, ErrInvalidState)
		}
		size, err := s.blobs.Size(*file.BlobHandle)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrStorageBackend, err)
		}
		return size, nil
	}
	descendants, err := s.Children(ctx, file.ID, false)
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range descendants {
		d := &descendants[i]
		if d.IsDocument() && d.BlobHandle != nil {
			size, err := s.blobs.Size(*d.BlobHandle)
			if err != nil {
				return 0, fmt.Errorf("%w: %v", ErrStorageBackend, err)
			}
			total += size
		}
	}
	return total, nil
}

// SoftDelete помечает узел и всё его поддерево удалёнными: дети раньше
// родителя, весь каскад — одной атомарной операцией.
func (s *TreeService) SoftDelete(ctx context.Context, id string, userID int64) error {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}
	descendants, err := s.Children(ctx, file.ID, false)
	if err != nil {
		return err
	}
	// дети перед родителем
	ids := make([]string, 0, len(descendants)+1)
	for i := len(descendants) - 1; i >= 0; i-- {
		ids = append(ids, descendants[i].ID)
	}
	ids = append(ids, file.ID)
	return s.files.SoftDeleteMany(ctx, ids, userID)
}

// PermanentDelete безвозвратно удаляет узел с поддеревом, освобождает
// blob каждого документа и возвращает байты в квоты авторов.
// Вызывается только из корзины.
func (s *TreeService) PermanentDelete(ctx context.Context, id string) error {
	file, err := s.files.GetAnyFileByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	// поддерево собирается без фильтра удаления: узел приходит из
	// корзины, и его дети уже помечены удалёнными
	descendants, err := walkSubtree(ctx, file.ID, s.files.AnyChildrenOf)
	if err != nil {
		return err
	}
	nodes := append(descendants, *file)

	ids := make([]string, 0, len(nodes))
	for i := range nodes {
		ids = append(ids, nodes[i].ID)
	}
	if err := s.files.DeleteFilesMany(ctx, ids); err != nil {
		return err
	}

	// строки удалены; освобождение blob и возврат квоты идут следом,
	// сбой отдельного blob не воскрешает запись
	for i := range nodes {
		n := &nodes[i]
		if !n.IsDocument() || n.BlobHandle == nil {
			continue
		}
		size, err := s.blobs.Size(*n.BlobHandle)
		if err == nil && size > 0 {
			_ = s.storage.AddUsage(ctx, n.AuthorID, -size)
		}
		_ = s.blobs.Delete(*n.BlobHandle)
	}
	return nil
}

// Restore снимает флаг удаления только с самого узла. Дети, удалённые
// вместе с ним или независимо, остаются в корзине.
func (s *TreeService) Restore(ctx context.Context, id string) (*model.File, error) {
	file, err := s.files.GetAnyFileByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	file.IsRemoved = false
	if err := s.files.SaveFile(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// CascadePermission копирует тройку прав папки на каждый узел поддерева.
// Наследование явное и энергичное: права не выводятся от предков при
// чтении, а записываются вниз в момент изменения.
func (s *TreeService) CascadePermission(ctx context.Context, id string, perms model.Permissions) error {
	file, err := s.GetFile(ctx, id)
	if err != nil {
		return err
	}
	// корень и поддерево обновляются одним запросом: каскад не должен
	// остаться применённым наполовину
	ids := []string{file.ID}
	if file.IsFolder() {
		descendants, err := s.Children(ctx, file.ID, false)
		if err != nil {
			return err
		}
		for i := range descendants {
			ids = append(ids, descendants[i].ID)
		}
	}
	return s.files.SetPermissionsMany(ctx, ids, perms)
}
