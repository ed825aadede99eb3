package service

import (
	"context"
	"errors"
	"sort"

	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"
)

// recentLimit — сколько элементов отдаёт «недавнее».
const recentLimit = 5

// Entry — файл в выдаче листинга с транзиентной пометкой «расшарен».
// Пометка вычисляется на время запроса и не сохраняется на самой записи.
type Entry struct {
	model.File
	Shared bool
}

// ListingService — выборки «мои файлы», «расшарено мне», «недавнее», корзина.
type ListingService struct {
	files  repo.FileRepository
	shares repo.ShareRepository
	groups repo.GroupRepository
	tree   *TreeService
}

// NewListingService создаёт сервис листинга.
func NewListingService(files repo.FileRepository, shares repo.ShareRepository, groups repo.GroupRepository, tree *TreeService) *ListingService {
	return &ListingService{files: files, shares: shares, groups: groups, tree: tree}
}

// annotate оборачивает файлы в Entry, помечая те, на которые есть гранты.
func (s *ListingService) annotate(ctx context.Context, files []model.File) ([]Entry, error) {
	ids := make([]string, 0, len(files))
	for i := range files {
		ids = append(ids, files[i].ID)
	}
	shared, err := s.shares.SharedFileIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for i := range files {
		entries = append(entries, Entry{File: files[i], Shared: shared[files[i].ID]})
	}
	return entries, nil
}

// ForPerson — личные узлы верхнего уровня пользователя (без группы).
func (s *ListingService) ForPerson(ctx context.Context, userID int64) ([]Entry, error) {
	files, err := s.files.ListPersonalRoot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, files)
}

// ForGroup — узлы верхнего уровня, принадлежащие группе.
func (s *ListingService) ForGroup(ctx context.Context, groupID string) ([]Entry, error) {
	files, err := s.files.ListGroupRoot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, files)
}

// GetShared — объединение узлов верхнего уровня, расшаренных пользователю
// напрямую и через его группы. Дубликаты схлопываются ПО ИМЕНИ (поздний
// побеждает), результат отсортирован по алфавиту.
func (s *ListingService) GetShared(ctx context.Context, userID int64) ([]Entry, error) {
	userFiles, err := s.shares.ListUserSharedTopLevel(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups, err := s.groups.ListGroupsOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	groupFiles := make([]model.File, 0)
	for i := range groups {
		fs, err := s.shares.ListGroupSharedTopLevel(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groupFiles = append(groupFiles, fs...)
	}

	unique := make(map[string]model.File, len(userFiles)+len(groupFiles))
	for _, f := range userFiles {
		unique[f.Name] = f
	}
	for _, f := range groupFiles {
		unique[f.Name] = f
	}

	entries := make([]Entry, 0, len(unique))
	for _, f := range unique {
		entries = append(entries, Entry{File: f, Shared: true})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// GetRecent — пять последних созданных личных узлов верхнего уровня.
func (s *ListingService) GetRecent(ctx context.Context, userID int64) ([]Entry, error) {
	files, err := s.files.ListRecent(ctx, userID, recentLimit)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, files)
}

// GetTrash — удалённые узлы, последним трогал которые данный пользователь,
// независимо от владельца.
func (s *ListingService) GetTrash(ctx context.Context, userID int64) ([]Entry, error) {
	files, err := s.files.ListTrash(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(files))
	for i := range files {
		entries = append(entries, Entry{File: files[i]})
	}
	return entries, nil
}

// EmptyTrash безвозвратно удаляет всё содержимое корзины пользователя
// вместе с blob каждого документа.
func (s *ListingService) EmptyTrash(ctx context.Context, userID int64) error {
	items, err := s.files.ListTrash(ctx, userID)
	if err != nil {
		return err
	}
	for i := range items {
		// элемент мог уйти вместе с поддеревом предыдущего
		if err := s.tree.PermanentDelete(ctx, items[i].ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// RestoreTrash возвращает из корзины все узлы пользователя.
// Как и Restore, на детей не каскадирует.
func (s *ListingService) RestoreTrash(ctx context.Context, userID int64) error {
	return s.files.RestoreTrash(ctx, userID, nil)
}

// RestoreFiles возвращает из корзины перечисленные узлы пользователя.
func (s *ListingService) RestoreFiles(ctx context.Context, userID int64, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.files.RestoreTrash(ctx, userID, ids)
}
