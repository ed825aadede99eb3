package service

import (
	"context"
	"errors"
	"fmt"

	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"

	"gorm.io/gorm"
)

// SharingService — выдача и отзыв шар с каскадом по поддереву.
type SharingService struct {
	files  repo.FileRepository
	shares repo.ShareRepository
	groups repo.GroupRepository
}

// NewSharingService создаёт сервис шаринга.
func NewSharingService(files repo.FileRepository, shares repo.ShareRepository, groups repo.GroupRepository) *SharingService {
	return &SharingService{files: files, shares: shares, groups: groups}
}

func (s *SharingService) liveFile(ctx context.Context, fileID string) (*model.File, error) {
	f, err := s.files.GetFileByID(ctx, fileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ShareWithGroup выдаёт группе грант на узел и каждый узел его поддерева —
// отдельной записью с одинаковой тройкой прав. Повторная шара того же
// узла — no-op: условия существующего гранта НЕ обновляются, для смены
// прав нужно отозвать и выдать заново.
func (s *SharingService) ShareWithGroup(ctx context.Context, fileID, groupID string, perms model.Permissions, sharedBy int64) error {
	file, err := s.liveFile(ctx, fileID)
	if err != nil {
		return err
	}
	if _, err := s.groups.GetGroupByID(ctx, groupID); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("group %s: %w", groupID, ErrNotFound)
	} else if err != nil {
		return err
	}

	if _, err := s.shares.GetGroupGrant(ctx, groupID, file.ID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	descendants, err := collectSubtree(ctx, s.files, file.ID)
	if err != nil {
		return err
	}
	nodes := append([]model.File{*file}, descendants...)

	grants := make([]model.GroupFile, 0, len(nodes))
	for i := range nodes {
		// потомок мог быть расшарен этой группе независимо
		if _, err := s.shares.GetGroupGrant(ctx, groupID, nodes[i].ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		grants = append(grants, model.GroupFile{
			GroupID:     groupID,
			FileID:      nodes[i].ID,
			Permissions: perms,
			SharedByID:  &sharedBy,
		})
	}
	return s.shares.CreateGroupGrants(ctx, grants)
}

// ShareWithUser — то же, что ShareWithGroup, но для отдельного пользователя.
func (s *SharingService) ShareWithUser(ctx context.Context, fileID string, userID int64, perms model.Permissions, sharedBy int64) error {
	file, err := s.liveFile(ctx, fileID)
	if err != nil {
		return err
	}
	if _, err := s.shares.GetUserGrant(ctx, userID, file.ID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	descendants, err := collectSubtree(ctx, s.files, file.ID)
	if err != nil {
		return err
	}
	nodes := append([]model.File{*file}, descendants...)

	grants := make([]model.UserFile, 0, len(nodes))
	for i := range nodes {
		if _, err := s.shares.GetUserGrant(ctx, userID, nodes[i].ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		grants = append(grants, model.UserFile{
			UserID:      userID,
			FileID:      nodes[i].ID,
			Permissions: perms,
			SharedByID:  &sharedBy,
		})
	}
	return s.shares.CreateUserGrants(ctx, grants)
}

// UnshareGroup отзывает грант группы с узла и всего поддерева.
func (s *SharingService) UnshareGroup(ctx context.Context, fileID, groupID string) error {
	file, err := s.liveFile(ctx, fileID)
	if err != nil {
		return err
	}
	ids, err := s.subtreeIDs(ctx, file)
	if err != nil {
		return err
	}
	return s.shares.DeleteGroupGrants(ctx, groupID, ids)
}

// UnshareUser отзывает грант пользователя с узла и всего поддерева.
func (s *SharingService) UnshareUser(ctx context.Context, fileID string, userID int64) error {
	file, err := s.liveFile(ctx, fileID)
	if err != nil {
		return err
	}
	ids, err := s.subtreeIDs(ctx, file)
	if err != nil {
		return err
	}
	return s.shares.DeleteUserGrants(ctx, userID, ids)
}

func (s *SharingService) subtreeIDs(ctx context.Context, file *model.File) ([]string, error) {
	descendants, err := collectSubtree(ctx, s.files, file.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(descendants)+1)
	ids = append(ids, file.ID)
	for i := range descendants {
		ids = append(ids, descendants[i].ID)
	}
	return ids, nil
}

// CascadeShare переносит шары родителя на свежесозданный узел: так
// «поделиться папкой» распространяется на файлы, загруженные в неё позже.
// Права и автор шары копируются из родительского гранта.
func (s *SharingService) CascadeShare(ctx context.Context, file *model.File) error {
	if file.ParentID == nil {
		return nil
	}

	groupGrants, err := s.shares.GroupGrantsForFile(ctx, *file.ParentID)
	if err != nil {
		return err
	}
	newGroupGrants := make([]model.GroupFile, 0, len(groupGrants))
	for i := range groupGrants {
		g := &groupGrants[i]
		if _, err := s.shares.GetGroupGrant(ctx, g.GroupID, file.ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		newGroupGrants = append(newGroupGrants, model.GroupFile{
			GroupID:     g.GroupID,
			FileID:      file.ID,
			Permissions: g.Permissions,
			SharedByID:  g.SharedByID,
		})
	}
	if err := s.shares.CreateGroupGrants(ctx, newGroupGrants); err != nil {
		return err
	}

	userGrants, err := s.shares.UserGrantsForFile(ctx, *file.ParentID)
	if err != nil {
		return err
	}
	newUserGrants := make([]model.UserFile, 0, len(userGrants))
	for i := range userGrants {
		u := &userGrants[i]
		if _, err := s.shares.GetUserGrant(ctx, u.UserID, file.ID); err == nil {
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		newUserGrants = append(newUserGrants, model.UserFile{
			UserID:      u.UserID,
			FileID:      file.ID,
			Permissions: u.Permissions,
			SharedByID:  u.SharedByID,
		})
	}
	return s.shares.CreateUserGrants(ctx, newUserGrants)
}

// SharedGroups — группы, которым узел расшарен.
func (s *SharingService) SharedGroups(ctx context.Context, fileID string) ([]model.Group, error) {
	return s.shares.ListSharedGroups(ctx, fileID)
}

// NonSharedGroups — группы без гранта на узел (дополнение для пикера).
func (s *SharingService) NonSharedGroups(ctx context.Context, fileID string) ([]model.Group, error) {
	return s.shares.ListNonSharedGroups(ctx, fileID)
}

// SharedPeople — пользователи, которым узел расшарен напрямую.
func (s *SharingService) SharedPeople(ctx context.Context, fileID string) ([]model.User, error) {
	return s.shares.ListSharedUsers(ctx, fileID)
}

// NonSharedPeople — пользователи без прямого гранта на узел.
func (s *SharingService) NonSharedPeople(ctx context.Context, fileID string) ([]model.User, error) {
	return s.shares.ListNonSharedUsers(ctx, fileID)
}

// IsShared — есть ли на узле хоть один грант. Аннотация живёт только
// в рамках запроса и никогда не сохраняется на самом узле.
func (s *SharingService) IsShared(ctx context.Context, fileID string) (bool, error) {
	shared, err := s.shares.SharedFileIDs(ctx, []string{fileID})
	if err != nil {
		return false, err
	}
	return shared[fileID], nil
}

// FindSharedRoot поднимается от узла к корню по непрерывной цепочке
// расшаренных предков и возвращает самого верхнего из них. Так при
// навигации внутри вложенной шары показывается её настоящая точка входа.
func (s *SharingService) FindSharedRoot(ctx context.Context, file *model.File) (*model.File, error) {
	root := file
	parentID := file.ParentID
	for depth := 0; parentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("ancestor chain of %s exceeds %d: %w", file.ID, maxTreeDepth, ErrInvalidState)
		}
		parent, err := s.files.GetFileByID(ctx, *parentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		shared, err := s.IsShared(ctx, parent.ID)
		if err != nil {
			return nil, err
		}
		if !shared {
			break
		}
		root = parent
		parentID = parent.ParentID
	}
	return root, nil
}
