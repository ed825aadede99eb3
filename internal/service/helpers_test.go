package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"GopherDrive/internal/blob"
	"GopherDrive/internal/model"
	"GopherDrive/internal/repo"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// testEnv — полный стек сервисов над in-memory SQLite и временным
// blob-каталогом. Каждый тест получает свою изолированную базу.
type testEnv struct {
	users   repo.UserRepository
	groups  repo.GroupRepository
	files   repo.FileRepository
	shares  repo.ShareRepository
	storage repo.StorageRepository

	blobs *blob.LocalStore

	userSvc    *UserService
	groupSvc   *GroupService
	storageSvc *StorageService
	sharing    *SharingService
	tree       *TreeService
	listing    *ListingService
	perms      *PermissionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}
	blobs, err := blob.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create blob store: %v", err)
	}

	env := &testEnv{
		users:   repo.NewUserRepository(db),
		groups:  repo.NewGroupRepository(db),
		files:   repo.NewFileRepository(db),
		shares:  repo.NewShareRepository(db),
		storage: repo.NewStorageRepository(db),
		blobs:   blobs,
	}
	env.userSvc = NewUserService(env.users, 1000)
	env.groupSvc = NewGroupService(env.groups)
	env.storageSvc = NewStorageService(env.storage)
	env.sharing = NewSharingService(env.files, env.shares, env.groups)
	env.tree = NewTreeService(env.files, blobs, env.storage, env.sharing)
	env.listing = NewListingService(env.files, env.shares, env.groups, env.tree)
	env.perms = NewPermissionService(env.groups, env.shares)
	return env
}

// seedUser создаёт пользователя напрямую, минуя bcrypt (в тестах дерева
// и шаринга пароль не участвует).
func (e *testEnv) seedUser(t *testing.T, login string) *model.User {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), &model.User{Login: login, Password: "hash"}, 1000)
	if err != nil {
		t.Fatalf("seed user %q: %v", login, err)
	}
	return u
}

func (e *testEnv) seedGroup(t *testing.T, name string) *model.Group {
	t.Helper()
	g, err := e.groupSvc.CreateGroup(context.Background(), name, "", false)
	if err != nil {
		t.Fatalf("seed group %q: %v", name, err)
	}
	return g
}

// mkFolder — папка через сервис дерева, с каскадом шар как в продакшене.
func (e *testEnv) mkFolder(t *testing.T, name string, parentID *string, authorID int64) *model.File {
	t.Helper()
	f, err := e.tree.CreateFolder(context.Background(), name, parentID, nil, authorID)
	if err != nil {
		t.Fatalf("create folder %q: %v", name, err)
	}
	return f
}

// mkGroupFolder — папка верхнего уровня на групповом диске.
func (e *testEnv) mkGroupFolder(t *testing.T, name, groupID string, authorID int64) *model.File {
	t.Helper()
	f, err := e.tree.CreateFolder(context.Background(), name, nil, &groupID, authorID)
	if err != nil {
		t.Fatalf("create group folder %q: %v", name, err)
	}
	return f
}

// mkDocument кладёт содержимое в blob-хранилище и создаёт документ.
func (e *testEnv) mkDocument(t *testing.T, name string, parentID *string, authorID int64, content string) *model.File {
	t.Helper()
	handle, size, err := e.blobs.Put(strings.NewReader(content), name)
	if err != nil {
		t.Fatalf("put blob for %q: %v", name, err)
	}
	doc, err := e.tree.CreateDocument(context.Background(), name, parentID, nil, authorID, handle, name, size)
	if err != nil {
		t.Fatalf("create document %q: %v", name, err)
	}
	return doc
}
