package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"GopherDrive/internal/blob"
	"GopherDrive/internal/config"
	"GopherDrive/internal/handlers"
	"GopherDrive/internal/middleware"
	"GopherDrive/internal/model"
	"GopherDrive/internal/notify"
	"GopherDrive/internal/repo"
	"GopherDrive/internal/service"

	"github.com/google/uuid"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"go.uber.org/zap"
)

// testQuota — маленькая квота, чтобы переполнение было достижимо в тесте.
const testQuota = 100

type testServer struct {
	router http.Handler
	cfg    *config.Config

	users   repo.UserRepository
	tree    *service.TreeService
	sharing *service.SharingService
	groups  *service.GroupService
	storage repo.StorageRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}, &gorm.Config{})
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

	cfg := &config.Config{AuthSecret: "test-secret"}
	logger := zap.NewNop().Sugar()

	userRepo := repo.NewUserRepository(db)
	groupRepo := repo.NewGroupRepository(db)
	fileRepo := repo.NewFileRepository(db)
	shareRepo := repo.NewShareRepository(db)
	storageRepo := repo.NewStorageRepository(db)

	userSvc := service.NewUserService(userRepo, testQuota)
	groupSvc := service.NewGroupService(groupRepo)
	storageSvc := service.NewStorageService(storageRepo)
	sharingSvc := service.NewSharingService(fileRepo, shareRepo, groupRepo)
	treeSvc := service.NewTreeService(fileRepo, blobs, storageRepo, sharingSvc)
	listingSvc := service.NewListingService(fileRepo, shareRepo, groupRepo, treeSvc)
	perms := service.NewPermissionService(groupRepo, shareRepo)
	sink := notify.NewLogSink(logger)

	h := handlers.NewHandler(userSvc, groupSvc, treeSvc, sharingSvc, listingSvc, storageSvc, perms, blobs, sink, logger, cfg)
	return &testServer{
		router:  h.Router,
		cfg:     cfg,
		users:   userRepo,
		tree:    treeSvc,
		sharing: sharingSvc,
		groups:  groupSvc,
		storage: storageRepo,
	}
}

func (s *testServer) seedUser(t *testing.T, login string) *model.User {
	t.Helper()
	u, err := s.users.CreateUser(context.Background(), &model.User{Login: login, Password: "hash"}, testQuota)
	if err != nil {
		t.Fatalf("seed user %q: %v", login, err)
	}
	return u
}

func addAuthCookie(t *testing.T, req *http.Request, userID int64, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	_ = middleware.SetLoginCookie(rr, userID, secret)
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// doJSON выполняет запрос с JSON-телом от имени пользователя.
func (s *testServer) doJSON(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		addAuthCookie(t, req, userID, s.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// doUpload собирает multipart-форму и отправляет её в /api/files/upload.
func (s *testServer) doUpload(t *testing.T, userID int64, filename, content string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	addAuthCookie(t, req, userID, s.cfg.AuthSecret)
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}
