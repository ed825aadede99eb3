package handlers

import (
	"GopherDrive/internal/blob"
	"GopherDrive/internal/config"
	"GopherDrive/internal/middleware"
	"GopherDrive/internal/notify"
	"GopherDrive/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	groupService *service.GroupService,
	treeService *service.TreeService,
	sharingService *service.SharingService,
	listingService *service.ListingService,
	storageService *service.StorageService,
	permissions *service.PermissionService,
	blobs blob.Store,
	sink notify.Sink,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	// Handlers
	userHandler := NewUserHandler(userService, storageService, logger, config)
	groupHandler := NewGroupHandler(groupService, listingService, sink, logger)
	fileHandler := NewFileHandler(treeService, listingService, storageService, permissions, groupService, blobs, sink, logger)
	shareHandler := NewShareHandler(treeService, sharingService, permissions, sink, logger)

	// User routes
	r.Post("/api/user/register", userHandler.Register)
	r.Post("/api/user/login", userHandler.Login)
	r.Get("/api/user/storage", userHandler.StorageStatus)

	// Group routes
	r.Post("/api/groups", groupHandler.Create)
	r.Get("/api/groups", groupHandler.Visible)
	r.Get("/api/groups/{id}/files", groupHandler.Files)
	r.Get("/api/groups/{id}/members", groupHandler.Members)
	r.Get("/api/groups/{id}/members/candidates", groupHandler.Candidates)
	r.Post("/api/groups/{id}/members", groupHandler.AddMember)
	r.Delete("/api/groups/{id}/members/{userID}", groupHandler.RemoveMember)
	r.Put("/api/groups/{id}/admin", groupHandler.SetAdmin)

	// File tree routes
	r.Post("/api/folders", fileHandler.CreateFolder)
	r.Post("/api/files/upload", fileHandler.Upload)
	r.Get("/api/files/{id}/children", fileHandler.Children)
	r.Get("/api/files/{id}/download", fileHandler.Download)
	r.Put("/api/files/{id}/rename", fileHandler.Rename)
	r.Put("/api/files/{id}/move", fileHandler.Move)
	r.Put("/api/files/{id}/permissions", fileHandler.SetPermissions)
	r.Delete("/api/files/{id}", fileHandler.SoftDelete)
	r.Delete("/api/files/{id}/permanent", fileHandler.PermanentDelete)
	r.Post("/api/files/{id}/restore", fileHandler.Restore)

	// Sharing routes
	r.Post("/api/files/{id}/share/group", shareHandler.ShareGroup)
	r.Post("/api/files/{id}/share/user", shareHandler.ShareUser)
	r.Delete("/api/files/{id}/share/group/{groupID}", shareHandler.UnshareGroup)
	r.Delete("/api/files/{id}/share/user/{userID}", shareHandler.UnshareUser)
	r.Get("/api/files/{id}/share/pickers", shareHandler.Pickers)
	r.Get("/api/files/{id}/share/root", shareHandler.SharedRoot)

	// Listing routes
	r.Get("/api/drive", fileHandler.MyDrive)
	r.Get("/api/drive/shared", fileHandler.SharedWithMe)
	r.Get("/api/drive/recent", fileHandler.Recent)
	r.Get("/api/drive/trash", fileHandler.Trash)
	r.Delete("/api/drive/trash", fileHandler.EmptyTrash)
	r.Post("/api/drive/trash/restore", fileHandler.RestoreTrash)

	return &Handler{Router: r}
}
