package main

import (
	"net/http"

	"GopherDrive/internal/blob"
	"GopherDrive/internal/config"
	"GopherDrive/internal/handlers"
	"GopherDrive/internal/middleware"
	"GopherDrive/internal/notify"
	"GopherDrive/internal/repo"
	"GopherDrive/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	blobs, err := blob.NewLocalStore(cfg.BlobDir)
	if err != nil {
		sugar.Fatalw("failed to initialize blob store", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	groupRepo := repo.NewGroupRepository(gormDB)
	fileRepo := repo.NewFileRepository(gormDB)
	shareRepo := repo.NewShareRepository(gormDB)
	storageRepo := repo.NewStorageRepository(gormDB)

	userService := service.NewUserService(userRepo, cfg.QuotaMB*1024*1024)
	groupService := service.NewGroupService(groupRepo)
	storageService := service.NewStorageService(storageRepo)
	sharingService := service.NewSharingService(fileRepo, shareRepo, groupRepo)
	treeService := service.NewTreeService(fileRepo, blobs, storageRepo, sharingService)
	listingService := service.NewListingService(fileRepo, shareRepo, groupRepo, treeService)
	permissions := service.NewPermissionService(groupRepo, shareRepo)

	sink := notify.NewLogSink(sugar)

	h := handlers.NewHandler(
		userService,
		groupService,
		treeService,
		sharingService,
		listingService,
		storageService,
		permissions,
		blobs,
		sink,
		sugar,
		cfg,
	)

	addr := cfg.BaseURL

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"BlobDir", cfg.BlobDir,
		"QuotaMB", cfg.QuotaMB,
	)

	if err := http.ListenAndServe(addr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
