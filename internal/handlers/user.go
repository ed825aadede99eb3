package handlers

import (
	"encoding/json"
	"net/http"

	"GopherDrive/internal/config"
	"GopherDrive/internal/middleware"
	"GopherDrive/internal/service"

	"go.uber.org/zap"
)

// UserHandler обрабатывает регистрацию, вход и статус квоты.
type UserHandler struct {
	Users   *service.UserService
	Storage *service.StorageService
	Logger  *zap.SugaredLogger
	Config  *config.Config
}

// NewUserHandler создаёт хендлер пользователей
func NewUserHandler(users *service.UserService, storage *service.StorageService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{Users: users, Storage: storage, Logger: logger, Config: cfg}
}

type credentialsDTO struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type userDTO struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Register создаёт учётку; квота выделяется автоматически.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Login == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Register(r.Context(), req.Login, req.Password)
	if err != nil {
		h.Logger.Warnw("Register failed", "login", req.Login, "error", err)
		writeError(w, err)
		return
	}

	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Register: set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, userDTO{ID: user.ID, Login: user.Login})
}

// Login проверяет пару логин/пароль и ставит cookie с JWT.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := middleware.SetLoginCookie(w, user.ID, h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, userDTO{ID: user.ID, Login: user.Login})
}

type storageDTO struct {
	BytesUsed  int64  `json:"bytes_used"`
	BytesTotal int64  `json:"bytes_total"`
	Used       string `json:"used"`
	Total      string `json:"total"`
	Percentage int    `json:"percentage"`
	Status     string `json:"status"`
}

// StorageStatus возвращает занятое место, процент и метку ok/warning/critical.
func (h *UserHandler) StorageStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	usage, err := h.Storage.GetUsage(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	status, err := service.Status(usage)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, storageDTO{
		BytesUsed:  usage.BytesUsed,
		BytesTotal: usage.BytesTotal,
		Used:       service.HumanBytes(usage.BytesUsed),
		Total:      service.HumanBytes(usage.BytesTotal),
		Percentage: service.Percentage(usage),
		Status:     status,
	})
}
