package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"GopherDrive/internal/middleware"
	"GopherDrive/internal/model"
	"GopherDrive/internal/service"
)

// writeJSON сериализует полезную нагрузку и проставляет статус.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorDTO struct {
	Error string `json:"error"`
}

// writeError переводит типизированную ошибку ядра в HTTP-статус.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrDuplicateEntry), errors.Is(err, service.ErrLoginTaken):
		status = http.StatusConflict
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrQuotaExceeded):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrStorageBackend):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorDTO{Error: err.Error()})
}

// currentUser достаёт id пользователя из контекста; 401, если его нет.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return userID, true
}

// FileDTO — представление узла в ответах API.
type FileDTO struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Description      string  `json:"description,omitempty"`
	IsFolder         bool    `json:"is_folder"`
	OriginalFilename *string `json:"original_filename,omitempty"`
	ParentID         *string `json:"parent_id,omitempty"`
	GroupID          *string `json:"group_id,omitempty"`
	AuthorID         int64   `json:"author_id"`
	ModifiedByID     int64   `json:"modified_by_id"`
	Published        bool    `json:"published"`
	Access           string  `json:"access"`
	Shared           bool    `json:"shared"`
	IsRemoved        bool    `json:"is_removed,omitempty"`
}

func fileToDTO(f *model.File, shared bool) FileDTO {
	return FileDTO{
		ID:               f.ID,
		Name:             f.Name,
		Description:      f.Description,
		IsFolder:         f.IsFolder(),
		OriginalFilename: f.OriginalFilename,
		ParentID:         f.ParentID,
		GroupID:          f.GroupID,
		AuthorID:         f.AuthorID,
		ModifiedByID:     f.ModifiedByID,
		Published:        f.Published,
		Access:           f.Permissions.Access(),
		Shared:           shared,
		IsRemoved:        f.IsRemoved,
	}
}

func entriesToDTO(entries []service.Entry) []FileDTO {
	out := make([]FileDTO, 0, len(entries))
	for i := range entries {
		out = append(out, fileToDTO(&entries[i].File, entries[i].Shared))
	}
	return out
}

// permsDTO — тройка прав в запросах на шару и смену прав.
type permsDTO struct {
	CanRead   bool `json:"can_read"`
	CanWrite  bool `json:"can_write"`
	CanDelete bool `json:"can_delete"`
}

func (p permsDTO) toModel() model.Permissions {
	return model.Permissions{CanRead: p.CanRead, CanWrite: p.CanWrite, CanDelete: p.CanDelete}
}
