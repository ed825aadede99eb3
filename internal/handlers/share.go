package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"GopherDrive/internal/model"
	"GopherDrive/internal/notify"
	"GopherDrive/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// actionShare — псевдодействие для проверки «кто может шарить»:
// собственных флагов под него нет, так что проходят только автор
// файла и админ владеющей группы.
const actionShare = "share"

// ShareHandler обрабатывает выдачу и отзыв шар.
type ShareHandler struct {
	Tree        *service.TreeService
	Sharing     *service.SharingService
	Permissions *service.PermissionService
	Sink        notify.Sink
	Logger      *zap.SugaredLogger
}

// NewShareHandler создаёт хендлер шаринга
func NewShareHandler(tree *service.TreeService, sharing *service.SharingService, permissions *service.PermissionService, sink notify.Sink, logger *zap.SugaredLogger) *ShareHandler {
	return &ShareHandler{Tree: tree, Sharing: sharing, Permissions: permissions, Sink: sink, Logger: logger}
}

func (h *ShareHandler) requireShareable(w http.ResponseWriter, r *http.Request, userID int64) (*model.File, bool) {
	file, err := h.Tree.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !h.Permissions.HasPermission(r.Context(), userID, file, actionShare) {
		writeError(w, service.ErrPermissionDenied)
		return nil, false
	}
	return file, true
}

type shareGroupDTO struct {
	GroupID     string   `json:"group_id"`
	Permissions permsDTO `json:"permissions"`
}

// ShareGroup выдаёт группе грант на узел и всё поддерево.
func (h *ShareHandler) ShareGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireShareable(w, r, userID)
	if !ok {
		return
	}
	var req shareGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GroupID == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Sharing.ShareWithGroup(r.Context(), file.ID, req.GroupID, req.Permissions.toModel(), userID); err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileShared(file.Name))
	w.WriteHeader(http.StatusNoContent)
}

type shareUserDTO struct {
	UserID      int64    `json:"user_id"`
	Permissions permsDTO `json:"permissions"`
}

// ShareUser выдаёт пользователю грант на узел и всё поддерево.
func (h *ShareHandler) ShareUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireShareable(w, r, userID)
	if !ok {
		return
	}
	var req shareUserDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Sharing.ShareWithUser(r.Context(), file.ID, req.UserID, req.Permissions.toModel(), userID); err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileShared(file.Name))
	w.WriteHeader(http.StatusNoContent)
}

// UnshareGroup отзывает грант группы с узла и поддерева.
func (h *ShareHandler) UnshareGroup(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireShareable(w, r, userID)
	if !ok {
		return
	}

	if err := h.Sharing.UnshareGroup(r.Context(), file.ID, chi.URLParam(r, "groupID")); err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileUnshared(file.Name))
	w.WriteHeader(http.StatusNoContent)
}

// UnshareUser отзывает грант пользователя с узла и поддерева.
func (h *ShareHandler) UnshareUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireShareable(w, r, userID)
	if !ok {
		return
	}
	target, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.Sharing.UnshareUser(r.Context(), file.ID, target); err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileUnshared(file.Name))
	w.WriteHeader(http.StatusNoContent)
}

type groupDTO struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
}

type pickersDTO struct {
	SharedGroups    []groupDTO `json:"shared_groups"`
	NonSharedGroups []groupDTO `json:"non_shared_groups"`
	SharedPeople    []userDTO  `json:"shared_people"`
	NonSharedPeople []userDTO  `json:"non_shared_people"`
}

func groupsToDTO(groups []model.Group) []groupDTO {
	out := make([]groupDTO, 0, len(groups))
	for i := range groups {
		out = append(out, groupDTO{ID: groups[i].ID, Name: groups[i].Name, IsPublic: groups[i].IsPublic})
	}
	return out
}

func usersToDTO(users []model.User) []userDTO {
	out := make([]userDTO, 0, len(users))
	for i := range users {
		out = append(out, userDTO{ID: users[i].ID, Login: users[i].Login})
	}
	return out
}

// Pickers — наборы «уже расшарено» и «можно расшарить» для выбора адресата.
func (h *ShareHandler) Pickers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireShareable(w, r, userID)
	if !ok {
		return
	}
	ctx := r.Context()

	sharedGroups, err := h.Sharing.SharedGroups(ctx, file.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	nonSharedGroups, err := h.Sharing.NonSharedGroups(ctx, file.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	sharedPeople, err := h.Sharing.SharedPeople(ctx, file.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	nonSharedPeople, err := h.Sharing.NonSharedPeople(ctx, file.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pickersDTO{
		SharedGroups:    groupsToDTO(sharedGroups),
		NonSharedGroups: groupsToDTO(nonSharedGroups),
		SharedPeople:    usersToDTO(sharedPeople),
		NonSharedPeople: usersToDTO(nonSharedPeople),
	})
}

// SharedRoot — верхняя точка входа непрерывной цепочки расшаренных предков.
func (h *ShareHandler) SharedRoot(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, err := h.Tree.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.Permissions.CanRead(r.Context(), userID, file) {
		writeError(w, service.ErrPermissionDenied)
		return
	}

	root, err := h.Sharing.FindSharedRoot(r.Context(), file)
	if err != nil {
		writeError(w, err)
		return
	}
	shared, err := h.Sharing.IsShared(r.Context(), root.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fileToDTO(root, shared))
}
