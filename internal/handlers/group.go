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

// GroupHandler обрабатывает группы и членство в них.
type GroupHandler struct {
	Groups  *service.GroupService
	Listing *service.ListingService
	Sink    notify.Sink
	Logger  *zap.SugaredLogger
}

// NewGroupHandler создаёт хендлер групп
func NewGroupHandler(groups *service.GroupService, listing *service.ListingService, sink notify.Sink, logger *zap.SugaredLogger) *GroupHandler {
	return &GroupHandler{Groups: groups, Listing: listing, Sink: sink, Logger: logger}
}

// requireAdmin находит группу и требует от вызывающего прав админа.
func (h *GroupHandler) requireAdmin(w http.ResponseWriter, r *http.Request, userID int64) (*model.Group, bool) {
	group, err := h.Groups.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	admin, err := h.Groups.IsGroupAdmin(r.Context(), group.ID, userID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !admin {
		writeError(w, service.ErrPermissionDenied)
		return nil, false
	}
	return group, true
}

type createGroupDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// Create создаёт группу, создатель становится её первым админом.
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	group, err := h.Groups.CreateGroup(r.Context(), req.Name, req.Description, req.IsPublic)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.Groups.AddMember(r.Context(), group.ID, userID); err != nil {
		writeError(w, err)
		return
	}
	if err := h.Groups.SetAdmin(r.Context(), group.ID, userID, true); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, groupDTO{ID: group.ID, Name: group.Name, IsPublic: group.IsPublic})
}

// Visible — группы, которые пользователь видит: свои плюс публичные.
func (h *GroupHandler) Visible(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	groups, err := h.Groups.GroupsVisibleTo(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupsToDTO(groups))
}

// requireVisible требует членства либо публичности группы.
func (h *GroupHandler) requireVisible(w http.ResponseWriter, r *http.Request, userID int64) (*model.Group, bool) {
	group, err := h.Groups.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !group.IsPublic {
		member, err := h.Groups.IsGroupMember(r.Context(), group.ID, userID)
		if err != nil {
			writeError(w, err)
			return nil, false
		}
		if !member {
			writeError(w, service.ErrPermissionDenied)
			return nil, false
		}
	}
	return group, true
}

// Files — корневые файлы группового диска.
func (h *GroupHandler) Files(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	group, ok := h.requireVisible(w, r, userID)
	if !ok {
		return
	}
	entries, err := h.Listing.ForGroup(r.Context(), group.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesToDTO(entries))
}

type memberDTO struct {
	UserID  int64  `json:"user_id"`
	Login   string `json:"login"`
	IsAdmin bool   `json:"is_admin"`
}

// Members — список участников группы.
func (h *GroupHandler) Members(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	group, ok := h.requireVisible(w, r, userID)
	if !ok {
		return
	}
	members, err := h.Groups.Members(r.Context(), group.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]memberDTO, 0, len(members))
	for i := range members {
		m := memberDTO{UserID: members[i].UserID, IsAdmin: members[i].IsAdmin}
		if members[i].User != nil {
			m.Login = members[i].User.Login
		}
		out = append(out, m)
	}
	writeJSON(w, http.StatusOK, out)
}

// Candidates — пользователи вне группы, которых админ может добавить.
func (h *GroupHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	group, ok := h.requireAdmin(w, r, userID)
	if !ok {
		return
	}
	users, err := h.Groups.NonMembers(r.Context(), group.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, usersToDTO(users))
}

type addMembersDTO struct {
	UserIDs []int64 `json:"user_ids"`
}

// AddMember добавляет участников в группу, только для админа.
func (h *GroupHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	group, ok := h.requireAdmin(w, r, userID)
	if !ok {
		return
	}
	var req addMembersDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.UserIDs) == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Groups.AddMembers(r.Context(), group.ID, req.UserIDs); err != nil {
		writeError(w, err)
		return
	}
	for _, id := range req.UserIDs {
		h.Sink.Success(id, notify.MemberAdded(group.Name))
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember исключает участника из группы, только для админа.
func (h *GroupHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	group, ok := h.requireAdmin(w, r, userID)
	if !ok {
		return
	}
	target, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if err := h.Groups.RemoveMember(r.Context(), group.ID, target); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setAdminDTO struct {
	UserID  int64 `json:"user_id"`
	IsAdmin bool  `json:"is_admin"`
}

// SetAdmin выставляет или снимает флаг админа у участника.
func (h *GroupHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	group, ok := h.requireAdmin(w, r, userID)
	if !ok {
		return
	}
	var req setAdminDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Groups.SetAdmin(r.Context(), group.ID, req.UserID, req.IsAdmin); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
