package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"GopherDrive/internal/blob"
	"GopherDrive/internal/model"
	"GopherDrive/internal/notify"
	"GopherDrive/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxUploadMemory — буфер разбора multipart-форм.
const maxUploadMemory = 32 << 20

// FileHandler обрабатывает операции над деревом и листинги.
type FileHandler struct {
	Tree        *service.TreeService
	Listing     *service.ListingService
	Storage     *service.StorageService
	Permissions *service.PermissionService
	Groups      *service.GroupService
	Blobs       blob.Store
	Sink        notify.Sink
	Logger      *zap.SugaredLogger
}

// NewFileHandler создаёт хендлер файлов
func NewFileHandler(tree *service.TreeService, listing *service.ListingService, storage *service.StorageService, permissions *service.PermissionService, groups *service.GroupService, blobs blob.Store, sink notify.Sink, logger *zap.SugaredLogger) *FileHandler {
	return &FileHandler{Tree: tree, Listing: listing, Storage: storage, Permissions: permissions, Groups: groups, Blobs: blobs, Sink: sink, Logger: logger}
}

// requireTarget проверяет место создания узла: право записи на родителя
// и членство в группе, если узел создаётся на групповом диске.
func (h *FileHandler) requireTarget(w http.ResponseWriter, r *http.Request, userID int64, parentID, groupID *string) bool {
	if parentID != nil {
		parent, err := h.Tree.GetFile(r.Context(), *parentID)
		if err != nil {
			writeError(w, err)
			return false
		}
		if !h.Permissions.CanWrite(r.Context(), userID, parent) {
			writeError(w, service.ErrPermissionDenied)
			return false
		}
	}
	if groupID != nil {
		member, err := h.Groups.IsGroupMember(r.Context(), *groupID, userID)
		if err != nil {
			writeError(w, err)
			return false
		}
		if !member {
			writeError(w, service.ErrPermissionDenied)
			return false
		}
	}
	return true
}

// requireFile достаёт живой узел и проверяет право на действие.
// Сама проверка прав ошибок не возвращает: отказ — это просто отказ.
func (h *FileHandler) requireFile(w http.ResponseWriter, r *http.Request, userID int64, action string) (*model.File, bool) {
	file, err := h.Tree.GetFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if !h.Permissions.HasPermission(r.Context(), userID, file, action) {
		writeError(w, service.ErrPermissionDenied)
		return nil, false
	}
	return file, true
}

type createFolderDTO struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"`
	GroupID  *string `json:"group_id,omitempty"`
}

// CreateFolder создаёт папку; под чужим родителем требуется право записи.
func (h *FileHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req createFolderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if !h.requireTarget(w, r, userID, req.ParentID, req.GroupID) {
		return
	}

	folder, err := h.Tree.CreateFolder(r.Context(), req.Name, req.ParentID, req.GroupID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileCreated(folder.Name))
	writeJSON(w, http.StatusCreated, fileToDTO(folder, false))
}

// Upload принимает multipart-файл: квота → blob → запись в дереве.
// Если запись не удалась, blob удаляется; сиротских blob не остаётся.
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	src, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field required", http.StatusBadRequest)
		return
	}
	defer src.Close()

	var parentID, groupID *string
	if v := r.FormValue("parent_id"); v != "" {
		parentID = &v
	}
	if v := r.FormValue("group_id"); v != "" {
		groupID = &v
	}
	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}

	if !h.requireTarget(w, r, userID, parentID, groupID) {
		return
	}

	fits, err := h.Storage.Fits(r.Context(), userID, header.Size)
	if err != nil {
		writeError(w, err)
		return
	}
	if !fits {
		writeError(w, service.ErrQuotaExceeded)
		return
	}

	handle, size, err := h.Blobs.Put(src, header.Filename)
	if err != nil {
		h.Logger.Errorw("Upload: blob put", "error", err)
		writeError(w, fmt.Errorf("%w: %v", service.ErrStorageBackend, err))
		return
	}

	doc, err := h.Tree.CreateDocument(r.Context(), name, parentID, groupID, userID, handle, header.Filename, size)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileCreated(doc.Name))
	writeJSON(w, http.StatusCreated, fileToDTO(doc, false))
}

// Children отдаёт детей узла; ?recursive=true разворачивает поддерево.
func (h *FileHandler) Children(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireFile(w, r, userID, service.ActionRead)
	if !ok {
		return
	}

	direct := r.URL.Query().Get("recursive") != "true"
	children, err := h.Tree.Children(r.Context(), file.ID, direct)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]FileDTO, 0, len(children))
	for i := range children {
		out = append(out, fileToDTO(&children[i], false))
	}
	writeJSON(w, http.StatusOK, out)
}

// Download отдаёт содержимое документа.
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireFile(w, r, userID, service.ActionRead)
	if !ok {
		return
	}
	if file.IsFolder() || file.BlobHandle == nil {
		http.Error(w, "not a document", http.StatusBadRequest)
		return
	}

	src, err := h.Blobs.Open(*file.BlobHandle)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", service.ErrStorageBackend, err))
		return
	}
	defer src.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", *file.OriginalFilename))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, src)
}

type renameDTO struct {
	Name string `json:"name"`
}

// Rename меняет имя узла; требуется право записи.
func (h *FileHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireFile(w, r, userID, service.ActionWrite)
	if !ok {
		return
	}
	var req renameDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	renamed, err := h.Tree.Rename(r.Context(), file.ID, req.Name, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileRenamed(renamed.Name))
	writeJSON(w, http.StatusOK, fileToDTO(renamed, false))
}

type moveDTO struct {
	ParentID *string `json:"parent_id"`
}

// Move переносит узел; требуется право записи на сам узел.
func (h *FileHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireFile(w, r, userID, service.ActionWrite)
	if !ok {
		return
	}
	var req moveDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	moved, err := h.Tree.Move(r.Context(), file.ID, req.ParentID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	dest := "root"
	if moved.ParentID != nil {
		if p, err := h.Tree.GetFile(r.Context(), *moved.ParentID); err == nil {
			dest = p.Name
		}
	}
	h.Sink.Success(userID, notify.FileMoved(moved.Name, dest))
	writeJSON(w, http.StatusOK, fileToDTO(moved, false))
}

// SetPermissions меняет тройку прав узла и разливает её по поддереву.
func (h *FileHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireFile(w, r, userID, service.ActionWrite)
	if !ok {
		return
	}
	var req permsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Tree.CascadePermission(r.Context(), file.ID, req.toModel()); err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileUpdated(file.Name))
	w.WriteHeader(http.StatusNoContent)
}

// SoftDelete отправляет узел с поддеревом в корзину.
func (h *FileHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, ok := h.requireFile(w, r, userID, service.ActionDelete)
	if !ok {
		return
	}

	if err := h.Tree.SoftDelete(r.Context(), file.ID, userID); err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileDeleted(file.Name))
	w.WriteHeader(http.StatusNoContent)
}

// PermanentDelete удаляет узел безвозвратно. Доступно только из корзины.
func (h *FileHandler) PermanentDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, err := h.Tree.GetAnyFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// безвозвратное удаление доступно только владельцу корзины
	if !file.IsRemoved || file.ModifiedByID != userID {
		writeError(w, service.ErrPermissionDenied)
		return
	}

	if err := h.Tree.PermanentDelete(r.Context(), file.ID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore возвращает узел из корзины; дети остаются удалёнными.
func (h *FileHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	file, err := h.Tree.GetAnyFile(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if !file.IsRemoved || file.ModifiedByID != userID {
		writeError(w, service.ErrPermissionDenied)
		return
	}
	restored, err := h.Tree.Restore(r.Context(), file.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.Sink.Success(userID, notify.FileUpdated(restored.Name))
	writeJSON(w, http.StatusOK, fileToDTO(restored, false))
}

// MyDrive — личные узлы верхнего уровня.
func (h *FileHandler) MyDrive(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.Listing.ForPerson(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesToDTO(entries))
}

// SharedWithMe — узлы, расшаренные пользователю напрямую или через группы.
func (h *FileHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.Listing.GetShared(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesToDTO(entries))
}

// Recent — пять последних созданных личных узлов.
func (h *FileHandler) Recent(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.Listing.GetRecent(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesToDTO(entries))
}

// Trash — содержимое корзины пользователя.
func (h *FileHandler) Trash(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	entries, err := h.Listing.GetTrash(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entriesToDTO(entries))
}

// EmptyTrash безвозвратно очищает корзину.
func (h *FileHandler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Listing.EmptyTrash(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type restoreTrashDTO struct {
	IDs []string `json:"ids,omitempty"`
}

// RestoreTrash возвращает из корзины всё либо перечисленные узлы.
func (h *FileHandler) RestoreTrash(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req restoreTrashDTO
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var err error
	if len(req.IDs) > 0 {
		err = h.Listing.RestoreFiles(r.Context(), userID, req.IDs)
	} else {
		err = h.Listing.RestoreTrash(r.Context(), userID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
