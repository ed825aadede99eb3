// Package blob — хранилище содержимого документов. Ядро сервиса видит его
// как непрозрачного коллаборатора: положить байты, узнать размер, удалить.
package blob

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store — контракт blob-хранилища.
type Store interface {
	// Put сохраняет содержимое и возвращает handle и число записанных байт.
	Put(reader io.Reader, originalName string) (handle string, size int64, err error)
	// Size возвращает размер содержимого по handle.
	Size(handle string) (int64, error)
	Delete(handle string) error
	Open(handle string) (io.ReadCloser, error)
}

// LocalStore — реализация на локальной файловой системе.
// Имена файлов — uuid с исходным расширением, чтобы не зависеть
// от пользовательских имён и не ловить коллизии.
type LocalStore struct {
	BaseDir string
}

// NewLocalStore создаёт каталог хранилища, если его ещё нет.
func NewLocalStore(baseDir string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{BaseDir: baseDir}, nil
}

func (s *LocalStore) Put(reader io.Reader, originalName string) (string, int64, error) {
	handle := uuid.NewString()
	if ext := filepath.Ext(originalName); ext != "" {
		handle += ext
	}

	out, err := os.Create(filepath.Join(s.BaseDir, handle))
	if err != nil {
		return "", 0, err
	}
	defer out.Close()

	written, err := io.Copy(out, reader)
	if err != nil {
		// незавершённую запись не оставляем
		_ = os.Remove(out.Name())
		return "", 0, err
	}
	return handle, written, nil
}

func (s *LocalStore) Size(handle string) (int64, error) {
	info, err := os.Stat(s.path(handle))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (s *LocalStore) Delete(handle string) error {
	err := os.Remove(s.path(handle))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStore) Open(handle string) (io.ReadCloser, error) {
	return os.Open(s.path(handle))
}

func (s *LocalStore) path(handle string) string {
	// handle не должен выходить за пределы каталога хранилища
	return filepath.Join(s.BaseDir, filepath.Base(handle))
}

var _ Store = (*LocalStore)(nil)
