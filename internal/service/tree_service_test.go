package service

import (
	"context"
	"strings"
	"testing"

	"GopherDrive/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestTreeService_CreateFolder_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	first := env.mkFolder(t, "Docs", nil, u.ID)

	// живой сосед с тем же именем блокирует создание
	_, err := env.tree.CreateFolder(ctx, "Docs", nil, nil, u.ID)
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	// после мягкого удаления имя освобождается
	assert.NoError(t, env.tree.SoftDelete(ctx, first.ID, u.ID))
	_, err = env.tree.CreateFolder(ctx, "Docs", nil, nil, u.ID)
	assert.NoError(t, err)
}

func TestTreeService_CreateDocument_QuotaAndDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	env.mkDocument(t, "a.txt", nil, u.ID, "hello")

	// загруженные байты списались с квоты
	usage, err := env.storageSvc.GetUsage(ctx, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), usage.BytesUsed)

	// одноимённый живой документ того же автора
	handle, size, err := env.blobs.Put(strings.NewReader("again"), "a.txt")
	assert.NoError(t, err)
	_, err = env.tree.CreateDocument(ctx, "a.txt", nil, nil, u.ID, handle, "a.txt", size)
	assert.ErrorIs(t, err, ErrDuplicateEntry)
}

func TestTreeService_Move(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	a := env.mkFolder(t, "a", nil, u.ID)
	b := env.mkFolder(t, "b", &a.ID, u.ID)
	c := env.mkFolder(t, "c", nil, u.ID)

	// перенос под собственного потомка — цикл
	_, err := env.tree.Move(ctx, a.ID, &b.ID, u.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// перенос в самого себя
	_, err = env.tree.Move(ctx, a.ID, &a.ID, u.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	// корректный перенос
	moved, err := env.tree.Move(ctx, b.ID, &c.ID, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, c.ID, *moved.ParentID)

	children, err := env.tree.Children(ctx, c.ID, true)
	assert.NoError(t, err)
	assert.Len(t, children, 1)
	assert.Equal(t, b.ID, children[0].ID)
}

func TestTreeService_Touch_BubblesToAncestors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.seedUser(t, "author")
	editor := env.seedUser(t, "editor")

	root := env.mkFolder(t, "root", nil, author.ID)
	sub := env.mkFolder(t, "sub", &root.ID, author.ID)
	doc := env.mkDocument(t, "a.txt", &sub.ID, author.ID, "x")

	_, err := env.tree.Rename(ctx, doc.ID, "b.txt", editor.ID)
	assert.NoError(t, err)

	// отметка о последнем редакторе поднимается до корня
	for _, id := range []string{doc.ID, sub.ID, root.ID} {
		got, err := env.tree.GetFile(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, editor.ID, got.ModifiedByID)
	}
}

func TestTreeService_SoftDelete_Subtree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	root := env.mkFolder(t, "root", nil, u.ID)
	sub := env.mkFolder(t, "sub", &root.ID, u.ID)
	doc := env.mkDocument(t, "a.txt", &sub.ID, u.ID, "x")
	sibling := env.mkFolder(t, "sibling", nil, u.ID)

	assert.NoError(t, env.tree.SoftDelete(ctx, root.ID, u.ID))

	// всё поддерево в корзине
	for _, id := range []string{root.ID, sub.ID, doc.ID} {
		_, err := env.tree.GetFile(ctx, id)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	// сосед не затронут
	_, err := env.tree.GetFile(ctx, sibling.ID)
	assert.NoError(t, err)
}

func TestTreeService_Restore_NonRecursive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	root := env.mkFolder(t, "root", nil, u.ID)
	sub := env.mkFolder(t, "sub", &root.ID, u.ID)

	assert.NoError(t, env.tree.SoftDelete(ctx, root.ID, u.ID))

	restored, err := env.tree.Restore(ctx, root.ID)
	assert.NoError(t, err)
	assert.False(t, restored.IsRemoved)

	// ребёнок остаётся в корзине
	_, err = env.tree.GetFile(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTreeService_CascadePermission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	root := env.mkFolder(t, "root", nil, u.ID)
	sub := env.mkFolder(t, "sub", &root.ID, u.ID)
	doc := env.mkDocument(t, "a.txt", &sub.ID, u.ID, "x")
	sibling := env.mkFolder(t, "sibling", nil, u.ID)

	perms := model.Permissions{CanRead: true, CanWrite: false, CanDelete: true}
	assert.NoError(t, env.tree.CascadePermission(ctx, root.ID, perms))

	// тройка скопирована на каждый узел поддерева
	for _, id := range []string{root.ID, sub.ID, doc.ID} {
		got, err := env.tree.GetFile(ctx, id)
		assert.NoError(t, err)
		assert.Equal(t, perms, got.Permissions)
	}
	// за пределы поддерева каскад не выходит
	got, err := env.tree.GetFile(ctx, sibling.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.DefaultPermissions(), got.Permissions)
}

func TestTreeService_Size(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	root := env.mkFolder(t, "root", nil, u.ID)
	sub := env.mkFolder(t, "sub", &root.ID, u.ID)
	doc := env.mkDocument(t, "a.txt", &root.ID, u.ID, "hello")
	env.mkDocument(t, "b.txt", &sub.ID, u.ID, "abc")

	size, err := env.tree.Size(ctx, doc)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), size)

	// папка — сумма по всему поддереву
	size, err = env.tree.Size(ctx, root)
	assert.NoError(t, err)
	assert.Equal(t, int64(8), size)
}

func TestTreeService_PermanentDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")

	root := env.mkFolder(t, "root", nil, u.ID)
	sub := env.mkFolder(t, "sub", &root.ID, u.ID)
	doc := env.mkDocument(t, "a.txt", &sub.ID, u.ID, "hello")
	handle := *doc.BlobHandle

	// удаление из корзины: поддерево к этому моменту уже помечено
	assert.NoError(t, env.tree.SoftDelete(ctx, root.ID, u.ID))
	assert.NoError(t, env.tree.PermanentDelete(ctx, root.ID))

	// записи удалены безвозвратно, включая вложенные уровни
	_, err := env.tree.GetAnyFile(ctx, sub.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.tree.GetAnyFile(ctx, doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// blob освобождён, байты возвращены в квоту
	_, err = env.blobs.Size(handle)
	assert.Error(t, err)
	usage, err := env.storageSvc.GetUsage(ctx, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), usage.BytesUsed)
}
