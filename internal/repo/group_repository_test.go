package repo

import (
	"context"
	"testing"

	"GopherDrive/internal/model"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGroupRepository_Membership(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepository(db)
	ctx := context.Background()

	g, err := r.CreateGroup(ctx, &model.Group{Name: "devs"})
	assert.NoError(t, err)
	assert.NotEmpty(t, g.ID)

	// до вступления — не член
	member, err := r.IsMember(ctx, g.ID, 1)
	assert.NoError(t, err)
	assert.False(t, member)

	assert.NoError(t, r.AddMember(ctx, g.ID, 1))
	// повторное добавление — no-op, не ошибка
	assert.NoError(t, r.AddMember(ctx, g.ID, 1))

	member, err = r.IsMember(ctx, g.ID, 1)
	assert.NoError(t, err)
	assert.True(t, member)

	members, err := r.ListMembers(ctx, g.ID)
	assert.NoError(t, err)
	assert.Len(t, members, 1)

	assert.NoError(t, r.RemoveMember(ctx, g.ID, 1))
	member, err = r.IsMember(ctx, g.ID, 1)
	assert.NoError(t, err)
	assert.False(t, member)
}

func TestGroupRepository_SetAdmin(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepository(db)
	ctx := context.Background()

	g, err := r.CreateGroup(ctx, &model.Group{Name: "ops"})
	assert.NoError(t, err)
	assert.NoError(t, r.AddMember(ctx, g.ID, 7))

	admin, err := r.IsAdmin(ctx, g.ID, 7)
	assert.NoError(t, err)
	assert.False(t, admin)

	assert.NoError(t, r.SetAdmin(ctx, g.ID, 7, true))
	admin, err = r.IsAdmin(ctx, g.ID, 7)
	assert.NoError(t, err)
	assert.True(t, admin)

	assert.NoError(t, r.SetAdmin(ctx, g.ID, 7, false))
	admin, err = r.IsAdmin(ctx, g.ID, 7)
	assert.NoError(t, err)
	assert.False(t, admin)

	// пользователь не в группе — записи нет
	err = r.SetAdmin(ctx, g.ID, 99, true)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestGroupRepository_ListNonMembers(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepository(db)
	users := NewUserRepository(db)
	ctx := context.Background()

	anna, err := users.CreateUser(ctx, &model.User{Login: "anna", Password: "h"}, 10)
	assert.NoError(t, err)
	zoe, err := users.CreateUser(ctx, &model.User{Login: "zoe", Password: "h"}, 10)
	assert.NoError(t, err)
	bob, err := users.CreateUser(ctx, &model.User{Login: "bob", Password: "h"}, 10)
	assert.NoError(t, err)

	g, err := r.CreateGroup(ctx, &model.Group{Name: "devs"})
	assert.NoError(t, err)
	assert.NoError(t, r.AddMember(ctx, g.ID, bob.ID))

	// кандидаты — все, кроме членов, по логину
	out, err := r.ListNonMembers(ctx, g.ID)
	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, anna.ID, out[0].ID)
	assert.Equal(t, zoe.ID, out[1].ID)
}

func TestGroupRepository_Visibility(t *testing.T) {
	db := newTestDB(t)
	r := NewGroupRepository(db)
	ctx := context.Background()

	mine, err := r.CreateGroup(ctx, &model.Group{Name: "alpha"})
	assert.NoError(t, err)
	pub, err := r.CreateGroup(ctx, &model.Group{Name: "beta", IsPublic: true})
	assert.NoError(t, err)
	_, err = r.CreateGroup(ctx, &model.Group{Name: "gamma"})
	assert.NoError(t, err)

	assert.NoError(t, r.AddMember(ctx, mine.ID, 5))

	// свои группы — только alpha
	own, err := r.ListGroupsOf(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	// видимые — свои плюс публичные, gamma не видна
	visible, err := r.ListVisibleTo(ctx, 5)
	assert.NoError(t, err)
	assert.Len(t, visible, 2)
	assert.Equal(t, "alpha", visible[0].Name)
	assert.Equal(t, "beta", visible[1].Name)
	assert.Equal(t, pub.ID, visible[1].ID)

	// убранная группа не находится
	removed, err := r.CreateGroup(ctx, &model.Group{Name: "old", IsRemoved: true})
	assert.NoError(t, err)
	_, err = r.GetGroupByID(ctx, removed.ID)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}
