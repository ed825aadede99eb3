package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupService_MembershipBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.seedUser(t, "a")
	b := env.seedUser(t, "b")
	g := env.seedGroup(t, "devs")

	assert.NoError(t, env.groupSvc.AddMembers(ctx, g.ID, []int64{a.ID, b.ID}))

	members, err := env.groupSvc.Members(ctx, g.ID)
	assert.NoError(t, err)
	assert.Len(t, members, 2)

	// добавление в несуществующую группу
	err = env.groupSvc.AddMember(ctx, "00000000-0000-0000-0000-000000000000", a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, env.groupSvc.RemoveMembers(ctx, g.ID, []int64{a.ID, b.ID}))
	members, err = env.groupSvc.Members(ctx, g.ID)
	assert.NoError(t, err)
	assert.Empty(t, members)
}

func TestGroupService_SetAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.seedUser(t, "john")
	g := env.seedGroup(t, "devs")
	assert.NoError(t, env.groupSvc.AddMember(ctx, g.ID, u.ID))

	assert.NoError(t, env.groupSvc.SetAdmin(ctx, g.ID, u.ID, true))
	admin, err := env.groupSvc.IsGroupAdmin(ctx, g.ID, u.ID)
	assert.NoError(t, err)
	assert.True(t, admin)

	// админ-бит у того, кто не состоит в группе
	err = env.groupSvc.SetAdmin(ctx, g.ID, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}
