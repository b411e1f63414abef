package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBoardPermissionsValidate(t *testing.T) {
	perms := DefaultBoardPermissions("board-1")
	assert.Nil(t, perms.Validate())
}

func TestValidateOrderingConstraints(t *testing.T) {
	t.Run("add comments may not exceed read comments", func(t *testing.T) {
		perms := DefaultBoardPermissions("b")
		perms.ReadComments = LevelCollaborators
		perms.AddComments = LevelAnyone
		errs := perms.Validate()
		require.NotNil(t, errs)
		assert.Contains(t, errs, PermAddComments)
	})

	t.Run("edit elements may not exceed add elements", func(t *testing.T) {
		perms := DefaultBoardPermissions("b")
		perms.AddElements = LevelCollaborators
		perms.EditElements = LevelRegistered
		errs := perms.Validate()
		require.NotNil(t, errs)
		assert.Contains(t, errs, PermEditElements)
	})

	t.Run("nothing may exceed read board", func(t *testing.T) {
		perms := DefaultBoardPermissions("b")
		perms.ReadBoard = LevelRegistered
		perms.ReadComments = LevelAnyone
		perms.AddElements = LevelAnyone
		errs := perms.Validate()
		require.NotNil(t, errs)
		assert.Contains(t, errs, PermReadComments)
		assert.Contains(t, errs, PermAddElements)
	})

	t.Run("edit board may not exceed edit elements", func(t *testing.T) {
		perms := DefaultBoardPermissions("b")
		perms.EditElements = LevelCreator
		perms.EditBoard = LevelCollaborators
		errs := perms.Validate()
		require.NotNil(t, errs)
		assert.Contains(t, errs, PermEditBoard)
	})
}

func TestForUserAnonymous(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	granted := perms.ForUser(PermissionContext{})

	assert.True(t, granted[PermReadBoard])
	assert.True(t, granted[PermReadComments])
	assert.False(t, granted[PermAddElements])
	assert.False(t, granted[PermEditBoard])
}

func TestForUserAnonymousNeverExceedsReads(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	perms.AddComments = LevelAnyone
	perms.AddElements = LevelAnyone
	perms.EditElements = LevelAnyone
	perms.EditBoard = LevelAnyone

	granted := perms.ForUser(PermissionContext{})
	assert.False(t, granted[PermAddComments])
	assert.False(t, granted[PermAddElements])
	assert.False(t, granted[PermEditElements])
	assert.False(t, granted[PermEditBoard])
}

func TestForUserRegistered(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	perms.AddElements = LevelRegistered

	granted := perms.ForUser(PermissionContext{Authenticated: true})
	assert.True(t, granted[PermReadBoard])
	assert.True(t, granted[PermAddElements])
	assert.False(t, granted[PermEditElements])
	assert.False(t, granted[PermEditBoard])
}

func TestForUserCollaborator(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	granted := perms.ForUser(PermissionContext{Authenticated: true, IsCollaborator: true})

	assert.True(t, granted[PermAddComments])
	assert.True(t, granted[PermAddElements])
	assert.True(t, granted[PermEditElements])
	assert.False(t, granted[PermEditBoard])
}

func TestForUserCreatorAndStaffHoldEverything(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	perms.ReadBoard = LevelCreator

	for _, ctx := range []PermissionContext{
		{Authenticated: true, IsCreator: true},
		{Authenticated: true, IsStaff: true},
	} {
		granted := perms.ForUser(ctx)
		for _, perm := range AllPermissions {
			assert.True(t, granted[perm], "expected %s", perm)
		}
	}
}

func TestForUserUnauthenticatedStaffStillLimitedToReads(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	granted := perms.ForUser(PermissionContext{IsStaff: true})

	assert.True(t, granted[PermReadBoard])
	assert.False(t, granted[PermEditBoard])
}

func TestAllows(t *testing.T) {
	perms := DefaultBoardPermissions("b")
	assert.True(t, perms.Allows(PermissionContext{}, PermReadBoard))
	assert.False(t, perms.Allows(PermissionContext{Authenticated: true}, PermEditBoard))
}
