package auth

import (
	"testing"

	"git.agora.community/agora/agora/src/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCalculatePermissions(t *testing.T) {
	ownerID := uuid.New()
	owner := &models.User{ID: ownerID}
	admin := &models.User{ID: uuid.New(), IsAdmin: true}
	stranger := &models.User{ID: uuid.New()}

	t.Run("owner", func(t *testing.T) {
		perms := CalculatePermissions(ownerID, owner)
		assert.Equal(t, Permissions{Read: true, Update: true, Delete: true, IsOwner: true}, perms)
	})
	t.Run("admin who is not the owner", func(t *testing.T) {
		perms := CalculatePermissions(ownerID, admin)
		assert.Equal(t, Permissions{Read: true, Update: true, Delete: true, IsOwner: false}, perms)
	})
	t.Run("unrelated user", func(t *testing.T) {
		perms := CalculatePermissions(ownerID, stranger)
		assert.Equal(t, Permissions{Read: true, Update: false, Delete: false, IsOwner: false}, perms)
	})
	t.Run("anonymous", func(t *testing.T) {
		perms := CalculatePermissions(ownerID, nil)
		assert.Equal(t, Permissions{Read: true, Update: false, Delete: false, IsOwner: false}, perms)
	})
	t.Run("admin who owns the thing", func(t *testing.T) {
		adminOwner := &models.User{ID: ownerID, IsAdmin: true}
		perms := CalculatePermissions(ownerID, adminOwner)
		assert.Equal(t, Permissions{Read: true, Update: true, Delete: true, IsOwner: true}, perms)
	})
}

func TestCanWriteBoard(t *testing.T) {
	member := &models.User{ID: uuid.New()}
	admin := &models.User{ID: uuid.New(), IsAdmin: true}

	tests := []struct {
		name     string
		wp       models.WritePermission
		actor    *models.User
		canWrite bool
	}{
		{"all, anonymous", models.WritePermissionAll, nil, true},
		{"all, member", models.WritePermissionAll, member, true},
		{"all, admin", models.WritePermissionAll, admin, true},
		{"member, anonymous", models.WritePermissionMember, nil, false},
		{"member, member", models.WritePermissionMember, member, true},
		{"member, admin", models.WritePermissionMember, admin, true},
		{"admin, anonymous", models.WritePermissionAdmin, nil, false},
		{"admin, member", models.WritePermissionAdmin, member, false},
		{"admin, admin", models.WritePermissionAdmin, admin, true},
		{"unknown permission fails closed", "sudo", admin, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.canWrite, CanWriteBoard(test.wp, test.actor))
		})
	}
}
