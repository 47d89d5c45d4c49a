package auth

import (
	"git.agora.community/agora/agora/src/models"
	"github.com/google/uuid"
)

// Permissions describes what the acting user may do to a piece of content.
type Permissions struct {
	Read    bool `json:"read"`
	Update  bool `json:"update"`
	Delete  bool `json:"delete"`
	IsOwner bool `json:"is_owner"`
}

// CalculatePermissions applies the ownership rules shared by posts and
// comments. Everyone can read. Owners and admins can update and delete.
func CalculatePermissions(ownerID uuid.UUID, actor *models.User) Permissions {
	perms := Permissions{Read: true}
	if actor == nil {
		return perms
	}

	perms.IsOwner = actor.ID == ownerID
	perms.Update = perms.IsOwner || actor.IsAdmin
	perms.Delete = perms.Update
	return perms
}

// CanWriteBoard says whether the actor may create posts on a board with
// the given write permission. Unknown permission values fail closed.
func CanWriteBoard(writePermission models.WritePermission, actor *models.User) bool {
	switch writePermission {
	case models.WritePermissionAll:
		return true
	case models.WritePermissionMember:
		return actor != nil
	case models.WritePermissionAdmin:
		return actor != nil && actor.IsAdmin
	default:
		return false
	}
}
