package website

import (
	"testing"
	"time"

	"git.agora.community/agora/agora/src/apperr"
	"git.agora.community/agora/agora/src/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCanDemoteUser(t *testing.T) {
	actor := &models.User{ID: uuid.New(), IsAdmin: true}

	t.Run("another admin with admins to spare", func(t *testing.T) {
		target := &models.User{ID: uuid.New(), IsAdmin: true}
		assert.Nil(t, canDemoteUser(actor, target, 1))
	})

	t.Run("yourself", func(t *testing.T) {
		err := canDemoteUser(actor, actor, 5)
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		assert.EqualError(t, err, "you cannot demote yourself")
	})

	t.Run("a non-admin", func(t *testing.T) {
		target := &models.User{ID: uuid.New()}
		err := canDemoteUser(actor, target, 5)
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		assert.EqualError(t, err, "user is not an admin")
	})

	t.Run("the last remaining admin", func(t *testing.T) {
		target := &models.User{ID: uuid.New(), IsAdmin: true}
		err := canDemoteUser(actor, target, 0)
		assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
		assert.EqualError(t, err, "cannot demote the last remaining admin")
	})
}

func TestCanDeleteUser(t *testing.T) {
	actor := &models.User{ID: uuid.New(), IsAdmin: true}
	now := time.Now()

	t.Run("a regular member", func(t *testing.T) {
		target := &models.User{ID: uuid.New()}
		assert.Nil(t, canDeleteUser(actor, target, 0))
	})

	t.Run("an admin with admins to spare", func(t *testing.T) {
		target := &models.User{ID: uuid.New(), IsAdmin: true}
		assert.Nil(t, canDeleteUser(actor, target, 1))
	})

	t.Run("yourself", func(t *testing.T) {
		err := canDeleteUser(actor, actor, 5)
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		assert.EqualError(t, err, "you cannot delete your own account")
	})

	t.Run("an already deleted user", func(t *testing.T) {
		target := &models.User{ID: uuid.New(), DeletedAt: &now}
		err := canDeleteUser(actor, target, 5)
		assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
		assert.EqualError(t, err, "user is already deleted")
	})

	t.Run("the last remaining admin", func(t *testing.T) {
		target := &models.User{ID: uuid.New(), IsAdmin: true}
		err := canDeleteUser(actor, target, 0)
		assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
		assert.EqualError(t, err, "the last remaining admin cannot be deleted")
	})

	t.Run("deleting yourself reads as self-deletion even when deleted", func(t *testing.T) {
		deletedActor := &models.User{ID: actor.ID, DeletedAt: &now}
		err := canDeleteUser(actor, deletedActor, 5)
		assert.EqualError(t, err, "you cannot delete your own account")
	})
}
