package auth

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSessionID(t *testing.T) {
	id := NewSessionID()
	// 32 bytes of entropy, base64url without padding
	assert.Equal(t, 43, len(id))
	assert.NotEqual(t, id, NewSessionID())
}

func TestNewCSRFToken(t *testing.T) {
	token := NewCSRFToken()
	assert.Equal(t, 32, len(token))
	_, err := hex.DecodeString(token)
	assert.Nil(t, err)
	assert.NotEqual(t, token, NewCSRFToken())
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	sessionID := NewSessionID()

	t.Run("get or create is idempotent", func(t *testing.T) {
		first, err := store.GetOrCreate(ctx, sessionID)
		assert.Nil(t, err)
		second, err := store.GetOrCreate(ctx, sessionID)
		assert.Nil(t, err)
		assert.Equal(t, first.CSRFToken, second.CSRFToken)
	})
	t.Run("verify wants an exact match", func(t *testing.T) {
		session, err := store.GetOrCreate(ctx, sessionID)
		assert.Nil(t, err)

		ok, err := store.Verify(ctx, sessionID, session.CSRFToken)
		assert.Nil(t, err)
		assert.True(t, ok)

		ok, err = store.Verify(ctx, sessionID, "definitely not the token")
		assert.Nil(t, err)
		assert.False(t, ok)
	})
	t.Run("unknown sessions fail closed", func(t *testing.T) {
		ok, err := store.Verify(ctx, "never seen before", "anything")
		assert.Nil(t, err)
		assert.False(t, ok)
	})
	t.Run("deleted sessions fail closed", func(t *testing.T) {
		session, err := store.GetOrCreate(ctx, sessionID)
		assert.Nil(t, err)

		err = store.Delete(ctx, sessionID)
		assert.Nil(t, err)

		ok, err := store.Verify(ctx, sessionID, session.CSRFToken)
		assert.Nil(t, err)
		assert.False(t, ok)
	})
	t.Run("recreated sessions get a fresh token", func(t *testing.T) {
		first, err := store.GetOrCreate(ctx, sessionID)
		assert.Nil(t, err)
		err = store.Delete(ctx, sessionID)
		assert.Nil(t, err)
		second, err := store.GetOrCreate(ctx, sessionID)
		assert.Nil(t, err)
		assert.NotEqual(t, first.CSRFToken, second.CSRFToken)
	})
}
