package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOf(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		assert.Equal(t, CodeNotFound, CodeOf(NotFound("board not found")))
	})
	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("while handling request: %w", Conflict("email already registered"))
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.True(t, IsCode(err, CodeConflict))
	})
	t.Run("plain error", func(t *testing.T) {
		assert.Equal(t, CodeUnknown, CodeOf(fmt.Errorf("disk on fire")))
	})
	t.Run("nil cause keeps message", func(t *testing.T) {
		err := Validation("title is required")
		assert.Equal(t, "title is required", err.Error())
	})
	t.Run("cause is visible and unwrappable", func(t *testing.T) {
		cause := fmt.Errorf("connection refused")
		err := Internal("failed to fetch posts", cause)
		assert.Contains(t, err.Error(), "connection refused")
		assert.ErrorIs(t, err, cause)
	})
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("bad")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Conflict("dupe")))
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(Authentication("who are you")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Permission("not yours")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("gone")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Internal("boom", nil)))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("untagged")))
}
