package models

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID int `db:"id"`

	PostID int       `db:"post_id"`
	UserID uuid.UUID `db:"user_id"`

	// Comments are at most one level deep: a comment either sits directly on
	// the post (ParentID nil) or replies to a top-level comment.
	ParentID *int `db:"parent_id"`

	Content string `db:"content"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
