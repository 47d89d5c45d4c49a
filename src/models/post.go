package models

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID int `db:"id"`

	BoardID int       `db:"board_id"`
	UserID  uuid.UUID `db:"user_id"`

	Title   string `db:"title"`
	Content string `db:"content"`

	ViewCount int `db:"view_count"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
