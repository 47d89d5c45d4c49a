package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

type User struct {
	ID uuid.UUID `db:"id"`

	Email       string `db:"email"`
	Username    string `db:"username"`
	DisplayName string `db:"display_name"`
	Password    string `db:"password"`

	IsAdmin bool `db:"is_admin"`

	CreatedAt time.Time `db:"created_at"`

	// Soft delete. Deleted users keep their rows (and their posts) but can
	// no longer log in or show up in normal queries.
	DeletedAt *time.Time `db:"deleted_at"`
}

func (u *User) BestName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleMember
}
