package models

import "time"

type WritePermission string

const (
	WritePermissionAll    WritePermission = "all"    // anyone, signed in or not
	WritePermissionMember WritePermission = "member" // any signed-in member
	WritePermissionAdmin  WritePermission = "admin"  // admins only
)

type Board struct {
	ID int `db:"id"`

	Name        string `db:"name"`
	Slug        string `db:"slug"`
	Description string `db:"description"`

	WritePermission WritePermission `db:"write_permission"`

	CreatedAt time.Time `db:"created_at"`
}
