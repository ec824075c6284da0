package model

import (
	"rosariello/shared/model"
	"time"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldEmail     = "email"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldLastLogin = "last_login"
	FieldActive    = "active"
)

type User struct {
	ID        string     `db:"id"`
	Email     string     `db:"email"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	LastLogin *time.Time `db:"last_login"`
	Active    bool       `db:"active"`
	model.Metadata
}
