package entities

import (
	"time"

	"github.com/inkpost/inkpost-backend/internal/db/interfaces"
)

// User represents a registered account
type User struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserSchema defines the database schema for users
var UserSchema = &interfaces.Schema{
	TableName: "users",
	Fields: map[string]interfaces.FieldSchema{
		"id": {
			Type:       "string",
			PrimaryKey: true,
		},
		"username": {
			Type:   "string",
			Unique: true,
		},
		"email": {
			Type:   "string",
			Unique: true,
		},
		"first_name": {
			Type: "string",
		},
		"last_name": {
			Type: "string",
		},
		"password_hash": {
			Type: "string",
		},
		"is_admin": {
			Type:         "bool",
			DefaultValue: false,
		},
		"created_at": {
			Type: "time",
		},
		"updated_at": {
			Type: "time",
		},
	},
	Indexes: []interfaces.Index{
		{
			Name:    "idx_users_username",
			Columns: []string{"username"},
			Unique:  true,
		},
		{
			Name:    "idx_users_email",
			Columns: []string{"email"},
			Unique:  true,
		},
	},
}

// UserFromRecord converts a repository record into a User
func UserFromRecord(record map[string]interface{}) *User {
	return &User{
		ID:           stringField(record, "id"),
		Username:     stringField(record, "username"),
		Email:        stringField(record, "email"),
		FirstName:    stringField(record, "first_name"),
		LastName:     stringField(record, "last_name"),
		PasswordHash: stringField(record, "password_hash"),
		IsAdmin:      boolField(record, "is_admin"),
		CreatedAt:    timeField(record, "created_at"),
		UpdatedAt:    timeField(record, "updated_at"),
	}
}
