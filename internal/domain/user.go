package domain

import "time"

// UserRole distinguishes merchant dashboard users from internal admins
type UserRole string

const (
	RoleMerchant UserRole = "merchant"
	RoleAdmin    UserRole = "admin"
)

// User represents a dashboard account
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	Name         string    `json:"name" bson:"name"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         UserRole  `json:"role" bson:"role"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}
