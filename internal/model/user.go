package model

import "time"

// Role names for the JWT "role" claim and the users record.
const (
	RoleStudent = "STUDENT"
	RoleAdmin   = "ADMIN"
)

// User is the account record kept in the users collection.  The engine
// treats users as read-only collaborators; only the auth surface writes
// them.  The password hash is never serialised.
//
// Fields:
//
//	ID           – generated record id.
//	FullName     – display name shown on the profile page.
//	Email        – unique login email.
//	StudentID    – institutional student identifier.
//	Role         – STUDENT or ADMIN.
//	PasswordHash – bcrypt hash of the login password.
//	CreatedAt    – account creation timestamp.
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	StudentID    string    `json:"student_id"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
