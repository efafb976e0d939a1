package domain

import "time"

// Role determines what a user is allowed to do beyond their own data.
type Role string

// User roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a MirrorLog account.
// PasswordHash is an Argon2id encoded hash; RefreshToken is the SHA-256
// hash of the currently valid refresh token, empty after logout. Both
// must survive the store round-trip; API responses go through Public.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	RefreshToken string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
}

// Public returns a copy with credential material stripped, safe to place
// in an API response.
func (u *User) Public() *User {
	pub := *u
	pub.PasswordHash = ""
	pub.RefreshToken = ""
	return &pub
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now()
}
