package domain

import "time" // Timestamps

// Roles understood by the backend
const (
	RoleUser  = "user"  // Regular customer
	RoleAdmin = "admin" // Admin console operator
)

// User Model
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`                 // Primary key
	Name      string    `json:"name" gorm:"size:128"`                         // Display name
	Email     string    `json:"email" gorm:"uniqueIndex;size:191;not null"`   // Unique login email
	Phone     string    `json:"phone,omitempty" gorm:"size:32"`               // Optional phone number
	Role      string    `json:"role" gorm:"size:16;default:user"`             // Role: user or admin
	Password  string    `json:"-" gorm:"not null"`                            // Hashed password, never serialised
	CreatedAt time.Time `json:"created_at"`                                   // Registration time
	UpdatedAt time.Time `json:"updated_at,omitempty"`                         // Last profile change
}

// IsAdmin reports whether the user may use the admin console
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// LoginAttempt is one recorded authentication attempt
type LoginAttempt struct {
	ID        string    `json:"id" gorm:"primaryKey;size:64"`
	Email     string    `json:"email" gorm:"index;size:191"`
	Success   bool      `json:"success"`
	IP        string    `json:"ip,omitempty" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginRequest carries credentials for /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email"` // Login email
	Password string `json:"password" binding:"required" validate:"required"`    // Plain password
}

// RegisterRequest carries the registration form
type RegisterRequest struct {
	Name            string `json:"name" binding:"required" validate:"required"`
	Email           string `json:"email" binding:"required" validate:"required,email"`
	Phone           string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
	Password        string `json:"password" binding:"required" validate:"required,min=8"`
	ConfirmPassword string `json:"-" validate:"required,eqfield=Password"` // Checked locally only
}

// ProfileUpdate is a partial update of the current user's profile
type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,min=7,max=20"`
}

// AuthResponse is returned by login, register and refresh
type AuthResponse struct {
	AccessToken string `json:"access_token"`   // Bearer token
	TokenType   string `json:"token_type"`     // Always "bearer"
	ExpiresIn   int64  `json:"expires_in"`     // Lifetime in seconds
	User        *User  `json:"user,omitempty"` // Authenticated user
}

// TokenStats summarises issued tokens
type TokenStats struct {
	Issued  int64 `json:"issued"`
	Revoked int64 `json:"revoked"`
	Active  int64 `json:"active"`
}
