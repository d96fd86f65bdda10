package models

import (
	"time"
)

// Role is the access tier of a user account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is the identity record returned by the remote directory.
// ID, Username and CreatedAt are immutable; LastLogin is maintained by the server.
type User struct {
	ID               int64      `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	Role             Role       `json:"role"`
	IsActive         bool       `json:"is_active"`
	EmailVerified    bool       `json:"email_verified"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
	LastLogin        *time.Time `json:"last_login"`
}

// UserCreate is the write-only payload for creating an account.
// Password is plaintext and is transmitted exactly once.
type UserCreate struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"required,emailshape"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=user admin"`
}

// WithDefaults returns a copy with an empty role replaced by RoleUser.
func (c UserCreate) WithDefaults() UserCreate {
	if c.Role == "" {
		c.Role = RoleUser
	}
	return c
}

// UserUpdate is a partial payload. Nil fields are left unchanged on the server.
type UserUpdate struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsEmpty reports whether the update carries no changed fields.
func (u UserUpdate) IsEmpty() bool {
	return u.Email == nil && u.Password == nil && u.Role == nil && u.IsActive == nil
}

// UserList is one page of a listing or search.
type UserList struct {
	Users   []User `json:"users"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit"`
	Offset  int    `json:"offset"`
	HasMore bool   `json:"has_more"`
}

// UserStatistics holds aggregate directory counts reported by the server.
type UserStatistics struct {
	TotalUsers        int64            `json:"total_users"`
	ActiveUsers       int64            `json:"active_users"`
	InactiveUsers     int64            `json:"inactive_users"`
	AdminUsers        int64            `json:"admin_users"`
	RegularUsers      int64            `json:"regular_users"`
	VerifiedUsers     int64            `json:"verified_users"`
	TwoFactorUsers    int64            `json:"two_factor_users"`
	NewUsersToday     int64            `json:"new_users_today"`
	NewUsersThisWeek  int64            `json:"new_users_this_week"`
	NewUsersThisMonth int64            `json:"new_users_this_month"`
	RecentLogins      int64            `json:"recent_logins"`
	RoleBreakdown     map[string]int64 `json:"role_breakdown,omitempty"`
}
