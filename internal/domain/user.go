package domain

import "time"

// User is an authenticated account. Role is not stored here: it is derived
// from superuser/staff flags and from the presence of profile rows.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	IsStaff      bool       `json:"isStaff"`
	IsSuperuser  bool       `json:"isSuperuser"`
	IsActive     bool       `json:"isActive"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
