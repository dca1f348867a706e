package model

import "time"

// Role names as stored in users.role. An empty role grants nothing.
const (
	RoleManager        = "manager"
	RoleClient         = "client"
	RoleServiceCompany = "service_company"
)

// User is an account holder. Clients and service companies are users too;
// machines and records point at them by id.
type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;size:254;not null"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         string    `gorm:"size:32;not null;default:'';index"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// Label is the display value used wherever a user is shown in a table.
func (u *User) Label() string {
	if u == nil {
		return ""
	}
	return u.Email
}
