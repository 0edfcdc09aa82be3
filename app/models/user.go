package models

import "gorm.io/gorm"

// Staff roles. Admins manage the catalog; cashiers ring up sales.
const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

// User is a staff member who can log in and process sales.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role     string `gorm:"size:50;default:cashier" json:"role"`
}
