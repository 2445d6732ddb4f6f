package models

import (
	"time"
)

// Account roles. The queue core only distinguishes staff (may operate the
// queue and check patients in) from patients (may hold bookings).
const (
	RoleStaff   = "staff"
	RolePatient = "patient"
)

// User represents a registered account. Bookings reference users optionally;
// walk-in patients have no account at all.
type User struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	Name      string    `gorm:"size:100;not null;column:name" json:"name"`
	Email     string    `gorm:"size:255;not null;unique;index;column:email" json:"email"`
	Password  string    `gorm:"size:255;not null;column:password" json:"-"`
	Phone     string    `gorm:"size:20;column:phone" json:"phone"`
	Role      string    `gorm:"size:20;not null;check:role IN ('staff', 'patient');column:role" json:"role"`
	Insured   bool      `gorm:"column:insured;not null;default:false" json:"insured"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	return role == RoleStaff || role == RolePatient
}
