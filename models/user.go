package models

import "time"

// User is a student account. Signup is a two-step flow: the account is
// created unverified with a pending OTP and only becomes usable after the
// OTP is confirmed.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	EnrollmentNo string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"enrollment_no"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	IsVerified   bool       `gorm:"not null;default:false" json:"is_verified"`
	OTP          *string    `gorm:"type:varchar(6)" json:"-"`
	OTPExpires   *time.Time `json:"-"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
