package models

import "time"

// User is an account of the tracker. Username and Email are stored lowercase.
type User struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)"`
	Username         string    `gorm:"uniqueIndex;type:varchar(255);not null"`
	Email            string    `gorm:"uniqueIndex;type:varchar(255);not null"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"`
	EmailVerified    bool      `gorm:"not null;default:false"`
	FirstName        string    `gorm:"type:varchar(20);not null;default:''"`
	LastName         string    `gorm:"type:varchar(40);not null;default:''"`
	MiddleName       string    `gorm:"type:varchar(40);not null;default:''"`
	RegistrationDate time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time
}

// UserResponse is the public projection of a User.
type UserResponse struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	EmailVerified    bool      `json:"emailVerified"`
	FirstName        string    `json:"firstName,omitempty"`
	LastName         string    `json:"lastName,omitempty"`
	MiddleName       string    `json:"middleName,omitempty"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// NewUserResponse projects u without its password hash.
func NewUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		EmailVerified:    u.EmailVerified,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		MiddleName:       u.MiddleName,
		RegistrationDate: u.RegistrationDate,
	}
}
