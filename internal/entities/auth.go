package entities

import (
	"time"

	"staybnb/internal/db"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string  `json:"token"`
	User  db.User `json:"user"`
}

type UpdateProfileRequest struct {
	Name        string     `json:"name" validate:"required,min=2,max=80"`
	Phone       string     `json:"phone" validate:"omitempty,e164"`
	DateOfBirth *time.Time `json:"dateOfBirth"`
	Address     string     `json:"address" validate:"max=200"`
	Bio         string     `json:"bio" validate:"max=1000"`
	Experience  string     `json:"experience" validate:"max=1000"`
	Languages   []string   `json:"languages" validate:"max=20,dive,min=2,max=40"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=72,nefield=CurrentPassword"`
}

type BecomeHostRequest struct {
	Bio        string   `json:"bio" validate:"max=1000"`
	Experience string   `json:"experience" validate:"max=1000"`
	Languages  []string `json:"languages" validate:"max=20,dive,min=2,max=40"`
}
