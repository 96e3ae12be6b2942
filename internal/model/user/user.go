// Package user defines the account model and its request payloads.
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/deppfellow/vistual/internal/model"
	"github.com/deppfellow/vistual/internal/validation"
)

// User is a registered account. The password hash never leaves the server.
type User struct {
	model.Base
	Name         string `json:"name" db:"name"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ------------------------------------------------------------

type RegisterPayload struct {
	Name            string `json:"name" validate:"required,min=1,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// Validate trims the name and email before checking the tags. The tag
// limit counts runes, so the bcrypt byte limit is checked separately.
func (p *RegisterPayload) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = NormalizeEmail(p.Email)
	if err := validation.Struct(p); err != nil {
		return err
	}

	if len(p.Password) > MaxPasswordBytes {
		return validation.CustomValidationErrors{{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes),
		}}
	}
	return nil
}

// ------------------------------------------------------------

type LoginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (p *LoginPayload) Validate() error {
	p.Email = NormalizeEmail(p.Email)
	return validation.Struct(p)
}

// ------------------------------------------------------------

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}
