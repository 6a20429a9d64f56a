package model

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// MinRequestMessage is the shortest accepted password-reset message.
const MinRequestMessage = 10

// PasswordRequest is a message left on the login page by a user who lost
// their password. An administrator reads it and resets the password by hand.
type PasswordRequest struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate trims the request and checks its fields.
func (p *PasswordRequest) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Message = strings.TrimSpace(p.Message)

	if p.Name == "" {
		return errors.New("name required")
	}
	if utf8.RuneCountInString(p.Name) > 255 {
		return errors.New("name too long")
	}
	if addr, err := mail.ParseAddress(p.Email); err != nil || addr.Address != p.Email {
		return errors.New("invalid email")
	}
	if utf8.RuneCountInString(p.Message) < MinRequestMessage {
		return fmt.Errorf("message must be at least %d characters", MinRequestMessage)
	}
	return nil
}
