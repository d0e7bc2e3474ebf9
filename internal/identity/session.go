package identity

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Session is the signed-in identity. It is read-only outside the Gate.
type Session struct {
	ID          string    `json:"-"`
	UserID      string    `json:"userId" validate:"required,max=256"`
	DisplayName string    `json:"displayName" validate:"max=256"`
	Email       string    `json:"email,omitempty" validate:"omitempty,email"`
	AvatarURL   string    `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	SignedInAt  time.Time `json:"signedInAt"`
}

var sessionValidator = validator.New(validator.WithRequiredStructEnabled())

func (s Session) validate() error {
	return sessionValidator.Struct(s)
}
