package auth

import (
	"net/mail"
	"strings"

	"ai-notes-backend/internal/domain"
	"ai-notes-backend/internal/models"
)

const minPasswordLength = 8

// Credentials are the email and password sent by the login and sign-up forms.
type Credentials struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// SignInInput holds parameters for SignIn.
type SignInInput struct {
	Credentials
	Meta models.SessionMetadata
}

// SignUpInput holds parameters for SignUp.
type SignUpInput struct {
	Credentials
	Meta models.SessionMetadata
}

func (c *Credentials) normalize() {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
}

func (c Credentials) validate(signUp bool) error {
	var errs []domain.FieldError

	if c.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "Email is required"})
	} else if _, err := mail.ParseAddress(c.Email); err != nil || len(c.Email) > 254 {
		errs = append(errs, domain.FieldError{Field: "email", Message: "Email is invalid"})
	}

	switch {
	case c.Password == "":
		errs = append(errs, domain.FieldError{Field: "password", Message: "Password is required"})
	case len(c.Password) > maxPasswordBytes:
		errs = append(errs, domain.FieldError{Field: "password", Message: "Password is too long"})
	case signUp && len(c.Password) < minPasswordLength:
		errs = append(errs, domain.FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
