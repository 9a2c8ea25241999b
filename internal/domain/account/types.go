// Package account contains domain-level types for users and the account forms
// (signup, profile, password change). It is pure and free of transport concerns.
package account

import (
	"strings"

	"github.com/fortunes/fortunes-web/internal/validation"
)

const (
	// UsernameMinLen is the shortest accepted username.
	UsernameMinLen = 3
	// UsernameMaxLen bounds usernames to what the backend stores.
	UsernameMaxLen = 50
	// DisplayNameMaxLen bounds the optional display name.
	DisplayNameMaxLen = 50
	// PasswordMinLen is the shortest accepted password.
	PasswordMinLen = 8
	// EmailMaxLen bounds email addresses.
	EmailMaxLen = 254
)

// User is the session identity returned by the "who am I" endpoint.
type User struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// UserFromPayload maps a raw identity payload into a User.
// Missing or mistyped keys fall back to zero values.
func UserFromPayload(p map[string]any) *User {
	if p == nil {
		return nil
	}
	u := &User{}
	u.Username, _ = p["username"].(string)
	u.Email, _ = p["email"].(string)
	u.EmailVerified, _ = p["email_verified"].(bool)
	return u
}

// SignupInput carries the signup form.
type SignupInput struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Normalize trims the username and email as the backend expects them.
func (in SignupInput) Normalize() SignupInput {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

// Validate returns per-field messages; an empty map means the form may be sent.
func (in SignupInput) Validate() map[string]string {
	return validation.New().
		Validate("username", in.Username,
			validation.Required("Username", UsernameMaxLen),
			validation.MinLen("Username", UsernameMinLen),
			validation.ASCIIPrintable("Username")).
		Validate("email", in.Email,
			validation.Required("Email", EmailMaxLen),
			validation.Email("Email")).
		Validate("password", in.Password,
			validation.Required("Password", 128),
			validation.Password("Password", PasswordMinLen)).
		Validate("display_name", in.DisplayName,
			validation.Optional("Display name", DisplayNameMaxLen)).
		Errors()
}

// ProfileInput carries the profile edit form.
type ProfileInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate checks the profile form.
func (in ProfileInput) Validate() map[string]string {
	return validation.New().
		Validate("username", in.Username,
			validation.Required("Username", UsernameMaxLen),
			validation.ASCIIPrintable("Username")).
		Validate("email", in.Email,
			validation.Required("Email", EmailMaxLen),
			validation.Email("Email")).
		Errors()
}

// PasswordChange carries the password settings form. Confirm never leaves the client.
type PasswordChange struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
	Confirm string `json:"-"`
}

// Mismatch reports whether the new password and its confirmation differ.
func (p PasswordChange) Mismatch() bool {
	return p.New != p.Confirm
}

// FilterUsername drops every character outside the half-width printable range.
func FilterUsername(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x21 || r > 0x7E {
			return -1
		}
		return r
	}, s)
}

// IsValidUsername reports whether s is non-empty and entirely half-width printable.
func IsValidUsername(s string) bool {
	return s != "" && FilterUsername(s) == s
}
