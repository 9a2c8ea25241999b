// Package auth implements the account flows a tab can run: login, signup,
// email confirmation, profile update and password change. Each flow
// validates locally first and converts every failure into an AppError whose
// message is what the user should see.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/fortunes/fortunes-web/internal/apiclient"
	"github.com/fortunes/fortunes-web/internal/domain/account"
	apperrors "github.com/fortunes/fortunes-web/internal/errors"
)

const (
	loginPath          = "/api/v1/auth/login"
	signupPath         = "/api/v1/auth/signup"
	confirmEmailPath   = "/api/v1/auth/confirm-email"
	updatePath         = "/api/v1/auth/update"
	changePasswordPath = "/api/v1/auth/change-password"
)

// User-facing messages.
const (
	MsgFixErrors       = "Please fix the highlighted errors."
	MsgNetwork         = "Network error."
	MsgSessionExpired  = "Your session has expired, please log in again."
	MsgPasswordsDiffer = "The new passwords do not match."
	MsgSignedUp        = "Signup succeeded. You are logged in."
	MsgEmailConfirmed  = "Your email address has been confirmed."
	MsgProfileSaved    = "Profile updated."
	MsgPasswordSaved   = "Password updated."
)

// API is the subset of the HTTP client the flows need. All account calls use
// the inline 401 policy so each flow can phrase its own message.
type API interface {
	FetchInline(ctx context.Context, req apiclient.Request) (*apiclient.Response, error)
}

// Session is the part of the session holder the flows update.
type Session interface {
	Refresh(ctx context.Context) (map[string]any, error)
	User() *account.User
	SetUser(u *account.User)
}

// Locator supplies the post-login destination.
type Locator interface {
	Next() string
}

// Options bundles dependencies for New.
type Options struct {
	API     API
	Session Session
	Locator Locator
	Logger  *slog.Logger
}

// Service runs account flows against the backend.
type Service struct {
	api     API
	session Session
	locator Locator
	logger  *slog.Logger
}

// New creates a Service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:     opts.API,
		session: opts.Session,
		locator: opts.Locator,
		logger:  logger.With("component", "auth"),
	}
}

// Login posts the credentials as a form, then confirms the session with the
// identity endpoint. It returns where the tab should go next.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	resp, err := s.api.FetchInline(ctx, apiclient.PostForm(loginPath, form))
	if err != nil {
		return "", networkError(err)
	}
	if !resp.OK() {
		msg := fmt.Sprintf("Login failed: %d", resp.StatusCode)
		if resp.StatusCode == http.StatusUnauthorized {
			return "", apperrors.Unauthorized(msg)
		}
		return "", apperrors.Failed(msg)
	}

	if _, err := s.session.Refresh(ctx); err != nil {
		return "", apperrors.Wrap(err, apperrors.GetCode(err), "Login succeeded but the session could not be confirmed.")
	}
	s.logger.InfoContext(ctx, "logged in", "username", username)

	next := "/"
	if s.locator != nil {
		if n := s.locator.Next(); n != "" {
			next = n
		}
	}
	return next, nil
}

// Signup validates and submits the signup form. Field errors are returned
// alongside a validation error and no request is sent. The backend logs the
// new user in, so a successful signup refreshes the session.
func (s *Service) Signup(ctx context.Context, in account.SignupInput) (map[string]string, error) {
	in = in.Normalize()
	if errs := in.Validate(); len(errs) > 0 {
		return errs, apperrors.Validation(MsgFixErrors)
	}

	resp, err := s.api.FetchInline(ctx, apiclient.PostJSON(signupPath, in))
	if err != nil {
		return nil, networkError(err)
	}
	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, apperrors.Rejected(resp.Detail())
	}
	if !resp.OK() {
		return nil, apperrors.Failed(failureText("Signup failed", resp))
	}

	if _, err := s.session.Refresh(ctx); err != nil {
		s.logger.WarnContext(ctx, "session refresh after signup failed", "error", err)
	}
	return nil, nil
}

// ConfirmEmail redeems a confirmation token from the emailed link.
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.ValidationField("token", "The confirmation link has no token.")
	}

	resp, err := s.api.FetchInline(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   confirmEmailPath,
		Query:  url.Values{"token": {token}},
	})
	if err != nil {
		return networkError(err)
	}
	if !resp.OK() {
		return apperrors.Failed(failureText("Confirmation failed", resp))
	}

	if s.session.User() != nil {
		if _, err := s.session.Refresh(ctx); err != nil {
			s.logger.DebugContext(ctx, "session refresh after confirmation failed", "error", err)
		}
	}
	return nil
}

// UpdateProfile saves the username and email. On success the session user
// is updated in place, keeping the verification flag the server last reported.
func (s *Service) UpdateProfile(ctx context.Context, in account.ProfileInput) (map[string]string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if errs := in.Validate(); len(errs) > 0 {
		return errs, apperrors.Validation(MsgFixErrors)
	}

	resp, err := s.api.FetchInline(ctx, apiclient.PostJSON(updatePath, in))
	if err != nil {
		return nil, networkError(err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.Unauthorized(MsgSessionExpired)
	}
	if !resp.OK() {
		return nil, apperrors.Failed("Update failed: " + resp.Text())
	}

	u := &account.User{Username: in.Username, Email: in.Email}
	if cur := s.session.User(); cur != nil && strings.EqualFold(cur.Email, in.Email) {
		u.EmailVerified = cur.EmailVerified
	}
	s.session.SetUser(u)
	return nil, nil
}

// ChangePassword checks the confirmation locally before sending anything.
func (s *Service) ChangePassword(ctx context.Context, in account.PasswordChange) error {
	if in.Current == "" || in.New == "" {
		return apperrors.Validation("Current and new password are required.")
	}
	if in.Mismatch() {
		return apperrors.ValidationField("confirm", MsgPasswordsDiffer)
	}

	resp, err := s.api.FetchInline(ctx, apiclient.PostJSON(changePasswordPath, in))
	if err != nil {
		return networkError(err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return apperrors.Unauthorized(MsgSessionExpired)
	}
	if !resp.OK() {
		return apperrors.Failed("Change failed: " + resp.Text())
	}
	return nil
}

func failureText(prefix string, resp *apiclient.Response) string {
	msg := fmt.Sprintf("%s: %d", prefix, resp.StatusCode)
	if text := strings.TrimSpace(resp.Text()); text != "" {
		msg += " " + text
	}
	return msg
}

func networkError(err error) error {
	return apperrors.Wrap(err, apperrors.ErrCodeNetwork, MsgNetwork)
}
