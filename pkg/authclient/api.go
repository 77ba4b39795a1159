package authclient

import (
	"context"
	"net/http"
)

// API paths relative to the base URL.
const (
	registerStudentPath = "/auth/register/student/"
	registerTeacherPath = "/auth/register/teacher/"
	loginPath           = "/auth/login/"
	logoutPath          = "/auth/logout/"
	refreshPath         = "/auth/token/refresh/"
	mePath              = "/auth/me/"
	passwordResetPath   = "/auth/password-reset/"
	passwordConfirmPath = "/auth/password-reset/confirm/"
	consentApprovePath  = "/consent/approve/"
)

// RegisterStudentInput is the student registration payload.
type RegisterStudentInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Grade           int    `json:"grade"`
	BirthDate       string `json:"birth_date"`
	ParentEmail     string `json:"parent_email,omitempty"`
}

// RegisterTeacherInput is the teacher registration payload.
type RegisterTeacherInput struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	SchoolName      string `json:"school_name,omitempty"`
}

// AuthResult is the body returned by login and registration.
type AuthResult struct {
	Message         string `json:"message"`
	User            *User  `json:"user,omitempty"`
	RequiresConsent bool   `json:"requires_consent,omitempty"`
}

type loginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterStudent creates a student account. When the account activates
// immediately the session becomes authenticated; on the consent path it
// becomes unauthenticated until a parent approves.
func (c *Client) RegisterStudent(ctx context.Context, in RegisterStudentInput) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, registerStudentPath, in, &res); err != nil {
		return nil, err
	}
	if res.User != nil {
		c.session.SetAuthenticated(res.User)
	} else {
		c.session.SetUnauthenticated()
	}
	return &res, nil
}

// RegisterTeacher creates a teacher account and authenticates the session.
func (c *Client) RegisterTeacher(ctx context.Context, in RegisterTeacherInput) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, registerTeacherPath, in, &res); err != nil {
		return nil, err
	}
	if res.User != nil {
		c.session.SetAuthenticated(res.User)
	}
	return &res, nil
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var res AuthResult
	if err := c.do(ctx, http.MethodPost, loginPath, loginInput{Email: email, Password: password}, &res); err != nil {
		return nil, err
	}
	c.session.SetAuthenticated(res.User)
	return &res, nil
}

// Logout ends the session. The local session flips to unauthenticated
// even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, logoutPath, struct{}{}, nil)
	c.session.SetUnauthenticated()
	return err
}

// Me fetches the current user record.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, mePath, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Refresh rotates the token pair explicitly.
func (c *Client) Refresh(ctx context.Context) error {
	return c.refreshSession(ctx)
}

// Resolve bootstraps the session from existing cookies: it asks the API
// who the cookies belong to and resolves the store either way. A login
// or logout that lands while the call is in flight wins; the stale
// resolution is discarded.
func (c *Client) Resolve(ctx context.Context) SessionState {
	seq := c.session.Begin()

	user, err := c.Me(ctx)
	if err != nil {
		// Network trouble is not proof of a dead session, but the UI
		// cannot stay on the loading state forever: any failure here
		// resolves to unauthenticated.
		c.session.ResolveUnauthenticated(seq)
		return c.session.State()
	}

	c.session.ResolveAuthenticated(seq, user)
	return c.session.State()
}
