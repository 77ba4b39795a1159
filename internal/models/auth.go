package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// RegisterStudentRequest is the student registration payload.
// Authoritative validation happens here, server-side; browser form
// constraints only mirror the required/min rules.
type RegisterStudentRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	LastName        string `json:"last_name" validate:"required,max=150"`
	Grade           int    `json:"grade" validate:"required,gte=5,lte=8"`
	BirthDate       Date   `json:"birth_date" validate:"required"`
	ParentEmail     string `json:"parent_email" validate:"omitempty,email"`
	IP              string `json:"-"`
	UserAgent       string `json:"-"`
}

// RegisterTeacherRequest is the teacher registration payload.
type RegisterTeacherRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,max=150"`
	LastName        string `json:"last_name" validate:"required,max=150"`
	SchoolName      string `json:"school_name" validate:"omitempty,max=200"`
	IP              string `json:"-"`
	UserAgent       string `json:"-"`
}

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse is the flat body returned by login and registration.
// RequiresConsent is present only on the student registration path.
type AuthResponse struct {
	Message         string    `json:"message"`
	User            *UserInfo `json:"user,omitempty"`
	RequiresConsent *bool     `json:"requires_consent,omitempty"`
}

// TokenPair carries the freshly issued credentials. The handler writes
// them into httpOnly cookies; they never appear in a response body.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// PasswordResetRequest initiates the reset flow.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest completes the reset flow with the emailed
// uid/token pair.
type PasswordResetConfirmRequest struct {
	UID                string `json:"uid" validate:"required"`
	Token              string `json:"token" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ConsentApproveRequest activates a student account from the parental
// consent link.
type ConsentApproveRequest struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID      int64       `json:"user_id"`
	Email       string      `json:"email"`
	FullName    string      `json:"full_name"`
	AccountType AccountType `json:"user_type"`
	jwt.RegisteredClaims
}
