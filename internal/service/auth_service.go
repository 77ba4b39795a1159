package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Kaensy/mathed-romania/internal/models"
	appErrors "github.com/Kaensy/mathed-romania/pkg/errors"
	"github.com/Kaensy/mathed-romania/pkg/linktoken"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateStudent(ctx context.Context, user *models.User, profile *models.StudentProfile) error
	CreateTeacher(ctx context.Context, user *models.User, profile *models.TeacherProfile) error
	GetStudentProfile(ctx context.Context, userID int64) (*models.StudentProfile, error)
	GetTeacherProfile(ctx context.Context, userID int64) (*models.TeacherProfile, error)
	ActivateStudent(ctx context.Context, userID int64, approvedAt time.Time) error
	UpdateLastLogin(ctx context.Context, id int64, ts time.Time) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string, updatedAt time.Time) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error
	RevokeUserRefreshTokens(ctx context.Context, userID int64) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type linkTokenStore interface {
	Consume(ctx context.Context, purpose, token string, ttl time.Duration) (bool, error)
}

type mailDispatcher interface {
	Enqueue(to, subject, body string)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret  string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	Issuer             string
	FrontendURL        string
	LinkSecret         string
	ConsentLinkTTL     time.Duration
	ResetLinkTTL       time.Duration
	MinimumConsentAge  int
}

// AuthService provides the registration, session and account-recovery
// use cases behind the /auth endpoints.
type AuthService struct {
	repo          authUserRepository
	links         linkTokenStore
	mail          mailDispatcher
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *MetricsService
	config        AuthConfig
	consentSigner *linktoken.Signer
	resetSigner   *linktoken.Signer
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authUserRepository, links linkTokenStore, mail mailDispatcher, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.MinimumConsentAge <= 0 {
		config.MinimumConsentAge = 16
	}

	// Field errors go to the client keyed by JSON name, not Go name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &AuthService{
		repo:          repo,
		links:         links,
		mail:          mail,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
		config:        config,
		consentSigner: linktoken.NewSigner(config.LinkSecret, config.ConsentLinkTTL),
		resetSigner:   linktoken.NewSigner(config.LinkSecret, config.ResetLinkTTL),
	}
}

// RegisterStudent creates a student account. Under-age students are created
// inactive behind the parental consent gate; of-age students get a session
// immediately (the returned TokenPair is nil on the consent path).
func (s *AuthService) RegisterStudent(ctx context.Context, req models.RegisterStudentRequest) (*models.AuthResponse, *models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, s.validationError(err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.ParentEmail = strings.TrimSpace(req.ParentEmail)

	fields := appErrors.FieldErrors{}
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		fields.Add("email", "An account with this email already exists.")
	}

	age := req.BirthDate.Age(time.Now().UTC())
	needsConsent := age < s.config.MinimumConsentAge
	if needsConsent {
		if req.ParentEmail == "" {
			fields.Add("parent_email", fmt.Sprintf("Parent email is required for students under %d.", s.config.MinimumConsentAge))
		} else if strings.EqualFold(req.ParentEmail, req.Email) {
			fields.Add("parent_email", "Parent email must be different from student email.")
		}
	}
	if len(fields) > 0 {
		return nil, nil, appErrors.WithFields(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AccountType:  models.AccountStudent,
		Active:       !needsConsent,
	}
	consentStatus := models.ConsentApproved
	if needsConsent {
		consentStatus = models.ConsentPending
	}
	profile := &models.StudentProfile{
		Grade:         req.Grade,
		BirthDate:     req.BirthDate,
		ParentEmail:   req.ParentEmail,
		ConsentStatus: consentStatus,
	}

	if err := s.repo.CreateStudent(ctx, user, profile); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student account")
	}

	s.audit(ctx, &user.ID, models.AuditActionRegister, req.IP, req.UserAgent, `{"account_type":"student"}`)
	s.metrics.RecordRegistration(models.AccountStudent)

	requiresConsent := needsConsent
	if needsConsent {
		s.sendConsentEmail(user, profile)
		return &models.AuthResponse{
			Message: "Account created. A consent email has been sent to your parent. " +
				"Your account will be activated once they approve.",
			RequiresConsent: &requiresConsent,
		}, nil, nil
	}

	tokens, err := s.issueTokens(ctx, user, req.IP, req.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	info := s.userInfo(user, &models.Profile{Student: profile})
	return &models.AuthResponse{
		Message:         "Account created successfully.",
		RequiresConsent: &requiresConsent,
		User:            info,
	}, tokens, nil
}

// RegisterTeacher creates a teacher account, which activates immediately.
func (s *AuthService) RegisterTeacher(ctx context.Context, req models.RegisterTeacherRequest) (*models.AuthResponse, *models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, s.validationError(err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		fields := appErrors.FieldErrors{}
		fields.Add("email", "An account with this email already exists.")
		return nil, nil, appErrors.WithFields(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		AccountType:  models.AccountTeacher,
		Active:       true,
	}
	profile := &models.TeacherProfile{
		ReferralCode:   generateReferralCode(),
		SchoolName:     req.SchoolName,
		CommissionRate: 0.25,
	}

	if err := s.repo.CreateTeacher(ctx, user, profile); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher account")
	}

	s.audit(ctx, &user.ID, models.AuditActionRegister, req.IP, req.UserAgent, `{"account_type":"teacher"}`)
	s.metrics.RecordRegistration(models.AccountTeacher)

	tokens, err := s.issueTokens(ctx, user, req.IP, req.UserAgent)
	if err != nil {
		return nil, nil, err
	}
	info := s.userInfo(user, &models.Profile{Teacher: profile})
	return &models.AuthResponse{
		Message: "Account created successfully.",
		User:    info,
	}, tokens, nil
}

// Login authenticates a user and returns the issued token pair.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, *models.TokenPair, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, s.validationError(err)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordLogin(false)
			return nil, nil, appErrors.ErrInvalidCredentials
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.metrics.RecordLogin(false)
		return nil, nil, appErrors.ErrInvalidCredentials
	}

	if !user.Active {
		s.metrics.RecordLogin(false)
		if user.AccountType == models.AccountStudent {
			if profile, perr := s.repo.GetStudentProfile(ctx, user.ID); perr == nil && profile.ConsentStatus == models.ConsentPending {
				return nil, nil, appErrors.ErrConsentPending
			}
		}
		return nil, nil, appErrors.ErrInactiveAccount
	}

	tokens, err := s.issueTokens(ctx, user, req.IP, req.UserAgent)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}
	s.audit(ctx, &user.ID, models.AuditActionLogin, req.IP, req.UserAgent, `{"status":"success"}`)
	s.metrics.RecordLogin(true)

	info, err := s.Profile(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &models.AuthResponse{Message: "Login successful.", User: info}, tokens, nil
}

// Refresh validates and rotates the refresh token, returning a new pair.
// The refresh endpoint stays safe under concurrent invocation: each stored
// token rotates at most once, and a lost race surfaces as 401.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, ip, userAgent string) (*models.TokenPair, error) {
	if refreshToken == "" {
		s.metrics.RecordRefresh(false)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "No refresh token found.")
	}

	stored, err := s.repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordRefresh(false)
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or expired refresh token.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch refresh token")
	}

	if stored.Revoked || time.Now().UTC().After(stored.ExpiresAt) {
		s.metrics.RecordRefresh(false)
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or expired refresh token.")
	}

	user, err := s.repo.FindByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordRefresh(false)
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or expired refresh token.")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		s.metrics.RecordRefresh(false)
		return nil, appErrors.ErrInactiveAccount
	}

	if err := s.repo.RevokeRefreshToken(ctx, stored.ID, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to revoke used refresh token", zap.Error(err))
	}

	tokens, err := s.issueTokens(ctx, user, ip, userAgent)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRefresh(true)
	return tokens, nil
}

// Logout revokes the presented refresh token. Failures are swallowed:
// the caller clears its cookies regardless, so a dangling server-side
// token must never block the logout.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, userID int64, ip, userAgent string) {
	if refreshToken != "" {
		stored, err := s.repo.FindRefreshToken(ctx, refreshToken)
		if err == nil {
			if err := s.repo.RevokeRefreshToken(ctx, stored.ID, time.Now().UTC()); err != nil {
				s.logger.Warn("failed to revoke refresh token on logout", zap.Error(err))
			}
		}
	}
	s.audit(ctx, &userID, models.AuditActionLogout, ip, userAgent, `{"status":"logout"}`)
}

// Profile returns the user record with its account-type profile variant.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*models.UserInfo, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUnauthorized
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	var profile *models.Profile
	switch user.AccountType {
	case models.AccountStudent:
		sp, err := s.repo.GetStudentProfile(ctx, user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		if sp != nil {
			profile = &models.Profile{Student: sp}
		}
	case models.AccountTeacher:
		tp, err := s.repo.GetTeacherProfile(ctx, user.ID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
		}
		if tp != nil {
			profile = &models.Profile{Teacher: tp}
		}
	}

	return s.userInfo(user, profile), nil
}

// ForgotPassword initiates the reset flow. It never reveals whether the
// email exists; the handler reports the same outcome either way.
func (s *AuthService) ForgotPassword(ctx context.Context, req models.PasswordResetRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return s.validationError(err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		s.logger.Warn("failed to look up account for password reset", zap.Error(err))
		return nil
	}
	if !user.Active {
		return nil
	}

	uid, token, err := s.resetSigner.Generate(user.ID, linktoken.PurposePasswordReset)
	if err != nil {
		s.logger.Error("failed to sign reset link", zap.Error(err))
		return nil
	}

	link := fmt.Sprintf("%s/reset-password?uid=%s&token=%s", s.config.FrontendURL, uid, token)
	s.mail.Enqueue(user.Email, "MathEd Romania — Resetare parolă",
		fmt.Sprintf("Bună,\n\nAm primit o cerere de resetare a parolei pentru contul tău.\n\n"+
			"Accesează link-ul următor pentru a seta o parolă nouă:\n%s\n\n"+
			"Dacă nu ai solicitat acest lucru, ignoră acest email.\n\nEchipa MathEd Romania", link))
	return nil
}

// ResetPassword completes the reset flow with the emailed uid/token pair.
func (s *AuthService) ResetPassword(ctx context.Context, req models.PasswordResetConfirmRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return s.validationError(err)
	}

	userID, err := s.resetSigner.Parse(req.UID, req.Token, linktoken.PurposePasswordReset)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidLink, "Reset link has expired or is invalid.")
	}

	firstUse, err := s.links.Consume(ctx, linktoken.PurposePasswordReset, req.Token, s.config.ResetLinkTTL)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check reset token")
	}
	if !firstUse {
		return appErrors.Clone(appErrors.ErrInvalidLink, "Reset link has expired or is invalid.")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrInvalidLink, "Invalid reset link.")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}
	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash), time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update password")
	}

	if err := s.repo.RevokeUserRefreshTokens(ctx, user.ID); err != nil {
		s.logger.Warn("failed to revoke refresh tokens after password reset", zap.Error(err))
	}
	s.audit(ctx, &user.ID, models.AuditActionPasswordReset, "", "", `{"status":"reset"}`)
	return nil
}

// ApproveConsent activates a student account from the parental consent
// link. Approving an already-active account is a no-op success.
func (s *AuthService) ApproveConsent(ctx context.Context, req models.ConsentApproveRequest) (string, error) {
	userID, err := s.consentSigner.Parse(req.UID, req.Token, linktoken.PurposeConsent)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrInvalidLink, "Consent link has expired or is invalid.")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrInvalidLink, "Invalid consent link.")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Active {
		return "Account is already active.", nil
	}

	firstUse, err := s.links.Consume(ctx, linktoken.PurposeConsent, req.Token, s.config.ConsentLinkTTL)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check consent token")
	}
	if !firstUse {
		return "", appErrors.Clone(appErrors.ErrInvalidLink, "Consent link has expired or is invalid.")
	}

	if err := s.repo.ActivateStudent(ctx, user.ID, time.Now().UTC()); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate account")
	}

	s.audit(ctx, &user.ID, models.AuditActionConsentApproved, "", "", `{"status":"approved"}`)
	return "Consent approved. The student can now log in.", nil
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User, ip, userAgent string) (*models.TokenPair, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	refreshValue, err := generateOpaqueToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create refresh token")
	}

	refresh := &models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     refreshValue,
		ExpiresAt: time.Now().UTC().Add(s.config.RefreshTokenExpiry),
		CreatedAt: time.Now().UTC(),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist refresh token")
	}

	return &models.TokenPair{AccessToken: accessToken, RefreshToken: refreshValue}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:      user.ID,
		Email:       user.Email,
		FullName:    user.FullName(),
		AccountType: user.AccountType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}

func (s *AuthService) sendConsentEmail(user *models.User, profile *models.StudentProfile) {
	uid, token, err := s.consentSigner.Generate(user.ID, linktoken.PurposeConsent)
	if err != nil {
		s.logger.Error("failed to sign consent link", zap.Error(err))
		return
	}

	link := fmt.Sprintf("%s/consent/approve?uid=%s&token=%s", s.config.FrontendURL, uid, token)
	s.mail.Enqueue(profile.ParentEmail, "MathEd Romania — Consimțământ parental necesar",
		fmt.Sprintf("Bună ziua,\n\n%s dorește să-și creeze un cont pe MathEd Romania.\n\n"+
			"Pentru a aproba crearea contului, accesați link-ul următor:\n%s\n\n"+
			"Dacă nu ați solicitat acest lucru, ignorați acest email.\n\nEchipa MathEd Romania",
			user.FullName(), link))
}

func (s *AuthService) userInfo(user *models.User, profile *models.Profile) *models.UserInfo {
	return &models.UserInfo{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		AccountType: user.AccountType,
		Profile:     profile,
		CreatedAt:   user.CreatedAt,
	}
}

func (s *AuthService) audit(ctx context.Context, userID *int64, action, ip, userAgent, detail string) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "auth",
		ResourceID: userID,
		Detail:     []byte(detail),
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}

// validationError maps validator failures onto the wire contract's
// field -> messages shape.
func (s *AuthService) validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	fields := appErrors.FieldErrors{}
	for _, fe := range verrs {
		fields.Add(fe.Field(), validationMessage(fe))
	}
	return appErrors.WithFields(fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "eqfield":
		return "Passwords do not match."
	case "gte", "lte":
		return "Grade must be between 5 and 8."
	default:
		return "This value is invalid."
	}
}

func generateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func generateReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
