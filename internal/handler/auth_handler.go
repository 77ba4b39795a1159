package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kaensy/mathed-romania/internal/middleware"
	"github.com/Kaensy/mathed-romania/internal/models"
	"github.com/Kaensy/mathed-romania/internal/service"
	"github.com/Kaensy/mathed-romania/pkg/config"
	appErrors "github.com/Kaensy/mathed-romania/pkg/errors"
	"github.com/Kaensy/mathed-romania/pkg/response"
)

// RefreshTokenCookie is the httpOnly cookie carrying the refresh token.
// Its path is scoped to the refresh endpoint so the browser only sends it
// where it is needed.
const RefreshTokenCookie = "refresh_token"

// AuthHandler wires HTTP endpoints to the auth service. Tokens travel in
// httpOnly cookies only; response bodies never contain them.
type AuthHandler struct {
	service *service.AuthService
	config  *config.Config
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{service: svc, config: cfg}
}

// RefreshPath returns the route the refresh cookie is scoped to.
func (h *AuthHandler) RefreshPath() string {
	return h.config.APIPrefix + "/auth/token/refresh/"
}

// RegisterStudent handles POST /api/auth/register/student/.
func (h *AuthHandler) RegisterStudent(c *gin.Context) {
	var req models.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid registration payload."))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, tokens, err := h.service.RegisterStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	response.Created(c, res)
}

// RegisterTeacher handles POST /api/auth/register/teacher/.
func (h *AuthHandler) RegisterTeacher(c *gin.Context) {
	var req models.RegisterTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid registration payload."))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, tokens, err := h.service.RegisterTeacher(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	response.Created(c, res)
}

// Login handles POST /api/auth/login/.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid login payload."))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, tokens, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	response.JSON(c, http.StatusOK, res)
}

// Logout handles POST /api/auth/logout/. Cookies are cleared even when
// the server-side revocation finds nothing to revoke.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	refreshToken, _ := c.Cookie(RefreshTokenCookie)
	h.service.Logout(c.Request.Context(), refreshToken, claims.UserID, c.ClientIP(), c.GetHeader("User-Agent"))

	h.clearAuthCookies(c)
	response.Message(c, http.StatusOK, "Logged out successfully.")
}

// Refresh handles POST /api/auth/token/refresh/. The refresh token is read
// from its cookie, rotated, and both cookies are reissued.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshTokenCookie)

	tokens, err := h.service.Refresh(c.Request.Context(), refreshToken, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		h.clearAuthCookies(c)
		response.Error(c, err)
		return
	}

	h.setAuthCookies(c, tokens)
	response.Message(c, http.StatusOK, "Token refreshed successfully.")
}

// Me handles GET /api/auth/me/ and returns the bare user record.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	info, err := h.service.Profile(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, info)
}

// ForgotPassword handles POST /api/auth/password-reset/. The response is
// identical whether or not the email matches an account.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid payload."))
		return
	}

	if err := h.service.ForgotPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "If an account with that email exists, a password reset link has been sent.")
}

// ResetPassword handles POST /api/auth/password-reset/confirm/.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.PasswordResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "Invalid payload."))
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, "Password has been reset successfully. You can now log in.")
}

// ApproveConsent handles POST /api/consent/approve/.
func (h *AuthHandler) ApproveConsent(c *gin.Context) {
	var req models.ConsentApproveRequest
	_ = c.ShouldBindJSON(&req)

	if req.UID == "" || req.Token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidLink, "Missing uid or token."))
		return
	}

	message, err := h.service.ApproveConsent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Message(c, http.StatusOK, message)
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, tokens *models.TokenPair) {
	if tokens == nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, tokens.AccessToken,
		int(h.config.JWT.Expiration.Seconds()), "/", h.config.Cookies.Domain, h.config.Cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, tokens.RefreshToken,
		int(h.config.JWT.RefreshExpiration.Seconds()), h.RefreshPath(), h.config.Cookies.Domain, h.config.Cookies.Secure, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", h.config.Cookies.Domain, h.config.Cookies.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, h.RefreshPath(), h.config.Cookies.Domain, h.config.Cookies.Secure, true)
}
