package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Kaensy/mathed-romania/internal/middleware"
	"github.com/Kaensy/mathed-romania/internal/models"
	"github.com/Kaensy/mathed-romania/internal/service"
	"github.com/Kaensy/mathed-romania/pkg/config"
)

// RegisterRoutes mounts the API under the configured prefix. Trailing
// slashes are part of the contract; gin's default redirect covers the
// bare form.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, authSvc *service.AuthService, previewer *PreviewHandler) {
	authHandler := NewAuthHandler(authSvc, cfg)
	requireAuth := middleware.JWT(authSvc)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register/student/", authHandler.RegisterStudent)
		auth.POST("/register/teacher/", authHandler.RegisterTeacher)
		auth.POST("/login/", authHandler.Login)
		auth.POST("/logout/", requireAuth, authHandler.Logout)
		auth.POST("/token/refresh/", authHandler.Refresh)
		auth.GET("/me/", requireAuth, authHandler.Me)
		auth.POST("/password-reset/", authHandler.ForgotPassword)
		auth.POST("/password-reset/confirm/", authHandler.ResetPassword)
	}

	api.POST("/consent/approve/", authHandler.ApproveConsent)

	admin := api.Group("/admin", requireAuth, middleware.RequireAccountTypes(models.AccountAdmin))
	{
		admin.POST("/content/preview/", previewer.Render)
	}
}
