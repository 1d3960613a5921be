package router

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/liftlog/internal/config"
	"github.com/liftlog/internal/db"
	"github.com/liftlog/internal/handler"
)

// RequestID 为每个请求补充 X-Request-ID，便于日志关联
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// Setup 配置 Gin 引擎和路由
func Setup(cfg config.AppConfig) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("liftlog_session", store))

	api := handler.NewAPI(db.DB)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/register", api.Register)
		auth.POST("/login", api.Login)
		auth.POST("/logout", api.Logout)
	}

	// 需要认证的 API 路由
	authed := r.Group("/api")
	authed.Use(handler.AuthRequired())
	{
		authed.GET("/plans", api.ListPlans)
		authed.POST("/plans", api.CreatePlan)
		authed.GET("/plans/:id", api.GetPlan)
		authed.PUT("/plans/:id", api.UpdatePlan)
		authed.DELETE("/plans/:id", api.DeletePlan)
		authed.POST("/plans/:id/archive", api.ArchivePlan)
		authed.POST("/plans/:id/rollover", api.RolloverPlan)

		authed.PUT("/plans/:id/weeks/:weekId/days/:dayId/session", api.SaveWorkoutSession)
		authed.GET("/plans/:id/weeks/:weekId/days/:dayId/session", api.GetWorkoutSession)
		authed.PUT("/plans/:id/weeks/:weekId/days/:dayId/completion", api.SetCompletion)
		authed.GET("/plans/:id/weeks/:weekId/days/:dayId/completion", api.GetCompletionStatus)
		authed.GET("/plans/:id/completions", api.ListCompletions)
		authed.GET("/plans/:id/completions/last", api.GetLastCompletion)
		authed.GET("/plans/:id/completions/export", api.ExportCompletions)

		authed.GET("/templates", api.ListTemplates)
		authed.POST("/templates", api.CreateTemplate)
		authed.GET("/templates/:id", api.GetTemplate)
		authed.PUT("/templates/:id", api.UpdateTemplate)
		authed.DELETE("/templates/:id", api.DeleteTemplate)

		authed.GET("/preferences", api.GetPreferences)
		authed.PUT("/preferences", api.SetPreferences)

		authed.POST("/markdown/preview", api.PreviewMarkdown)
	}

	return r
}
