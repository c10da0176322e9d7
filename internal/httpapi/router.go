package httpapi

import (
	"net/http"
	"time"

	"github.com/fitmind/fitmind/internal/common"
	"github.com/fitmind/fitmind/internal/config"
	"github.com/fitmind/fitmind/internal/httpapi/handlers"
	"github.com/fitmind/fitmind/internal/httpapi/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(cfg config.Config, h *handlers.Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.Use(middleware.RequestID())
	r.Use(cors.New(corsConfig(cfg.CORSAllowOrigins)))

	r.GET("/ping", h.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// users
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	// single-turn coach, anonymous allowed
	r.POST("/chatbot", middleware.AuthOptional(cfg.JWTSecret), h.PostChatMessage)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.GET("/me", h.Me)

	api := authGroup.Group("/api")
	api.GET("/chatlog", h.ListChatLog)
	api.POST("/chatlog/:id/feedback", h.SetChatLogFeedback)

	api.GET("/chatsessions", h.ListChatSessions)
	api.POST("/chatsessions", h.CreateChatSession)
	api.GET("/chatsessions/:id/messages", h.ListChatMessages)
	api.POST("/chatsessions/:id/messages", h.SendChatMessage)
	api.POST("/chatsessions/:id/messages/async", h.SendChatMessageAsync)
	api.GET("/chat/jobs/:job_id", h.GetChatJob)

	api.GET("/profile", h.GetProfile)
	api.POST("/profile", h.UpdateProfile)
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
