package handlers

import (
	"context"

	"github.com/fitmind/fitmind/internal/chat"
	"github.com/fitmind/fitmind/internal/common"
	"github.com/fitmind/fitmind/internal/config"
	"github.com/fitmind/fitmind/internal/httpapi/middleware"
	"github.com/fitmind/fitmind/internal/profile"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// JobPublisher enqueues async reply jobs; *rabbitmq.Publisher satisfies it.
type JobPublisher interface {
	PublishJob(ctx context.Context, jobID string) error
}

type Handler struct {
	DB         *gorm.DB
	Cfg        config.Config
	ChatSvc    *chat.Service
	ProfileSvc *profile.Service
	Rabbit     JobPublisher
}

// NewHandler wires the services. cache and rabbit may be nil; async replies
// then answer 503.
func NewHandler(db *gorm.DB, cfg config.Config, relay chat.Replier, cache profile.Cache, rabbit JobPublisher) *Handler {
	return &Handler{
		DB:         db,
		Cfg:        cfg,
		ChatSvc:    chat.NewService(chat.NewRepo(db), relay, cfg.ChatContextWindowSize),
		ProfileSvc: profile.NewService(profile.NewRepo(db), cache),
		Rabbit:     rabbit,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"pong": true})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
