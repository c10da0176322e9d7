package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/fitmind/fitmind/internal/chat"
	"github.com/fitmind/fitmind/internal/coach"
	"github.com/fitmind/fitmind/internal/common"
	"github.com/fitmind/fitmind/internal/metrics"
	"github.com/fitmind/fitmind/internal/profile"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	msgAskSomething  = "Please ask me something!"
	msgInvalidFormat = "Invalid request format."
	msgChatError     = "An error occurred. Please try again."
)

type chatbotReq struct {
	Message string `json:"message"`
}

func chatbotFail(c *gin.Context, status, code int, msg string) {
	common.FailWith(c, status, code, msg, gin.H{"response": msg})
}

// PostChatMessage answers one message with the rule-based coach. Anonymous
// callers get a reply too; only signed-in exchanges are logged.
func (h *Handler) PostChatMessage(c *gin.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PostChatMessage] panic err=%v", r)
			chatbotFail(c, http.StatusInternalServerError, 50000, msgChatError)
		}
	}()

	var req chatbotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		chatbotFail(c, http.StatusBadRequest, 10001, msgInvalidFormat)
		return
	}
	text := strings.TrimSpace(req.Message)
	if text == "" {
		chatbotFail(c, http.StatusBadRequest, 10002, msgAskSomething)
		return
	}

	ctx := c.Request.Context()
	uid, authed := userIDFromContext(c)

	var p *profile.Profile
	if authed {
		var err error
		p, err = h.ProfileSvc.Lookup(ctx, uid)
		if err != nil {
			log.Printf("[PostChatMessage] profile lookup failed uid=%d err=%v", uid, err)
			chatbotFail(c, http.StatusInternalServerError, 50001, msgChatError)
			return
		}
	}

	reply := coach.Respond(text, p)
	topic := reply.Topic.String()
	metrics.Topics.WithLabelValues(topic).Inc()
	response := reply.String()

	if authed {
		if _, err := h.ChatSvc.LogExchange(ctx, uid, text, response, topic, &chat.ReplySections{
			Direct:     reply.Direct,
			Guidance:   reply.Guidance,
			Motivation: reply.Motivation,
		}); err != nil {
			log.Printf("[PostChatMessage] log failed uid=%d err=%v", uid, err)
			chatbotFail(c, http.StatusInternalServerError, 50001, msgChatError)
			return
		}
	}

	common.OK(c, gin.H{"response": response, "topic": topic})
}

func (h *Handler) ListChatLog(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.ChatSvc.ListLog(c.Request.Context(), uid, limit)
	if err != nil {
		log.Printf("[ListChatLog] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list chat log")
		return
	}
	common.OK(c, gin.H{"entries": entries})
}

type feedbackReq struct {
	Helpful *bool `json:"helpful"`
}

// SetChatLogFeedback stores the ternary helpfulness flag; null clears it.
func (h *Handler) SetChatLogFeedback(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid log id")
		return
	}
	var req feedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	if err := h.ChatSvc.SetHelpful(c.Request.Context(), uid, id, req.Helpful); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40403, "chat log entry not found")
			return
		}
		log.Printf("[SetChatLogFeedback] failed uid=%d id=%d err=%v", uid, id, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, gin.H{"id": id, "is_helpful": req.Helpful})
}
