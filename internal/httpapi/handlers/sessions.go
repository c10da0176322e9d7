package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fitmind/fitmind/internal/chat"
	"github.com/fitmind/fitmind/internal/common"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxIdempotencyKeyLen = 128

// failChat maps chat service errors onto the envelope.
func failChat(c *gin.Context, op string, uid uint64, err error) {
	switch {
	case errors.Is(err, chat.ErrEmptyMessage):
		common.Fail(c, http.StatusBadRequest, 10002, "message is empty")
	case errors.Is(err, gorm.ErrRecordNotFound):
		common.Fail(c, http.StatusNotFound, 40401, "session not found")
	default:
		log.Printf("[%s] failed uid=%d session_id=%s err=%v", op, uid, c.Param("id"), err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
	}
}

func (h *Handler) ListChatSessions(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}

	sessions, err := h.ChatSvc.ListSessions(c.Request.Context(), uid)
	if err != nil {
		failChat(c, "ListChatSessions", uid, err)
		return
	}
	common.OK(c, gin.H{"sessions": sessions})
}

type createSessionReq struct {
	Title string `json:"title"`
}

func (h *Handler) CreateChatSession(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}

	var req createSessionReq
	_ = c.ShouldBindJSON(&req) // allow empty {}

	sess, err := h.ChatSvc.CreateSession(c.Request.Context(), uid, req.Title)
	if err != nil {
		failChat(c, "CreateChatSession", uid, err)
		return
	}
	common.OK(c, sess)
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}
	sessionID := c.Param("id")

	msgs, err := h.ChatSvc.ListMessages(c.Request.Context(), uid, sessionID)
	if err != nil {
		failChat(c, "ListChatMessages", uid, err)
		return
	}
	common.OK(c, gin.H{
		"session_id": sessionID,
		"messages":   msgs,
	})
}

type sendMessageReq struct {
	Message string `json:"message"`
}

// SendChatMessage runs a full relay turn inside the request. Relay failures
// still answer 200 with the degraded reply text.
func (h *Handler) SendChatMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	sessionID := c.Param("id")

	reply, msg, err := h.ChatSvc.SendMessage(c.Request.Context(), uid, sessionID, req.Message)
	if err != nil {
		failChat(c, "SendChatMessage", uid, err)
		return
	}

	common.OK(c, gin.H{
		"session_id": sessionID,
		"reply":      reply,
		"message_id": msg.ID,
	})
}

func (h *Handler) SendChatMessageAsync(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}
	if h.Rabbit == nil {
		common.Fail(c, http.StatusServiceUnavailable, 50301, "async replies are disabled")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	// read idempotency key
	idempoKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(idempoKey) > maxIdempotencyKeyLen {
		common.Fail(c, http.StatusBadRequest, 10003, "idempotency key too long")
		return
	}

	sessionID := c.Param("id")
	job, created, err := h.ChatSvc.EnqueueReply(c.Request.Context(), uid, sessionID, req.Message, idempoKey)
	if err != nil {
		failChat(c, "SendChatMessageAsync", uid, err)
		return
	}

	// Enqueue only when a new job was created
	if created {
		if err := h.Rabbit.PublishJob(c.Request.Context(), job.ID); err != nil {
			log.Printf("[SendChatMessageAsync] PublishJob failed uid=%d session_id=%s job_id=%s err=%v", uid, sessionID, job.ID, err)
			_ = h.ChatSvc.MarkJobFailed(c.Request.Context(), job.ID, "enqueue failed")
			common.Fail(c, http.StatusInternalServerError, 50002, "enqueue failed")
			return
		}
	}

	common.OK(c, gin.H{"job_id": job.ID, "created": created})
}

func (h *Handler) GetChatJob(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}
	jobID := c.Param("job_id")

	j, err := h.ChatSvc.GetJob(c.Request.Context(), uid, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40402, "job not found")
			return
		}
		log.Printf("[GetChatJob] failed uid=%d job_id=%s err=%v", uid, jobID, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	common.OK(c, gin.H{
		"job": gin.H{
			"id":                j.ID,
			"session_id":        j.SessionID,
			"status":            j.Status,
			"result_message_id": j.ResultMessageID,
			"error":             j.Error,
			"created_at":        j.CreatedAt,
			"updated_at":        j.UpdatedAt,
		},
	})
}
