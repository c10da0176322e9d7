package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/fitmind/fitmind/internal/common"
	"github.com/fitmind/fitmind/internal/profile"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}

	p, err := h.ProfileSvc.Get(c.Request.Context(), uid)
	if err != nil {
		log.Printf("[GetProfile] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, p.View())
}

// UpdateProfile applies a partial update; fields left out of the body are untouched.
func (h *Handler) UpdateProfile(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusForbidden, 40301, "authentication required")
		return
	}

	var req profile.Update
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	p, err := h.ProfileSvc.Update(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidInput) {
			common.Fail(c, http.StatusBadRequest, 10006, err.Error())
			return
		}
		log.Printf("[UpdateProfile] failed uid=%d err=%v", uid, err)
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}
	common.OK(c, p.View())
}
