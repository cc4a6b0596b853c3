package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"channel-bot-backend/internal/common/middleware"
	"channel-bot-backend/internal/features/post/service"
)

type PostHandler struct {
	scheduler *service.Scheduler
	log       *zap.Logger
}

func NewPostHandler(scheduler *service.Scheduler, log *zap.Logger) *PostHandler {
	return &PostHandler{scheduler: scheduler, log: log}
}

func (h *PostHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/deals/:deal_id/post", h.schedulePost)
	router.POST("/notify", h.notify)
}

type schedulePostRequest struct {
	ChannelUsername string     `json:"channel_username" binding:"required"`
	Content         string     `json:"content" binding:"required"`
	SendAt          *time.Time `json:"send_at"`
}

func (h *PostHandler) schedulePost(c *gin.Context) {
	dealID, err := uuid.Parse(c.Param("deal_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deal_id must be a UUID"})
		return
	}

	var req schedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sendAt := time.Now()
	if req.SendAt != nil {
		sendAt = *req.SendAt
	}

	if err := h.scheduler.Schedule(c.Request.Context(), dealID, req.ChannelUsername, req.Content, sendAt); err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "scheduled", "send_at": sendAt})
}

type notifyRequest struct {
	TelegramUserID int64  `json:"telegram_user_id" binding:"required"`
	Text           string `json:"text" binding:"required"`
}

func (h *PostHandler) notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.scheduler.Notify(c.Request.Context(), req.TelegramUserID, req.Text); err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
