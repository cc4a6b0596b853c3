package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-bot-backend/internal/common/middleware"
	"channel-bot-backend/internal/features/channel/repository"
	"channel-bot-backend/internal/features/stats/service"
)

type StatsHandler struct {
	collector *service.Collector
	channels  repository.ChannelRepository
	log       *zap.Logger
}

func NewStatsHandler(collector *service.Collector, channels repository.ChannelRepository, log *zap.Logger) *StatsHandler {
	return &StatsHandler{collector: collector, channels: channels, log: log}
}

func (h *StatsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/stats")
	{
		stats.GET("/by-username/:username", h.byUsername)
		stats.GET("/by-chat-id/:chat_id", h.byChatID)
	}
}

func (h *StatsHandler) byUsername(c *gin.Context) {
	username := repository.NormalizeUsername(c.Param("username"))

	snapshot, err := h.collector.Collect(c.Request.Context(), username)
	if err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (h *StatsHandler) byChatID(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_id must be an integer"})
		return
	}

	channel, err := h.channels.GetByTelegramChatID(c.Request.Context(), chatID)
	if err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	snapshot, err := h.collector.Collect(c.Request.Context(), channel.Username)
	if err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}
