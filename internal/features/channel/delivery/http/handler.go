package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-bot-backend/internal/common/middleware"
	"channel-bot-backend/internal/features/channel/service"
)

type ChannelHandler struct {
	service *service.Service
	log     *zap.Logger
}

func NewChannelHandler(service *service.Service, log *zap.Logger) *ChannelHandler {
	return &ChannelHandler{service: service, log: log}
}

func (h *ChannelHandler) RegisterRoutes(router *gin.RouterGroup) {
	channels := router.Group("/channels")
	{
		channels.GET("/:username/admins", h.listAdmins)
		channels.GET("/:username/check_admin", h.checkAdmin)
	}
}

func (h *ChannelHandler) listAdmins(c *gin.Context) {
	admins, err := h.service.ListAdmins(c.Request.Context(), c.Param("username"))
	if err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, gin.H{"admins": admins})
}

func (h *ChannelHandler) checkAdmin(c *gin.Context) {
	telegramUserID, err := strconv.ParseInt(c.Query("telegram_user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "telegram_user_id must be an integer"})
		return
	}

	result, err := h.service.CheckAdmin(c.Request.Context(), c.Param("username"), telegramUserID)
	if err != nil {
		middleware.AbortWithError(c, err, h.log)
		return
	}

	c.JSON(http.StatusOK, result)
}
