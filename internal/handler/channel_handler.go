package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"gorm.io/gorm"
)

type ChannelHandler struct {
	channelLogic *logic.ChannelLogic
}

func NewChannelHandler(db *gorm.DB) *ChannelHandler {
	return &ChannelHandler{
		channelLogic: logic.NewChannelLogic(db),
	}
}

// GetChannels 获取支付通道列表
func (h *ChannelHandler) GetChannels(c *gin.Context) {
	sender := c.Query("sender")
	recipient := c.Query("recipient")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	channels, total, err := h.channelLogic.GetChannels(sender, recipient, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"channels":  channels,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetChannel 获取单个通道详情
func (h *ChannelHandler) GetChannel(c *gin.Context) {
	channelId, err := strconv.ParseInt(c.Param("channel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	channel, err := h.channelLogic.GetChannel(channelId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if channel == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"channel": channel})
}

// UpdateConsumedBalance 上报通道的已消费余额（单调不减，落后上报被忽略）
func (h *ChannelHandler) UpdateConsumedBalance(c *gin.Context) {
	channelId, err := strconv.ParseInt(c.Param("channel_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid channel id"})
		return
	}

	var req struct {
		ConsumedBalance string `json:"consumed_balance" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.channelLogic.UpdateConsumedBalance(channelId, req.ConsumedBalance); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "consumed balance updated"})
}
