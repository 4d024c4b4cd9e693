package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/singnet/snet-marketplace-service-sub002/internal/chain"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"github.com/singnet/snet-marketplace-service-sub002/internal/model"
	"gorm.io/gorm"
)

type StatusHandler struct {
	store        *logic.EventStore
	markers      *logic.MarkerStore
	chainManager *chain.Manager
}

func NewStatusHandler(db *gorm.DB, chainManager *chain.Manager) *StatusHandler {
	return &StatusHandler{
		store:        logic.NewEventStore(db),
		markers:      logic.NewMarkerStore(db),
		chainManager: chainManager,
	}
}

// GetStatus 获取同步状态：各事件族的扫描水位与积压情况
func (h *StatusHandler) GetStatus(c *gin.Context) {
	families := gin.H{}
	for _, family := range model.AllEventFamilies() {
		lastBlock, err := h.markers.GetLastBlock(family)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		pending, err := h.store.CountUnprocessed(family)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		families[string(family)] = gin.H{
			"last_block_number": lastBlock,
			"pending_events":    pending,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"families": families,
		"chain":    h.chainManager.GetHealthStatus(),
	})
}

// GetEvents 分页查询某个事件族的原始事件
func (h *StatusHandler) GetEvents(c *gin.Context) {
	family := model.EventFamily(c.Param("family"))
	valid := false
	for _, f := range model.AllEventFamilies() {
		if f == family {
			valid = true
			break
		}
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event family"})
		return
	}

	eventName := c.Query("event_name")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	events, total, err := h.store.GetEvents(family, eventName, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":    events,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}
