package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"gorm.io/gorm"
)

type ServiceHandler struct {
	serviceLogic *logic.ServiceLogic
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{
		serviceLogic: logic.NewServiceLogic(db),
	}
}

// GetServices 获取服务列表
func (h *ServiceHandler) GetServices(c *gin.Context) {
	orgId := c.Query("org_id")
	curatedOnly := c.Query("curated") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	services, total, err := h.serviceLogic.GetServices(orgId, curatedOnly, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"services":  services,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetService 获取单个服务详情（含元数据与标签）
func (h *ServiceHandler) GetService(c *gin.Context) {
	orgId := c.Param("org_id")
	serviceId := c.Param("service_id")

	svc, err := h.serviceLogic.GetService(orgId, serviceId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if svc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}

	meta, err := h.serviceLogic.GetServiceMetadata(orgId, serviceId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	tags, err := h.serviceLogic.GetTags(orgId, serviceId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service":  svc,
		"metadata": meta,
		"tags":     tags,
	})
}

// SetCurated 设置服务的精选状态
func (h *ServiceHandler) SetCurated(c *gin.Context) {
	orgId := c.Param("org_id")
	serviceId := c.Param("service_id")

	var req struct {
		Curated *bool `json:"curated" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.serviceLogic.SetCurated(orgId, serviceId, *req.Curated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "curation updated"})
}
