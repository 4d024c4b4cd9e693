package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/singnet/snet-marketplace-service-sub002/internal/logic"
	"gorm.io/gorm"
)

type OrgHandler struct {
	orgLogic *logic.OrgLogic
}

func NewOrgHandler(db *gorm.DB) *OrgHandler {
	return &OrgHandler{
		orgLogic: logic.NewOrgLogic(db),
	}
}

// GetOrganizations 获取组织列表
func (h *OrgHandler) GetOrganizations(c *gin.Context) {
	curatedOnly := c.Query("curated") == "true"
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	orgs, total, err := h.orgLogic.GetOrganizations(curatedOnly, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
		"total":         total,
		"page":          page,
		"page_size":     pageSize,
	})
}

// GetOrganization 获取单个组织详情（含支付分组）
func (h *OrgHandler) GetOrganization(c *gin.Context) {
	orgId := c.Param("org_id")

	org, err := h.orgLogic.GetOrganization(orgId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if org == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}

	groups, err := h.orgLogic.GetOrgGroups(orgId)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization": org,
		"groups":       groups,
	})
}

// SetCurated 设置组织的精选状态
func (h *OrgHandler) SetCurated(c *gin.Context) {
	orgId := c.Param("org_id")

	var req struct {
		Curated *bool `json:"curated" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.orgLogic.SetCurated(orgId, *req.Curated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "curation updated"})
}
