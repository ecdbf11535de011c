package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/schedmate/internal/httperr"
	"github.com/BruksfildServices01/schedmate/internal/httpresp"
	"github.com/BruksfildServices01/schedmate/internal/middleware"
	"github.com/BruksfildServices01/schedmate/internal/models"
	"github.com/BruksfildServices01/schedmate/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	// --------------------------------------------------
	// Always scoped to the owner
	// --------------------------------------------------

	q := h.db.WithContext(c.Request.Context()).
		Model(&models.AuditLog{}).
		Where("owner_id = ?", ownerID)

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity"); entity != "" {
		q = q.Where("entity = ?", entity)
	}
	if from, err := time.Parse(timezone.DateLayout, c.Query("from")); err == nil {
		q = q.Where("created_at >= ?", from)
	}
	if to, err := time.Parse(timezone.DateLayout, c.Query("to")); err == nil {
		q = q.Where("created_at < ?", to.Add(24*time.Hour))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Could not count audit logs.")
		return
	}

	var logs []models.AuditLog
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Could not list audit logs.")
		return
	}

	httpresp.Page(c, logs, page, limit, total)
}
