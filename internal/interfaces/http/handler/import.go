package handler

import (
	"errors"
	"fmt"

	salesapp "github.com/fooderp/backend/internal/application/sales"
	"github.com/fooderp/backend/internal/domain/shared"
	"github.com/fooderp/backend/internal/infrastructure/config"
	"github.com/fooderp/backend/internal/infrastructure/csvimport"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ImportHandler exposes CSV order import over HTTP
type ImportHandler struct {
	BaseHandler
	importService *salesapp.ImportService
	cfg           config.ImportConfig
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *salesapp.ImportService, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{importService: importService, cfg: cfg}
}

// RegisterRoutes registers import routes on the given group
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	imports := rg.Group("/sales/orders/import")
	{
		imports.POST("/preview", h.Preview)
		imports.POST("", h.Commit)
		imports.GET("/history", h.History)
		imports.GET("/history/:id", h.GetHistoryRecord)
	}
}

// PreviewImportRequest carries the raw CSV content to validate
type PreviewImportRequest struct {
	Content string `json:"content" binding:"required"`
}

// Preview parses and validates a CSV file without creating anything.
// Structural problems with the file itself are reported as request errors;
// per-row problems come back inside the preview result.
func (h *ImportHandler) Preview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req PreviewImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.importService.PreviewCSV(c.Request.Context(), tenantID, req.Content)
	if err != nil {
		if isStructuralCSVError(err) {
			h.BadRequest(c, err.Error())
			return
		}
		h.HandleDomainError(c, err)
		return
	}

	if h.cfg.MaxRows > 0 && len(result.Rows) > h.cfg.MaxRows {
		h.BadRequest(c, fmt.Sprintf("CSV file exceeds the maximum of %d rows", h.cfg.MaxRows))
		return
	}

	h.Success(c, result)
}

// Commit turns a validated preview into persisted draft orders, one per
// customer group. Groups fail independently.
func (h *ImportHandler) Commit(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var preview salesapp.ImportPreviewResult
	if err := c.ShouldBindJSON(&preview); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.importService.CreateImportedOrders(c.Request.Context(), tenantID, &preview)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// History lists the tenant's import audit records, newest first
func (h *ImportHandler) History(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var query struct {
		Status   string `form:"status" binding:"omitempty,importstatus"`
		Page     int    `form:"page" binding:"omitempty,min=1"`
		PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.NewFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.Status != "" {
		filter.Filters["status"] = query.Status
	}

	records, total, err := h.importService.ListImportRecords(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// GetHistoryRecord returns one import audit record
func (h *ImportHandler) GetHistoryRecord(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid import record ID")
		return
	}

	record, err := h.importService.GetImportRecord(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, record)
}

// isStructuralCSVError reports whether err describes a problem with the file
// itself rather than a row within it
func isStructuralCSVError(err error) bool {
	if errors.Is(err, csvimport.ErrEmptyFile) ||
		errors.Is(err, csvimport.ErrMissingHeader) ||
		errors.Is(err, csvimport.ErrInvalidEncoding) {
		return true
	}
	var missingErr *csvimport.MissingColumnsError
	return errors.As(err, &missingErr)
}
