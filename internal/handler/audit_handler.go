package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/pagination"
	"dealership/pkg/response"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audit := router.Group("/api/audit")
	{
		audit.GET("", h.ListEvents)
		audit.GET("/:entityType/:entityId", h.EntityHistory)
	}
}

// ListEvents returns the audit trail, newest first
// @Summary      List audit events
// @Tags         audit
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.ListData}
// @Router       /api/audit [get]
func (h *AuditHandler) ListEvents(c *gin.Context) {
	params := pagination.Parse(c)
	events, total, err := h.auditService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, events, total, params.Page, params.Limit))
}

// EntityHistory returns the audit trail of one entity
// @Summary      Entity audit history
// @Tags         audit
// @Produce      json
// @Param        entityType  path      string  true  "Entity type (vehicle, contract, installment, reservation, purchase_invoice, sale_invoice)"
// @Param        entityId    path      string  true  "Entity ID"
// @Success      200         {object}  response.Response{data=[]service.AuditEventResponse}
// @Router       /api/audit/{entityType}/{entityId} [get]
func (h *AuditHandler) EntityHistory(c *gin.Context) {
	events, err := h.auditService.HistoryForEntity(c.Request.Context(), c.Param("entityType"), c.Param("entityId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}
