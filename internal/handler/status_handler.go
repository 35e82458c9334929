package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/response"
)

type StatusHandler struct {
	statusService service.StatusService
}

func NewStatusHandler(statusService service.StatusService) *StatusHandler {
	return &StatusHandler{statusService: statusService}
}

func (h *StatusHandler) RegisterRoutes(router *gin.RouterGroup) {
	statuses := router.Group("/api/statuses")
	{
		statuses.GET("", h.ListStatuses)
		statuses.POST("", h.CreateStatus)
		statuses.GET("/:id", h.GetStatus)
		statuses.PUT("/:id", h.UpdateStatus)
	}
}

// ListStatuses returns the vehicle status catalog
// @Summary      List statuses
// @Tags         statuses
// @Produce      json
// @Param        active  query     bool  false  "Only active statuses"
// @Success      200     {object}  response.Response{data=[]service.StatusResponse}
// @Router       /api/statuses [get]
func (h *StatusHandler) ListStatuses(c *gin.Context) {
	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("active", "false"))
	statuses, err := h.statusService.GetStatuses(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, statuses))
}

// GetStatus returns one status by ID
// @Summary      Get status
// @Tags         statuses
// @Produce      json
// @Param        id   path      string  true  "Status ID"
// @Success      200  {object}  response.Response{data=service.StatusResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/statuses/{id} [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	status, err := h.statusService.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}

// CreateStatus adds a catalog row
// @Summary      Create status
// @Tags         statuses
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateStatusRequest  true  "Create Status Payload"
// @Success      201      {object}  response.Response{data=service.StatusResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/statuses [post]
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	var req service.CreateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	status, err := h.statusService.CreateStatus(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, status))
}

// UpdateStatus edits a catalog row's description and ordering
// @Summary      Update status
// @Tags         statuses
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Status ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "Update Status Payload"
// @Success      200      {object}  response.Response{data=service.StatusResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/statuses/{id} [put]
func (h *StatusHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	status, err := h.statusService.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, status))
}
