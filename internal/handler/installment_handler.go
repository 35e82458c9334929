package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/response"
)

type InstallmentHandler struct {
	installmentService service.InstallmentService
}

func NewInstallmentHandler(installmentService service.InstallmentService) *InstallmentHandler {
	return &InstallmentHandler{installmentService: installmentService}
}

func (h *InstallmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	installments := router.Group("/api/installments")
	{
		installments.POST("/overdue-sweep", h.OverdueSweep)
		installments.GET("/due", h.DueInstallments)
		installments.GET("/contract/:contractId", h.ListByContract)
		installments.GET("/state/:state", h.ListByState)
		installments.PUT("/:id/pay", h.PayInstallment)
		installments.PUT("/:id/overdue", h.MarkOverdue)
	}
}

// PayInstallment settles one installment
// @Summary      Pay installment
// @Tags         installments
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Installment ID"
// @Param        payload  body      service.PayInstallmentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.InstallmentResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/installments/{id}/pay [put]
func (h *InstallmentHandler) PayInstallment(c *gin.Context) {
	var req service.PayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	inst, err := h.installmentService.MarkPaid(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inst))
}

// MarkOverdue flags one installment past its due date
// @Summary      Mark installment overdue
// @Tags         installments
// @Produce      json
// @Param        id   path      string  true  "Installment ID"
// @Success      200  {object}  response.Response{data=service.InstallmentResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/installments/{id}/overdue [put]
func (h *InstallmentHandler) MarkOverdue(c *gin.Context) {
	inst, err := h.installmentService.MarkOverdue(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, inst))
}

// OverdueSweep flags all pending installments past their due date
// @Summary      Run overdue sweep
// @Description  Flags every pending installment past its due date; safe to rerun
// @Tags         installments
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SweepResult}
// @Router       /api/installments/overdue-sweep [post]
func (h *InstallmentHandler) OverdueSweep(c *gin.Context) {
	result, err := h.installmentService.OverdueSweep(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListByContract returns a contract's schedule
// @Summary      List installments by contract
// @Tags         installments
// @Produce      json
// @Param        contractId  path      string  true  "Contract ID"
// @Success      200         {object}  response.Response{data=[]service.InstallmentResponse}
// @Router       /api/installments/contract/{contractId} [get]
func (h *InstallmentHandler) ListByContract(c *gin.Context) {
	installments, err := h.installmentService.ListByContract(c.Request.Context(), c.Param("contractId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, installments))
}

// ListByState returns installments in one state
// @Summary      List installments by state
// @Tags         installments
// @Produce      json
// @Param        state  path      string  true  "Installment state (PENDING, PAID, OVERDUE, CANCELLED)"
// @Success      200    {object}  response.Response{data=[]service.InstallmentResponse}
// @Router       /api/installments/state/{state} [get]
func (h *InstallmentHandler) ListByState(c *gin.Context) {
	installments, err := h.installmentService.ListByState(c.Request.Context(), c.Param("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, installments))
}

// DueInstallments returns installments due within N days
// @Summary      List due installments
// @Tags         installments
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 7)"
// @Success      200   {object}  response.Response{data=[]service.InstallmentResponse}
// @Router       /api/installments/due [get]
func (h *InstallmentHandler) DueInstallments(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	installments, err := h.installmentService.DueWithin(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, installments))
}
