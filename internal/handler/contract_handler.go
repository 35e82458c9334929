package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/response"
)

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ContractHandler struct {
	contractService service.ContractService
}

func NewContractHandler(contractService service.ContractService) *ContractHandler {
	return &ContractHandler{contractService: contractService}
}

func (h *ContractHandler) RegisterRoutes(router *gin.RouterGroup) {
	contracts := router.Group("/api/contracts")
	{
		contracts.POST("", h.CreateContract)
		contracts.GET("/expiring", h.ExpiringContracts)
		contracts.GET("/number/:number", h.GetContractByNumber)
		contracts.GET("/client/:clientId", h.ListByClient)
		contracts.GET("/vehicle/:vehicleId", h.ListByVehicle)
		contracts.GET("/state/:state", h.ListByState)
		contracts.GET("/:id", h.GetContract)
		contracts.PUT("/:id", h.UpdateContract)
		contracts.PUT("/:id/activate", h.ActivateContract)
		contracts.PUT("/:id/finalize", h.FinalizeContract)
		contracts.PUT("/:id/cancel", h.CancelContract)
	}
}

// CreateContract creates a rental contract with its installment schedule
// @Summary      Create rental contract
// @Description  Creates a PENDING contract, moves the vehicle to IN_RENTAL and generates one installment per month
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateContractRequest  true  "Create Contract Payload"
// @Success      201      {object}  response.Response{data=service.ContractResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req service.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.CreateContract(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, contract))
}

// GetContract returns one contract with its schedule
// @Summary      Get contract
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	contract, err := h.contractService.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// GetContractByNumber returns one contract by contract number
// @Summary      Get contract by number
// @Tags         contracts
// @Produce      json
// @Param        number  path      string  true  "Contract number"
// @Success      200     {object}  response.Response{data=service.ContractResponse}
// @Failure      404     {object}  response.Response
// @Router       /api/contracts/number/{number} [get]
func (h *ContractHandler) GetContractByNumber(c *gin.Context) {
	contract, err := h.contractService.GetContractByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// UpdateContract updates contract terms
// @Summary      Update contract
// @Description  Client, vehicle, dates and fee can only change while PENDING; date or fee changes regenerate the schedule
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Contract ID"
// @Param        payload  body      service.UpdateContractRequest  true  "Update Contract Payload"
// @Success      200      {object}  response.Response{data=service.ContractResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/contracts/{id} [put]
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	var req service.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.UpdateContract(c.Request.Context(), c.Param("id"), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// ActivateContract starts the rental
// @Summary      Activate contract
// @Description  Moves a PENDING contract to ACTIVE; the vehicle has been in rental since creation
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/contracts/{id}/activate [put]
func (h *ContractHandler) ActivateContract(c *gin.Context) {
	contract, err := h.contractService.ActivateContract(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// FinalizeContract ends the rental
// @Summary      Finalize contract
// @Description  Moves the contract to FINISHED and the vehicle back to AVAILABLE
// @Tags         contracts
// @Produce      json
// @Param        id   path      string  true  "Contract ID"
// @Success      200  {object}  response.Response{data=service.ContractResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/contracts/{id}/finalize [put]
func (h *ContractHandler) FinalizeContract(c *gin.Context) {
	contract, err := h.contractService.FinalizeContract(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// CancelContract cancels the contract with a reason
// @Summary      Cancel contract
// @Description  Cancels a contract unless it is finished; the vehicle is released and unpaid installments are cancelled
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Contract ID"
// @Param        payload  body      CancelRequest  true  "Cancellation reason"
// @Success      200      {object}  response.Response{data=service.ContractResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/contracts/{id}/cancel [put]
func (h *ContractHandler) CancelContract(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	contract, err := h.contractService.CancelContract(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contract))
}

// ListByClient returns a client's contracts
// @Summary      List contracts by client
// @Tags         contracts
// @Produce      json
// @Param        clientId  path      string  true  "Client ID"
// @Success      200       {object}  response.Response{data=[]service.ContractResponse}
// @Router       /api/contracts/client/{clientId} [get]
func (h *ContractHandler) ListByClient(c *gin.Context) {
	contracts, err := h.contractService.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contracts))
}

// ListByVehicle returns a vehicle's contracts
// @Summary      List contracts by vehicle
// @Tags         contracts
// @Produce      json
// @Param        vehicleId  path      string  true  "Vehicle ID"
// @Success      200        {object}  response.Response{data=[]service.ContractResponse}
// @Router       /api/contracts/vehicle/{vehicleId} [get]
func (h *ContractHandler) ListByVehicle(c *gin.Context) {
	contracts, err := h.contractService.ListByVehicle(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contracts))
}

// ListByState returns contracts in one state
// @Summary      List contracts by state
// @Tags         contracts
// @Produce      json
// @Param        state  path      string  true  "Contract state (PENDING, ACTIVE, FINISHED, CANCELLED)"
// @Success      200    {object}  response.Response{data=[]service.ContractResponse}
// @Router       /api/contracts/state/{state} [get]
func (h *ContractHandler) ListByState(c *gin.Context) {
	contracts, err := h.contractService.ListByState(c.Request.Context(), c.Param("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contracts))
}

// ExpiringContracts returns active contracts ending within N days
// @Summary      List expiring contracts
// @Tags         contracts
// @Produce      json
// @Param        days  query     int  false  "Window in days (default 30)"
// @Success      200   {object}  response.Response{data=[]service.ContractResponse}
// @Router       /api/contracts/expiring [get]
func (h *ContractHandler) ExpiringContracts(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	contracts, err := h.contractService.ExpiringWithin(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, contracts))
}
