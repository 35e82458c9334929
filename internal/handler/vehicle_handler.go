package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/pagination"
	"dealership/pkg/response"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

func (h *VehicleHandler) RegisterRoutes(router *gin.RouterGroup) {
	vehicles := router.Group("/api/vehicles")
	{
		vehicles.POST("", h.CreateVehicle)
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/plate/:plate", h.GetVehicleByPlate)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.PUT("/:id", h.UpdateVehicle)
		vehicles.PUT("/:id/mileage", h.UpdateMileage)
		vehicles.DELETE("/:id", h.DeactivateVehicle)
	}
}

// CreateVehicle registers a new vehicle in the fleet
// @Summary      Create vehicle
// @Description  Registers a new vehicle; it starts AVAILABLE
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateVehicleRequest  true  "Create Vehicle Payload"
// @Success      201      {object}  response.Response{data=service.VehicleResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/vehicles [post]
func (h *VehicleHandler) CreateVehicle(c *gin.Context) {
	var req service.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, vehicle))
}

// ListVehicles returns a paginated list of vehicles
// @Summary      List vehicles
// @Tags         vehicles
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=response.ListData}
// @Router       /api/vehicles [get]
func (h *VehicleHandler) ListVehicles(c *gin.Context) {
	params := pagination.Parse(c)
	vehicles, total, err := h.vehicleService.ListVehicles(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.List(http.StatusOK, vehicles, total, params.Page, params.Limit))
}

// GetVehicle returns one vehicle by ID
// @Summary      Get vehicle
// @Tags         vehicles
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response{data=service.VehicleResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id} [get]
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// GetVehicleByPlate returns one vehicle by plate
// @Summary      Get vehicle by plate
// @Tags         vehicles
// @Produce      json
// @Param        plate  path      string  true  "Vehicle plate"
// @Success      200    {object}  response.Response{data=service.VehicleResponse}
// @Failure      404    {object}  response.Response
// @Router       /api/vehicles/plate/{plate} [get]
func (h *VehicleHandler) GetVehicleByPlate(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicleByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// UpdateVehicle updates a vehicle's descriptive fields
// @Summary      Update vehicle
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Vehicle ID"
// @Param        payload  body      service.UpdateVehicleRequest  true  "Update Vehicle Payload"
// @Success      200      {object}  response.Response{data=service.VehicleResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/vehicles/{id} [put]
func (h *VehicleHandler) UpdateVehicle(c *gin.Context) {
	var req service.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// UpdateMileage records a new odometer reading
// @Summary      Update mileage
// @Description  Records a new odometer reading; readings never decrease
// @Tags         vehicles
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Vehicle ID"
// @Param        payload  body      service.UpdateMileageRequest  true  "Mileage Payload"
// @Success      200      {object}  response.Response{data=service.VehicleResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/vehicles/{id}/mileage [put]
func (h *VehicleHandler) UpdateMileage(c *gin.Context) {
	var req service.UpdateMileageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	vehicle, err := h.vehicleService.UpdateMileage(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, vehicle))
}

// DeactivateVehicle soft-deletes a vehicle
// @Summary      Deactivate vehicle
// @Tags         vehicles
// @Produce      json
// @Param        id   path      string  true  "Vehicle ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vehicles/{id} [delete]
func (h *VehicleHandler) DeactivateVehicle(c *gin.Context) {
	if err := h.vehicleService.DeactivateVehicle(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deactivated": true}))
}
