package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/response"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

func (h *ReservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	reservations := router.Group("/api/reservations")
	{
		reservations.POST("", h.CreateReservation)
		reservations.POST("/expiry-sweep", h.ExpirySweep)
		reservations.GET("/expired", h.ListExpired)
		reservations.GET("/client/:clientId", h.ListByClient)
		reservations.GET("/vehicle/:vehicleId", h.ListByVehicle)
		reservations.GET("/state/:state", h.ListByState)
		reservations.GET("/:id", h.GetReservation)
		reservations.PUT("/:id/confirm", h.ConfirmReservation)
		reservations.PUT("/:id/cancel", h.CancelReservation)
	}
}

// CreateReservation places a sales hold on a vehicle
// @Summary      Create reservation
// @Description  Places a PENDING reservation and moves the vehicle to RESERVED
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateReservationRequest  true  "Create Reservation Payload"
// @Success      201      {object}  response.Response{data=service.ReservationResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/reservations [post]
func (h *ReservationHandler) CreateReservation(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reservation, err := h.reservationService.CreateReservation(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, reservation))
}

// GetReservation returns one reservation by ID
// @Summary      Get reservation
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  response.Response{data=service.ReservationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/reservations/{id} [get]
func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservation, err := h.reservationService.GetReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservation))
}

// ConfirmReservation confirms a pending reservation
// @Summary      Confirm reservation
// @Description  Confirms a PENDING reservation whose deadline has not passed
// @Tags         reservations
// @Produce      json
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  response.Response{data=service.ReservationResponse}
// @Failure      422  {object}  response.Response
// @Router       /api/reservations/{id}/confirm [put]
func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	reservation, err := h.reservationService.ConfirmReservation(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservation))
}

// CancelReservation cancels a reservation with a reason
// @Summary      Cancel reservation
// @Description  Cancels a live reservation and returns the vehicle to AVAILABLE
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Param        id       path      string         true  "Reservation ID"
// @Param        payload  body      CancelRequest  true  "Cancellation reason"
// @Success      200      {object}  response.Response{data=service.ReservationResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/reservations/{id}/cancel [put]
func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	var req CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	reservation, err := h.reservationService.CancelReservation(c.Request.Context(), c.Param("id"), req.Reason, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservation))
}

// ExpirySweep cancels all pending reservations past their deadline
// @Summary      Run expiry sweep
// @Description  Cancels every pending reservation past its deadline; safe to rerun
// @Tags         reservations
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SweepResult}
// @Router       /api/reservations/expiry-sweep [post]
func (h *ReservationHandler) ExpirySweep(c *gin.Context) {
	result, err := h.reservationService.ExpirySweep(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListExpired returns pending reservations past their deadline
// @Summary      List expired reservations
// @Description  Pending reservations whose deadline has passed, pending the next sweep
// @Tags         reservations
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.ReservationResponse}
// @Router       /api/reservations/expired [get]
func (h *ReservationHandler) ListExpired(c *gin.Context) {
	reservations, err := h.reservationService.ListExpired(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservations))
}

// ListByClient returns a client's reservations
// @Summary      List reservations by client
// @Tags         reservations
// @Produce      json
// @Param        clientId  path      string  true  "Client ID"
// @Success      200       {object}  response.Response{data=[]service.ReservationResponse}
// @Router       /api/reservations/client/{clientId} [get]
func (h *ReservationHandler) ListByClient(c *gin.Context) {
	reservations, err := h.reservationService.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservations))
}

// ListByVehicle returns a vehicle's reservations
// @Summary      List reservations by vehicle
// @Tags         reservations
// @Produce      json
// @Param        vehicleId  path      string  true  "Vehicle ID"
// @Success      200        {object}  response.Response{data=[]service.ReservationResponse}
// @Router       /api/reservations/vehicle/{vehicleId} [get]
func (h *ReservationHandler) ListByVehicle(c *gin.Context) {
	reservations, err := h.reservationService.ListByVehicle(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservations))
}

// ListByState returns reservations in one state
// @Summary      List reservations by state
// @Tags         reservations
// @Produce      json
// @Param        state  path      string  true  "Reservation state (PENDING, CONFIRMED, CANCELLED, COMPLETED)"
// @Success      200    {object}  response.Response{data=[]service.ReservationResponse}
// @Router       /api/reservations/state/{state} [get]
func (h *ReservationHandler) ListByState(c *gin.Context) {
	reservations, err := h.reservationService.ListByState(c.Request.Context(), c.Param("state"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, reservations))
}
