package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealership/internal/service"
	"dealership/pkg/response"
)

type InvoiceHandler struct {
	purchaseService service.PurchaseInvoiceService
	saleService     service.SaleInvoiceService
}

func NewInvoiceHandler(purchaseService service.PurchaseInvoiceService, saleService service.SaleInvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		purchaseService: purchaseService,
		saleService:     saleService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	purchases := router.Group("/api/purchase-invoices")
	{
		purchases.POST("", h.CreatePurchaseInvoice)
		purchases.GET("/range", h.ListPurchasesByDateRange)
		purchases.GET("/number/:number", h.GetPurchaseInvoiceByNumber)
		purchases.GET("/supplier/:supplierId", h.ListPurchasesBySupplier)
		purchases.GET("/:id", h.GetPurchaseInvoice)
		purchases.PUT("/:id", h.UpdatePurchaseInvoice)
	}

	sales := router.Group("/api/sale-invoices")
	{
		sales.POST("", h.CreateSaleInvoice)
		sales.GET("/range", h.ListSalesByDateRange)
		sales.GET("/number/:number", h.GetSaleInvoiceByNumber)
		sales.GET("/client/:clientId", h.ListSalesByClient)
		sales.GET("/:id", h.GetSaleInvoice)
		sales.PUT("/:id", h.UpdateSaleInvoice)
	}

	// Profit reporting sits on top of the invoice pair
	profit := router.Group("/api/profit")
	{
		profit.GET("/vehicle/:vehicleId", h.VehicleProfit)
		profit.GET("/summary", h.ProfitSummary)
	}
}

// CreatePurchaseInvoice records a vehicle acquisition
// @Summary      Create purchase invoice
// @Description  Records the acquisition cost of a vehicle; one per vehicle
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePurchaseInvoiceRequest  true  "Create Purchase Invoice Payload"
// @Success      201      {object}  response.Response{data=service.PurchaseInvoiceResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/purchase-invoices [post]
func (h *InvoiceHandler) CreatePurchaseInvoice(c *gin.Context) {
	var req service.CreatePurchaseInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.purchaseService.CreatePurchaseInvoice(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// UpdatePurchaseInvoice corrects a purchase invoice
// @Summary      Update purchase invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      string                                true  "Invoice ID"
// @Param        payload  body      service.UpdatePurchaseInvoiceRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.PurchaseInvoiceResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/purchase-invoices/{id} [put]
func (h *InvoiceHandler) UpdatePurchaseInvoice(c *gin.Context) {
	var req service.UpdatePurchaseInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.purchaseService.UpdatePurchaseInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// GetPurchaseInvoice returns one purchase invoice by ID
// @Summary      Get purchase invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.PurchaseInvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/purchase-invoices/{id} [get]
func (h *InvoiceHandler) GetPurchaseInvoice(c *gin.Context) {
	invoice, err := h.purchaseService.GetPurchaseInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// GetPurchaseInvoiceByNumber returns one purchase invoice by number
// @Summary      Get purchase invoice by number
// @Tags         invoices
// @Produce      json
// @Param        number  path      string  true  "Invoice number"
// @Success      200     {object}  response.Response{data=service.PurchaseInvoiceResponse}
// @Failure      404     {object}  response.Response
// @Router       /api/purchase-invoices/number/{number} [get]
func (h *InvoiceHandler) GetPurchaseInvoiceByNumber(c *gin.Context) {
	invoice, err := h.purchaseService.GetPurchaseInvoiceByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// ListPurchasesBySupplier returns a supplier's purchase invoices
// @Summary      List purchase invoices by supplier
// @Tags         invoices
// @Produce      json
// @Param        supplierId  path      string  true  "Supplier ID"
// @Success      200         {object}  response.Response{data=[]service.PurchaseInvoiceResponse}
// @Router       /api/purchase-invoices/supplier/{supplierId} [get]
func (h *InvoiceHandler) ListPurchasesBySupplier(c *gin.Context) {
	invoices, err := h.purchaseService.ListBySupplier(c.Request.Context(), c.Param("supplierId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// ListPurchasesByDateRange returns purchase invoices between two dates
// @Summary      List purchase invoices by date range
// @Tags         invoices
// @Produce      json
// @Param        from  query     string  true  "From date (YYYY-MM-DD)"
// @Param        to    query     string  true  "To date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=[]service.PurchaseInvoiceResponse}
// @Router       /api/purchase-invoices/range [get]
func (h *InvoiceHandler) ListPurchasesByDateRange(c *gin.Context) {
	invoices, err := h.purchaseService.ListByDateRange(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// CreateSaleInvoice sells a vehicle
// @Summary      Create sale invoice
// @Description  Sells a vehicle, completes a referenced reservation and moves the vehicle to SOLD
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSaleInvoiceRequest  true  "Create Sale Invoice Payload"
// @Success      201      {object}  response.Response{data=service.SaleInvoiceResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/sale-invoices [post]
func (h *InvoiceHandler) CreateSaleInvoice(c *gin.Context) {
	var req service.CreateSaleInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.saleService.CreateSaleInvoice(c.Request.Context(), req, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// UpdateSaleInvoice corrects a sale invoice
// @Summary      Update sale invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      string                            true  "Invoice ID"
// @Param        payload  body      service.UpdateSaleInvoiceRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.SaleInvoiceResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/sale-invoices/{id} [put]
func (h *InvoiceHandler) UpdateSaleInvoice(c *gin.Context) {
	var req service.UpdateSaleInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.saleService.UpdateSaleInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// GetSaleInvoice returns one sale invoice by ID
// @Summary      Get sale invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.SaleInvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/sale-invoices/{id} [get]
func (h *InvoiceHandler) GetSaleInvoice(c *gin.Context) {
	invoice, err := h.saleService.GetSaleInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// GetSaleInvoiceByNumber returns one sale invoice by number
// @Summary      Get sale invoice by number
// @Tags         invoices
// @Produce      json
// @Param        number  path      string  true  "Invoice number"
// @Success      200     {object}  response.Response{data=service.SaleInvoiceResponse}
// @Failure      404     {object}  response.Response
// @Router       /api/sale-invoices/number/{number} [get]
func (h *InvoiceHandler) GetSaleInvoiceByNumber(c *gin.Context) {
	invoice, err := h.saleService.GetSaleInvoiceByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// ListSalesByClient returns a client's sale invoices
// @Summary      List sale invoices by client
// @Tags         invoices
// @Produce      json
// @Param        clientId  path      string  true  "Client ID"
// @Success      200       {object}  response.Response{data=[]service.SaleInvoiceResponse}
// @Router       /api/sale-invoices/client/{clientId} [get]
func (h *InvoiceHandler) ListSalesByClient(c *gin.Context) {
	invoices, err := h.saleService.ListByClient(c.Request.Context(), c.Param("clientId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// ListSalesByDateRange returns sale invoices between two dates
// @Summary      List sale invoices by date range
// @Tags         invoices
// @Produce      json
// @Param        from  query     string  true  "From date (YYYY-MM-DD)"
// @Param        to    query     string  true  "To date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=[]service.SaleInvoiceResponse}
// @Router       /api/sale-invoices/range [get]
func (h *InvoiceHandler) ListSalesByDateRange(c *gin.Context) {
	invoices, err := h.saleService.ListByDateRange(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoices))
}

// VehicleProfit reports the profit on one sold vehicle
// @Summary      Vehicle profit
// @Description  Sale total minus purchase total for a sold vehicle
// @Tags         profit
// @Produce      json
// @Param        vehicleId  path      string  true  "Vehicle ID"
// @Success      200        {object}  response.Response{data=service.ProfitResponse}
// @Failure      422        {object}  response.Response
// @Router       /api/profit/vehicle/{vehicleId} [get]
func (h *InvoiceHandler) VehicleProfit(c *gin.Context) {
	profit, err := h.saleService.VehicleProfit(c.Request.Context(), c.Param("vehicleId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, profit))
}

// ProfitSummary aggregates profit over a sale date range
// @Summary      Profit summary
// @Tags         profit
// @Produce      json
// @Param        from  query     string  true  "From date (YYYY-MM-DD)"
// @Param        to    query     string  true  "To date (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=service.ProfitSummaryResponse}
// @Router       /api/profit/summary [get]
func (h *InvoiceHandler) ProfitSummary(c *gin.Context) {
	summary, err := h.saleService.ProfitSummary(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
