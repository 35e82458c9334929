package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type CreateSaleInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required,max=50"`
	InvoiceDate   string `json:"invoice_date" binding:"required"` // YYYY-MM-DD
	ClientID      string `json:"client_id" binding:"required,uuid"`
	VehicleID     string `json:"vehicle_id" binding:"required,uuid"`
	ReservationID string `json:"reservation_id" binding:"omitempty,uuid"`
	BaseAmount    string `json:"base_amount" binding:"required"`
	VATRate       string `json:"vat_rate" binding:"required"`
	Discount      string `json:"discount"`
	Notes         string `json:"notes"`
}

type UpdateSaleInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number" binding:"required,max=50"`
	InvoiceDate   string `json:"invoice_date" binding:"required"`
	BaseAmount    string `json:"base_amount" binding:"required"`
	VATRate       string `json:"vat_rate" binding:"required"`
	Discount      string `json:"discount"`
	Notes         string `json:"notes"`
}

type SaleInvoiceResponse struct {
	ID            string  `json:"id"`
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	ClientID      string  `json:"client_id"`
	VehicleID     string  `json:"vehicle_id"`
	ReservationID *string `json:"reservation_id"`
	BaseAmount    string  `json:"base_amount"`
	VATRate       string  `json:"vat_rate"`
	Discount      string  `json:"discount"`
	Total         string  `json:"total"`
	Notes         string  `json:"notes,omitempty"`
}

type ProfitResponse struct {
	VehicleID     string  `json:"vehicle_id"`
	PurchaseTotal *string `json:"purchase_total"`
	SaleTotal     string  `json:"sale_total"`
	Profit        string  `json:"profit"`
}

type ProfitSummaryResponse struct {
	From         string `json:"from"`
	To           string `json:"to"`
	VehiclesSold int    `json:"vehicles_sold"`
	TotalProfit  string `json:"total_profit"`
}

// --- Interface ---

// SaleInvoiceService closes a vehicle's commercial lifecycle. Issuing the sale
// invoice completes the referenced reservation, moves the vehicle to SOLD and
// fixes the numbers profit reporting is built on.
type SaleInvoiceService interface {
	CreateSaleInvoice(ctx context.Context, req CreateSaleInvoiceRequest, actor string) (SaleInvoiceResponse, error)
	UpdateSaleInvoice(ctx context.Context, id string, req UpdateSaleInvoiceRequest) (SaleInvoiceResponse, error)
	GetSaleInvoice(ctx context.Context, id string) (SaleInvoiceResponse, error)
	GetSaleInvoiceByNumber(ctx context.Context, number string) (SaleInvoiceResponse, error)
	ListByClient(ctx context.Context, clientID string) ([]SaleInvoiceResponse, error)
	ListByDateRange(ctx context.Context, from, to string) ([]SaleInvoiceResponse, error)
	VehicleProfit(ctx context.Context, vehicleID string) (ProfitResponse, error)
	ProfitSummary(ctx context.Context, from, to string) (ProfitSummaryResponse, error)
}

type saleInvoiceService struct {
	saleRepo        repository.SaleInvoiceRepository
	purchaseRepo    repository.PurchaseInvoiceRepository
	clientRepo      repository.ClientRepository
	vehicleRepo     repository.VehicleRepository
	reservationRepo repository.ReservationRepository
	vehicles        VehicleService
	audit           AuditService
	txManager       repository.TransactionManager
}

func NewSaleInvoiceService(
	saleRepo repository.SaleInvoiceRepository,
	purchaseRepo repository.PurchaseInvoiceRepository,
	clientRepo repository.ClientRepository,
	vehicleRepo repository.VehicleRepository,
	reservationRepo repository.ReservationRepository,
	vehicles VehicleService,
	audit AuditService,
	txManager repository.TransactionManager,
) SaleInvoiceService {
	return &saleInvoiceService{
		saleRepo:        saleRepo,
		purchaseRepo:    purchaseRepo,
		clientRepo:      clientRepo,
		vehicleRepo:     vehicleRepo,
		reservationRepo: reservationRepo,
		vehicles:        vehicles,
		audit:           audit,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *saleInvoiceService) CreateSaleInvoice(ctx context.Context, req CreateSaleInvoiceRequest, actor string) (SaleInvoiceResponse, error) {
	clientID, err := parseID("client_id", req.ClientID)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	vehicleID, err := parseID("vehicle_id", req.VehicleID)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	invoiceDate, err := parseDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	base, vat, err := parseInvoiceAmounts(req.BaseAmount, req.VATRate)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	discount, err := parseOptionalAmount("discount", req.Discount)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	if discount.IsNegative() || discount.GreaterThanOrEqual(base) {
		return SaleInvoiceResponse{}, apperror.NewBusinessRule("discount must be between 0 and the base amount")
	}

	var invoice *model.SaleInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, clientID)
		if err != nil {
			return apperror.NewNotFound("client", "id", req.ClientID)
		}
		vehicle, err := s.vehicleRepo.FindByID(txCtx, vehicleID)
		if err != nil {
			return apperror.NewNotFound("vehicle", "id", req.VehicleID)
		}
		if vehicle.IsSold() {
			return apperror.NewDuplicate("sale invoice", "vehicle_id", req.VehicleID)
		}
		if vehicle.StatusName() == model.StatusInRental {
			return apperror.NewBusinessRule("vehicle %s is in an active rental and cannot be sold", vehicle.Plate)
		}

		taken, err := s.saleRepo.ExistsByNumber(txCtx, req.InvoiceNumber, uuid.Nil)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("sale invoice", "invoice_number", req.InvoiceNumber)
		}

		var reservationID *uuid.UUID
		if req.ReservationID != "" {
			reservation, err := s.completeReservation(txCtx, req.ReservationID, clientID, vehicleID, actor)
			if err != nil {
				return err
			}
			reservationID = &reservation.ID
		} else {
			live, err := s.reservationRepo.ExistsLiveByVehicle(txCtx, vehicleID)
			if err != nil {
				return fmt.Errorf("failed to check live reservations: %w", err)
			}
			if live {
				return apperror.NewBusinessRule(
					"vehicle %s has a live reservation: the sale must reference it", vehicle.Plate)
			}
		}

		invoice = &model.SaleInvoice{
			InvoiceNumber: req.InvoiceNumber,
			InvoiceDate:   invoiceDate,
			ClientID:      clientID,
			VehicleID:     vehicleID,
			ReservationID: reservationID,
			BaseAmount:    base,
			VATRate:       vat,
			Discount:      discount.Round(2),
			Notes:         req.Notes,
			IsActive:      true,
		}
		invoice.ComputeTotal()
		if err := s.saleRepo.Create(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to create sale invoice: %w", err)
		}

		if _, err := s.vehicles.ApplyStatusEvent(txCtx, vehicleID, model.EventVehicleSold, actor); err != nil {
			return err
		}

		return s.audit.Record(txCtx, actor, model.ActionCreateSaleInvoice, "sale_invoice", invoice.ID.String(), map[string]any{
			"invoice_number": req.InvoiceNumber,
			"vehicle_id":     req.VehicleID,
			"client":         client.DisplayName(),
			"total":          invoice.Total.StringFixed(2),
		})
	})
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	return toSaleInvoiceResponse(*invoice), nil
}

func (s *saleInvoiceService) UpdateSaleInvoice(ctx context.Context, id string, req UpdateSaleInvoiceRequest) (SaleInvoiceResponse, error) {
	invoiceID, err := parseID("invoice id", id)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	invoiceDate, err := parseDate("invoice_date", req.InvoiceDate)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	base, vat, err := parseInvoiceAmounts(req.BaseAmount, req.VATRate)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	discount, err := parseOptionalAmount("discount", req.Discount)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	if discount.IsNegative() || discount.GreaterThanOrEqual(base) {
		return SaleInvoiceResponse{}, apperror.NewBusinessRule("discount must be between 0 and the base amount")
	}

	invoice, err := s.saleRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return SaleInvoiceResponse{}, apperror.NewNotFound("sale invoice", "id", id)
	}

	if req.InvoiceNumber != invoice.InvoiceNumber {
		taken, err := s.saleRepo.ExistsByNumber(ctx, req.InvoiceNumber, invoice.ID)
		if err != nil {
			return SaleInvoiceResponse{}, fmt.Errorf("failed to check invoice number: %w", err)
		}
		if taken {
			return SaleInvoiceResponse{}, apperror.NewDuplicate("sale invoice", "invoice_number", req.InvoiceNumber)
		}
		invoice.InvoiceNumber = req.InvoiceNumber
	}

	invoice.InvoiceDate = invoiceDate
	invoice.BaseAmount = base
	invoice.VATRate = vat
	invoice.Discount = discount.Round(2)
	invoice.Notes = req.Notes
	invoice.ComputeTotal()

	if err := s.saleRepo.Save(ctx, invoice); err != nil {
		return SaleInvoiceResponse{}, fmt.Errorf("failed to update sale invoice: %w", err)
	}
	return toSaleInvoiceResponse(*invoice), nil
}

func (s *saleInvoiceService) GetSaleInvoice(ctx context.Context, id string) (SaleInvoiceResponse, error) {
	invoiceID, err := parseID("invoice id", id)
	if err != nil {
		return SaleInvoiceResponse{}, err
	}
	invoice, err := s.saleRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return SaleInvoiceResponse{}, apperror.NewNotFound("sale invoice", "id", id)
	}
	return toSaleInvoiceResponse(*invoice), nil
}

func (s *saleInvoiceService) GetSaleInvoiceByNumber(ctx context.Context, number string) (SaleInvoiceResponse, error) {
	invoice, err := s.saleRepo.FindByNumber(ctx, number)
	if err != nil {
		return SaleInvoiceResponse{}, apperror.NewNotFound("sale invoice", "invoice_number", number)
	}
	return toSaleInvoiceResponse(*invoice), nil
}

func (s *saleInvoiceService) ListByClient(ctx context.Context, clientID string) ([]SaleInvoiceResponse, error) {
	id, err := parseID("client_id", clientID)
	if err != nil {
		return nil, err
	}
	invoices, err := s.saleRepo.FindByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale invoices: %w", err)
	}
	return toSaleInvoiceResponses(invoices), nil
}

func (s *saleInvoiceService) ListByDateRange(ctx context.Context, from, to string) ([]SaleInvoiceResponse, error) {
	fromDate, toDate, err := parseDateRange(from, to)
	if err != nil {
		return nil, err
	}
	invoices, err := s.saleRepo.FindByDateRange(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale invoices: %w", err)
	}
	return toSaleInvoiceResponses(invoices), nil
}

// VehicleProfit reports sale total minus purchase total for a sold vehicle.
// A vehicle sold without a recorded purchase reports the full sale as profit.
func (s *saleInvoiceService) VehicleProfit(ctx context.Context, vehicleID string) (ProfitResponse, error) {
	id, err := parseID("vehicle_id", vehicleID)
	if err != nil {
		return ProfitResponse{}, err
	}

	vehicle, err := s.vehicleRepo.FindByID(ctx, id)
	if err != nil {
		return ProfitResponse{}, apperror.NewNotFound("vehicle", "id", vehicleID)
	}
	if vehicle.SaleInvoice == nil {
		return ProfitResponse{}, apperror.NewBusinessRule("vehicle %s has not been sold", vehicle.Plate)
	}

	res := ProfitResponse{
		VehicleID: vehicle.ID.String(),
		SaleTotal: vehicle.SaleInvoice.Total.StringFixed(2),
	}
	profit := vehicle.SaleInvoice.Total
	if vehicle.PurchaseInvoice != nil {
		purchase := vehicle.PurchaseInvoice.Total.StringFixed(2)
		res.PurchaseTotal = &purchase
		profit = profit.Sub(vehicle.PurchaseInvoice.Total)
	}
	res.Profit = profit.Round(2).StringFixed(2)
	return res, nil
}

func (s *saleInvoiceService) ProfitSummary(ctx context.Context, from, to string) (ProfitSummaryResponse, error) {
	fromDate, toDate, err := parseDateRange(from, to)
	if err != nil {
		return ProfitSummaryResponse{}, err
	}

	sales, err := s.saleRepo.FindByDateRange(ctx, fromDate, toDate)
	if err != nil {
		return ProfitSummaryResponse{}, fmt.Errorf("failed to list sale invoices: %w", err)
	}

	total := decimal.Zero
	for _, sale := range sales {
		profit := sale.Total
		if purchase, err := s.purchaseRepo.FindByVehicle(ctx, sale.VehicleID); err == nil {
			profit = profit.Sub(purchase.Total)
		}
		total = total.Add(profit)
	}

	return ProfitSummaryResponse{
		From:         from,
		To:           to,
		VehiclesSold: len(sales),
		TotalProfit:  total.Round(2).StringFixed(2),
	}, nil
}

// --- Helpers ---

// completeReservation closes the reservation a sale references, checking it
// matches the sale's vehicle and client.
func (s *saleInvoiceService) completeReservation(ctx context.Context, id string, clientID, vehicleID uuid.UUID, actor string) (*model.Reservation, error) {
	reservationID, err := parseID("reservation_id", id)
	if err != nil {
		return nil, err
	}
	reservation, err := s.reservationRepo.FindByID(ctx, reservationID)
	if err != nil {
		return nil, apperror.NewNotFound("reservation", "id", id)
	}
	if reservation.VehicleID != vehicleID {
		return nil, apperror.NewBusinessRule("reservation %s is for a different vehicle", id)
	}
	if reservation.ClientID != clientID {
		return nil, apperror.NewBusinessRule("reservation %s belongs to a different client", id)
	}
	if reservation.State != model.ReservationConfirmed {
		return nil, apperror.NewInvalidOperation(
			"reservation cannot be completed from state %s", reservation.State)
	}

	reservation.State = model.ReservationCompleted
	reservation.IsActive = false
	if err := s.reservationRepo.Save(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to complete reservation: %w", err)
	}

	err = s.audit.Record(ctx, actor, model.ActionCompleteReservation, "reservation", reservation.ID.String(), map[string]any{
		"vehicle_id": vehicleID.String(),
	})
	if err != nil {
		return nil, err
	}
	return reservation, nil
}

func toSaleInvoiceResponse(inv model.SaleInvoice) SaleInvoiceResponse {
	res := SaleInvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   fmtDate(inv.InvoiceDate),
		ClientID:      inv.ClientID.String(),
		VehicleID:     inv.VehicleID.String(),
		BaseAmount:    inv.BaseAmount.StringFixed(2),
		VATRate:       inv.VATRate.String(),
		Discount:      inv.Discount.StringFixed(2),
		Total:         inv.Total.StringFixed(2),
		Notes:         inv.Notes,
	}
	if inv.ReservationID != nil {
		id := inv.ReservationID.String()
		res.ReservationID = &id
	}
	return res
}

func toSaleInvoiceResponses(invoices []model.SaleInvoice) []SaleInvoiceResponse {
	res := make([]SaleInvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		res = append(res, toSaleInvoiceResponse(inv))
	}
	return res
}
