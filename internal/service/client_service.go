package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"dealership/internal/model"
	"dealership/internal/repository"
	"dealership/pkg/apperror"
)

// --- DTOs ---

type CreateClientRequest struct {
	Type        string `json:"type" binding:"required,oneof=INDIVIDUAL COMPANY"`
	Document    string `json:"document" binding:"required,max=20"`
	Name        string `json:"name" binding:"required,max=200"`
	Surname     string `json:"surname" binding:"max=200"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Address     string `json:"address" binding:"required,max=300"`
	City        string `json:"city" binding:"max=100"`
	Province    string `json:"province" binding:"max=100"`
	PostalCode  string `json:"postal_code" binding:"max=10"`
	Phone       string `json:"phone" binding:"max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
	Notes       string `json:"notes"`
}

type UpdateClientRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Surname     string `json:"surname" binding:"max=200"`
	CompanyName string `json:"company_name" binding:"max=200"`
	Address     string `json:"address" binding:"required,max=300"`
	City        string `json:"city" binding:"max=100"`
	Province    string `json:"province" binding:"max=100"`
	PostalCode  string `json:"postal_code" binding:"max=10"`
	Phone       string `json:"phone" binding:"max=20"`
	Email       string `json:"email" binding:"omitempty,email"`
	Notes       string `json:"notes"`
}

type ClientResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Document    string `json:"document"`
	DisplayName string `json:"display_name"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postal_code"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
}

// --- Interface ---

type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error)
	UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error)
	GetClient(ctx context.Context, id string) (ClientResponse, error)
	GetClientByDocument(ctx context.Context, document string) (ClientResponse, error)
	ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error)
	DeactivateClient(ctx context.Context, id string) error
}

type clientService struct {
	clientRepo repository.ClientRepository
}

func NewClientService(clientRepo repository.ClientRepository) ClientService {
	return &clientService{clientRepo: clientRepo}
}

// --- Implementation ---

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (ClientResponse, error) {
	if req.Type == model.ClientCompany && req.CompanyName == "" {
		return ClientResponse{}, apperror.NewBusinessRule("company clients require a company_name")
	}

	exists, err := s.clientRepo.ExistsByDocument(ctx, req.Document, uuid.Nil)
	if err != nil {
		return ClientResponse{}, fmt.Errorf("failed to check document: %w", err)
	}
	if exists {
		return ClientResponse{}, apperror.NewDuplicate("client", "document", req.Document)
	}

	client := &model.Client{
		Type:        req.Type,
		Document:    req.Document,
		Name:        req.Name,
		Surname:     req.Surname,
		CompanyName: req.CompanyName,
		Address:     req.Address,
		City:        req.City,
		Province:    req.Province,
		PostalCode:  req.PostalCode,
		Phone:       req.Phone,
		Email:       req.Email,
		Notes:       req.Notes,
		IsActive:    true,
	}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to create client: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) UpdateClient(ctx context.Context, id string, req UpdateClientRequest) (ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return ClientResponse{}, err
	}
	if client.Type == model.ClientCompany && req.CompanyName == "" {
		return ClientResponse{}, apperror.NewBusinessRule("company clients require a company_name")
	}

	client.Name = req.Name
	client.Surname = req.Surname
	client.CompanyName = req.CompanyName
	client.Address = req.Address
	client.City = req.City
	client.Province = req.Province
	client.PostalCode = req.PostalCode
	client.Phone = req.Phone
	client.Email = req.Email
	client.Notes = req.Notes

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return ClientResponse{}, fmt.Errorf("failed to update client: %w", err)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return ClientResponse{}, err
	}
	return toClientResponse(*client), nil
}

func (s *clientService) GetClientByDocument(ctx context.Context, document string) (ClientResponse, error) {
	client, err := s.clientRepo.FindByDocument(ctx, document)
	if err != nil {
		return ClientResponse{}, apperror.NewNotFound("client", "document", document)
	}
	return toClientResponse(*client), nil
}

func (s *clientService) ListClients(ctx context.Context, page, limit int) ([]ClientResponse, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	res := make([]ClientResponse, 0, len(clients))
	for _, c := range clients {
		res = append(res, toClientResponse(c))
	}
	return res, total, nil
}

func (s *clientService) DeactivateClient(ctx context.Context, id string) error {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return err
	}

	client.IsActive = false
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return fmt.Errorf("failed to deactivate client: %w", err)
	}
	return nil
}

// --- Helpers ---

func (s *clientService) findClient(ctx context.Context, id string) (*model.Client, error) {
	clientID, err := parseID("client id", id)
	if err != nil {
		return nil, err
	}
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		return nil, apperror.NewNotFound("client", "id", id)
	}
	return client, nil
}

func toClientResponse(c model.Client) ClientResponse {
	return ClientResponse{
		ID:          c.ID.String(),
		Type:        c.Type,
		Document:    c.Document,
		DisplayName: c.DisplayName(),
		Name:        c.Name,
		Surname:     c.Surname,
		CompanyName: c.CompanyName,
		Address:     c.Address,
		City:        c.City,
		Province:    c.Province,
		PostalCode:  c.PostalCode,
		Phone:       c.Phone,
		Email:       c.Email,
		IsActive:    c.IsActive,
	}
}
