package services

import (
	"context"
	"errors"

	"billora/internal/models"
	"billora/internal/repositories"

	"github.com/google/uuid"
)

type ClientService interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Client, error)
}

type clientService struct {
	clients repositories.ClientRepository
}

func NewClientService(clients repositories.ClientRepository) ClientService {
	return &clientService{clients: clients}
}

func validateClient(client *models.Client) error {
	if client.Name == "" {
		return errors.New("client name is required")
	}
	if client.Email == "" {
		return errors.New("client email is required")
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	return s.clients.Create(ctx, client)
}

func (s *clientService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Client, error) {
	return s.clients.GetByID(ctx, userID, id)
}

func (s *clientService) Update(ctx context.Context, client *models.Client) error {
	if err := validateClient(client); err != nil {
		return err
	}
	return s.clients.Update(ctx, client)
}

func (s *clientService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.clients.Delete(ctx, userID, id)
}

func (s *clientService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.Client, error) {
	return s.clients.List(ctx, userID, limit, offset)
}
