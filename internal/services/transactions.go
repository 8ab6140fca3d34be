package services

import (
	"context"
	"fmt"
	"net/url"

	"smartentrance/internal/models"
)

type RecordPaymentRequest struct {
	UnitID      int64                `json:"unitId" validate:"required,gt=0"`
	Amount      float64              `json:"amount" validate:"required,gt=0"`
	Method      models.PaymentMethod `json:"method" validate:"required,payment_method"`
	Description string               `json:"description" validate:"max=255"`
}

type CardIntentRequest struct {
	UnitID int64   `json:"unitId" validate:"required,gt=0"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type TransactionService struct {
	client   Requester
	resource Resource[models.Transaction]
}

func NewTransactionService(client Requester) *TransactionService {
	return &TransactionService{
		client:   client,
		resource: NewResource[models.Transaction](client, "transactions"),
	}
}

func (s *TransactionService) ListByUnit(ctx context.Context, unitID int64) ([]models.Transaction, error) {
	return s.resource.List(ctx, fmt.Sprintf("/units/%d/transactions", unitID), nil)
}

// ListByBuilding returns the building ledger, optionally limited to one period (YYYY-MM).
func (s *TransactionService) ListByBuilding(ctx context.Context, buildingID int64, period string) ([]models.Transaction, error) {
	var query url.Values
	if period != "" {
		query = url.Values{"period": {period}}
	}
	return s.resource.List(ctx, fmt.Sprintf("/buildings/%d/transactions", buildingID), query)
}

// RecordPayment registers a cash, bank or card payment against a unit.
func (s *TransactionService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*models.Transaction, error) {
	if !models.IsValidPaymentMethod(req.Method) {
		return nil, fmt.Errorf("unsupported payment method %q", req.Method)
	}
	return s.resource.Create(ctx, "/transactions", req)
}

// CreateCardIntent asks the backend for a client secret the card widget can confirm.
func (s *TransactionService) CreateCardIntent(ctx context.Context, req CardIntentRequest) (*models.CardIntent, error) {
	var intent models.CardIntent
	if err := s.client.Post(ctx, "/payments/intent", req, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}
