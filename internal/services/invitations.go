package services

import (
	"context"
	"fmt"

	"smartentrance/internal/models"
)

type CreateInvitationRequest struct {
	UnitID int64  `json:"unitId" validate:"required,gt=0"`
	Email  string `json:"email" validate:"required,email"`
}

type AcceptInvitationRequest struct {
	Code string `json:"code" validate:"required,min=4,max=64"`
}

type InvitationService struct {
	client   Requester
	resource Resource[models.Invitation]
}

func NewInvitationService(client Requester) *InvitationService {
	return &InvitationService{client: client, resource: NewResource[models.Invitation](client, "invitations")}
}

func (s *InvitationService) Create(ctx context.Context, req CreateInvitationRequest) (*models.Invitation, error) {
	return s.resource.Create(ctx, fmt.Sprintf("/units/%d/invitations", req.UnitID), map[string]string{"email": req.Email})
}

// Accept redeems an invitation code; the backend links the unit to the current user.
func (s *InvitationService) Accept(ctx context.Context, req AcceptInvitationRequest) (*models.Unit, error) {
	var unit models.Unit
	if err := s.client.Post(ctx, "/invitations/accept", req, &unit); err != nil {
		return nil, err
	}
	return &unit, nil
}
