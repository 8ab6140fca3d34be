package services

import (
	"context"
	"fmt"

	"smartentrance/internal/models"
)

type CreateUnitRequest struct {
	UnitNumber int     `json:"unitNumber" validate:"required,gt=0"`
	Floor      int     `json:"floor"`
	Residents  int     `json:"residents" validate:"gte=0"`
	MonthlyFee float64 `json:"monthlyFee" validate:"gte=0"`
}

type UnitService struct {
	mine    Resource[models.Unit]
	details Resource[models.UnitDetails]
}

func NewUnitService(client Requester) *UnitService {
	return &UnitService{
		mine:    NewResource[models.Unit](client, "units"),
		details: NewResource[models.UnitDetails](client, "units"),
	}
}

// ListMine returns the units the current user lives in.
func (s *UnitService) ListMine(ctx context.Context) ([]models.Unit, error) {
	return s.mine.List(ctx, "/units/mine", nil)
}

func (s *UnitService) ListByBuilding(ctx context.Context, buildingID int64) ([]models.UnitDetails, error) {
	return s.details.List(ctx, fmt.Sprintf("/buildings/%d/units", buildingID), nil)
}

func (s *UnitService) Create(ctx context.Context, buildingID int64, req CreateUnitRequest) (*models.UnitDetails, error) {
	return s.details.Create(ctx, fmt.Sprintf("/buildings/%d/units", buildingID), req)
}

func (s *UnitService) UpdateFee(ctx context.Context, unitID int64, fee float64) (*models.UnitDetails, error) {
	return s.details.Update(ctx, fmt.Sprintf("/units/%d/fee", unitID), map[string]float64{"monthlyFee": fee})
}
