package services

import (
	"context"
	"fmt"
	"time"

	"smartentrance/internal/models"
)

type CreateNoticeRequest struct {
	Title   string     `json:"title" validate:"required,max=200"`
	Body    string     `json:"body" validate:"required"`
	IsEvent bool       `json:"isEvent"`
	EventAt *time.Time `json:"eventAt,omitempty" validate:"required_if=IsEvent true"`
}

type NoticeService struct {
	resource Resource[models.Notice]
}

func NewNoticeService(client Requester) *NoticeService {
	return &NoticeService{resource: NewResource[models.Notice](client, "notices")}
}

func (s *NoticeService) ListByBuilding(ctx context.Context, buildingID int64) ([]models.Notice, error) {
	return s.resource.List(ctx, fmt.Sprintf("/buildings/%d/notices", buildingID), nil)
}

func (s *NoticeService) Create(ctx context.Context, buildingID int64, req CreateNoticeRequest) (*models.Notice, error) {
	return s.resource.Create(ctx, fmt.Sprintf("/buildings/%d/notices", buildingID), req)
}
