package services

import (
	"context"
	"fmt"
	"time"

	"smartentrance/internal/models"
)

type CreatePollRequest struct {
	Question string     `json:"question" validate:"required,max=300"`
	Options  []string   `json:"options" validate:"min=2,max=10,dive,required"`
	ClosesAt *time.Time `json:"closesAt,omitempty"`
}

type VoteRequest struct {
	OptionID int64 `json:"optionId" validate:"required,gt=0"`
}

type PollService struct {
	client   Requester
	resource Resource[models.Poll]
}

func NewPollService(client Requester) *PollService {
	return &PollService{client: client, resource: NewResource[models.Poll](client, "polls")}
}

func (s *PollService) ListByBuilding(ctx context.Context, buildingID int64) ([]models.Poll, error) {
	return s.resource.List(ctx, fmt.Sprintf("/buildings/%d/polls", buildingID), nil)
}

func (s *PollService) Create(ctx context.Context, buildingID int64, req CreatePollRequest) (*models.Poll, error) {
	return s.resource.Create(ctx, fmt.Sprintf("/buildings/%d/polls", buildingID), req)
}

func (s *PollService) Vote(ctx context.Context, pollID int64, req VoteRequest) (*models.Poll, error) {
	var poll models.Poll
	if err := s.client.Post(ctx, fmt.Sprintf("/polls/%d/votes", pollID), req, &poll); err != nil {
		return nil, err
	}
	return &poll, nil
}
