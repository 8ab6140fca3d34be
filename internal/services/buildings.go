package services

import (
	"context"
	"fmt"

	"smartentrance/internal/models"
)

// AddressComponent is one part of a places-autocomplete result.
type AddressComponent struct {
	LongName  string   `json:"longName"`
	ShortName string   `json:"shortName"`
	Types     []string `json:"types"`
}

// PlaceAddress is the structured address the autocomplete widget returns.
type PlaceAddress struct {
	FormattedAddress string             `json:"formattedAddress" validate:"required"`
	PlaceID          string             `json:"placeId"`
	Components       []AddressComponent `json:"components"`
}

// Component returns the long name of the first component tagged with typ.
func (a PlaceAddress) Component(typ string) (string, bool) {
	for _, c := range a.Components {
		for _, t := range c.Types {
			if t == typ {
				return c.LongName, true
			}
		}
	}
	return "", false
}

type CreateBuildingRequest struct {
	Name     string       `json:"name" validate:"required,max=120"`
	Entrance string       `json:"entrance" validate:"max=10"`
	Address  PlaceAddress `json:"address"`
}

type BuildingService struct {
	resource Resource[models.Building]
}

func NewBuildingService(client Requester) *BuildingService {
	return &BuildingService{resource: NewResource[models.Building](client, "buildings")}
}

// ListManaged returns the buildings the current user manages.
func (s *BuildingService) ListManaged(ctx context.Context) ([]models.Building, error) {
	return s.resource.List(ctx, "/buildings", nil)
}

func (s *BuildingService) Get(ctx context.Context, id int64) (*models.Building, error) {
	return s.resource.Get(ctx, fmt.Sprintf("/buildings/%d", id))
}

func (s *BuildingService) Create(ctx context.Context, req CreateBuildingRequest) (*models.Building, error) {
	body := map[string]any{
		"name":     req.Name,
		"entrance": req.Entrance,
		"address":  req.Address.FormattedAddress,
		"placeId":  req.Address.PlaceID,
	}
	if city, ok := req.Address.Component("locality"); ok {
		body["city"] = city
	}
	return s.resource.Create(ctx, "/buildings", body)
}
