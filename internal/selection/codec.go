package selection

import (
	"encoding/json"
	"errors"
	"fmt"

	"smartentrance/internal/models"
)

var (
	ErrNothingToPersist = errors.New("no scope to persist")
	ErrCorrupted        = errors.New("corrupted selection entry")
)

// Envelope is the persisted and wire shape of a scope:
// {"type":"building","building":{...}} or {"type":"unit","unit":{...}}.
type Envelope struct {
	Type     Kind             `json:"type"`
	Building *models.Building `json:"building,omitempty"`
	Unit     *models.Unit     `json:"unit,omitempty"`
}

// ToEnvelope renders s; NoScope becomes {"type":"none"}.
func ToEnvelope(s Scope) Envelope {
	if s == nil {
		return Envelope{Type: KindNone}
	}
	return Envelope{
		Type:     s.Kind(),
		Building: BuildingOf(s),
		Unit:     UnitOf(s),
	}
}

// Encode serializes a building or unit scope for storage.
func Encode(s Scope) ([]byte, error) {
	if s == nil || s.Kind() == KindNone {
		return nil, ErrNothingToPersist
	}
	return json.Marshal(ToEnvelope(s))
}

// Decode parses a persisted entry. Any shape other than a complete building or unit
// envelope yields ErrCorrupted.
func Decode(data []byte) (Scope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return NoScope{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	switch env.Type {
	case KindBuilding:
		if env.Building == nil || env.Unit != nil || env.Building.ID <= 0 {
			return NoScope{}, fmt.Errorf("%w: incomplete building entry", ErrCorrupted)
		}
		return BuildingScope{Building: *env.Building}, nil
	case KindUnit:
		if env.Unit == nil || env.Building != nil || env.Unit.UnitID <= 0 {
			return NoScope{}, fmt.Errorf("%w: incomplete unit entry", ErrCorrupted)
		}
		return UnitScope{Unit: *env.Unit}, nil
	default:
		return NoScope{}, fmt.Errorf("%w: unknown type %q", ErrCorrupted, env.Type)
	}
}
