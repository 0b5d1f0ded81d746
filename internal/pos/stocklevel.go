package pos

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// StockLevel tracks the remaining quantity of one ingredient, keyed by
// ingredient name within a restaurant.
type StockLevel struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	RestaurantID uuid.UUID `json:"restaurant_id" bson:"restaurant_id"`
	Ingredient   string    `json:"ingredient" bson:"ingredient"`
	Quantity     float64   `json:"quantity" bson:"quantity"`
	Unit         string    `json:"unit,omitempty" bson:"unit,omitempty"`
	MinThreshold float64   `json:"min_threshold,omitempty" bson:"min_threshold,omitempty"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (s *StockLevel) GetID() uuid.UUID {
	return s.ID
}

func (s *StockLevel) ResourceType() string {
	return "stock-level"
}

func (s *StockLevel) SetID(id uuid.UUID) {
	s.ID = id
}

func (s *StockLevel) EnsureID() {
	if s.ID == uuid.Nil {
		s.ID = aqm.GenerateNewID()
	}
}

// IsLow reports whether the level fell to or below its threshold. A
// zero threshold never triggers.
func (s *StockLevel) IsLow() bool {
	return s.MinThreshold > 0 && s.Quantity <= s.MinThreshold
}
