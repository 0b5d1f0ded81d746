package pos

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

// MenuItem describes a sellable product and the per-unit ingredient
// quantities consumed when one unit is sold.
type MenuItem struct {
	ID           uuid.UUID    `json:"id" bson:"_id"`
	RestaurantID uuid.UUID    `json:"restaurant_id" bson:"restaurant_id"`
	Name         string       `json:"name" bson:"name"`
	ShortCode    string       `json:"short_code,omitempty" bson:"short_code,omitempty"`
	Category     string       `json:"category,omitempty" bson:"category,omitempty"`
	Price        float64      `json:"price" bson:"price"`
	Active       bool         `json:"active" bson:"active"`
	Ingredients  []Ingredient `json:"ingredients,omitempty" bson:"ingredients,omitempty"`
	CreatedAt    time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at" bson:"updated_at"`
}

// Ingredient is the consumption of one stock item per unit sold.
type Ingredient struct {
	Name     string  `json:"name" bson:"name"`
	Quantity float64 `json:"quantity" bson:"quantity"`
	Unit     string  `json:"unit,omitempty" bson:"unit,omitempty"`
}

func (m *MenuItem) GetID() uuid.UUID {
	return m.ID
}

func (m *MenuItem) ResourceType() string {
	return "menu-item"
}

func (m *MenuItem) SetID(id uuid.UUID) {
	m.ID = id
}

func NewMenuItem(restaurantID uuid.UUID, name string, price float64) *MenuItem {
	return &MenuItem{
		ID:           aqm.GenerateNewID(),
		RestaurantID: restaurantID,
		Name:         name,
		Price:        price,
		Active:       true,
	}
}

func (m *MenuItem) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = aqm.GenerateNewID()
	}
}

func (m *MenuItem) BeforeCreate() {
	m.EnsureID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = time.Now()
}

func (m *MenuItem) BeforeUpdate() {
	m.UpdatedAt = time.Now()
}

func (m *MenuItem) Deactivate() {
	m.Active = false
	m.UpdatedAt = time.Now()
}

func (m *MenuItem) Activate() {
	m.Active = true
	m.UpdatedAt = time.Now()
}
