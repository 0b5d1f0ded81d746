package pos

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

type Table struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	RestaurantID uuid.UUID `json:"restaurant_id" bson:"restaurant_id"`
	Number       string    `json:"number" bson:"number"`
	Seats        int       `json:"seats" bson:"seats"`
	Status       string    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable(restaurantID uuid.UUID, number string, seats int) *Table {
	return &Table{
		ID:           aqm.GenerateNewID(),
		RestaurantID: restaurantID,
		Number:       number,
		Seats:        seats,
		Status:       "available",
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = aqm.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}

func (t *Table) MarkAsOccupied() {
	t.Status = "occupied"
	t.UpdatedAt = time.Now()
}

func (t *Table) MarkAsAvailable() {
	t.Status = "available"
	t.UpdatedAt = time.Now()
}
