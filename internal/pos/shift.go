package pos

import (
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/google/uuid"
)

const (
	ShiftOpen   = "open"
	ShiftClosed = "closed"
)

// Shift is one staff attendance record, from clock-in to clock-out.
type Shift struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	RestaurantID uuid.UUID `json:"restaurant_id" bson:"restaurant_id"`
	StaffID      uuid.UUID `json:"staff_id" bson:"staff_id"`
	StaffName    string    `json:"staff_name" bson:"staff_name"`
	Status       string    `json:"status" bson:"status"`
	ClockIn      time.Time `json:"clock_in" bson:"clock_in"`
	ClockOut     time.Time `json:"clock_out,omitempty" bson:"clock_out,omitempty"`
}

func (s *Shift) GetID() uuid.UUID {
	return s.ID
}

func (s *Shift) ResourceType() string {
	return "shift"
}

func (s *Shift) SetID(id uuid.UUID) {
	s.ID = id
}

func NewShift(restaurantID, staffID uuid.UUID, staffName string) *Shift {
	return &Shift{
		ID:           aqm.GenerateNewID(),
		RestaurantID: restaurantID,
		StaffID:      staffID,
		StaffName:    staffName,
		Status:       ShiftOpen,
		ClockIn:      time.Now(),
	}
}

func (s *Shift) EnsureID() {
	if s.ID == uuid.Nil {
		s.ID = aqm.GenerateNewID()
	}
}

// Close stamps the clock-out time. Closing a closed shift is a no-op.
func (s *Shift) Close() {
	if s.Status == ShiftClosed {
		return
	}
	s.Status = ShiftClosed
	s.ClockOut = time.Now()
}

func (s *Shift) IsOpen() bool {
	return s.Status == ShiftOpen
}
