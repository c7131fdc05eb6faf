package domain

import (
	"time"

	"github.com/google/uuid"
)

// Room is a lettable unit owned by a landlord. Occupancy is only moved by
// contract activation and contract termination or expiry.
type Room struct {
	ID               uuid.UUID `json:"id"`
	LandlordID       uuid.UUID `json:"landlord_id"`
	Title            string    `json:"title"`
	MaxOccupancy     int       `json:"max_occupancy"`
	CurrentOccupancy int       `json:"current_occupancy"`
	MonthlyRent      int64     `json:"monthly_rent"`
	Deposit          int64     `json:"deposit"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Occupancy is the snapshot the visibility resolver works from.
type Occupancy struct {
	Current int `json:"current_occupancy"`
	Max     int `json:"max_occupancy"`
}

func NewRoom(landlordID uuid.UUID, title string, maxOccupancy int, monthlyRent, deposit int64) (*Room, error) {
	if maxOccupancy < 1 {
		return nil, ErrInvalidCapacity
	}
	if monthlyRent < 0 || deposit < 0 {
		return nil, ErrInvalidPrice
	}
	now := time.Now().UTC()
	return &Room{
		ID:           uuid.New(),
		LandlordID:   landlordID,
		Title:        title,
		MaxOccupancy: maxOccupancy,
		MonthlyRent:  monthlyRent,
		Deposit:      deposit,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *Room) Occupancy() Occupancy {
	return Occupancy{Current: r.CurrentOccupancy, Max: r.MaxOccupancy}
}

// HasCapacity reports whether n more tenants fit in the room.
func (r *Room) HasCapacity(n int) bool {
	return n >= 0 && r.CurrentOccupancy+n <= r.MaxOccupancy
}

// Admits checks that n people may move in through a post of postType. A rent
// post needs the room empty.
func (r *Room) Admits(postType PostType, n int) error {
	if !r.HasCapacity(n) {
		return ErrOccupancyExceeded
	}
	if postType == PostTypeRent && !r.IsEmpty() {
		return ErrRoomOccupied
	}
	return nil
}

// IsEmpty reports whether nobody currently lives in the room.
func (r *Room) IsEmpty() bool {
	return r.CurrentOccupancy == 0
}

// ApplyOccupancyDelta moves the occupancy by delta. Increments past capacity
// fail; decrements clamp at zero.
func (r *Room) ApplyOccupancyDelta(delta int) error {
	next := r.CurrentOccupancy + delta
	if delta > 0 && next > r.MaxOccupancy {
		return ErrOccupancyExceeded
	}
	if next < 0 {
		next = 0
	}
	r.CurrentOccupancy = next
	r.UpdatedAt = time.Now().UTC()
	return nil
}
