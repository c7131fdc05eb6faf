package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

type RoomResponse struct {
	ID               uuid.UUID `json:"id"`
	LandlordID       uuid.UUID `json:"landlord_id"`
	Title            string    `json:"title"`
	MaxOccupancy     int       `json:"max_occupancy"`
	CurrentOccupancy int       `json:"current_occupancy"`
	AvailableSlots   int       `json:"available_slots"`
	MonthlyRent      int64     `json:"monthly_rent"`
	Deposit          int64     `json:"deposit"`
	CreatedAt        time.Time `json:"created_at"`
}

type PostResponse struct {
	ID         uuid.UUID         `json:"id"`
	RoomID     uuid.UUID         `json:"room_id"`
	LandlordID uuid.UUID         `json:"landlord_id"`
	PostType   domain.PostType   `json:"post_type"`
	Status     domain.PostStatus `json:"status"`
	Title      string            `json:"title"`
	CreatedAt  time.Time         `json:"created_at"`
	Visibility *VisibilityView   `json:"visibility,omitempty"`
}

type VisibilityView struct {
	ShouldShow bool   `json:"should_show"`
	Reason     string `json:"reason"`
}

func RoomToApi(r *domain.Room) *RoomResponse {
	available := r.MaxOccupancy - r.CurrentOccupancy
	if available < 0 {
		available = 0
	}
	return &RoomResponse{
		ID:               r.ID,
		LandlordID:       r.LandlordID,
		Title:            r.Title,
		MaxOccupancy:     r.MaxOccupancy,
		CurrentOccupancy: r.CurrentOccupancy,
		AvailableSlots:   available,
		MonthlyRent:      r.MonthlyRent,
		Deposit:          r.Deposit,
		CreatedAt:        r.CreatedAt,
	}
}

func PostToApi(p *domain.Post) *PostResponse {
	return &PostResponse{
		ID:         p.ID,
		RoomID:     p.RoomID,
		LandlordID: p.LandlordID,
		PostType:   p.Type,
		Status:     p.Status,
		Title:      p.Title,
		CreatedAt:  p.CreatedAt,
	}
}

func PostsToApi(posts []*domain.Post) []*PostResponse {
	res := make([]*PostResponse, 0, len(posts))
	for _, p := range posts {
		res = append(res, PostToApi(p))
	}
	return res
}

func PostWithVisibility(p *domain.Post, v domain.Visibility) *PostResponse {
	res := PostToApi(p)
	res.Visibility = &VisibilityView{ShouldShow: v.ShouldShow, Reason: v.Reason}
	return res
}
