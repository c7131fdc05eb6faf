package domain

import (
	"time"

	"github.com/google/uuid"
)

type PostType string

const (
	PostTypeRent     PostType = "rent"
	PostTypeRoommate PostType = "roommate"
)

func (t PostType) Valid() bool {
	return t == PostTypeRent || t == PostTypeRoommate
}

type PostStatus string

const (
	PostStatusPending  PostStatus = "pending"
	PostStatusActive   PostStatus = "active"
	PostStatusRejected PostStatus = "rejected"
	PostStatusExpired  PostStatus = "expired"
)

// Post is a listing advertising a room. RoomID is a required reference; a post
// whose room cannot be resolved is still a post, see ResolveVisibility.
type Post struct {
	ID         uuid.UUID  `json:"id"`
	RoomID     uuid.UUID  `json:"room_id"`
	LandlordID uuid.UUID  `json:"landlord_id"`
	Type       PostType   `json:"post_type"`
	Status     PostStatus `json:"status"`
	Title      string     `json:"title"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewPost(room *Room, postType PostType, title string) (*Post, error) {
	if room == nil || room.ID == uuid.Nil {
		return nil, ErrRoomNotFound
	}
	if !postType.Valid() {
		return nil, ErrInvalidPostType
	}
	now := time.Now().UTC()
	return &Post{
		ID:         uuid.New(),
		RoomID:     room.ID,
		LandlordID: room.LandlordID,
		Type:       postType,
		Status:     PostStatusPending,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// AcceptsRequests reports whether tenants may apply through this post.
func (p *Post) AcceptsRequests() bool {
	return p.Status == PostStatusActive
}

var postTransitions = map[PostStatus][]PostStatus{
	PostStatusPending: {PostStatusActive, PostStatusRejected},
	PostStatusActive:  {PostStatusExpired},
}

// Moderate moves the post through review. Rejected and expired posts are final.
func (p *Post) Moderate(status PostStatus, now time.Time) error {
	for _, next := range postTransitions[p.Status] {
		if next == status {
			p.Status = status
			p.UpdatedAt = now.UTC()
			return nil
		}
	}
	return ErrInvalidTransition
}
