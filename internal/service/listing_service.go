package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

// ListingService manages rooms and the posts advertising them.
type ListingService struct {
	rooms      repository.RoomRepository
	posts      repository.PostRepository
	visibility *VisibilityService
	log        *slog.Logger
	now        Clock
}

func NewListingService(rooms repository.RoomRepository, posts repository.PostRepository, visibility *VisibilityService, log *slog.Logger) *ListingService {
	if log == nil {
		log = slog.Default()
	}
	return &ListingService{
		rooms:      rooms,
		posts:      posts,
		visibility: visibility,
		log:        log,
		now:        systemClock,
	}
}

func (s *ListingService) CreateRoom(ctx context.Context, actor domain.Actor, title string, maxOccupancy int, monthlyRent, deposit int64) (*domain.Room, error) {
	const op = "service.Listing.CreateRoom"
	log := s.log.With(slog.String("op", op), slog.String("landlord_id", actor.ID.String()))

	room, err := domain.NewRoom(actor.ID, strings.TrimSpace(title), maxOccupancy, monthlyRent, deposit)
	if err != nil {
		return nil, err
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		log.Error("failed to create room", sl.Err(err))
		return nil, err
	}

	log.Info("room created", slog.String("room_id", room.ID.String()))
	return room, nil
}

func (s *ListingService) GetRoom(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *ListingService) CreatePost(ctx context.Context, actor domain.Actor, roomID uuid.UUID, postType domain.PostType, title string) (*domain.Post, error) {
	const op = "service.Listing.CreatePost"
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID.String()))

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrNotRoomLandlord
	}

	post, err := domain.NewPost(room, postType, strings.TrimSpace(title))
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		log.Error("failed to create post", sl.Err(err))
		return nil, err
	}

	log.Info("post created", slog.String("post_id", post.ID.String()), slog.String("post_type", string(post.Type)))
	return post, nil
}

// SetPostStatus is the moderation hook. Admins review any post; landlords may
// only retire their own active posts.
func (s *ListingService) SetPostStatus(ctx context.Context, actor domain.Actor, postID uuid.UUID, status domain.PostStatus) (*domain.Post, error) {
	const op = "service.Listing.SetPostStatus"
	log := s.log.With(slog.String("op", op), slog.String("post_id", postID.String()))

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		if post.LandlordID != actor.ID {
			return nil, domain.ErrNotRoomLandlord
		}
		if status != domain.PostStatusExpired {
			return nil, domain.ErrForbidden
		}
	}

	if err := post.Moderate(status, s.now()); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		log.Error("failed to update post", sl.Err(err))
		return nil, err
	}

	log.Info("post status changed", slog.String("status", string(post.Status)))
	if post.Status == domain.PostStatusActive && s.visibility != nil {
		s.visibility.announce(post, s.visibility.Resolve(ctx, post))
	}
	return post, nil
}
