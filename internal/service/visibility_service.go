package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
	"golang.org/x/sync/errgroup"
)

const defaultVisibilityConcurrency = 8

// PostVisibility pairs a post with the verdict computed for it.
type PostVisibility struct {
	Post       *domain.Post      `json:"post"`
	Visibility domain.Visibility `json:"visibility"`
}

// VisibilityService evaluates posts against live room occupancy. Nothing it
// computes is stored; every read resolves again.
type VisibilityService struct {
	rooms       repository.RoomReader
	posts       repository.PostRepository
	events      events.Publisher
	log         *slog.Logger
	concurrency int
}

func NewVisibilityService(rooms repository.RoomReader, posts repository.PostRepository, publisher events.Publisher, log *slog.Logger, concurrency int) *VisibilityService {
	if log == nil {
		log = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = defaultVisibilityConcurrency
	}
	return &VisibilityService{
		rooms:       rooms,
		posts:       posts,
		events:      publisher,
		log:         log,
		concurrency: concurrency,
	}
}

// Resolve loads the post's room and applies the rules. A room that cannot be
// loaded makes the post visible.
func (s *VisibilityService) Resolve(ctx context.Context, post *domain.Post) domain.Visibility {
	if post == nil {
		return domain.ResolveVisibility(nil, domain.Occupancy{})
	}
	room, err := s.rooms.GetByID(ctx, post.RoomID)
	if err != nil {
		s.log.Warn("room lookup failed, post stays visible",
			slog.String("op", "service.Visibility.Resolve"),
			slog.String("post_id", post.ID.String()),
			slog.String("room_id", post.RoomID.String()),
			sl.Err(err),
		)
		return domain.FailOpen()
	}
	return domain.ResolveVisibility(post, room.Occupancy())
}

func (s *VisibilityService) ResolvePost(ctx context.Context, postID uuid.UUID) (*domain.Post, domain.Visibility, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, domain.Visibility{}, err
	}
	return post, s.Resolve(ctx, post), nil
}

// FilterVisiblePosts keeps the posts that should be shown, in input order.
// Each distinct room is loaded once; lookups run concurrently.
func (s *VisibilityService) FilterVisiblePosts(ctx context.Context, posts []*domain.Post) []*domain.Post {
	verdicts := s.resolveAll(ctx, posts)

	visible := make([]*domain.Post, 0, len(posts))
	for i, post := range posts {
		if verdicts[i].ShouldShow {
			visible = append(visible, post)
		}
	}
	return visible
}

// ListVisible is the public listing: active posts that survive the resolver.
func (s *VisibilityService) ListVisible(ctx context.Context, filter repository.PostFilter) ([]*domain.Post, error) {
	filter.Status = domain.PostStatusActive
	posts, err := s.posts.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.FilterVisiblePosts(ctx, posts), nil
}

// ReconcileRoom re-resolves every active post of a room and announces the
// verdicts. It runs after any occupancy change.
func (s *VisibilityService) ReconcileRoom(ctx context.Context, roomID uuid.UUID) ([]PostVisibility, error) {
	const op = "service.Visibility.ReconcileRoom"
	log := s.log.With(slog.String("op", op), slog.String("room_id", roomID.String()))

	posts, err := s.posts.List(ctx, repository.PostFilter{RoomID: roomID, Status: domain.PostStatusActive})
	if err != nil {
		log.Error("failed to list posts", sl.Err(err))
		return nil, err
	}

	verdicts := s.resolveAll(ctx, posts)
	result := make([]PostVisibility, 0, len(posts))
	for i, post := range posts {
		result = append(result, PostVisibility{Post: post, Visibility: verdicts[i]})
		s.announce(post, verdicts[i])
	}

	log.Debug("room reconciled", slog.Int("posts", len(result)))
	return result, nil
}

func (s *VisibilityService) announce(post *domain.Post, v domain.Visibility) {
	if s.events == nil {
		return
	}
	s.events.Publish(events.New(events.PostVisibility, "post", post.ID, post.RoomID, map[string]any{
		"should_show": v.ShouldShow,
		"reason":      v.Reason,
	}, post.LandlordID))
}

func (s *VisibilityService) resolveAll(ctx context.Context, posts []*domain.Post) []domain.Visibility {
	var (
		mu    sync.Mutex
		rooms = make(map[uuid.UUID]*domain.Room)
		g     errgroup.Group
	)
	g.SetLimit(s.concurrency)

	seen := make(map[uuid.UUID]struct{})
	for _, post := range posts {
		if post == nil {
			continue
		}
		if _, ok := seen[post.RoomID]; ok {
			continue
		}
		seen[post.RoomID] = struct{}{}

		roomID := post.RoomID
		g.Go(func() error {
			room, err := s.rooms.GetByID(ctx, roomID)
			if err != nil {
				s.log.Warn("room lookup failed, posts stay visible",
					slog.String("op", "service.Visibility.resolveAll"),
					slog.String("room_id", roomID.String()),
					sl.Err(err),
				)
				return nil
			}
			mu.Lock()
			rooms[roomID] = room
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	verdicts := make([]domain.Visibility, len(posts))
	for i, post := range posts {
		if post == nil {
			verdicts[i] = domain.ResolveVisibility(nil, domain.Occupancy{})
			continue
		}
		room, ok := rooms[post.RoomID]
		if !ok {
			verdicts[i] = domain.FailOpen()
			continue
		}
		verdicts[i] = domain.ResolveVisibility(post, room.Occupancy())
	}
	return verdicts
}
