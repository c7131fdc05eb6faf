package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/internal/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestVisibilityResolve(t *testing.T) {
	cases := []struct {
		name     string
		max      int
		current  int
		postType domain.PostType
		want     domain.Visibility
	}{
		{
			name:     "empty room roommate post",
			max:      2,
			postType: domain.PostTypeRoommate,
			want:     domain.Visibility{ShouldShow: true, Reason: domain.ReasonEmptyRoommate},
		},
		{
			name:     "occupied room rent post",
			max:      1,
			current:  1,
			postType: domain.PostTypeRent,
			want:     domain.Visibility{ShouldShow: false, Reason: domain.ReasonRoomOccupied},
		},
		{
			name:     "full room roommate post",
			max:      3,
			current:  3,
			postType: domain.PostTypeRoommate,
			want:     domain.Visibility{ShouldShow: false, Reason: domain.ReasonRoomFull},
		},
		{
			name:     "roommate post with free slots",
			max:      3,
			current:  1,
			postType: domain.PostTypeRoommate,
			want:     domain.Visibility{ShouldShow: true, Reason: domain.ReasonSlotsAvailable},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			room := f.room(t, tc.max)
			if tc.current > 0 {
				_, err := f.store.Rooms.IncrementOccupancy(f.ctx, room.ID, tc.current)
				require.NoError(t, err)
			}
			post := f.activePost(t, room, tc.postType)

			assert.Equal(t, tc.want, f.visibility.Resolve(f.ctx, post))
		})
	}
}

func TestVisibilityResolveFailsOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	rooms := mocks.NewMockRoomReader(ctrl)
	post := &domain.Post{ID: uuid.New(), RoomID: uuid.New(), Type: domain.PostTypeRent, Status: domain.PostStatusActive}

	rooms.EXPECT().GetByID(gomock.Any(), post.RoomID).Return(nil, errors.New("connection reset"))

	svc := NewVisibilityService(rooms, repository.NewInMemoryPostRepository(), nil, discardLogger(), 1)
	got := svc.Resolve(t.Context(), post)

	assert.True(t, got.ShouldShow)
	assert.Equal(t, domain.ReasonRoomUnavailable, got.Reason)
}

func TestFilterVisiblePosts(t *testing.T) {
	ctrl := gomock.NewController(t)
	rooms := mocks.NewMockRoomReader(ctrl)

	full := &domain.Room{ID: uuid.New(), MaxOccupancy: 1, CurrentOccupancy: 1}
	empty := &domain.Room{ID: uuid.New(), MaxOccupancy: 2}
	missing := uuid.New()

	posts := []*domain.Post{
		{ID: uuid.New(), RoomID: empty.ID, Type: domain.PostTypeRent},
		{ID: uuid.New(), RoomID: full.ID, Type: domain.PostTypeRent},
		{ID: uuid.New(), RoomID: missing, Type: domain.PostTypeRent},
		{ID: uuid.New(), RoomID: full.ID, Type: domain.PostTypeRoommate},
		{ID: uuid.New(), RoomID: empty.ID, Type: domain.PostTypeRoommate},
	}

	// Each room is fetched once however many posts point at it.
	rooms.EXPECT().GetByID(gomock.Any(), full.ID).Return(full, nil).Times(1)
	rooms.EXPECT().GetByID(gomock.Any(), empty.ID).Return(empty, nil).Times(1)
	rooms.EXPECT().GetByID(gomock.Any(), missing).Return(nil, domain.ErrRoomNotFound).Times(1)

	svc := NewVisibilityService(rooms, repository.NewInMemoryPostRepository(), nil, discardLogger(), 2)
	got := svc.FilterVisiblePosts(t.Context(), posts)

	require.Len(t, got, 3)
	assert.Equal(t, posts[0].ID, got[0].ID)
	assert.Equal(t, posts[2].ID, got[1].ID)
	assert.Equal(t, posts[4].ID, got[2].ID)
}

func TestListVisibleSkipsInactivePosts(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, 2)
	active := f.activePost(t, room, domain.PostTypeRent)
	_, err := f.listing.CreatePost(f.ctx, f.landlord, room.ID, domain.PostTypeRoommate, "draft")
	require.NoError(t, err)

	got, err := f.visibility.ListVisible(f.ctx, repository.PostFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

func TestReconcileRoomAnnouncesVerdicts(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, 2)
	rent := f.activePost(t, room, domain.PostTypeRent)
	roommate := f.activePost(t, room, domain.PostTypeRoommate)
	_, err := f.store.Rooms.IncrementOccupancy(f.ctx, room.ID, 1)
	require.NoError(t, err)
	f.rec.events = nil

	got, err := f.visibility.ReconcileRoom(f.ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	verdicts := map[uuid.UUID]domain.Visibility{}
	for _, pv := range got {
		verdicts[pv.Post.ID] = pv.Visibility
	}
	assert.False(t, verdicts[rent.ID].ShouldShow)
	assert.True(t, verdicts[roommate.ID].ShouldShow)

	announced := f.rec.ofType(events.PostVisibility)
	require.Len(t, announced, 2)
	for _, e := range announced {
		assert.Equal(t, room.ID, e.RoomID)
		assert.True(t, e.Concerns(f.landlord.ID))
	}
}
