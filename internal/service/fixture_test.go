package service

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/stretchr/testify/require"
)

const testCallbackSecret = "test-callback-secret"

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ofType(t events.Type) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctx        context.Context
	store      *repository.Store
	rec        *recorder
	clock      time.Time
	landlord   domain.Actor
	admin      domain.Actor
	listing    *ListingService
	visibility *VisibilityService
	requests   *RequestService
	contracts  *ContractService
	invoices   *InvoiceService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		ctx:      context.Background(),
		store:    repository.NewInMemoryStore(),
		rec:      &recorder{},
		clock:    time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC),
		landlord: domain.Actor{ID: uuid.New(), Role: domain.RoleLandlord},
		admin:    domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin},
	}
	log := discardLogger()

	f.visibility = NewVisibilityService(f.store.Rooms, f.store.Posts, f.rec, log, 4)
	f.listing = NewListingService(f.store.Rooms, f.store.Posts, f.visibility, log)
	f.invoices = NewInvoiceService(f.store.Contracts, f.store.Invoices, f.rec, log, BillingOptions{
		DueDay:         5,
		InitialDueDays: 3,
		GraceDays:      5,
		CallbackSecret: testCallbackSecret,
	})
	f.contracts = NewContractService(f.store.Rooms, f.store.Contracts, f.visibility, f.rec, log)
	f.requests = NewRequestService(f.store, f.invoices, f.visibility, f.rec, log)

	f.listing.now = f.now
	f.invoices.now = f.now
	f.contracts.now = f.now
	f.requests.now = f.now
	return f
}

func (f *fixture) now() time.Time {
	return f.clock
}

func tenant() domain.Actor {
	return domain.Actor{ID: uuid.New(), Role: domain.RoleTenant}
}

func (f *fixture) room(t *testing.T, maxOccupancy int) *domain.Room {
	t.Helper()
	room, err := f.listing.CreateRoom(f.ctx, f.landlord, "room", maxOccupancy, 500000, 300000)
	require.NoError(t, err)
	return room
}

func (f *fixture) activePost(t *testing.T, room *domain.Room, postType domain.PostType) *domain.Post {
	t.Helper()
	post, err := f.listing.CreatePost(f.ctx, f.landlord, room.ID, postType, "listing")
	require.NoError(t, err)
	post, err = f.listing.SetPostStatus(f.ctx, f.admin, post.ID, domain.PostStatusActive)
	require.NoError(t, err)
	return post
}

func (f *fixture) draft(months int) domain.RequestDraft {
	return domain.RequestDraft{
		RequestedMoveInDate: f.clock.AddDate(0, 0, 7),
		RequestedDuration:   months,
	}
}

// occupy moves a fresh tenant into the room through a rent request.
func (f *fixture) occupy(t *testing.T, post *domain.Post) (domain.Actor, *domain.Contract) {
	t.Helper()
	occupant := tenant()
	req, err := f.requests.Create(f.ctx, occupant, post.ID, f.draft(6))
	require.NoError(t, err)
	_, contract, err := f.requests.Approve(f.ctx, f.landlord, req.ID)
	require.NoError(t, err)
	return occupant, contract
}

func (f *fixture) occupancy(t *testing.T, roomID uuid.UUID) int {
	t.Helper()
	room, err := f.store.Rooms.GetByID(f.ctx, roomID)
	require.NoError(t, err)
	return room.CurrentOccupancy
}
