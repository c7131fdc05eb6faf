package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteStore(t *testing.T) *repository.Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return repository.NewPostgresStore(db)
}

func newMemoryStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewInMemoryStore()
}

func TestStores(t *testing.T) {
	stores := map[string]func(*testing.T) *repository.Store{
		"memory": newMemoryStore,
		"gorm":   newSQLiteStore,
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("RoomOccupancy", func(t *testing.T) { testRoomOccupancy(t, newStore(t)) })
			t.Run("PostList", func(t *testing.T) { testPostList(t, newStore(t)) })
			t.Run("RequestLifecycle", func(t *testing.T) { testRequestLifecycle(t, newStore(t)) })
			t.Run("ContractLifecycle", func(t *testing.T) { testContractLifecycle(t, newStore(t)) })
			t.Run("Invoices", func(t *testing.T) { testInvoices(t, newStore(t)) })
		})
	}
}

func seedRoom(t *testing.T, store *repository.Store, maxOccupancy int) *domain.Room {
	t.Helper()
	room, err := domain.NewRoom(uuid.New(), "room", maxOccupancy, 3_000_000, 1_000_000)
	require.NoError(t, err)
	require.NoError(t, store.Rooms.Create(context.Background(), room))
	return room
}

func seedPost(t *testing.T, store *repository.Store, room *domain.Room, postType domain.PostType) *domain.Post {
	t.Helper()
	post, err := domain.NewPost(room, postType, "listing")
	require.NoError(t, err)
	post.Status = domain.PostStatusActive
	require.NoError(t, store.Posts.Create(context.Background(), post))
	return post
}

func testRoomOccupancy(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	room := seedRoom(t, store, 2)

	updated, err := store.Rooms.IncrementOccupancy(ctx, room.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.CurrentOccupancy)

	_, err = store.Rooms.IncrementOccupancy(ctx, room.ID, 1)
	assert.ErrorIs(t, err, domain.ErrOccupancyExceeded)

	updated, err = store.Rooms.DecrementOccupancy(ctx, room.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.CurrentOccupancy)

	_, err = store.Rooms.IncrementOccupancy(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
	_, err = store.Rooms.DecrementOccupancy(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrRoomNotFound)
}

func testPostList(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	room := seedRoom(t, store, 2)
	other := seedRoom(t, store, 1)

	active := seedPost(t, store, room, domain.PostTypeRoommate)
	seedPost(t, store, other, domain.PostTypeRent)

	pending, err := domain.NewPost(room, domain.PostTypeRent, "draft")
	require.NoError(t, err)
	require.NoError(t, store.Posts.Create(ctx, pending))

	posts, err := store.Posts.List(ctx, repository.PostFilter{RoomID: room.ID, Status: domain.PostStatusActive})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, active.ID, posts[0].ID)

	all, err := store.Posts.List(ctx, repository.PostFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	pending.Status = domain.PostStatusRejected
	require.NoError(t, store.Posts.Update(ctx, pending))
	got, err := store.Posts.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PostStatusRejected, got.Status)

	_, err = store.Posts.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func newRequest(t *testing.T, post *domain.Post, room *domain.Room, tenant uuid.UUID) *domain.Request {
	t.Helper()
	req, err := domain.NewRequest(post, room, domain.RequestDraft{
		TenantID:            tenant,
		CoTenantIDs:         []uuid.UUID{uuid.New()},
		RequestedMoveInDate: time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC),
		RequestedDuration:   6,
	}, time.Now())
	require.NoError(t, err)
	return req
}

func testRequestLifecycle(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	room := seedRoom(t, store, 3)
	post := seedPost(t, store, room, domain.PostTypeRent)
	tenant := uuid.New()

	req := newRequest(t, post, room, tenant)
	require.NoError(t, store.Requests.Create(ctx, req))

	dup := newRequest(t, post, room, tenant)
	assert.ErrorIs(t, store.Requests.Create(ctx, dup), domain.ErrRequestAlreadyOpen)

	open, err := store.Requests.FindOpen(ctx, tenant, room.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, open.ID)
	assert.Len(t, open.CoTenantIDs, 1)

	stale := *req
	req.Status = domain.RequestStatusCancelled
	req.DecisionReason = "changed plans"
	require.NoError(t, store.Requests.UpdateStatus(ctx, req, domain.RequestStatusPending))

	stale.Status = domain.RequestStatusRejected
	assert.ErrorIs(t, store.Requests.UpdateStatus(ctx, &stale, domain.RequestStatusPending), domain.ErrStaleState)

	_, err = store.Requests.FindOpen(ctx, tenant, room.ID)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	again := newRequest(t, post, room, tenant)
	require.NoError(t, store.Requests.Create(ctx, again))

	mine, err := store.Requests.ListByTenant(ctx, tenant)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	byRoom, err := store.Requests.ListByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, byRoom, 2)

	contractID := uuid.New()
	again.Status = domain.RequestStatusApproved
	again.ContractID = &contractID
	require.NoError(t, store.Requests.UpdateStatus(ctx, again, domain.RequestStatusPending))

	got, err := store.Requests.GetByID(ctx, again.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ContractID)
	assert.Equal(t, contractID, *got.ContractID)

	second := *got
	other := uuid.New()
	second.ContractID = &other
	assert.ErrorIs(t, store.Requests.UpdateStatus(ctx, &second, domain.RequestStatusApproved), domain.ErrStaleState)
}

func testContractLifecycle(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	room := seedRoom(t, store, 3)
	post := seedPost(t, store, room, domain.PostTypeRent)
	tenant := uuid.New()
	req := newRequest(t, post, room, tenant)

	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	contract := domain.NewContract(req, room, now)
	require.NoError(t, store.Contracts.Create(ctx, contract))

	dup := domain.NewContract(req, room, now)
	assert.ErrorIs(t, store.Contracts.Create(ctx, dup), domain.ErrAlreadyApproved)

	got, err := store.Contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Len(t, got.Tenants, 2)
	assert.Equal(t, contract.EndDate, got.EndDate)

	mine, err := store.Contracts.ListByTenant(ctx, tenant)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	byLandlord, err := store.Contracts.ListByLandlord(ctx, room.LandlordID)
	require.NoError(t, err)
	assert.Len(t, byLandlord, 1)

	due, err := store.Contracts.ListDueToExpire(ctx, contract.EndDate.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, due, 1)

	due, err = store.Contracts.ListDueToExpire(ctx, contract.StartDate)
	require.NoError(t, err)
	assert.Empty(t, due)

	stale := *got
	departing, err := got.Terminate(tenant, "moving out", now)
	require.NoError(t, err)
	assert.Equal(t, 2, departing)
	require.NoError(t, store.Contracts.UpdateStatus(ctx, got, domain.ContractStatusActive))

	_, err = stale.Expire(now)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Contracts.UpdateStatus(ctx, &stale, domain.ContractStatusActive), domain.ErrStaleState)

	reloaded, err := store.Contracts.GetByID(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusTerminated, reloaded.Status)
	assert.Equal(t, 0, reloaded.ActiveTenantCount())
	assert.True(t, reloaded.DepositForfeited)

	active, err := store.Contracts.ListActiveByRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, store.Contracts.Delete(ctx, contract.ID))
	_, err = store.Contracts.GetByID(ctx, contract.ID)
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
}

func testInvoices(t *testing.T, store *repository.Store) {
	ctx := context.Background()
	contractID := uuid.New()
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	first, err := domain.NewInvoice(contractID, domain.InvoiceTypeMonthlyRent, "2026-10", now.AddDate(0, 0, 5), []domain.InvoiceItem{
		{Description: "rent", Amount: 500_000},
		{Description: "water", Amount: 300_000},
	}, now)
	require.NoError(t, err)
	require.NoError(t, store.Invoices.Create(ctx, first))

	dup, err := domain.NewInvoice(contractID, domain.InvoiceTypeMonthlyRent, "2026-10", now, []domain.InvoiceItem{{Amount: 1}}, now)
	require.NoError(t, err)
	assert.ErrorIs(t, store.Invoices.Create(ctx, dup), domain.ErrInvoicePeriodExists)

	adhoc, err := domain.NewInvoice(contractID, domain.InvoiceTypeDeposit, "", now.AddDate(0, 0, 1), []domain.InvoiceItem{{Amount: 10}}, now)
	require.NoError(t, err)
	require.NoError(t, store.Invoices.Create(ctx, adhoc))

	got, err := store.Invoices.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800_000), got.Amount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "rent", got.Items[0].Description)

	list, err := store.Invoices.ListByContract(ctx, contractID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, adhoc.ID, list[0].ID)

	changed, err := got.MarkPaid("txn-1", now)
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, store.Invoices.UpdateStatus(ctx, got, domain.InvoiceStatusPending))
	assert.ErrorIs(t, store.Invoices.UpdateStatus(ctx, got, domain.InvoiceStatusPending), domain.ErrStaleState)

	paid, err := store.Invoices.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.Equal(t, "txn-1", paid.PaymentRef)
	require.NotNil(t, paid.PaidAt)
}
