package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

// NewInMemoryStore wires every in-memory repository together.
func NewInMemoryStore() *Store {
	return &Store{
		Rooms:     NewInMemoryRoomRepository(),
		Posts:     NewInMemoryPostRepository(),
		Requests:  NewInMemoryRequestRepository(),
		Contracts: NewInMemoryContractRepository(),
		Invoices:  NewInMemoryInvoiceRepository(),
	}
}

type InMemoryRoomRepository struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]*domain.Room
}

func NewInMemoryRoomRepository() *InMemoryRoomRepository {
	return &InMemoryRoomRepository{
		rooms: make(map[uuid.UUID]*domain.Room),
	}
}

func (r *InMemoryRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *room
	r.rooms[room.ID] = &copied
	return nil
}

func (r *InMemoryRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	copied := *room
	return &copied, nil
}

func (r *InMemoryRoomRepository) List(ctx context.Context) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		copied := *room
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryRoomRepository) IncrementOccupancy(ctx context.Context, id uuid.UUID, n int) (*domain.Room, error) {
	return r.adjust(ctx, id, n)
}

func (r *InMemoryRoomRepository) DecrementOccupancy(ctx context.Context, id uuid.UUID, n int) (*domain.Room, error) {
	return r.adjust(ctx, id, -n)
}

func (r *InMemoryRoomRepository) adjust(ctx context.Context, id uuid.UUID, delta int) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	if err := room.ApplyOccupancyDelta(delta); err != nil {
		return nil, err
	}

	copied := *room
	return &copied, nil
}

type InMemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*domain.Post
}

func NewInMemoryPostRepository() *InMemoryPostRepository {
	return &InMemoryPostRepository{
		posts: make(map[uuid.UUID]*domain.Post),
	}
}

func (r *InMemoryPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *InMemoryPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	copied := *post
	return &copied, nil
}

func (r *InMemoryPostRepository) Update(ctx context.Context, post *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.posts[post.ID]; !ok {
		return domain.ErrPostNotFound
	}

	copied := *post
	r.posts[post.ID] = &copied
	return nil
}

func (r *InMemoryPostRepository) List(ctx context.Context, filter PostFilter) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Post, 0, len(r.posts))
	for _, post := range r.posts {
		if filter.RoomID != uuid.Nil && post.RoomID != filter.RoomID {
			continue
		}
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		copied := *post
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

type InMemoryRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*domain.Request
}

func NewInMemoryRequestRepository() *InMemoryRequestRepository {
	return &InMemoryRequestRepository{
		requests: make(map[uuid.UUID]*domain.Request),
	}
}

func (r *InMemoryRequestRepository) Create(ctx context.Context, req *domain.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.TenantID == req.TenantID && existing.RoomID == req.RoomID && existing.IsOpen() {
			return domain.ErrRequestAlreadyOpen
		}
	}

	r.requests[req.ID] = cloneRequest(req)
	return nil
}

func (r *InMemoryRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return cloneRequest(req), nil
}

func (r *InMemoryRequestRepository) FindOpen(ctx context.Context, tenantID, roomID uuid.UUID) (*domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.requests {
		if req.TenantID == tenantID && req.RoomID == roomID && req.IsOpen() {
			return cloneRequest(req), nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *InMemoryRequestRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Request, error) {
	return r.list(ctx, func(req *domain.Request) bool { return req.TenantID == tenantID })
}

func (r *InMemoryRequestRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Request, error) {
	return r.list(ctx, func(req *domain.Request) bool { return req.RoomID == roomID })
}

func (r *InMemoryRequestRepository) list(ctx context.Context, match func(*domain.Request) bool) ([]*domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Request, 0)
	for _, req := range r.requests {
		if match(req) {
			result = append(result, cloneRequest(req))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryRequestRepository) UpdateStatus(ctx context.Context, req *domain.Request, from domain.RequestStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.requests[req.ID]
	if !ok {
		return domain.ErrRequestNotFound
	}
	if stored.Status != from || stored.ContractID != nil {
		return domain.ErrStaleState
	}

	r.requests[req.ID] = cloneRequest(req)
	return nil
}

type InMemoryContractRepository struct {
	mu        sync.RWMutex
	contracts map[uuid.UUID]*domain.Contract
}

func NewInMemoryContractRepository() *InMemoryContractRepository {
	return &InMemoryContractRepository{
		contracts: make(map[uuid.UUID]*domain.Contract),
	}
}

func (r *InMemoryContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.contracts {
		if existing.RequestID == contract.RequestID {
			return domain.ErrAlreadyApproved
		}
	}

	r.contracts[contract.ID] = cloneContract(contract)
	return nil
}

func (r *InMemoryContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[id]; !ok {
		return domain.ErrContractNotFound
	}
	delete(r.contracts, id)
	return nil
}

func (r *InMemoryContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	contract, ok := r.contracts[id]
	if !ok {
		return nil, domain.ErrContractNotFound
	}
	return cloneContract(contract), nil
}

func (r *InMemoryContractRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Contract, error) {
	return r.list(ctx, func(c *domain.Contract) bool { return c.HasTenant(tenantID) })
}

func (r *InMemoryContractRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*domain.Contract, error) {
	return r.list(ctx, func(c *domain.Contract) bool { return c.LandlordID == landlordID })
}

func (r *InMemoryContractRepository) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Contract, error) {
	return r.list(ctx, func(c *domain.Contract) bool { return c.RoomID == roomID && c.IsActive() })
}

func (r *InMemoryContractRepository) ListActive(ctx context.Context) ([]*domain.Contract, error) {
	return r.list(ctx, func(c *domain.Contract) bool { return c.IsActive() })
}

func (r *InMemoryContractRepository) ListDueToExpire(ctx context.Context, now time.Time) ([]*domain.Contract, error) {
	return r.list(ctx, func(c *domain.Contract) bool { return c.IsDueToExpire(now) })
}

func (r *InMemoryContractRepository) list(ctx context.Context, match func(*domain.Contract) bool) ([]*domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Contract, 0)
	for _, c := range r.contracts {
		if match(c) {
			result = append(result, cloneContract(c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *InMemoryContractRepository) UpdateStatus(ctx context.Context, contract *domain.Contract, from domain.ContractStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.contracts[contract.ID]
	if !ok {
		return domain.ErrContractNotFound
	}
	if stored.Status != from {
		return domain.ErrStaleState
	}

	r.contracts[contract.ID] = cloneContract(contract)
	return nil
}

type InMemoryInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]*domain.Invoice
}

func NewInMemoryInvoiceRepository() *InMemoryInvoiceRepository {
	return &InMemoryInvoiceRepository{
		invoices: make(map[uuid.UUID]*domain.Invoice),
	}
}

func (r *InMemoryInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if invoice.Period != "" {
		for _, existing := range r.invoices {
			if existing.ContractID == invoice.ContractID && existing.Type == invoice.Type && existing.Period == invoice.Period {
				return domain.ErrInvoicePeriodExists
			}
		}
	}

	r.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func (r *InMemoryInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	invoice, ok := r.invoices[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	return cloneInvoice(invoice), nil
}

func (r *InMemoryInvoiceRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Invoice, 0)
	for _, invoice := range r.invoices {
		if invoice.ContractID == contractID {
			result = append(result, cloneInvoice(invoice))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DueDate.Before(result[j].DueDate) })
	return result, nil
}

func (r *InMemoryInvoiceRepository) UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.invoices[invoice.ID]
	if !ok {
		return domain.ErrInvoiceNotFound
	}
	if stored.Status != from {
		return domain.ErrStaleState
	}

	r.invoices[invoice.ID] = cloneInvoice(invoice)
	return nil
}

func cloneRequest(req *domain.Request) *domain.Request {
	copied := *req
	if req.CoTenantIDs != nil {
		copied.CoTenantIDs = append([]uuid.UUID(nil), req.CoTenantIDs...)
	}
	if req.ContractID != nil {
		id := *req.ContractID
		copied.ContractID = &id
	}
	if req.OccupantApprovedBy != nil {
		id := *req.OccupantApprovedBy
		copied.OccupantApprovedBy = &id
	}
	return &copied
}

func cloneContract(c *domain.Contract) *domain.Contract {
	copied := *c
	copied.Tenants = append([]domain.ContractTenant(nil), c.Tenants...)
	if c.TerminatedBy != nil {
		id := *c.TerminatedBy
		copied.TerminatedBy = &id
	}
	if c.TerminatedAt != nil {
		at := *c.TerminatedAt
		copied.TerminatedAt = &at
	}
	return &copied
}

func cloneInvoice(inv *domain.Invoice) *domain.Invoice {
	copied := *inv
	copied.Items = append([]domain.InvoiceItem(nil), inv.Items...)
	if inv.PaidAt != nil {
		at := *inv.PaidAt
		copied.PaidAt = &at
	}
	return &copied
}
