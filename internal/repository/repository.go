package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

//go:generate mockgen -destination=mocks/room_reader_mock.go -package=mocks github.com/immxrtalbeast/roomrent/internal/repository RoomReader

// RoomReader is the slice of RoomRepository the visibility resolver needs.
type RoomReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
}

type RoomRepository interface {
	RoomReader
	Create(ctx context.Context, room *domain.Room) error
	List(ctx context.Context) ([]*domain.Room, error)
	// IncrementOccupancy adds n occupants unless that would exceed capacity.
	IncrementOccupancy(ctx context.Context, id uuid.UUID, n int) (*domain.Room, error)
	// DecrementOccupancy removes n occupants, never going below zero.
	DecrementOccupancy(ctx context.Context, id uuid.UUID, n int) (*domain.Room, error)
}

type PostFilter struct {
	RoomID uuid.UUID
	Status domain.PostStatus
}

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	List(ctx context.Context, filter PostFilter) ([]*domain.Post, error)
}

type RequestRepository interface {
	// Create fails with domain.ErrRequestAlreadyOpen when the tenant already has
	// an open request on the same room.
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error)
	FindOpen(ctx context.Context, tenantID, roomID uuid.UUID) (*domain.Request, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Request, error)
	ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Request, error)
	// UpdateStatus persists the request's decision fields only if the stored
	// status is still from and no contract has been attached yet.
	UpdateStatus(ctx context.Context, req *domain.Request, from domain.RequestStatus) error
}

type ContractRepository interface {
	Create(ctx context.Context, contract *domain.Contract) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Contract, error)
	ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*domain.Contract, error)
	ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Contract, error)
	ListActive(ctx context.Context) ([]*domain.Contract, error)
	ListDueToExpire(ctx context.Context, now time.Time) ([]*domain.Contract, error)
	// UpdateStatus persists a closed contract only if it is still in from.
	UpdateStatus(ctx context.Context, contract *domain.Contract, from domain.ContractStatus) error
}

type InvoiceRepository interface {
	// Create fails with domain.ErrInvoicePeriodExists when a periodic invoice
	// of the same type already exists for the contract.
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	ListByContract(ctx context.Context, contractID uuid.UUID) ([]*domain.Invoice, error)
	UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error
}

// Store bundles the repositories a service layer is wired with.
type Store struct {
	Rooms     RoomRepository
	Posts     PostRepository
	Requests  RequestRepository
	Contracts ContractRepository
	Invoices  InvoiceRepository
}
