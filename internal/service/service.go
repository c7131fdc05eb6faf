package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/repository"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

type ListingInteractor interface {
	CreateRoom(ctx context.Context, actor domain.Actor, title string, maxOccupancy int, monthlyRent, deposit int64) (*domain.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	CreatePost(ctx context.Context, actor domain.Actor, roomID uuid.UUID, postType domain.PostType, title string) (*domain.Post, error)
	SetPostStatus(ctx context.Context, actor domain.Actor, postID uuid.UUID, status domain.PostStatus) (*domain.Post, error)
}

type VisibilityInteractor interface {
	Resolve(ctx context.Context, post *domain.Post) domain.Visibility
	ResolvePost(ctx context.Context, postID uuid.UUID) (*domain.Post, domain.Visibility, error)
	FilterVisiblePosts(ctx context.Context, posts []*domain.Post) []*domain.Post
	ListVisible(ctx context.Context, filter repository.PostFilter) ([]*domain.Post, error)
	ReconcileRoom(ctx context.Context, roomID uuid.UUID) ([]PostVisibility, error)
}

type RequestInteractor interface {
	Create(ctx context.Context, actor domain.Actor, postID uuid.UUID, draft domain.RequestDraft) (*domain.Request, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Request, error)
	ListForRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) ([]*domain.Request, error)
	OccupantApprove(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error)
	OccupantReject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error)
	Approve(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, *domain.Contract, error)
	Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error)
	Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error)
}

type ContractInteractor interface {
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Contract, error)
	ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Contract, error)
	Terminate(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Contract, error)
	ExpireDue(ctx context.Context) (int, error)
}

type InvoiceInteractor interface {
	Create(ctx context.Context, actor domain.Actor, contractID uuid.UUID, invoiceType domain.InvoiceType, dueDate time.Time, items []domain.InvoiceItem) (*domain.Invoice, error)
	Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Invoice, error)
	ListByContract(ctx context.Context, actor domain.Actor, contractID uuid.UUID) ([]*domain.Invoice, error)
	Summary(ctx context.Context, actor domain.Actor, contractID uuid.UUID) (*domain.PaymentSummary, error)
	HandlePaymentCallback(ctx context.Context, payload []byte, signature string) (*domain.Invoice, error)
	GenerateMonthly(ctx context.Context) (int, error)
	Now() time.Time
}
