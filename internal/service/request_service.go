package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/immxrtalbeast/roomrent/lib/logger/sl"
)

type RequestService struct {
	rooms      repository.RoomRepository
	posts      repository.PostRepository
	requests   repository.RequestRepository
	contracts  repository.ContractRepository
	invoices   *InvoiceService
	visibility *VisibilityService
	events     events.Publisher
	log        *slog.Logger
	now        Clock
}

func NewRequestService(store *repository.Store, invoices *InvoiceService, visibility *VisibilityService, publisher events.Publisher, log *slog.Logger) *RequestService {
	if log == nil {
		log = slog.Default()
	}
	return &RequestService{
		rooms:      store.Rooms,
		posts:      store.Posts,
		requests:   store.Requests,
		contracts:  store.Contracts,
		invoices:   invoices,
		visibility: visibility,
		events:     publisher,
		log:        log,
		now:        systemClock,
	}
}

// Create files a request against an active post. A roommate request on an
// occupied room waits for the current occupant before the landlord sees it.
func (s *RequestService) Create(ctx context.Context, actor domain.Actor, postID uuid.UUID, draft domain.RequestDraft) (*domain.Request, error) {
	const op = "service.Request.Create"
	log := s.log.With(slog.String("op", op), slog.String("post_id", postID.String()), slog.String("tenant_id", actor.ID.String()))

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, post.RoomID)
	if err != nil {
		return nil, err
	}

	if _, err := s.requests.FindOpen(ctx, actor.ID, room.ID); err == nil {
		return nil, domain.ErrRequestAlreadyOpen
	} else if !errors.Is(err, domain.ErrRequestNotFound) {
		return nil, err
	}

	draft.TenantID = actor.ID
	req, err := domain.NewRequest(post, room, draft, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.requests.Create(ctx, req); err != nil {
		if !errors.Is(err, domain.ErrRequestAlreadyOpen) {
			log.Error("failed to create request", sl.Err(err))
		}
		return nil, err
	}

	log.Info("request created", slog.String("request_id", req.ID.String()), slog.String("status", string(req.Status)))

	audience := []uuid.UUID{req.TenantID, req.LandlordID}
	if req.Status == domain.RequestStatusPendingUserApproval {
		occupants, err := s.occupants(ctx, room.ID)
		if err != nil {
			log.Warn("failed to load occupants for notification", sl.Err(err))
		}
		audience = append(audience, occupants...)
	}
	s.publish(events.RequestCreated, req, nil, audience...)
	return req, nil
}

func (s *RequestService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() || req.LandlordID == actor.ID || req.Involves(actor.ID) {
		return req, nil
	}
	if req.Status == domain.RequestStatusPendingUserApproval {
		if ok, err := s.isOccupant(ctx, req.RoomID, actor.ID); err != nil {
			return nil, err
		} else if ok {
			return req, nil
		}
	}
	return nil, domain.ErrNotRequestOwner
}

func (s *RequestService) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Request, error) {
	return s.requests.ListByTenant(ctx, actor.ID)
}

func (s *RequestService) ListForRoom(ctx context.Context, actor domain.Actor, roomID uuid.UUID) ([]*domain.Request, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrNotRoomLandlord
	}
	return s.requests.ListByRoom(ctx, roomID)
}

func (s *RequestService) OccupantApprove(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, error) {
	return s.occupantDecision(ctx, actor, id, domain.ActionOccupantApprove, "")
}

func (s *RequestService) OccupantReject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error) {
	return s.occupantDecision(ctx, actor, id, domain.ActionOccupantReject, reason)
}

func (s *RequestService) occupantDecision(ctx context.Context, actor domain.Actor, id uuid.UUID, action domain.RequestAction, reason string) (*domain.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := s.isOccupant(ctx, req.RoomID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotRoomOccupant
	}

	next, err := req.Transition(action)
	if err != nil {
		return nil, err
	}
	if action == domain.ActionOccupantApprove {
		approver := actor.ID
		req.OccupantApprovedBy = &approver
	}
	return s.commit(ctx, req, next, reason, "service.Request.occupantDecision")
}

// Approve turns a request into a contract. Guards are re-checked against fresh
// state; any step that loses a race undoes the steps before it.
func (s *RequestService) Approve(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Request, *domain.Contract, error) {
	const op = "service.Request.Approve"
	log := s.log.With(slog.String("op", op), slog.String("request_id", id.String()))

	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if req.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, nil, domain.ErrNotRoomLandlord
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, nil, err
	}
	next, err := req.TransitionIn(room, domain.ActionLandlordApprove)
	if err != nil {
		return nil, nil, err
	}
	if err := room.Admits(req.Type, req.TenantCount()); err != nil {
		return nil, nil, err
	}

	now := s.now()
	contract := domain.NewContract(req, room, now)
	if err := s.contracts.Create(ctx, contract); err != nil {
		if !errors.Is(err, domain.ErrAlreadyApproved) {
			log.Error("failed to create contract", sl.Err(err))
		}
		return nil, nil, err
	}

	if _, err := s.rooms.IncrementOccupancy(ctx, room.ID, req.TenantCount()); err != nil {
		s.dropContract(ctx, log, contract.ID)
		return nil, nil, err
	}

	from := req.Status
	req.Status = next
	req.ContractID = &contract.ID
	req.UpdatedAt = now
	if err := s.requests.UpdateStatus(ctx, req, from); err != nil {
		log.Warn("request changed during approval, rolling back", sl.Err(err))
		if _, derr := s.rooms.DecrementOccupancy(ctx, room.ID, req.TenantCount()); derr != nil {
			log.Error("failed to release occupancy", sl.Err(derr))
		}
		s.dropContract(ctx, log, contract.ID)
		return nil, nil, err
	}

	log.Info("request approved", slog.String("contract_id", contract.ID.String()), slog.Int("tenants", req.TenantCount()))

	if s.invoices != nil {
		if _, err := s.invoices.IssueInitial(ctx, contract); err != nil {
			log.Error("failed to issue initial invoice", sl.Err(err))
		}
	}
	if s.visibility != nil {
		if _, err := s.visibility.ReconcileRoom(ctx, room.ID); err != nil {
			log.Warn("failed to reconcile room visibility", sl.Err(err))
		}
	}

	s.publish(events.RequestApproved, req, map[string]any{"contract_id": contract.ID}, req.LandlordID)
	if s.events != nil {
		audience := append([]uuid.UUID{contract.LandlordID}, tenantIDs(contract)...)
		s.events.Publish(events.New(events.ContractCreated, "contract", contract.ID, contract.RoomID, map[string]any{
			"request_id": req.ID,
			"end_date":   contract.EndDate,
		}, audience...))
	}
	return req, contract, nil
}

func (s *RequestService) Reject(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.LandlordID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrNotRoomLandlord
	}
	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}
	next, err := req.TransitionIn(room, domain.ActionLandlordReject)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, req, next, reason, "service.Request.Reject")
}

func (s *RequestService) Cancel(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Request, error) {
	req, err := s.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.TenantID != actor.ID {
		return nil, domain.ErrNotRequestOwner
	}
	next, err := req.Transition(domain.ActionCancel)
	if err != nil {
		return nil, err
	}
	return s.commit(ctx, req, next, reason, "service.Request.Cancel")
}

// commit persists a status change that does not touch occupancy.
func (s *RequestService) commit(ctx context.Context, req *domain.Request, next domain.RequestStatus, reason, op string) (*domain.Request, error) {
	log := s.log.With(slog.String("op", op), slog.String("request_id", req.ID.String()))

	from := req.Status
	req.Status = next
	req.DecisionReason = strings.TrimSpace(reason)
	req.UpdatedAt = s.now()
	if err := s.requests.UpdateStatus(ctx, req, from); err != nil {
		if !errors.Is(err, domain.ErrStaleState) {
			log.Error("failed to update request", sl.Err(err))
		}
		return nil, err
	}

	log.Info("request status changed", slog.String("from", string(from)), slog.String("to", string(next)))

	switch next {
	case domain.RequestStatusPendingLandlordApproval:
		s.publish(events.RequestOccupantApproved, req, nil, req.LandlordID)
	case domain.RequestStatusRejected:
		s.publish(events.RequestRejected, req, map[string]any{"reason": req.DecisionReason}, req.LandlordID)
	case domain.RequestStatusCancelled:
		s.publish(events.RequestCancelled, req, nil, req.LandlordID)
	}
	return req, nil
}

func (s *RequestService) dropContract(ctx context.Context, log *slog.Logger, id uuid.UUID) {
	if err := s.contracts.Delete(ctx, id); err != nil {
		log.Error("failed to delete contract", slog.String("contract_id", id.String()), sl.Err(err))
	}
}

// occupants lists the tenants currently living in the room.
func (s *RequestService) occupants(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	contracts, err := s.contracts.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, c := range contracts {
		for _, t := range c.Tenants {
			if t.Status == domain.TenantStatusActive {
				ids = append(ids, t.TenantID)
			}
		}
	}
	return ids, nil
}

func (s *RequestService) isOccupant(ctx context.Context, roomID, actorID uuid.UUID) (bool, error) {
	ids, err := s.occupants(ctx, roomID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == actorID {
			return true, nil
		}
	}
	return false, nil
}

func (s *RequestService) publish(t events.Type, req *domain.Request, payload map[string]any, extra ...uuid.UUID) {
	if s.events == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["status"] = req.Status
	audience := append([]uuid.UUID{req.TenantID}, req.CoTenantIDs...)
	audience = append(audience, extra...)
	s.events.Publish(events.New(t, "request", req.ID, req.RoomID, payload, dedupe(audience)...))
}

func tenantIDs(c *domain.Contract) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Tenants))
	for _, t := range c.Tenants {
		ids = append(ids, t.TenantID)
	}
	return ids
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
