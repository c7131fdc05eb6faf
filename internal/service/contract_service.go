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

type ContractService struct {
	rooms      repository.RoomRepository
	contracts  repository.ContractRepository
	visibility *VisibilityService
	events     events.Publisher
	log        *slog.Logger
	now        Clock
}

func NewContractService(rooms repository.RoomRepository, contracts repository.ContractRepository, visibility *VisibilityService, publisher events.Publisher, log *slog.Logger) *ContractService {
	if log == nil {
		log = slog.Default()
	}
	return &ContractService{
		rooms:      rooms,
		contracts:  contracts,
		visibility: visibility,
		events:     publisher,
		log:        log,
		now:        systemClock,
	}
}

func (s *ContractService) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !contract.IsParty(actor.ID) {
		return nil, domain.ErrNotContractParty
	}
	return contract, nil
}

// ListMine returns contracts the actor signed, as landlord or as tenant.
func (s *ContractService) ListMine(ctx context.Context, actor domain.Actor) ([]*domain.Contract, error) {
	if actor.Role == domain.RoleLandlord {
		return s.contracts.ListByLandlord(ctx, actor.ID)
	}
	return s.contracts.ListByTenant(ctx, actor.ID)
}

// Terminate ends an active contract early on behalf of one of its parties.
func (s *ContractService) Terminate(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Contract, error) {
	const op = "service.Contract.Terminate"
	log := s.log.With(slog.String("op", op), slog.String("contract_id", id.String()))

	contract, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && contract.LandlordID != actor.ID && !contract.HasActiveTenant(actor.ID) {
		return nil, domain.ErrNotContractParty
	}

	before := snapshot(contract)
	departing, err := contract.Terminate(actor.ID, strings.TrimSpace(reason), s.now())
	if err != nil {
		return nil, err
	}
	if err := s.close(ctx, log, contract, before, departing); err != nil {
		return nil, err
	}

	log.Info("contract terminated", slog.Int("departing", departing), slog.Bool("deposit_forfeited", contract.DepositForfeited))
	s.publish(events.ContractTerminated, contract, map[string]any{
		"reason":            contract.TerminationReason,
		"deposit_forfeited": contract.DepositForfeited,
	})
	return contract, nil
}

// ExpireDue closes every active contract whose end date has passed. Contracts
// closed concurrently by someone else are skipped.
func (s *ContractService) ExpireDue(ctx context.Context) (int, error) {
	const op = "service.Contract.ExpireDue"
	log := s.log.With(slog.String("op", op))

	now := s.now()
	due, err := s.contracts.ListDueToExpire(ctx, now)
	if err != nil {
		log.Error("failed to list contracts", sl.Err(err))
		return 0, err
	}

	var (
		expired int
		errs    []error
	)
	for _, contract := range due {
		before := snapshot(contract)
		departing, err := contract.Expire(now)
		if err != nil {
			continue
		}
		if err := s.close(ctx, log, contract, before, departing); err != nil {
			if errors.Is(err, domain.ErrStaleState) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		expired++
		s.publish(events.ContractExpired, contract, nil)
	}

	if expired > 0 {
		log.Info("contracts expired", slog.Int("count", expired))
	}
	return expired, errors.Join(errs...)
}

// close persists the new status, then hands the departing tenants' slots back
// to the room. If the room cannot take them back the contract is restored to
// before, so the close can be retried.
func (s *ContractService) close(ctx context.Context, log *slog.Logger, contract, before *domain.Contract, departing int) error {
	if err := s.contracts.UpdateStatus(ctx, contract, before.Status); err != nil {
		if !errors.Is(err, domain.ErrStaleState) {
			log.Error("failed to update contract", slog.String("contract_id", contract.ID.String()), sl.Err(err))
		}
		return err
	}

	if departing > 0 {
		if _, err := s.rooms.DecrementOccupancy(ctx, contract.RoomID, departing); err != nil {
			log.Error("failed to release occupancy", slog.String("room_id", contract.RoomID.String()), sl.Err(err))
			if rerr := s.contracts.UpdateStatus(ctx, before, contract.Status); rerr != nil {
				log.Error("failed to restore contract", slog.String("contract_id", contract.ID.String()), sl.Err(rerr))
			}
			return err
		}
	}
	if s.visibility != nil {
		if _, err := s.visibility.ReconcileRoom(ctx, contract.RoomID); err != nil {
			log.Warn("failed to reconcile room visibility", sl.Err(err))
		}
	}
	return nil
}

func snapshot(c *domain.Contract) *domain.Contract {
	cp := *c
	cp.Tenants = append([]domain.ContractTenant(nil), c.Tenants...)
	return &cp
}

func (s *ContractService) publish(t events.Type, contract *domain.Contract, payload map[string]any) {
	if s.events == nil {
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["status"] = contract.Status
	audience := append([]uuid.UUID{contract.LandlordID}, tenantIDs(contract)...)
	s.events.Publish(events.New(t, "contract", contract.ID, contract.RoomID, payload, audience...))
}
