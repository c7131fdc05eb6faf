package domain

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusActive     ContractStatus = "active"
	ContractStatusTerminated ContractStatus = "terminated"
	ContractStatusExpired    ContractStatus = "expired"
)

type ContractType string

const (
	ContractTypeSingle ContractType = "single"
	ContractTypeShared ContractType = "shared"
)

type TenantStatus string

const (
	TenantStatusActive   TenantStatus = "active"
	TenantStatusInactive TenantStatus = "inactive"
)

type ContractTenant struct {
	TenantID   uuid.UUID    `json:"tenant_id"`
	MoveInDate time.Time    `json:"move_in_date"`
	Status     TenantStatus `json:"status"`
}

// Contract is created once per approved request. It owns the occupancy
// increment it caused and gives it back when it ends.
type Contract struct {
	ID                uuid.UUID        `json:"id"`
	RoomID            uuid.UUID        `json:"room_id"`
	PostID            uuid.UUID        `json:"post_id"`
	RequestID         uuid.UUID        `json:"request_id"`
	LandlordID        uuid.UUID        `json:"landlord_id"`
	Tenants           []ContractTenant `json:"tenants"`
	StartDate         time.Time        `json:"start_date"`
	EndDate           time.Time        `json:"end_date"`
	MonthlyRent       int64            `json:"monthly_rent"`
	Deposit           int64            `json:"deposit"`
	Status            ContractStatus   `json:"status"`
	Type              ContractType     `json:"contract_type"`
	TerminationReason string           `json:"termination_reason,omitempty"`
	TerminatedBy      *uuid.UUID       `json:"terminated_by,omitempty"`
	TerminatedAt      *time.Time       `json:"terminated_at,omitempty"`
	DepositForfeited  bool             `json:"deposit_forfeited"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// NewContract builds the contract for an approved request. EndDate is fixed
// here and never recomputed.
func NewContract(req *Request, room *Room, now time.Time) *Contract {
	start := req.RequestedMoveInDate.UTC()
	contractType := ContractTypeSingle
	if req.Type == PostTypeRoommate {
		contractType = ContractTypeShared
	}

	tenants := make([]ContractTenant, 0, req.TenantCount())
	tenants = append(tenants, ContractTenant{TenantID: req.TenantID, MoveInDate: start, Status: TenantStatusActive})
	for _, id := range req.CoTenantIDs {
		tenants = append(tenants, ContractTenant{TenantID: id, MoveInDate: start, Status: TenantStatusActive})
	}

	now = now.UTC()
	return &Contract{
		ID:          uuid.New(),
		RoomID:      room.ID,
		PostID:      req.PostID,
		RequestID:   req.ID,
		LandlordID:  room.LandlordID,
		Tenants:     tenants,
		StartDate:   start,
		EndDate:     start.AddDate(0, req.RequestedDuration, 0),
		MonthlyRent: room.MonthlyRent,
		Deposit:     room.Deposit,
		Status:      ContractStatusActive,
		Type:        contractType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (c *Contract) IsActive() bool {
	return c.Status == ContractStatusActive
}

// ActiveTenantCount is the number of tenants still counted in the room.
func (c *Contract) ActiveTenantCount() int {
	n := 0
	for _, t := range c.Tenants {
		if t.Status == TenantStatusActive {
			n++
		}
	}
	return n
}

func (c *Contract) HasTenant(id uuid.UUID) bool {
	for _, t := range c.Tenants {
		if t.TenantID == id {
			return true
		}
	}
	return false
}

func (c *Contract) HasActiveTenant(id uuid.UUID) bool {
	for _, t := range c.Tenants {
		if t.TenantID == id && t.Status == TenantStatusActive {
			return true
		}
	}
	return false
}

// IsParty reports whether the actor may see or act on the contract.
func (c *Contract) IsParty(actorID uuid.UUID) bool {
	return c.LandlordID == actorID || c.HasTenant(actorID)
}

// IsDueToExpire reports whether the natural end date has been reached.
func (c *Contract) IsDueToExpire(now time.Time) bool {
	return c.IsActive() && !now.Before(c.EndDate)
}

// Terminate ends the contract early and returns how many tenants leave the
// room. Ending before EndDate forfeits the deposit.
func (c *Contract) Terminate(actorID uuid.UUID, reason string, now time.Time) (int, error) {
	if !c.IsActive() {
		return 0, ErrContractNotActive
	}
	departing := c.close(ContractStatusTerminated, now)
	c.TerminatedBy = &actorID
	c.TerminationReason = reason
	c.DepositForfeited = now.Before(c.EndDate)
	return departing, nil
}

// Expire ends the contract on its natural end date.
func (c *Contract) Expire(now time.Time) (int, error) {
	if !c.IsActive() {
		return 0, ErrContractNotActive
	}
	return c.close(ContractStatusExpired, now), nil
}

func (c *Contract) close(status ContractStatus, now time.Time) int {
	departing := c.ActiveTenantCount()
	for i := range c.Tenants {
		c.Tenants[i].Status = TenantStatusInactive
	}
	now = now.UTC()
	c.Status = status
	c.TerminatedAt = &now
	c.UpdatedAt = now
	return departing
}
