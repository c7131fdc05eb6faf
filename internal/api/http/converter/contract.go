package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

type ContractResponse struct {
	ID                uuid.UUID               `json:"id"`
	RoomID            uuid.UUID               `json:"room_id"`
	PostID            uuid.UUID               `json:"post_id"`
	RequestID         uuid.UUID               `json:"request_id"`
	LandlordID        uuid.UUID               `json:"landlord_id"`
	Tenants           []domain.ContractTenant `json:"tenants"`
	StartDate         time.Time               `json:"start_date"`
	EndDate           time.Time               `json:"end_date"`
	MonthlyRent       int64                   `json:"monthly_rent"`
	Deposit           int64                   `json:"deposit"`
	Status            domain.ContractStatus   `json:"status"`
	ContractType      domain.ContractType     `json:"contract_type"`
	TerminationReason string                  `json:"termination_reason,omitempty"`
	TerminatedBy      *uuid.UUID              `json:"terminated_by,omitempty"`
	TerminatedAt      *time.Time              `json:"terminated_at,omitempty"`
	DepositForfeited  bool                    `json:"deposit_forfeited"`
	CreatedAt         time.Time               `json:"created_at"`
}

func ContractToApi(c *domain.Contract) *ContractResponse {
	return &ContractResponse{
		ID:                c.ID,
		RoomID:            c.RoomID,
		PostID:            c.PostID,
		RequestID:         c.RequestID,
		LandlordID:        c.LandlordID,
		Tenants:           c.Tenants,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		MonthlyRent:       c.MonthlyRent,
		Deposit:           c.Deposit,
		Status:            c.Status,
		ContractType:      c.Type,
		TerminationReason: c.TerminationReason,
		TerminatedBy:      c.TerminatedBy,
		TerminatedAt:      c.TerminatedAt,
		DepositForfeited:  c.DepositForfeited,
		CreatedAt:         c.CreatedAt,
	}
}

func ContractsToApi(contracts []*domain.Contract) []*ContractResponse {
	res := make([]*ContractResponse, 0, len(contracts))
	for _, c := range contracts {
		res = append(res, ContractToApi(c))
	}
	return res
}
