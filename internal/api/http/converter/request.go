package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
)

type RequestResponse struct {
	ID                  uuid.UUID            `json:"id"`
	PostID              uuid.UUID            `json:"post_id"`
	RoomID              uuid.UUID            `json:"room_id"`
	LandlordID          uuid.UUID            `json:"landlord_id"`
	TenantID            uuid.UUID            `json:"tenant_id"`
	CoTenantIDs         []uuid.UUID          `json:"co_tenant_ids"`
	RequestType         domain.PostType      `json:"request_type"`
	RequestedMoveInDate time.Time            `json:"requested_move_in_date"`
	RequestedDuration   int                  `json:"requested_duration"`
	Message             string               `json:"message,omitempty"`
	Status              domain.RequestStatus `json:"status"`
	ContractID          *uuid.UUID           `json:"contract_id,omitempty"`
	OccupantApprovedBy  *uuid.UUID           `json:"occupant_approved_by,omitempty"`
	DecisionReason      string               `json:"decision_reason,omitempty"`
	CreatedAt           time.Time            `json:"created_at"`
	UpdatedAt           time.Time            `json:"updated_at"`
}

func RequestToApi(r *domain.Request) *RequestResponse {
	coTenants := r.CoTenantIDs
	if coTenants == nil {
		coTenants = []uuid.UUID{}
	}
	return &RequestResponse{
		ID:                  r.ID,
		PostID:              r.PostID,
		RoomID:              r.RoomID,
		LandlordID:          r.LandlordID,
		TenantID:            r.TenantID,
		CoTenantIDs:         coTenants,
		RequestType:         r.Type,
		RequestedMoveInDate: r.RequestedMoveInDate,
		RequestedDuration:   r.RequestedDuration,
		Message:             r.Message,
		Status:              r.Status,
		ContractID:          r.ContractID,
		OccupantApprovedBy:  r.OccupantApprovedBy,
		DecisionReason:      r.DecisionReason,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func RequestsToApi(reqs []*domain.Request) []*RequestResponse {
	res := make([]*RequestResponse, 0, len(reqs))
	for _, r := range reqs {
		res = append(res, RequestToApi(r))
	}
	return res
}
