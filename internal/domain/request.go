package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	RequestStatusPending                 RequestStatus = "pending"
	RequestStatusPendingUserApproval     RequestStatus = "pending_user_approval"
	RequestStatusPendingLandlordApproval RequestStatus = "pending_landlord_approval"
	RequestStatusApproved                RequestStatus = "approved"
	RequestStatusRejected                RequestStatus = "rejected"
	RequestStatusCancelled               RequestStatus = "cancelled"
)

// Terminal reports whether no further transition can leave this status.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusApproved, RequestStatusRejected, RequestStatusCancelled:
		return true
	}
	return false
}

// RequestAction is who does what to a request.
type RequestAction string

const (
	ActionOccupantApprove RequestAction = "occupant_approve"
	ActionOccupantReject  RequestAction = "occupant_reject"
	ActionLandlordApprove RequestAction = "landlord_approve"
	ActionLandlordReject  RequestAction = "landlord_reject"
	ActionCancel          RequestAction = "cancel"
)

var requestTransitions = map[RequestStatus]map[RequestAction]RequestStatus{
	RequestStatusPending: {
		ActionLandlordApprove: RequestStatusApproved,
		ActionLandlordReject:  RequestStatusRejected,
		ActionCancel:          RequestStatusCancelled,
	},
	RequestStatusPendingUserApproval: {
		ActionOccupantApprove: RequestStatusPendingLandlordApproval,
		ActionOccupantReject:  RequestStatusRejected,
		ActionCancel:          RequestStatusCancelled,
	},
	RequestStatusPendingLandlordApproval: {
		ActionLandlordApprove: RequestStatusApproved,
		ActionLandlordReject:  RequestStatusRejected,
		ActionCancel:          RequestStatusCancelled,
	},
}

// NextRequestStatus looks up the transition table.
func NextRequestStatus(from RequestStatus, action RequestAction) (RequestStatus, error) {
	next, ok := requestTransitions[from][action]
	if ok {
		return next, nil
	}
	if from == RequestStatusPendingUserApproval && action == ActionLandlordApprove {
		return "", ErrAwaitingOccupant
	}
	return "", ErrInvalidTransition
}

// InitialRequestStatus picks the entry state. Roommate requests wait for the
// current occupant, unless there is none yet.
func InitialRequestStatus(postType PostType, roomOccupied bool) RequestStatus {
	if postType == PostTypeRoommate {
		if roomOccupied {
			return RequestStatusPendingUserApproval
		}
		return RequestStatusPendingLandlordApproval
	}
	return RequestStatusPending
}

// Request is a tenant's application to rent a room or join it as a roommate.
type Request struct {
	ID                  uuid.UUID     `json:"id"`
	PostID              uuid.UUID     `json:"post_id"`
	RoomID              uuid.UUID     `json:"room_id"`
	LandlordID          uuid.UUID     `json:"landlord_id"`
	TenantID            uuid.UUID     `json:"tenant_id"`
	CoTenantIDs         []uuid.UUID   `json:"co_tenant_ids,omitempty"`
	Type                PostType      `json:"request_type"`
	RequestedMoveInDate time.Time     `json:"requested_move_in_date"`
	RequestedDuration   int           `json:"requested_duration"`
	Message             string        `json:"message,omitempty"`
	Status              RequestStatus `json:"status"`
	ContractID          *uuid.UUID    `json:"contract_id,omitempty"`
	OccupantApprovedBy  *uuid.UUID    `json:"occupant_approved_by,omitempty"`
	DecisionReason      string        `json:"decision_reason,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type RequestDraft struct {
	TenantID            uuid.UUID
	CoTenantIDs         []uuid.UUID
	RequestedMoveInDate time.Time
	RequestedDuration   int
	Message             string
}

// NewRequest validates a draft against the post and the room it points at.
func NewRequest(post *Post, room *Room, draft RequestDraft, now time.Time) (*Request, error) {
	if post == nil {
		return nil, ErrPostNotFound
	}
	if room == nil || room.ID != post.RoomID {
		return nil, ErrRoomNotFound
	}
	if !post.AcceptsRequests() {
		return nil, ErrPostNotActive
	}
	if draft.TenantID == room.LandlordID {
		return nil, ErrOwnRoomRequest
	}
	if draft.RequestedDuration < 1 {
		return nil, ErrInvalidDuration
	}
	if draft.RequestedMoveInDate.IsZero() {
		return nil, ErrInvalidMoveInDate
	}

	coTenants := dedupeCoTenants(draft.TenantID, draft.CoTenantIDs)
	if err := room.Admits(post.Type, 1+len(coTenants)); err != nil {
		return nil, err
	}

	now = now.UTC()
	return &Request{
		ID:                  uuid.New(),
		PostID:              post.ID,
		RoomID:              room.ID,
		LandlordID:          room.LandlordID,
		TenantID:            draft.TenantID,
		CoTenantIDs:         coTenants,
		Type:                post.Type,
		RequestedMoveInDate: draft.RequestedMoveInDate.UTC(),
		RequestedDuration:   draft.RequestedDuration,
		Message:             strings.TrimSpace(draft.Message),
		Status:              InitialRequestStatus(post.Type, !room.IsEmpty()),
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// TenantCount is the number of people moving in on approval.
func (r *Request) TenantCount() int {
	return 1 + len(r.CoTenantIDs)
}

func (r *Request) IsOpen() bool {
	return !r.Status.Terminal()
}

// Involves reports whether the actor is the applicant or one of the co-tenants.
func (r *Request) Involves(actorID uuid.UUID) bool {
	if r.TenantID == actorID {
		return true
	}
	for _, id := range r.CoTenantIDs {
		if id == actorID {
			return true
		}
	}
	return false
}

// Transition computes the next status for action. Approval is refused once a
// contract is attached, whatever the stored status says.
func (r *Request) Transition(action RequestAction) (RequestStatus, error) {
	return r.TransitionIn(nil, action)
}

// TransitionIn is Transition evaluated against the room's current state. A
// request still waiting on an occupant of a room that has since emptied is
// treated as waiting on the landlord.
func (r *Request) TransitionIn(room *Room, action RequestAction) (RequestStatus, error) {
	if action == ActionLandlordApprove && r.ContractID != nil {
		return "", ErrAlreadyApproved
	}
	from := r.Status
	if from == RequestStatusPendingUserApproval && room != nil && room.IsEmpty() {
		from = RequestStatusPendingLandlordApproval
	}
	return NextRequestStatus(from, action)
}

func dedupeCoTenants(tenantID uuid.UUID, ids []uuid.UUID) []uuid.UUID {
	if len(ids) == 0 {
		return nil
	}
	seen := map[uuid.UUID]struct{}{tenantID: {}}
	result := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
