package domain

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them so callers
// can classify with errors.Is.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

var (
	ErrRoomNotFound     = fmt.Errorf("room %w", ErrNotFound)
	ErrPostNotFound     = fmt.Errorf("post %w", ErrNotFound)
	ErrRequestNotFound  = fmt.Errorf("request %w", ErrNotFound)
	ErrContractNotFound = fmt.Errorf("contract %w", ErrNotFound)
	ErrInvoiceNotFound  = fmt.Errorf("invoice %w", ErrNotFound)

	ErrOccupancyExceeded   = fmt.Errorf("%w: occupancy would exceed room capacity", ErrValidation)
	ErrInvalidCapacity     = fmt.Errorf("%w: room capacity must be at least one", ErrValidation)
	ErrInvalidPrice        = fmt.Errorf("%w: rent and deposit must not be negative", ErrValidation)
	ErrRequestAlreadyOpen  = fmt.Errorf("%w: request already pending", ErrValidation)
	ErrRoomOccupied        = fmt.Errorf("%w: room is already let", ErrValidation)
	ErrInvalidPostType     = fmt.Errorf("%w: post type must be rent or roommate", ErrValidation)
	ErrPostNotActive       = fmt.Errorf("%w: post is not accepting requests", ErrValidation)
	ErrInvalidDuration     = fmt.Errorf("%w: requested duration must be at least one month", ErrValidation)
	ErrInvalidMoveInDate   = fmt.Errorf("%w: requested move-in date is required", ErrValidation)
	ErrEmptyInvoice        = fmt.Errorf("%w: invoice has no payable items", ErrValidation)
	ErrInvalidInvoiceItem  = fmt.Errorf("%w: invoice item amount must not be negative", ErrValidation)
	ErrInvalidInvoiceType  = fmt.Errorf("%w: unknown invoice type", ErrValidation)
	ErrInvalidSignature    = fmt.Errorf("%w: payment callback signature mismatch", ErrValidation)
	ErrInvalidPaymentState = fmt.Errorf("%w: unknown payment status", ErrValidation)

	ErrAlreadyApproved     = fmt.Errorf("%w: request already approved", ErrConflict)
	ErrInvalidTransition   = fmt.Errorf("%w: transition not allowed from current status", ErrConflict)
	ErrStaleState          = fmt.Errorf("%w: state changed by another actor, reload and retry", ErrConflict)
	ErrInvoiceAlreadyPaid  = fmt.Errorf("%w: invoice already paid", ErrConflict)
	ErrInvoicePeriodExists = fmt.Errorf("%w: invoice for this period already exists", ErrConflict)
	ErrContractNotActive   = fmt.Errorf("%w: contract is not active", ErrConflict)
	ErrAwaitingOccupant    = fmt.Errorf("%w: request is waiting for the current occupant", ErrConflict)

	ErrNotRoomLandlord  = fmt.Errorf("%w: actor is not the landlord of this room", ErrForbidden)
	ErrNotRoomOccupant  = fmt.Errorf("%w: actor is not a current occupant of this room", ErrForbidden)
	ErrNotRequestOwner  = fmt.Errorf("%w: actor does not own this request", ErrForbidden)
	ErrNotContractParty = fmt.Errorf("%w: actor is not a party to this contract", ErrForbidden)
	ErrOwnRoomRequest   = fmt.Errorf("%w: landlords cannot request their own room", ErrForbidden)
)
