package model

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	LandlordID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Title            string    `gorm:"size:255;not null"`
	MaxOccupancy     int       `gorm:"not null;check:max_occupancy >= 1"`
	CurrentOccupancy int       `gorm:"not null;default:0;check:current_occupancy >= 0"`
	MonthlyRent      int64     `gorm:"not null"`
	Deposit          int64     `gorm:"not null"`
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

type Post struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoomID     uuid.UUID `gorm:"type:uuid;index;not null"`
	LandlordID uuid.UUID `gorm:"type:uuid;index;not null"`
	Type       string    `gorm:"size:16;not null"`
	Status     string    `gorm:"size:16;index;not null"`
	Title      string    `gorm:"size:255;not null"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type Request struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey"`
	PostID              uuid.UUID   `gorm:"type:uuid;index;not null"`
	RoomID              uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_requests_open_tenant_room,where:is_open;index;not null"`
	LandlordID          uuid.UUID   `gorm:"type:uuid;index;not null"`
	TenantID            uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_requests_open_tenant_room,where:is_open;index;not null"`
	CoTenantIDs         []uuid.UUID `gorm:"serializer:json"`
	Type                string      `gorm:"size:16;not null"`
	RequestedMoveInDate time.Time   `gorm:"not null"`
	RequestedDuration   int         `gorm:"not null"`
	Message             string      `gorm:"type:text"`
	Status              string      `gorm:"size:32;index;not null"`
	IsOpen              bool        `gorm:"not null"`
	ContractID          *uuid.UUID  `gorm:"type:uuid"`
	OccupantApprovedBy  *uuid.UUID  `gorm:"type:uuid"`
	DecisionReason      string      `gorm:"type:text"`
	CreatedAt           time.Time   `gorm:"not null"`
	UpdatedAt           time.Time   `gorm:"not null"`
}

type Contract struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	RoomID            uuid.UUID        `gorm:"type:uuid;index;not null"`
	PostID            uuid.UUID        `gorm:"type:uuid;not null"`
	RequestID         uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null"`
	LandlordID        uuid.UUID        `gorm:"type:uuid;index;not null"`
	Tenants           []ContractTenant `gorm:"constraint:OnDelete:CASCADE"`
	StartDate         time.Time        `gorm:"not null"`
	EndDate           time.Time        `gorm:"index;not null"`
	MonthlyRent       int64            `gorm:"not null"`
	Deposit           int64            `gorm:"not null"`
	Status            string           `gorm:"size:16;index;not null"`
	Type              string           `gorm:"size:16;not null"`
	TerminationReason string           `gorm:"type:text"`
	TerminatedBy      *uuid.UUID       `gorm:"type:uuid"`
	TerminatedAt      *time.Time
	DepositForfeited  bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

type ContractTenant struct {
	ID         uint      `gorm:"primaryKey"`
	ContractID uuid.UUID `gorm:"type:uuid;index;not null"`
	TenantID   uuid.UUID `gorm:"type:uuid;index;not null"`
	MoveInDate time.Time `gorm:"not null"`
	Status     string    `gorm:"size:16;not null"`
}

type Invoice struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey"`
	ContractID uuid.UUID     `gorm:"type:uuid;uniqueIndex:idx_invoices_contract_period,where:period <> '';index;not null"`
	Type       string        `gorm:"size:32;uniqueIndex:idx_invoices_contract_period,where:period <> '';not null"`
	Period     string        `gorm:"size:7;uniqueIndex:idx_invoices_contract_period,where:period <> ''"`
	Amount     int64         `gorm:"not null;check:amount > 0"`
	DueDate    time.Time     `gorm:"index;not null"`
	Status     string        `gorm:"size:16;index;not null"`
	Items      []InvoiceItem `gorm:"constraint:OnDelete:CASCADE"`
	PaymentRef string        `gorm:"size:128"`
	PaidAt     *time.Time
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type InvoiceItem struct {
	ID          uint      `gorm:"primaryKey"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Position    int       `gorm:"not null"`
	Description string    `gorm:"size:255;not null"`
	Amount      int64     `gorm:"not null"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&Room{}, &Post{}, &Request{}, &Contract{}, &ContractTenant{}, &Invoice{}, &InvoiceItem{}}
}
