package domain

import "github.com/google/uuid"

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleTenant || r == RoleLandlord || r == RoleAdmin
}

// Actor is the authenticated caller as reported by the identity provider.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// SystemActor drives scheduled transitions such as contract expiry.
var SystemActor = Actor{ID: uuid.Nil, Role: RoleAdmin}
