package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/events"
	"github.com/immxrtalbeast/roomrent/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminateReleasesRoom(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, 1)
	post := f.activePost(t, room, domain.PostTypeRent)
	occupant, contract := f.occupy(t, post)
	require.Equal(t, 1, f.occupancy(t, room.ID))
	assert.False(t, f.visibility.Resolve(f.ctx, post).ShouldShow)

	_, err := f.contracts.Terminate(f.ctx, tenant(), contract.ID, "")
	require.ErrorIs(t, err, domain.ErrNotContractParty)

	f.rec.events = nil
	got, err := f.contracts.Terminate(f.ctx, occupant, contract.ID, " moving abroad ")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusTerminated, got.Status)
	assert.Equal(t, "moving abroad", got.TerminationReason)
	assert.True(t, got.DepositForfeited)
	assert.Equal(t, 0, got.ActiveTenantCount())
	assert.Equal(t, 0, f.occupancy(t, room.ID))

	assert.Equal(t, domain.Visibility{ShouldShow: true, Reason: domain.ReasonEmptyRent}, f.visibility.Resolve(f.ctx, post))
	require.Len(t, f.rec.ofType(events.ContractTerminated), 1)
	assert.NotEmpty(t, f.rec.ofType(events.PostVisibility))

	_, err = f.contracts.Terminate(f.ctx, f.landlord, contract.ID, "")
	assert.ErrorIs(t, err, domain.ErrContractNotActive)
}

type stuckRooms struct {
	repository.RoomRepository
}

func (stuckRooms) DecrementOccupancy(context.Context, uuid.UUID, int) (*domain.Room, error) {
	return nil, errors.New("connection reset")
}

func TestTerminateRestoresContractWhenRoomUpdateFails(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, 1)
	occupant, contract := f.occupy(t, f.activePost(t, room, domain.PostTypeRent))

	f.rec.events = nil
	f.contracts.rooms = stuckRooms{RoomRepository: f.store.Rooms}
	_, err := f.contracts.Terminate(f.ctx, occupant, contract.ID, "leaving")
	require.Error(t, err)

	stored, err := f.store.Contracts.GetByID(f.ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusActive, stored.Status)
	assert.Nil(t, stored.TerminatedAt)
	assert.Equal(t, 1, stored.ActiveTenantCount())
	assert.Equal(t, 1, f.occupancy(t, room.ID))
	assert.Empty(t, f.rec.ofType(events.ContractTerminated))

	f.contracts.rooms = f.store.Rooms
	got, err := f.contracts.Terminate(f.ctx, occupant, contract.ID, "leaving")
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusTerminated, got.Status)
	assert.Equal(t, 0, f.occupancy(t, room.ID))
}

func TestExpireDue(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, 2)
	_, contract := f.occupy(t, f.activePost(t, room, domain.PostTypeRent))

	expired, err := f.contracts.ExpireDue(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)

	f.clock = contract.EndDate.AddDate(0, 0, 1)
	expired, err = f.contracts.ExpireDue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 0, f.occupancy(t, room.ID))

	got, err := f.contracts.Get(f.ctx, f.landlord, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContractStatusExpired, got.Status)
	assert.False(t, got.DepositForfeited)
	assert.Len(t, f.rec.ofType(events.ContractExpired), 1)

	expired, err = f.contracts.ExpireDue(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
}

func TestListMyContracts(t *testing.T) {
	f := newFixture(t)
	room := f.room(t, 2)
	occupant, contract := f.occupy(t, f.activePost(t, room, domain.PostTypeRent))

	mine, err := f.contracts.ListMine(f.ctx, occupant)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, contract.ID, mine[0].ID)

	owned, err := f.contracts.ListMine(f.ctx, f.landlord)
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	_, err = f.contracts.Get(f.ctx, tenant(), contract.ID)
	assert.ErrorIs(t, err, domain.ErrNotContractParty)
}
