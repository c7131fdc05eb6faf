package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveVisibility(t *testing.T) {
	rent := &Post{Type: PostTypeRent}
	roommate := &Post{Type: PostTypeRoommate}

	cases := []struct {
		name string
		post *Post
		occ  Occupancy
		want Visibility
	}{
		{"empty rent", rent, Occupancy{Current: 0, Max: 1}, Visibility{true, ReasonEmptyRent}},
		{"empty roommate", roommate, Occupancy{Current: 0, Max: 2}, Visibility{true, ReasonEmptyRoommate}},
		{"occupied rent", rent, Occupancy{Current: 1, Max: 1}, Visibility{false, ReasonRoomOccupied}},
		{"occupied rent with room to spare", rent, Occupancy{Current: 1, Max: 4}, Visibility{false, ReasonRoomOccupied}},
		{"full roommate", roommate, Occupancy{Current: 3, Max: 3}, Visibility{false, ReasonRoomFull}},
		{"over capacity roommate", roommate, Occupancy{Current: 4, Max: 3}, Visibility{false, ReasonRoomFull}},
		{"roommate with slots", roommate, Occupancy{Current: 1, Max: 3}, Visibility{true, ReasonSlotsAvailable}},
		{"unknown post type", &Post{Type: "sublet"}, Occupancy{Current: 1, Max: 2}, Visibility{true, ReasonUnknownState}},
		{"negative occupancy", rent, Occupancy{Current: -1, Max: 2}, Visibility{true, ReasonUnknownState}},
		{"nil post", nil, Occupancy{}, Visibility{true, ReasonUnknownState}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveVisibility(tc.post, tc.occ))
		})
	}
}

func TestFailOpen(t *testing.T) {
	v := FailOpen()
	assert.True(t, v.ShouldShow)
	assert.Equal(t, ReasonRoomUnavailable, v.Reason)
}
