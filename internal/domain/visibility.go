package domain

const (
	ReasonEmptyRent       = "empty room - rent post allowed"
	ReasonEmptyRoommate   = "empty room - roommate post allowed"
	ReasonRoomOccupied    = "room occupied"
	ReasonRoomFull        = "room full"
	ReasonSlotsAvailable  = "room has available slots"
	ReasonUnknownState    = "unknown state - default to visible"
	ReasonRoomUnavailable = "room unavailable - default to visible"
)

// Visibility is the resolver's verdict for a single post.
type Visibility struct {
	ShouldShow bool   `json:"should_show"`
	Reason     string `json:"reason"`
}

// ResolveVisibility decides whether a post should be advertised given its
// room's live occupancy. Rules are evaluated in order, first match wins, and
// anything the rules do not recognise resolves to visible.
func ResolveVisibility(post *Post, occ Occupancy) Visibility {
	if post == nil {
		return Visibility{ShouldShow: true, Reason: ReasonUnknownState}
	}

	switch {
	case occ.Current == 0 && post.Type == PostTypeRent:
		return Visibility{ShouldShow: true, Reason: ReasonEmptyRent}
	case occ.Current == 0 && post.Type == PostTypeRoommate:
		// Roommate listings stay up on an empty room so seekers can find each
		// other before the first tenant moves in.
		return Visibility{ShouldShow: true, Reason: ReasonEmptyRoommate}
	case occ.Current > 0 && post.Type == PostTypeRent:
		return Visibility{ShouldShow: false, Reason: ReasonRoomOccupied}
	case occ.Current > 0 && post.Type == PostTypeRoommate && occ.Current >= occ.Max:
		return Visibility{ShouldShow: false, Reason: ReasonRoomFull}
	case occ.Current > 0 && post.Type == PostTypeRoommate && occ.Current < occ.Max:
		return Visibility{ShouldShow: true, Reason: ReasonSlotsAvailable}
	}

	return Visibility{ShouldShow: true, Reason: ReasonUnknownState}
}

// FailOpen is the verdict used when the room snapshot could not be loaded.
func FailOpen() Visibility {
	return Visibility{ShouldShow: true, Reason: ReasonRoomUnavailable}
}
