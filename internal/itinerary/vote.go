package itinerary

import (
	"github.com/samber/lo"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CastVote records memberID's choice on it and recomputes its status against
// totalMembers. The member is first removed from both vote sets, so a member
// appears in at most one set after any sequence of calls.
func CastVote(it *domain.Item, memberID string, choice domain.Choice, totalMembers int) {
	it.Votes.Yes = lo.Without(it.Votes.Yes, memberID)
	it.Votes.No = lo.Without(it.Votes.No, memberID)
	switch choice {
	case domain.ChoiceYes:
		it.Votes.Yes = append(it.Votes.Yes, memberID)
	case domain.ChoiceNo:
		it.Votes.No = append(it.Votes.No, memberID)
	}
	it.Status = Tally(it.Votes, totalMembers)
}

// Tally derives an item's status from its votes:
//   - approved when every member voted yes;
//   - rejected when every member voted and at least one said no;
//   - pending otherwise.
func Tally(v domain.Votes, totalMembers int) domain.Status {
	yes, no := len(v.Yes), len(v.No)
	switch {
	case yes == totalMembers:
		return domain.StatusApproved
	case no > 0 && yes+no == totalMembers:
		return domain.StatusRejected
	default:
		return domain.StatusPending
	}
}
