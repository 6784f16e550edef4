package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/itinerary"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ItineraryService reconciles changes into a trip's shared itinerary: single
// adds with clash detection, assistant batches with option grouping, votes,
// removals, reschedules, and reordering. Each mutation is a version-checked
// fetch-mutate-save of the whole trip document.
type ItineraryService struct {
	trips repo.TripRepo
	env
}

// NewItineraryService constructs an ItineraryService backed by the provided TripRepo.
func NewItineraryService(trips repo.TripRepo, opts ...Option) *ItineraryService {
	return &ItineraryService{trips: trips, env: newEnv(opts)}
}

// AddItem validates draft and appends it as a pending item.
// A suggester who is a trip member starts with their own yes vote, which
// approves the item at once in a one-member trip.
// Returns domain.ErrValidation for a blank title or malformed time and a
// *domain.TimeClashError when the item overlaps a non-rejected item on the
// same day; the itinerary is unchanged in both cases.
func (s *ItineraryService) AddItem(ctx context.Context, tripID uuid.UUID, draft domain.ItemDraft, suggestedBy string) (domain.Item, error) {
	candidate, err := itinerary.NewItem(draft)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItineraryService.AddItem: %w", err)
	}

	var added domain.Item
	_, err = mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		if clash, ok := itinerary.FindClash(t.Itinerary, candidate); ok {
			return itinerary.ClashError(clash)
		}
		added = candidate
		added.ID = s.newID()
		added.Status = domain.StatusPending
		added.Votes = domain.Votes{Yes: []string{}, No: []string{}}
		added.SuggestedBy = suggestedBy
		added.CreatedAt = s.now()
		if _, ok := t.Member(suggestedBy); ok {
			added.Votes.Yes = []string{suggestedBy}
			added.Status = itinerary.Tally(added.Votes, len(t.Members))
		}
		t.Itinerary = append(t.Itinerary, added)
		return nil
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItineraryService.AddItem: %w", err)
	}
	return added, nil
}

// AddBatch merges an assistant-proposed batch into the itinerary:
//  1. items titled in b.RemoveTitles are removed from the days the kept drafts cover;
//  2. the titled drafts are inserted as assistant suggestions, grouped per b.Mode;
//  3. b.Reschedule updates are applied.
//
// Batch items bypass clash detection since options share a slot on purpose.
// Unusable draft times are cleared rather than failing the batch, and a
// reschedule that would end at or before its start is skipped.
func (s *ItineraryService) AddBatch(ctx context.Context, tripID uuid.UUID, b domain.Batch) (domain.BatchResult, error) {
	var res domain.BatchResult
	_, err := mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		res = domain.BatchResult{}

		kept := make([]domain.ItemDraft, 0, len(b.Items))
		items := make([]domain.Item, 0, len(b.Items))
		for _, d := range b.Items {
			if strings.TrimSpace(d.Title) == "" {
				continue
			}
			it, err := itinerary.NewItem(itinerary.SanitizeDraft(d))
			if err != nil {
				continue
			}
			kept = append(kept, d)
			it.ID = s.newID()
			it.Status = domain.StatusPending
			it.Votes = domain.Votes{Yes: []string{}, No: []string{}}
			it.SuggestedBy = domain.AssistantID
			it.CreatedAt = s.now()
			items = append(items, it)
		}

		t.Itinerary, res.Removed = itinerary.RemoveByTitle(t.Itinerary, b.RemoveTitles, itinerary.Days(kept))

		switch b.Mode {
		case domain.GroupingForcedOptions:
			if len(items) > 0 {
				itinerary.ForceSharedWindow(items, s.newID())
			}
		case domain.GroupingSlotDetected:
			itinerary.GroupSharedSlots(items, s.newID)
		}
		t.Itinerary = append(t.Itinerary, items...)
		res.Added = len(items)
		res.Items = items

		for _, u := range b.Reschedule {
			u, err := normalizeUpdate(u)
			if err != nil {
				continue
			}
			if _, err := itinerary.Retime(t.Itinerary, u); err == nil {
				res.Rescheduled++
			}
		}
		return nil
	})
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("service.ItineraryService.AddBatch: %w", err)
	}
	return res, nil
}

// RemoveItems deletes every item on one of days whose title equals one of
// titles, ignoring case. Days defaults to day 1. Returns the count removed.
func (s *ItineraryService) RemoveItems(ctx context.Context, tripID uuid.UUID, titles []string, days []int) (int, error) {
	var removed int
	_, err := mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		t.Itinerary, removed = itinerary.RemoveByTitle(t.Itinerary, titles, days)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("service.ItineraryService.RemoveItems: %w", err)
	}
	return removed, nil
}

// Vote records memberID's choice on itemID and re-tallies the item against
// the current member count.
// Returns domain.ErrNotFound if the item or member does not exist.
func (s *ItineraryService) Vote(ctx context.Context, tripID uuid.UUID, itemID, memberID string, choice domain.Choice) (domain.VoteResult, error) {
	if !choice.Valid() {
		return domain.VoteResult{}, fmt.Errorf("service.ItineraryService.Vote: %w: vote must be yes or no", domain.ErrValidation)
	}

	var res domain.VoteResult
	_, err := mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		i := t.ItemIndex(itemID)
		if i < 0 {
			return fmt.Errorf("item %q: %w", itemID, domain.ErrNotFound)
		}
		if _, ok := t.Member(memberID); !ok {
			return fmt.Errorf("member %q: %w", memberID, domain.ErrNotFound)
		}
		it := &t.Itinerary[i]
		itinerary.CastVote(it, memberID, choice, len(t.Members))
		res = domain.VoteResult{
			Item:         *it,
			Status:       it.Status,
			YesCount:     len(it.Votes.Yes),
			NoCount:      len(it.Votes.No),
			TotalMembers: len(t.Members),
		}
		return nil
	})
	if err != nil {
		return domain.VoteResult{}, fmt.Errorf("service.ItineraryService.Vote: %w", err)
	}
	return res, nil
}

// UpdateItemTime retimes the first item on u.Day whose title contains, or is
// contained in, u.TitleHint. Only the provided times change.
// Returns domain.ErrNotFound when no item matches and domain.ErrValidation
// for malformed times or an end not after the start.
func (s *ItineraryService) UpdateItemTime(ctx context.Context, tripID uuid.UUID, u domain.TimeUpdate) (domain.Item, error) {
	u, err := normalizeUpdate(u)
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItineraryService.UpdateItemTime: %w", err)
	}

	var updated domain.Item
	_, err = mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		i, err := itinerary.Retime(t.Itinerary, u)
		if err != nil {
			return err
		}
		updated = t.Itinerary[i]
		return nil
	})
	if err != nil {
		return domain.Item{}, fmt.Errorf("service.ItineraryService.UpdateItemTime: %w", err)
	}
	return updated, nil
}

// Reorder sets the within-day position of the listed items on day. Items not
// listed, or not on day, keep their order. Returns the count reordered.
func (s *ItineraryService) Reorder(ctx context.Context, tripID uuid.UUID, day int, ids []string) (int, error) {
	if day < 1 {
		return 0, fmt.Errorf("service.ItineraryService.Reorder: %w: day must be at least 1", domain.ErrValidation)
	}

	var n int
	_, err := mutateTrip(ctx, s.trips, s.now, tripID, func(t *domain.Trip) error {
		n = itinerary.Reorder(t.Itinerary, day, ids)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("service.ItineraryService.Reorder: %w", err)
	}
	return n, nil
}

// ListItinerary returns the trip's items in display order.
// Always returns a non-nil slice so callers can safely range over it.
func (s *ItineraryService) ListItinerary(ctx context.Context, tripID uuid.UUID) ([]domain.Item, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ItineraryService.ListItinerary: %w", err)
	}
	items := slices.Clone(trip.Itinerary)
	if items == nil {
		items = []domain.Item{}
	}
	itinerary.Sort(items)
	return items, nil
}

// normalizeUpdate validates and zero-pads the optional times of u.
// A day below 1 is read as day 1.
func normalizeUpdate(u domain.TimeUpdate) (domain.TimeUpdate, error) {
	if u.Day < 1 {
		u.Day = 1
	}
	for _, p := range []**string{&u.NewStartTime, &u.NewEndTime} {
		if *p == nil {
			continue
		}
		v, err := itinerary.NormalizeClock(**p)
		if err != nil {
			return domain.TimeUpdate{}, err
		}
		*p = &v
	}
	return u, nil
}
