package aiaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Reconciler is the part of the itinerary service an action needs.
type Reconciler interface {
	AddBatch(ctx context.Context, tripID uuid.UUID, b domain.Batch) (domain.BatchResult, error)
	UpdateItemTime(ctx context.Context, tripID uuid.UUID, u domain.TimeUpdate) (domain.Item, error)
}

// Outcome reports what Apply did with a reply.
type Outcome struct {
	Kind    Kind
	Applied bool
	Added   int
	Removed int
	// Rescheduled counts smart_schedule reschedules and update_items hits.
	Rescheduled int
	// Missed counts update_items entries that matched no item.
	Missed int
	// Text is the reply as it should be shown in the chat.
	Text string
}

// Apply parses reply and runs its action, if any, against tripID.
//
// A reply with no payload, a malformed payload, or an unknown action is
// returned unchanged and nothing is mutated; a malformed payload also yields
// an error wrapping domain.ErrMalformedAction. When an action is applied the
// payload is cut from the text, and a summary line replaces a blank remainder.
// Reconciler failures are returned alongside an Outcome whose Text is still
// safe to display.
func Apply(ctx context.Context, r Reconciler, tripID uuid.UUID, reply string) (Outcome, error) {
	a, span, ok, err := Parse(reply)
	if !ok {
		return Outcome{Text: reply}, nil
	}
	if err != nil {
		return Outcome{Text: reply}, err
	}
	if a.Kind == KindUnknown {
		return Outcome{Text: reply}, nil
	}

	out := Outcome{Kind: a.Kind}
	rest := strings.TrimSpace(reply[:span.Start] + reply[span.End:])

	switch a.Kind {
	case KindAddItems:
		err = out.batch(ctx, r, tripID, domain.Batch{Items: a.Items, Mode: domain.GroupingSlotDetected})
	case KindSmartSchedule:
		mode := domain.GroupingNone
		if a.IsOptions {
			mode = domain.GroupingForcedOptions
		}
		err = out.batch(ctx, r, tripID, domain.Batch{
			Items:        a.Items,
			Mode:         mode,
			RemoveTitles: a.Remove,
			Reschedule:   a.Reschedule,
		})
	case KindUpdateItems:
		err = out.update(ctx, r, tripID, a.Updates)
	}

	switch {
	case rest != "":
		out.Text = rest
	case err != nil:
		out.Text = "I couldn't update the itinerary just now. Please try again."
	default:
		out.Text = out.summary()
	}
	if err != nil {
		return out, fmt.Errorf("aiaction.Apply %s: %w", a.Kind, err)
	}
	out.Applied = true
	return out, nil
}

func (o *Outcome) batch(ctx context.Context, r Reconciler, tripID uuid.UUID, b domain.Batch) error {
	res, err := r.AddBatch(ctx, tripID, b)
	if err != nil {
		return err
	}
	o.Added, o.Removed, o.Rescheduled = res.Added, res.Removed, res.Rescheduled
	return nil
}

func (o *Outcome) update(ctx context.Context, r Reconciler, tripID uuid.UUID, us []domain.TimeUpdate) error {
	for _, u := range us {
		_, err := r.UpdateItemTime(ctx, tripID, u)
		switch {
		case err == nil:
			o.Rescheduled++
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrValidation):
			o.Missed++
		default:
			return err
		}
	}
	return nil
}

func (o Outcome) summary() string {
	if o.Kind == KindUpdateItems {
		return fmt.Sprintf("Updated %s on the itinerary.", plural(o.Rescheduled))
	}
	return fmt.Sprintf("Added %s to the itinerary.", plural(o.Added))
}

func plural(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
