package tracker

import (
	"errors"
	"fmt"

	"github.com/rahul/samvad/internal/plan"
)

// ErrPlanActive is returned when a plan is started while another is already
// attached. Overwriting would silently discard the in-flight queue, so the
// caller must deactivate first.
var ErrPlanActive = errors.New("tracker: a plan is already active")

// Tracker holds the dialogue state of one conversation: slot values, the
// latest recognized intent and executed action, and the active plan
// instance. A tracker is owned by exactly one conversation; the owning
// runtime serializes access with a per-conversation lock, so no locking
// happens here.
type Tracker struct {
	ChatID string

	slots        map[string]any
	latestIntent string
	latestAction string
	latestText   string
	active       *plan.Instance
	planOpts     []plan.Option
}

// New creates an empty tracker for a conversation. opts are passed through
// to plan instances created by StartPlan events, which is how hosts inject
// a slot selection policy.
func New(chatID string, opts ...plan.Option) *Tracker {
	return &Tracker{
		ChatID:   chatID,
		slots:    make(map[string]any),
		planOpts: opts,
	}
}

// Apply applies a sequence of plan events to the tracker. The batch is not
// transactional across events, but StartPlan rejection happens before any
// instance state is touched.
func (t *Tracker) Apply(events ...plan.Event) error {
	for _, e := range events {
		switch ev := e.(type) {
		case plan.SlotSet:
			t.slots[ev.Slot] = ev.Value
		case plan.StartPlan:
			if t.active != nil {
				return fmt.Errorf("%w: %q", ErrPlanActive, t.active.Definition().Name)
			}
			t.active = plan.NewInstance(ev.Def, t.planOpts...)
		case plan.EndPlan:
			t.active = nil
		default:
			return fmt.Errorf("tracker: unknown event %#v", e)
		}
	}
	return nil
}

// SetSlot records a slot value.
func (t *Tracker) SetSlot(name string, value any) {
	t.slots[name] = value
}

// Slot returns a slot value, nil when unset.
func (t *Tracker) Slot(name string) any {
	return t.slots[name]
}

// RecordIntent notes the intent recognized for the latest user message.
func (t *Tracker) RecordIntent(intent string) { t.latestIntent = intent }

// RecordText notes the raw text of the latest user message.
func (t *Tracker) RecordText(text string) { t.latestText = text }

// RecordAction notes the action the host just executed.
func (t *Tracker) RecordAction(name string) { t.latestAction = name }

// LatestIntent returns the most recently recognized intent.
func (t *Tracker) LatestIntent() string { return t.latestIntent }

// LatestText returns the most recent raw user message.
func (t *Tracker) LatestText() string { return t.latestText }

// LatestAction returns the most recently executed action.
func (t *Tracker) LatestAction() string { return t.latestAction }

// ActivePlan returns the attached plan instance, nil when none.
func (t *Tracker) ActivePlan() *plan.Instance { return t.active }

// View snapshots the tracker state for one engine decision call. The slot
// map is copied so the engine never aliases live state.
func (t *Tracker) View() plan.TrackerView {
	slots := make(map[string]any, len(t.slots))
	for k, v := range t.slots {
		slots[k] = v
	}
	return plan.TrackerView{
		LatestIntent: t.latestIntent,
		LatestAction: t.latestAction,
		Slots:        slots,
	}
}

// Slots returns a copy of the current slot values.
func (t *Tracker) Slots() map[string]any {
	return t.View().Slots
}
