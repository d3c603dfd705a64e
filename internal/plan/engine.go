package plan

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ActionListen is the action that hands the turn back to the user. Every
// question queue ends with it.
const ActionListen = "action_listen"

// IntentPrefix is the plan-scoping marker the NLU layer may prepend to
// intents; the engine strips it before matching.
const IntentPrefix = "plan_"

// ErrEmptyQueue is returned when a drain is attempted on an idle queue. It
// indicates a bug in the engine's own branching, not bad input.
var ErrEmptyQueue = errors.New("plan: action queue is empty")

// TrackerView is the immutable snapshot of dialogue state the engine reads
// for one decision call.
type TrackerView struct {
	LatestIntent string
	LatestAction string
	Slots        map[string]any
}

// DomainView is the slice of the domain registry the engine needs: action
// name to index resolution and plan lookup.
type DomainView interface {
	// IndexForAction resolves an action name to its domain index. Unknown
	// names fail with an error wrapping the registry's not-found sentinel.
	IndexForAction(name string) (int, error)
	// LookupPlan returns the named plan definition, or false if undefined.
	LookupPlan(name string) (*Definition, bool)
}

// Instance is the mutable per-conversation state of one active plan. It is
// owned exclusively by a single conversation's tracker and is never shared.
type Instance struct {
	def       *Definition
	required  map[string]bool
	lastAsked string
	queue     actionQueue
	selector  Selector
}

// Option configures a new Instance.
type Option func(*Instance)

// WithSelector overrides the default random slot selection policy.
func WithSelector(s Selector) Option {
	return func(in *Instance) { in.selector = s }
}

// NewInstance attaches fresh runtime state to a plan definition. The
// required set starts as the definition's base required slots.
func NewInstance(def *Definition, opts ...Option) *Instance {
	if def == nil {
		def = Inert()
	}
	in := &Instance{
		def:      def,
		required: Recompute(def.BaseRequired(), nil, nil),
		selector: NewRandomSelector(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Definition returns the read-only plan this instance runs.
func (in *Instance) Definition() *Definition { return in.def }

// LastAsked returns the slot most recently asked about, or "" before the
// first question.
func (in *Instance) LastAsked() string { return in.lastAsked }

// Draining reports whether queued actions from a previous decision are
// still pending.
func (in *Instance) Draining() bool { return in.queue.Draining() }

// NextActionIndex decides the next action for one conversational turn.
//
// If the queue still holds entries from a previous decision, one is emitted
// and nothing else runs. Otherwise the engine recomputes the required slot
// set and branches, first match wins: exit intent, chitchat digression,
// clarification request, then the default ask-or-finish flow. Termination
// outranks digression, digression outranks clarification.
func (in *Instance) NextActionIndex(tv TrackerView, dom DomainView) (int, error) {
	if in.queue.Draining() {
		return in.drainOne(dom)
	}

	intent := strings.TrimPrefix(tv.LatestIntent, IntentPrefix)
	in.required = Recompute(in.def.BaseRequired(), in.def.Rules, tv.Slots)

	if action, ok := in.def.ExitMap[intent]; ok {
		in.queue.Replace([]string{action})
		return in.drainOne(dom)
	}

	// Chitchat and clarification both re-ask the interrupted question, so
	// neither is reachable until a question has been asked. The latest-action
	// guards stop the response action from re-triggering its own branch.
	if action, ok := in.def.ChitchatMap[intent]; ok && in.lastAsked != "" && !in.def.isChitchatAction(tv.LatestAction) {
		in.queue.Replace(append([]string{action}, in.questionQueue(in.lastAsked)...))
		return in.drainOne(dom)
	}

	if in.def.isClarificationIntent(intent) && in.lastAsked != "" && !in.def.isClarifyAction(tv.LatestAction) {
		if clarify := in.def.slotSpec(in.lastAsked).ClarifyAction; clarify != "" {
			in.queue.Replace(append([]string{clarify}, in.questionQueue(in.lastAsked)...))
			return in.drainOne(dom)
		}
	}

	stillToAsk := in.UnfilledSlots(tv.Slots)
	if len(stillToAsk) == 0 {
		batch := []string{ActionListen}
		if in.def.FinishAction != "" {
			batch = []string{in.def.FinishAction, ActionListen}
		}
		in.queue.Replace(batch)
		return in.drainOne(dom)
	}

	in.lastAsked = in.selector.Choose(stillToAsk)
	in.queue.Replace(in.questionQueue(in.lastAsked))
	return in.drainOne(dom)
}

// questionQueue builds the ask sequence for a slot: its ask action, a
// listen, and then the follow-up declared for the slot last asked about.
// The follow-up lookup deliberately keys on lastAsked, not the argument:
// when a digression re-asks a question the interrupted slot's follow-up is
// the one carried over.
func (in *Instance) questionQueue(slot string) []string {
	batch := []string{in.def.slotSpec(slot).AskAction, ActionListen}
	if in.lastAsked != "" {
		if follow := in.def.slotSpec(in.lastAsked).FollowUpAction; follow != "" {
			batch = append(batch, follow)
		}
	}
	return batch
}

func (in *Instance) drainOne(dom DomainView) (int, error) {
	name, ok := in.queue.Pop()
	if !ok {
		return 0, ErrEmptyQueue
	}
	return dom.IndexForAction(name)
}

// UnfilledSlots returns the currently required slots that have no value in
// the tracker, sorted for deterministic selection and testing.
func (in *Instance) UnfilledSlots(slots map[string]any) []string {
	var still []string
	for slot := range in.required {
		if v, ok := slots[slot]; !ok || v == nil {
			still = append(still, slot)
		}
	}
	sort.Strings(still)
	return still
}

// CheckCompletion reports whether every currently required slot is filled.
// Read-only: it recomputes requirements from the given snapshot without
// touching instance state, so repeated calls agree until slots change.
func (in *Instance) CheckCompletion(slots map[string]any) bool {
	required := Recompute(in.def.BaseRequired(), in.def.Rules, slots)
	for slot := range required {
		if v, ok := slots[slot]; !ok || v == nil {
			return false
		}
	}
	return true
}
