package plan

import "log"

// Slot names the host uses to expose plan lifecycle to the rest of the
// dialogue state.
const (
	SlotActivePlan   = "active_plan"
	SlotPlanComplete = "plan_complete"
)

// Event is a state change the host applies to a conversation's tracker.
// The engine never mutates the tracker directly; lifecycle transitions are
// expressed as a produced sequence of these events.
type Event interface {
	isEvent()
}

// SlotSet records a slot value change.
type SlotSet struct {
	Slot  string
	Value any
}

// StartPlan attaches a plan instance to the tracker. Def is the inert plan
// when activation named an unknown definition.
type StartPlan struct {
	Def *Definition
}

// EndPlan detaches the active plan instance; its queue and runtime state
// are discarded, not archived.
type EndPlan struct{}

func (SlotSet) isEvent()   {}
func (StartPlan) isEvent() {}
func (EndPlan) isEvent()   {}

// Activate builds the event sequence that starts the named plan. A plan the
// domain does not define is logged and degrades to the inert plan rather
// than failing the conversation.
func Activate(dom DomainView, planName string) []Event {
	def, ok := dom.LookupPlan(planName)
	if !ok {
		log.Printf("plan: tried to start non-existent plan %q, make sure it is defined in the domain", planName)
		def = Inert()
	}
	return []Event{
		StartPlan{Def: def},
		SlotSet{Slot: SlotActivePlan, Value: true},
	}
}

// Complete builds the event sequence that ends the active plan, recording
// whether it finished with every required slot filled or was abandoned
// part-way.
func Complete(in *Instance, slots map[string]any) []Event {
	complete := in != nil && in.CheckCompletion(slots)
	return []Event{
		EndPlan{},
		SlotSet{Slot: SlotActivePlan, Value: false},
		SlotSet{Slot: SlotPlanComplete, Value: complete},
	}
}
