package plan

import (
	"fmt"
	"regexp"
)

// SlotSpec describes how a single slot is collected: the action that asks
// for it, an optional follow-up run after the answer, and an optional
// clarification action for "what do you mean" digressions.
type SlotSpec struct {
	AskAction      string `yaml:"ask_action"`
	FollowUpAction string `yaml:"follow_up_action"`
	ClarifyAction  string `yaml:"clarify_action"`
}

// Definition is the immutable description of a slot-filling plan. It is
// loaded once, validated, and shared read-only across every conversation
// that activates it; all per-conversation state lives on Instance.
type Definition struct {
	Name                 string
	Subject              string
	Slots                map[string]SlotSpec // keys are the base required slots
	SlotOrder            []string            // declaration order of Slots
	OptionalSlots        map[string]SlotSpec // fillable but never base-required
	FinishAction         string
	ExitMap              map[string]string // intent -> terminating action
	ChitchatMap          map[string]string // intent -> digression action
	ClarificationIntents []string
	Rules                RuleTable
	// Guardrails maps a declared slot to regex patterns whose matches the
	// host must refuse to commit. Enforced outside the engine, before a
	// value reaches the tracker.
	Guardrails map[string][]string
}

// Inert returns the empty plan a conversation falls back to when activation
// names a plan the domain does not know. It asks nothing and finishes
// immediately with a bare listen.
func Inert() *Definition {
	return &Definition{Name: "", Slots: map[string]SlotSpec{}}
}

// BaseRequired returns the originally declared required slots in declaration
// order.
func (d *Definition) BaseRequired() []string {
	if len(d.SlotOrder) == len(d.Slots) {
		return append([]string{}, d.SlotOrder...)
	}
	out := make([]string, 0, len(d.Slots))
	for s := range d.Slots {
		out = append(out, s)
	}
	return out
}

func (d *Definition) declaredSlot(name string) bool {
	if _, ok := d.Slots[name]; ok {
		return true
	}
	_, ok := d.OptionalSlots[name]
	return ok
}

// slotSpec resolves a slot's collection metadata, required or optional.
func (d *Definition) slotSpec(name string) SlotSpec {
	if spec, ok := d.Slots[name]; ok {
		return spec
	}
	return d.OptionalSlots[name]
}

func (d *Definition) isChitchatAction(action string) bool {
	for _, a := range d.ChitchatMap {
		if a == action && a != "" {
			return true
		}
	}
	return false
}

func (d *Definition) isClarifyAction(action string) bool {
	if action == "" {
		return false
	}
	for _, spec := range d.Slots {
		if spec.ClarifyAction == action {
			return true
		}
	}
	for _, spec := range d.OptionalSlots {
		if spec.ClarifyAction == action {
			return true
		}
	}
	return false
}

func (d *Definition) isClarificationIntent(intent string) bool {
	for _, i := range d.ClarificationIntents {
		if i == intent {
			return true
		}
	}
	return false
}

// Validate checks that every slot a rule adds or removes is declared either
// as required or optional, and that anything a rule can make required is
// actually askable. Violations surface as MalformedRuleError before the
// definition can be activated.
func (d *Definition) Validate() error {
	for key, effect := range d.Rules {
		for _, ref := range effect.Need {
			if !d.declaredSlot(ref) || d.slotSpec(ref).AskAction == "" {
				return &MalformedRuleError{Plan: d.Name, Slot: key.Slot, Value: key.Value, Ref: ref}
			}
		}
		for _, ref := range effect.Lose {
			if !d.declaredSlot(ref) {
				return &MalformedRuleError{Plan: d.Name, Slot: key.Slot, Value: key.Value, Ref: ref}
			}
		}
	}
	for slot, patterns := range d.Guardrails {
		if !d.declaredSlot(slot) {
			return fmt.Errorf("plan %q: guardrail for undeclared slot %q", d.Name, slot)
		}
		for _, pattern := range patterns {
			if _, err := regexp.Compile(pattern); err != nil {
				return fmt.Errorf("plan %q: guardrail pattern for slot %q: %w", d.Name, slot, err)
			}
		}
	}
	return nil
}
