package governance

import (
	"context"
	"fmt"
	"regexp"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains an extracted slot value to be evaluated before it is
// committed to the tracker.
type Request struct {
	Slot   string
	Value  string
	ChatID string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates slot values against a set of guardrail rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// DefaultPolicyEngine is a basic implementation of PolicyEngine.
type DefaultPolicyEngine struct {
	DeniedSlots map[string]bool
	DeniedRegex []*regexp.Regexp
	slotRegex   map[string][]*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		DeniedSlots: make(map[string]bool),
		DeniedRegex: make([]*regexp.Regexp, 0),
		slotRegex:   make(map[string][]*regexp.Regexp),
	}
}

// DenySlot blocks a slot from ever being filled from user input.
func (e *DefaultPolicyEngine) DenySlot(name string) {
	e.DeniedSlots[name] = true
}

// DenyValues blocks any slot value matching the pattern, for every slot.
func (e *DefaultPolicyEngine) DenyValues(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

// DenyValuesFor blocks matching values for one slot only. This is how a
// plan's declared guardrails are installed.
func (e *DefaultPolicyEngine) DenyValuesFor(slot, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.slotRegex[slot] = append(e.slotRegex[slot], re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedSlots[req.Slot] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Slot '%s' cannot be set from user input", req.Slot),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Value) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Value matches restricted pattern: %s", re.String()),
			}, nil
		}
	}

	for _, re := range e.slotRegex[req.Slot] {
		if re.MatchString(req.Value) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Value for slot '%s' matches restricted pattern: %s", req.Slot, re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
