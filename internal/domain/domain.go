package domain

import (
	"errors"
	"fmt"

	"github.com/rahul/samvad/internal/plan"
)

// ErrActionNotFound is returned when an action name has no index in the
// registry. Decision calls that hit it fail loudly; there is no fallback
// action.
var ErrActionNotFound = errors.New("domain: action not found")

// Registry maps action names to the dense indices the dispatch layer works
// with, and holds the plan definitions the bot can run. It is populated at
// startup and read-only afterwards, so it is shared across conversations
// without locking.
type Registry struct {
	actions []string
	index   map[string]int
	plans   map[string]*plan.Definition
}

func NewRegistry() *Registry {
	r := &Registry{
		index: make(map[string]int),
		plans: make(map[string]*plan.Definition),
	}
	r.RegisterAction(plan.ActionListen)
	return r
}

// RegisterAction adds an action name and returns its index. Registering the
// same name twice returns the existing index.
func (r *Registry) RegisterAction(name string) int {
	if idx, ok := r.index[name]; ok {
		return idx
	}
	idx := len(r.actions)
	r.actions = append(r.actions, name)
	r.index[name] = idx
	return idx
}

// RegisterPlan stores a plan definition and registers every action it can
// ever queue.
func (r *Registry) RegisterPlan(def *plan.Definition) {
	r.plans[def.Name] = def

	registerSpec := func(spec plan.SlotSpec) {
		if spec.AskAction != "" {
			r.RegisterAction(spec.AskAction)
		}
		if spec.FollowUpAction != "" {
			r.RegisterAction(spec.FollowUpAction)
		}
		if spec.ClarifyAction != "" {
			r.RegisterAction(spec.ClarifyAction)
		}
	}
	for _, spec := range def.Slots {
		registerSpec(spec)
	}
	for _, spec := range def.OptionalSlots {
		registerSpec(spec)
	}
	for _, action := range def.ExitMap {
		r.RegisterAction(action)
	}
	for _, action := range def.ChitchatMap {
		r.RegisterAction(action)
	}
	if def.FinishAction != "" {
		r.RegisterAction(def.FinishAction)
	}
}

// IndexForAction resolves an action name to its index.
func (r *Registry) IndexForAction(name string) (int, error) {
	idx, ok := r.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrActionNotFound, name)
	}
	return idx, nil
}

// ActionName resolves an index back to its action name.
func (r *Registry) ActionName(idx int) (string, error) {
	if idx < 0 || idx >= len(r.actions) {
		return "", fmt.Errorf("%w: index %d", ErrActionNotFound, idx)
	}
	return r.actions[idx], nil
}

// LookupPlan returns the named plan definition.
func (r *Registry) LookupPlan(name string) (*plan.Definition, bool) {
	def, ok := r.plans[name]
	return def, ok
}

// ActionNames lists every registered action in index order.
func (r *Registry) ActionNames() []string {
	return append([]string{}, r.actions...)
}

// PlanNames lists the registered plans.
func (r *Registry) PlanNames() []string {
	names := make([]string, 0, len(r.plans))
	for name := range r.plans {
		names = append(names, name)
	}
	return names
}
