package plan

import (
	"fmt"
	"sort"
)

// RuleKey identifies a single filled slot/value pair that can trigger
// requirement changes.
type RuleKey struct {
	Slot  string
	Value string
}

// RuleEffect describes what a triggered rule does to the required slot set.
type RuleEffect struct {
	Need []string // slots that become required
	Lose []string // slots that stop being required
}

// RuleTable is the compiled form of a plan's rule specification: a flat
// lookup from (slot, value) to the requirement changes it causes.
type RuleTable map[RuleKey]RuleEffect

// RuleClauses is the raw, per-value shape of a rule as it appears in a plan
// definition file.
type RuleClauses struct {
	Need []string `yaml:"need"`
	Lose []string `yaml:"lose"`
}

// MalformedRuleError reports a rule that references a slot the plan never
// declares. It is raised when a definition is validated, before the plan can
// be activated.
type MalformedRuleError struct {
	Plan  string
	Slot  string
	Value string
	Ref   string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("plan %q: rule for %s=%s references undeclared slot %q",
		e.Plan, e.Slot, e.Value, e.Ref)
}

// CompileRules flattens a nested rule specification (slot -> value -> clauses)
// into a RuleTable. Missing need/lose lists compile to empty slices, never
// nil-as-error. The compilation is pure; referential checks against the
// plan's declared slots happen in Definition.Validate.
func CompileRules(spec map[string]map[string]RuleClauses) RuleTable {
	table := make(RuleTable, len(spec))
	for slot, values := range spec {
		for value, clauses := range values {
			effect := RuleEffect{
				Need: append([]string{}, clauses.Need...),
				Lose: append([]string{}, clauses.Lose...),
			}
			sort.Strings(effect.Need)
			sort.Strings(effect.Lose)
			table[RuleKey{Slot: slot, Value: value}] = effect
		}
	}
	return table
}
