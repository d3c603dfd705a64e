package plan

import "fmt"

// ruleValue normalizes a tracker slot value into the string form rule keys
// are written in. Nil and empty-string slots never trigger rules.
func ruleValue(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	default:
		return fmt.Sprint(val), true
	}
}

// Recompute derives the live required slot set from the plan's base required
// slots, the compiled rule table, and the tracker's current slot values.
// Every filled slot is checked against the table, required and optional
// alike. When one rule adds a slot and another removes it in the same pass,
// removal wins.
func Recompute(base []string, table RuleTable, slots map[string]any) map[string]bool {
	required := make(map[string]bool, len(base))
	for _, s := range base {
		required[s] = true
	}
	if len(table) == 0 {
		return required
	}

	var add, take []string
	for slot, v := range slots {
		value, ok := ruleValue(v)
		if !ok {
			continue
		}
		effect, ok := table[RuleKey{Slot: slot, Value: value}]
		if !ok {
			continue
		}
		add = append(add, effect.Need...)
		take = append(take, effect.Lose...)
	}

	for _, s := range add {
		required[s] = true
	}
	for _, s := range take {
		delete(required, s)
	}
	return required
}
