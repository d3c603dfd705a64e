package plan

import "testing"

func TestRecompute_NoMatchingRulesReturnsBase(t *testing.T) {
	table := CompileRules(map[string]map[string]RuleClauses{
		"transport_mode": {"car": {Need: []string{"license_number"}}},
	})

	got := Recompute([]string{"origin", "destination"}, table, map[string]any{
		"origin":         "delhi",
		"transport_mode": "train",
	})

	if len(got) != 2 || !got["origin"] || !got["destination"] {
		t.Errorf("expected exactly the base required set, got %v", got)
	}
}

func TestRecompute_RuleAddsRequirement(t *testing.T) {
	table := CompileRules(map[string]map[string]RuleClauses{
		"transport_mode": {"car": {Need: []string{"license_number"}}},
	})

	got := Recompute([]string{"origin"}, table, map[string]any{
		"transport_mode": "car",
	})

	if !got["license_number"] {
		t.Errorf("filling transport_mode=car should require license_number, got %v", got)
	}
	if !got["origin"] {
		t.Errorf("base required slot lost: %v", got)
	}
}

func TestRecompute_RemovalWinsOverAddition(t *testing.T) {
	table := CompileRules(map[string]map[string]RuleClauses{
		"transport_mode": {"car": {Need: []string{"license_number"}}},
		"rental":         {"yes": {Lose: []string{"license_number"}}},
	})

	got := Recompute([]string{"origin"}, table, map[string]any{
		"transport_mode": "car",
		"rental":         "yes",
	})

	if got["license_number"] {
		t.Errorf("removal must win when a slot is both added and removed, got %v", got)
	}
}

func TestRecompute_NilAndEmptySlotsNeverTrigger(t *testing.T) {
	table := CompileRules(map[string]map[string]RuleClauses{
		"transport_mode": {"": {Need: []string{"license_number"}}},
	})

	got := Recompute([]string{"origin"}, table, map[string]any{
		"transport_mode": nil,
		"rental":         "",
	})

	if got["license_number"] {
		t.Errorf("nil/empty slot values must not trigger rules, got %v", got)
	}
}

func TestRecompute_OptionalSlotValuesTriggerRules(t *testing.T) {
	// Rules are evaluated over every tracked slot value, not only required
	// ones.
	table := CompileRules(map[string]map[string]RuleClauses{
		"meal": {"vegan": {Need: []string{"allergy_list"}}},
	})

	got := Recompute([]string{"origin"}, table, map[string]any{
		"meal": "vegan",
	})

	if !got["allergy_list"] {
		t.Errorf("optional slot value should trigger its rule, got %v", got)
	}
}
