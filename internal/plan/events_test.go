package plan

import "testing"

func TestActivate_KnownPlan(t *testing.T) {
	dom := flightDomain()
	dom.plans["book_flight"] = flightPlan()

	events := Activate(dom, "book_flight")
	if len(events) != 2 {
		t.Fatalf("expected [StartPlan, SlotSet], got %d events", len(events))
	}
	start, ok := events[0].(StartPlan)
	if !ok || start.Def.Name != "book_flight" {
		t.Errorf("expected StartPlan for book_flight, got %#v", events[0])
	}
	set, ok := events[1].(SlotSet)
	if !ok || set.Slot != SlotActivePlan || set.Value != true {
		t.Errorf("expected active_plan=true, got %#v", events[1])
	}
}

func TestActivate_UnknownPlanDegradesToInert(t *testing.T) {
	events := Activate(flightDomain(), "no_such_plan")
	start, ok := events[0].(StartPlan)
	if !ok || start.Def == nil {
		t.Fatalf("unknown plan should degrade to the inert plan, got %#v", events[0])
	}
	if len(start.Def.Slots) != 0 {
		t.Errorf("inert plan should have no slots, got %v", start.Def.Slots)
	}
}

func TestComplete_ReportsCompletion(t *testing.T) {
	in := NewInstance(flightPlan())

	events := Complete(in, map[string]any{"origin": "delhi"})
	if _, ok := events[0].(EndPlan); !ok {
		t.Errorf("expected EndPlan first, got %#v", events[0])
	}
	found := false
	for _, e := range events {
		if set, ok := e.(SlotSet); ok && set.Slot == SlotPlanComplete {
			found = true
			if set.Value != false {
				t.Error("partially filled plan should report incomplete")
			}
		}
	}
	if !found {
		t.Error("expected a plan_complete slot set")
	}

	events = Complete(in, map[string]any{"origin": "delhi", "destination": "goa"})
	for _, e := range events {
		if set, ok := e.(SlotSet); ok && set.Slot == SlotPlanComplete && set.Value != true {
			t.Error("fully filled plan should report complete")
		}
	}
}
