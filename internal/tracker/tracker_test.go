package tracker

import (
	"errors"
	"testing"

	"github.com/rahul/samvad/internal/plan"
)

func tripDef() *plan.Definition {
	return &plan.Definition{
		Name:  "book_trip",
		Slots: map[string]plan.SlotSpec{"origin": {AskAction: "utter_ask_origin"}},
	}
}

func TestApply_StartAndEndPlan(t *testing.T) {
	tr := New("chat-1")

	if err := tr.Apply(plan.StartPlan{Def: tripDef()}, plan.SlotSet{Slot: plan.SlotActivePlan, Value: true}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if tr.ActivePlan() == nil {
		t.Fatal("expected an active plan instance")
	}
	if tr.Slot(plan.SlotActivePlan) != true {
		t.Error("active_plan slot not set")
	}

	if err := tr.Apply(plan.EndPlan{}, plan.SlotSet{Slot: plan.SlotActivePlan, Value: false}); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if tr.ActivePlan() != nil {
		t.Error("plan instance should be detached")
	}
}

func TestApply_RejectsSecondActivation(t *testing.T) {
	tr := New("chat-1")
	if err := tr.Apply(plan.StartPlan{Def: tripDef()}); err != nil {
		t.Fatalf("first activation failed: %v", err)
	}

	err := tr.Apply(plan.StartPlan{Def: tripDef()})
	if !errors.Is(err, ErrPlanActive) {
		t.Errorf("expected ErrPlanActive, got %v", err)
	}
	if tr.ActivePlan() == nil {
		t.Error("in-flight instance must survive a rejected activation")
	}
}

func TestView_CopiesSlots(t *testing.T) {
	tr := New("chat-1")
	tr.SetSlot("origin", "delhi")

	view := tr.View()
	view.Slots["origin"] = "mumbai"

	if tr.Slot("origin") != "delhi" {
		t.Error("view must not alias live tracker state")
	}
}

func TestTrackersAreIndependent(t *testing.T) {
	a := New("chat-a")
	b := New("chat-b")
	if err := a.Apply(plan.StartPlan{Def: tripDef()}); err != nil {
		t.Fatal(err)
	}
	a.SetSlot("origin", "delhi")

	if b.ActivePlan() != nil || b.Slot("origin") != nil {
		t.Error("trackers must never share plan instances or slots")
	}
}
