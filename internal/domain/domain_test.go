package domain

import (
	"errors"
	"testing"

	"github.com/rahul/samvad/internal/plan"
)

func TestRegistry_ActionRoundTrip(t *testing.T) {
	r := NewRegistry()

	idx := r.RegisterAction("utter_ask_origin")
	if again := r.RegisterAction("utter_ask_origin"); again != idx {
		t.Errorf("re-registration must return the same index, got %d and %d", idx, again)
	}

	got, err := r.IndexForAction("utter_ask_origin")
	if err != nil || got != idx {
		t.Errorf("IndexForAction = %d, %v; want %d", got, err, idx)
	}

	name, err := r.ActionName(idx)
	if err != nil || name != "utter_ask_origin" {
		t.Errorf("ActionName = %q, %v", name, err)
	}
}

func TestRegistry_UnknownActionFails(t *testing.T) {
	r := NewRegistry()
	_, err := r.IndexForAction("utter_bogus")
	if !errors.Is(err, ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}
}

func TestRegistry_ListenAlwaysRegistered(t *testing.T) {
	r := NewRegistry()
	if _, err := r.IndexForAction(plan.ActionListen); err != nil {
		t.Errorf("action_listen should be registered by default: %v", err)
	}
}

func TestRegistry_RegisterPlanRegistersAllActions(t *testing.T) {
	r := NewRegistry()
	r.RegisterPlan(&plan.Definition{
		Name: "book_trip",
		Slots: map[string]plan.SlotSpec{
			"origin": {
				AskAction:      "utter_ask_origin",
				FollowUpAction: "action_check_origin",
				ClarifyAction:  "utter_explain_origin",
			},
		},
		OptionalSlots: map[string]plan.SlotSpec{
			"license_number": {AskAction: "utter_ask_license_number"},
		},
		FinishAction: "action_confirm_trip",
		ExitMap:      map[string]string{"cancel": "action_cancel_trip"},
		ChitchatMap:  map[string]string{"weather": "utter_chitchat_weather"},
	})

	for _, action := range []string{
		"utter_ask_origin", "action_check_origin", "utter_explain_origin",
		"utter_ask_license_number", "action_confirm_trip",
		"action_cancel_trip", "utter_chitchat_weather",
	} {
		if _, err := r.IndexForAction(action); err != nil {
			t.Errorf("action %q not registered: %v", action, err)
		}
	}

	if _, ok := r.LookupPlan("book_trip"); !ok {
		t.Error("plan not registered")
	}
	if _, ok := r.LookupPlan("missing"); ok {
		t.Error("unknown plan lookup should fail")
	}
}
