package governance

import (
	"context"
	"testing"
)

func TestDefaultPolicyEngine_Evaluate(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Test Allow (Default)
	req1 := Request{Slot: "origin", Value: "delhi"}
	res1, err := engine.Evaluate(ctx, req1)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res1.Effect != EffectAllow {
		t.Errorf("Expected EffectAllow, got %s", res1.Effect)
	}

	// Test Deny by slot
	engine.DenySlot("active_plan")
	req2 := Request{Slot: "active_plan", Value: "true"}
	res2, err := engine.Evaluate(ctx, req2)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res2.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny, got %s", res2.Effect)
	}

	// Test Deny by value pattern
	if err := engine.DenyValues(`(?i)drop\s+table`); err != nil {
		t.Fatal(err)
	}
	res3, err := engine.Evaluate(ctx, Request{Slot: "destination", Value: "DROP TABLE slots"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res3.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for restricted value, got %s", res3.Effect)
	}
}

func TestDefaultPolicyEngine_SlotScopedPatterns(t *testing.T) {
	engine := NewDefaultPolicyEngine()
	ctx := context.Background()

	// Phone numbers are not a place name.
	if err := engine.DenyValuesFor("origin", `^[0-9 +-]+$`); err != nil {
		t.Fatal(err)
	}

	res, err := engine.Evaluate(ctx, Request{Slot: "origin", Value: "+91 98765 43210"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectDeny {
		t.Errorf("Expected EffectDeny for the scoped slot, got %s", res.Effect)
	}

	// The same value on another slot passes.
	res, err = engine.Evaluate(ctx, Request{Slot: "contact_number", Value: "+91 98765 43210"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if res.Effect != EffectAllow {
		t.Errorf("Pattern must only apply to its slot, got %s", res.Effect)
	}

	if err := engine.DenyValuesFor("origin", `(`); err == nil {
		t.Error("invalid pattern should be rejected")
	}
}
