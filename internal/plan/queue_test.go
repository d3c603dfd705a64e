package plan

import "testing"

func TestActionQueue_FIFOOrder(t *testing.T) {
	var q actionQueue
	q.Replace([]string{"a", "b", "c"})

	for _, want := range []string{"a", "b", "c"} {
		got, ok := q.Pop()
		if !ok {
			t.Fatalf("queue emptied early, wanted %q", want)
		}
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected empty queue after draining")
	}
}

func TestActionQueue_ReplaceDiscardsLeftovers(t *testing.T) {
	var q actionQueue
	q.Replace([]string{"a", "b"})
	if _, ok := q.Pop(); !ok {
		t.Fatal("pop failed")
	}

	q.Replace([]string{"x"})
	got, ok := q.Pop()
	if !ok || got != "x" {
		t.Errorf("refill must discard stale entries, got %q (ok=%v)", got, ok)
	}
	if _, ok := q.Pop(); ok {
		t.Error("stale entry survived the refill")
	}
}

func TestActionQueue_StateTransitions(t *testing.T) {
	var q actionQueue
	if q.Draining() {
		t.Error("fresh queue should be idle")
	}
	q.Replace([]string{"a"})
	if !q.Draining() {
		t.Error("queue with entries should be draining")
	}
	q.Pop()
	if q.Draining() {
		t.Error("queue should return to idle once emptied")
	}
	q.Replace(nil)
	if q.Draining() {
		t.Error("empty refill should leave the queue idle")
	}
}
