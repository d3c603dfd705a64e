package agent

import (
	"context"
	"testing"
	"time"

	"github.com/rahul/samvad/internal/nlu"
)

type captureMessenger struct {
	sent map[string]string
}

func (c *captureMessenger) Send(chatID, text string) error {
	if c.sent == nil {
		c.sent = make(map[string]string)
	}
	c.sent[chatID] = text
	return nil
}

func TestSweeper_AbandonsIdlePlans(t *testing.T) {
	rt := newTestRuntime(t, &scripted{results: []nlu.Result{
		{Intent: "book_trip", Entities: map[string]string{}},
	}})
	if _, err := rt.Respond(context.Background(), "chat-1", "book me a trip"); err != nil {
		t.Fatal(err)
	}

	gw := &captureMessenger{}
	s := NewSweeper(rt, gw, 0)
	s.sweep()

	tr, err := rt.trackerFor("chat-1")
	if err != nil {
		t.Fatal(err)
	}
	if tr.ActivePlan() != nil {
		t.Error("idle plan should have been abandoned")
	}
	if _, ok := gw.sent["chat-1"]; !ok {
		t.Error("user should be told their plan was set aside")
	}
}

func TestSweeper_LeavesFreshPlansAlone(t *testing.T) {
	rt := newTestRuntime(t, &scripted{results: []nlu.Result{
		{Intent: "book_trip", Entities: map[string]string{}},
	}})
	if _, err := rt.Respond(context.Background(), "chat-1", "book me a trip"); err != nil {
		t.Fatal(err)
	}

	gw := &captureMessenger{}
	s := NewSweeper(rt, gw, time.Hour)
	s.sweep()

	tr, err := rt.trackerFor("chat-1")
	if err != nil {
		t.Fatal(err)
	}
	if tr.ActivePlan() == nil {
		t.Error("fresh plan must not be abandoned")
	}
	if len(gw.sent) != 0 {
		t.Errorf("no notifications expected, got %v", gw.sent)
	}
}
