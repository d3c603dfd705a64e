package actions

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/rahul/samvad/internal/plan"
)

// Utterance sends a templated message. Templates can interpolate slot
// values, e.g. "Booking your trip from {{.origin}} to {{.destination}}."
type Utterance struct {
	name string
	tmpl *template.Template
}

func NewUtterance(name, text string) (*Utterance, error) {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("actions: template for %s: %w", name, err)
	}
	return &Utterance{name: name, tmpl: tmpl}, nil
}

func (u *Utterance) Name() string {
	return u.name
}

func (u *Utterance) Execute(ctx context.Context, conv *Conversation) (string, error) {
	var out strings.Builder
	if err := u.tmpl.Execute(&out, conv.Tracker.Slots()); err != nil {
		return "", fmt.Errorf("actions: render %s: %w", u.name, err)
	}
	return strings.ReplaceAll(out.String(), "<no value>", ""), nil
}

// Listen hands the turn back to the user. The runtime stops executing the
// queue when it sees this action.
type Listen struct{}

func (Listen) Name() string { return plan.ActionListen }

func (Listen) Execute(ctx context.Context, conv *Conversation) (string, error) {
	return "", nil
}

// Deactivate ends the active plan, optionally uttering a closing message
// first. It backs both finish actions ("all done, confirming") and exit
// actions ("okay, cancelling"): either way the plan detaches and the
// tracker records whether it completed or was abandoned.
type Deactivate struct {
	utterance *Utterance
}

func NewDeactivate(name, text string) (*Deactivate, error) {
	u, err := NewUtterance(name, text)
	if err != nil {
		return nil, err
	}
	return &Deactivate{utterance: u}, nil
}

func (d *Deactivate) Name() string {
	return d.utterance.Name()
}

func (d *Deactivate) Execute(ctx context.Context, conv *Conversation) (string, error) {
	reply, err := d.utterance.Execute(ctx, conv)
	if err != nil {
		return "", err
	}
	events := plan.Complete(conv.Tracker.ActivePlan(), conv.Tracker.Slots())
	if err := conv.Tracker.Apply(events...); err != nil {
		return "", fmt.Errorf("actions: deactivate %s: %w", d.Name(), err)
	}
	return reply, nil
}
