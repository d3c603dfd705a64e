package agent

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"

	"github.com/rahul/samvad/internal/actions"
	"github.com/rahul/samvad/internal/domain"
	"github.com/rahul/samvad/internal/governance"
	"github.com/rahul/samvad/internal/nlu"
	"github.com/rahul/samvad/internal/observability"
	"github.com/rahul/samvad/internal/plan"
	"github.com/rahul/samvad/internal/store"
	"github.com/rahul/samvad/internal/tracker"
)

// Responder is the core conversation interface the gateways talk to.
type Responder interface {
	Respond(ctx context.Context, chatID string, input string) (string, error)
}

// maxQueueSteps bounds how many actions one turn may execute. A well-formed
// queue drains within a handful of steps; hitting the bound means a handler
// kept the plan looping.
const maxQueueSteps = 10

// Runtime drives one conversational turn end to end: sanitize the message,
// classify it, guard and commit extracted slots, then let the active plan
// decide and execute actions until it hands the turn back with a listen.
type Runtime struct {
	Store      *store.Store
	Classifier nlu.Classifier
	Domain     *domain.Registry
	Actions    *actions.Registry
	Guard      governance.PolicyEngine
	Logger     *observability.Logger

	// Activations maps an intent to the plan it starts.
	Activations map[string]string

	// PlanOpts are passed to every plan instance, e.g. a seeded selector.
	PlanOpts []plan.Option

	intents []string
	slots   []string

	mu       sync.Mutex
	trackers map[string]*tracker.Tracker
	locks    map[string]*sync.Mutex
	active   map[string]bool
}

func NewRuntime(st *store.Store, classifier nlu.Classifier, dom *domain.Registry,
	handlers *actions.Registry, guard governance.PolicyEngine, logger *observability.Logger,
	activations map[string]string) *Runtime {

	r := &Runtime{
		Store:       st,
		Classifier:  classifier,
		Domain:      dom,
		Actions:     handlers,
		Guard:       guard,
		Logger:      logger,
		Activations: activations,
		trackers:    make(map[string]*tracker.Tracker),
		locks:       make(map[string]*sync.Mutex),
		active:      make(map[string]bool),
	}
	r.intents, r.slots = candidateVocabulary(dom, activations)
	return r
}

// candidateVocabulary collects the intents and slot names the classifier may
// choose from, across every registered plan. Computed once; the registry is
// read-only after startup.
func candidateVocabulary(dom *domain.Registry, activations map[string]string) ([]string, []string) {
	intentSet := map[string]bool{"inform": true}
	slotSet := map[string]bool{}
	for intent := range activations {
		intentSet[intent] = true
	}
	for _, name := range dom.PlanNames() {
		def, _ := dom.LookupPlan(name)
		for intent := range def.ExitMap {
			intentSet[intent] = true
		}
		for intent := range def.ChitchatMap {
			intentSet[intent] = true
		}
		for _, intent := range def.ClarificationIntents {
			intentSet[intent] = true
		}
		for slot := range def.Slots {
			slotSet[slot] = true
		}
		for slot := range def.OptionalSlots {
			slotSet[slot] = true
		}
	}

	intents := make([]string, 0, len(intentSet))
	for i := range intentSet {
		intents = append(intents, i)
	}
	slots := make([]string, 0, len(slotSet))
	for s := range slotSet {
		slots = append(slots, s)
	}
	sort.Strings(intents)
	sort.Strings(slots)
	return intents, slots
}

// chatLock returns the mutex serializing work on one conversation. Gateways
// may deliver messages for the same chat on different goroutines, and the
// sweeper runs on its own; the tracker itself is lock-free, so every path
// that touches it must hold this.
func (r *Runtime) chatLock(chatID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	mu, ok := r.locks[chatID]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[chatID] = mu
	}
	return mu
}

// noteActive records whether the conversation has an active plan, for the
// dashboard gauges. Reading trackers directly there would race with other
// conversations' in-flight turns.
func (r *Runtime) noteActive(chatID string, active bool) {
	r.mu.Lock()
	r.active[chatID] = active
	r.mu.Unlock()
}

// trackerFor returns the conversation's tracker, creating it and loading
// persisted slots on first contact.
func (r *Runtime) trackerFor(chatID string) (*tracker.Tracker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if tr, ok := r.trackers[chatID]; ok {
		return tr, nil
	}
	tr := tracker.New(chatID, r.PlanOpts...)
	slots, err := r.Store.LoadSlots(chatID)
	if err != nil {
		return nil, fmt.Errorf("agent: load slots for %s: %w", chatID, err)
	}
	for slot, value := range slots {
		tr.SetSlot(slot, value)
	}
	r.trackers[chatID] = tr
	return tr, nil
}

// Respond handles one user message and returns the bot's reply. Turns for
// the same conversation are serialized; turns for different conversations
// run concurrently.
func (r *Runtime) Respond(ctx context.Context, chatID string, input string) (string, error) {
	mu := r.chatLock(chatID)
	mu.Lock()
	defer mu.Unlock()

	text := nlu.Sanitize(input)
	tr, err := r.trackerFor(chatID)
	if err != nil {
		return "", err
	}
	tr.RecordText(text)

	res, err := r.Classifier.Classify(ctx, text, r.intents, r.slots)
	if err != nil {
		return "", err
	}
	tr.RecordIntent(res.Intent)
	r.Logger.LogIntent(chatID, text, res.Intent)

	r.commitEntities(ctx, tr, res.Entities)

	if tr.ActivePlan() == nil {
		if reply, started := r.maybeActivate(tr, res.Intent); !started {
			r.logUserTurn(chatID, text, res.Intent)
			return reply, nil
		}
	}

	reply, err := r.runQueue(ctx, tr)
	if err != nil {
		return "", err
	}

	activeName := ""
	if inst := tr.ActivePlan(); inst != nil {
		activeName = inst.Definition().Name
	}
	r.noteActive(chatID, activeName != "")
	if err := r.Store.TouchSession(chatID, activeName); err != nil {
		log.Printf("Warning: failed to touch session %s: %v", chatID, err)
	}
	r.persistLifecycleSlots(tr)
	r.logUserTurn(chatID, text, res.Intent)
	if err := r.Store.LogTurn(chatID, "bot", reply, "", tr.LatestAction()); err != nil {
		log.Printf("Warning: failed to log bot turn for %s: %v", chatID, err)
	}
	observability.CountTurn()
	observability.SetStatus(r.gauges())
	return reply, nil
}

// gauges counts live conversations and active plans for the dashboard.
func (r *Runtime) gauges() (conversations, activePlans int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, active := range r.active {
		if active {
			activePlans++
		}
	}
	return len(r.trackers), activePlans
}

// commitEntities runs each extracted slot value past the guardrails and
// writes the survivors to the tracker and the store.
func (r *Runtime) commitEntities(ctx context.Context, tr *tracker.Tracker, entities map[string]string) {
	for slot, value := range entities {
		verdict, err := r.Guard.Evaluate(ctx, governance.Request{Slot: slot, Value: value, ChatID: tr.ChatID})
		if err != nil {
			log.Printf("Warning: guardrail evaluation failed for %s: %v", slot, err)
			continue
		}
		if verdict.Effect == governance.EffectDeny {
			r.Logger.LogGuardrail(tr.ChatID, slot, verdict.Reason)
			continue
		}
		tr.SetSlot(slot, value)
		if err := r.Store.SaveSlot(tr.ChatID, slot, value); err != nil {
			log.Printf("Warning: failed to persist slot %s: %v", slot, err)
		}
	}
}

// maybeActivate starts the plan mapped to the intent. When the intent maps
// to nothing, the returned reply tells the user what the bot can do.
func (r *Runtime) maybeActivate(tr *tracker.Tracker, intent string) (string, bool) {
	planName, ok := r.Activations[strings.TrimPrefix(intent, plan.IntentPrefix)]
	if !ok {
		return r.helpReply(), false
	}
	if err := tr.Apply(plan.Activate(r.Domain, planName)...); err != nil {
		// Apply only fails on a concurrent activation, which the nil
		// ActivePlan check above already excluded.
		log.Printf("Warning: activation of %s failed: %v", planName, err)
		return r.helpReply(), false
	}
	r.Logger.LogPlan(tr.ChatID, planName, "activated")
	return "", true
}

func (r *Runtime) helpReply() string {
	names := r.Domain.PlanNames()
	sort.Strings(names)
	var subjects []string
	for _, name := range names {
		def, _ := r.Domain.LookupPlan(name)
		if def.Subject != "" {
			subjects = append(subjects, def.Subject)
		} else {
			subjects = append(subjects, name)
		}
	}
	return "I can help with: " + strings.Join(subjects, ", ") + ". What would you like to do?"
}

// runQueue asks the plan engine for actions and executes them until the
// plan hands the turn back (listen) or deactivates itself.
func (r *Runtime) runQueue(ctx context.Context, tr *tracker.Tracker) (string, error) {
	var replies []string
	for i := 0; i < maxQueueSteps; i++ {
		inst := tr.ActivePlan()
		if inst == nil {
			break
		}

		idx, err := inst.NextActionIndex(tr.View(), r.Domain)
		if err != nil {
			return "", fmt.Errorf("agent: decide next action: %w", err)
		}
		name, err := r.Domain.ActionName(idx)
		if err != nil {
			return "", err
		}

		handler := r.Actions.Get(name)
		if handler == nil {
			return "", fmt.Errorf("agent: no handler registered for action %q", name)
		}
		reply, err := handler.Execute(ctx, &actions.Conversation{ChatID: tr.ChatID, Tracker: tr})
		if err != nil {
			return "", fmt.Errorf("agent: action %s: %w", name, err)
		}
		tr.RecordAction(name)
		r.Logger.LogAction(tr.ChatID, name, reply)

		if reply != "" {
			replies = append(replies, reply)
		}
		if name == plan.ActionListen {
			break
		}
	}
	return strings.Join(replies, "\n"), nil
}

// persistLifecycleSlots writes the plan lifecycle flags set by lifecycle
// events, which bypass commitEntities.
func (r *Runtime) persistLifecycleSlots(tr *tracker.Tracker) {
	for _, slot := range []string{plan.SlotActivePlan, plan.SlotPlanComplete} {
		if v := tr.Slot(slot); v != nil {
			if err := r.Store.SaveSlot(tr.ChatID, slot, v); err != nil {
				log.Printf("Warning: failed to persist slot %s: %v", slot, err)
			}
		}
	}
}

func (r *Runtime) logUserTurn(chatID, text, intent string) {
	if err := r.Store.LogTurn(chatID, "user", text, intent, ""); err != nil {
		log.Printf("Warning: failed to log user turn for %s: %v", chatID, err)
	}
}

// AbandonPlan force-ends the active plan of an idle conversation. Returns
// false when the conversation had no active plan.
func (r *Runtime) AbandonPlan(chatID string) (bool, error) {
	mu := r.chatLock(chatID)
	mu.Lock()
	defer mu.Unlock()

	tr, err := r.trackerFor(chatID)
	if err != nil {
		return false, err
	}
	inst := tr.ActivePlan()
	if inst == nil {
		return false, nil
	}
	if err := tr.Apply(plan.Complete(inst, tr.Slots())...); err != nil {
		return false, err
	}
	r.persistLifecycleSlots(tr)
	r.noteActive(chatID, false)
	if err := r.Store.TouchSession(chatID, ""); err != nil {
		return false, err
	}
	r.Logger.LogPlan(chatID, inst.Definition().Name, "abandoned")
	return true, nil
}
