package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahul/samvad/internal/actions"
	"github.com/rahul/samvad/internal/agent"
	"github.com/rahul/samvad/internal/domain"
	"github.com/rahul/samvad/internal/gateway"
	"github.com/rahul/samvad/internal/governance"
	"github.com/rahul/samvad/internal/nlu"
	"github.com/rahul/samvad/internal/observability"
	"github.com/rahul/samvad/internal/plan"
	"github.com/rahul/samvad/internal/store"
	"github.com/rahul/samvad/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	observability.PrintBanner()
	observability.InitializeTerminal()

	// Route all log output through the terminal mutex so it never
	// interrupts the dashboard's cursor save/restore sequence.
	log.SetOutput(observability.NewTermWriter())

	cfg := config.LoadConfig("config.json")

	// Load plan definitions
	defs, templates, err := plan.LoadDir(cfg.Plans.Dir)
	if err != nil {
		log.Fatal(err)
	}

	registry := domain.NewRegistry()
	activations := make(map[string]string)
	for _, def := range defs {
		registry.RegisterPlan(def)
		activations[def.Name] = def.Name
	}

	handlers, err := buildHandlers(cfg, defs, templates)
	if err != nil {
		log.Fatal(err)
	}

	// Every action a plan can queue needs a handler before we go live.
	for _, name := range registry.ActionNames() {
		if handlers.Get(name) == nil {
			log.Fatalf("Action %q has no template, answer page, or builtin handler", name)
		}
	}

	st, err := store.New(cfg.Memory.Path)
	if err != nil {
		log.Fatal(err)
	}

	guard := governance.NewDefaultPolicyEngine()
	// Lifecycle flags are set by plan events, never from user input.
	guard.DenySlot(plan.SlotActivePlan)
	guard.DenySlot(plan.SlotPlanComplete)
	_ = guard.DenyValues(`[\x00-\x08\x0b\x0c\x0e-\x1f]`)
	// Per-slot guardrails declared in the plan files; patterns were already
	// compile-checked by Validate at load.
	for _, def := range defs {
		for slot, patterns := range def.Guardrails {
			for _, pattern := range patterns {
				if err := guard.DenyValuesFor(slot, pattern); err != nil {
					log.Fatal(err)
				}
			}
		}
	}

	logger := observability.NewLogger()

	// Initialize LLM (using default enabled provider)
	pName, pCfg := cfg.GetDefaultProvider()
	if pName == "" {
		log.Fatal("No enabled provider found in config")
	}

	var llm llms.Model
	switch pName {
	case "openai", "openrouter":
		opts := []openai.Option{
			openai.WithToken(pCfg.APIKey),
			openai.WithModel(pCfg.Model),
		}
		if pCfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pCfg.BaseURL))
		}
		llm, err = openai.New(opts...)
	default:
		log.Fatalf("Provider %s not yet implemented in main", pName)
	}
	if err != nil {
		log.Fatal(err)
	}

	runtime := agent.NewRuntime(st, nlu.NewLLMClassifier(llm), registry, handlers, guard, logger, activations)
	if cfg.Plans.Selection == "ordered" {
		log.Println("Using declaration-order slot selection")
		// One shared order across plans is fine: candidates are always a
		// subset of one plan's slots.
		var order []string
		for _, def := range defs {
			order = append(order, def.BaseRequired()...)
		}
		runtime.PlanOpts = []plan.Option{plan.WithSelector(&plan.OrderedSelector{Order: order})}
	}

	router := gateway.NewRouter()
	var gateways []gateway.Messenger

	if tgCfg, ok := cfg.GetGateway("telegram"); ok {
		tg, err := gateway.NewTelegramGateway(tgCfg.Token, runtime)
		if err != nil {
			log.Fatal(err)
		}
		router.Mount("tg", tg)
		gateways = append(gateways, tg)
	}
	if dcCfg, ok := cfg.GetGateway("discord"); ok {
		dc, err := gateway.NewDiscordGateway(dcCfg.Token, runtime)
		if err != nil {
			log.Fatal(err)
		}
		router.Mount("dc", dc)
		gateways = append(gateways, dc)
	}
	if len(gateways) == 0 {
		log.Fatal("No gateway is enabled in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := agent.NewSweeper(runtime, router, time.Duration(cfg.Session.IdleTimeoutSeconds)*time.Second)
	go sweeper.Start(ctx)

	// Start Live Resource Dashboard (1-second updates)
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.PrintLiveStatus()
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				observability.Heartbeat()
			}
		}
	}()

	for _, gw := range gateways {
		gw := gw
		go func() {
			if err := gw.Start(); err != nil {
				log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
				stop() // stop everything if a gateway dies
			}
		}()
	}

	// Wait for shutdown signal
	<-ctx.Done()

	for _, gw := range gateways {
		_ = gw.Stop()
	}
	_ = st.Close()

	// Reset terminal aesthetics
	observability.CleanupTerminal()

	// Give a short time for final logs/syncs
	time.Sleep(500 * time.Millisecond)
	log.Println("\033[95m[ EXIT ] SAMVAD DE-INITIALIZED. GOODBYE.\033[0m")
}

// buildHandlers wires an action handler for everything the loaded plans can
// queue: the listen builtin, deactivating handlers for finish and exit
// actions, web-answer handlers for configured answer pages, the search
// builtin, and plain utterances for everything else with a template.
func buildHandlers(cfg *config.Config, defs []*plan.Definition, templates map[string]string) (*actions.Registry, error) {
	handlers := actions.NewRegistry()
	handlers.Register(actions.Listen{})

	search, err := actions.NewSearch("action_search_web")
	if err != nil {
		log.Printf("Warning: search handler unavailable: %v", err)
	} else {
		handlers.Register(search)
	}

	for name, url := range cfg.Plans.Answers {
		handlers.Register(actions.NewWebAnswer(name, url))
	}

	// Finish and exit actions end the plan; their templates become the
	// closing message.
	for _, def := range defs {
		closing := map[string]string{}
		if def.FinishAction != "" {
			closing[def.FinishAction] = "All done!"
		}
		for _, action := range def.ExitMap {
			closing[action] = "Okay, I've dropped that."
		}
		for action, fallback := range closing {
			text := fallback
			if t, ok := templates[action]; ok {
				text = t
			}
			h, err := actions.NewDeactivate(action, text)
			if err != nil {
				return nil, err
			}
			handlers.Register(h)
		}
	}

	for action, text := range templates {
		if handlers.Get(action) != nil {
			continue
		}
		h, err := actions.NewUtterance(action, text)
		if err != nil {
			return nil, err
		}
		handlers.Register(h)
	}
	return handlers, nil
}
