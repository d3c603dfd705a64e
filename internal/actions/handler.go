package actions

import (
	"context"

	"github.com/rahul/samvad/internal/tracker"
)

// Conversation is the state a handler runs against.
type Conversation struct {
	ChatID  string
	Tracker *tracker.Tracker
}

// Handler defines the interface for all executable bot actions. The reply
// string is sent to the user; an empty reply means the action was silent.
type Handler interface {
	Name() string
	Execute(ctx context.Context, conv *Conversation) (string, error)
}

// Registry manages the set of available action handlers.
type Registry struct {
	Handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		Handlers: make(map[string]Handler),
	}
}

func (r *Registry) Register(h Handler) {
	r.Handlers[h.Name()] = h
}

func (r *Registry) Get(name string) Handler {
	return r.Handlers[name]
}
