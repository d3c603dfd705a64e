package gateway

import (
	"fmt"
	"strings"
)

// Messenger defines the interface for communication gateways (Telegram, Discord, etc.)
type Messenger interface {
	// Start begins the message listening loop
	Start() error
	// Send sends a message to a specific chat
	Send(chatID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}

// Router fans outbound sends to the gateway owning the chat ID's prefix
// ("tg:", "dc:"). Inbound traffic never goes through here; each gateway
// runs its own listening loop.
type Router struct {
	gateways map[string]Messenger
}

func NewRouter() *Router {
	return &Router{gateways: make(map[string]Messenger)}
}

// Mount registers a gateway for a chat ID prefix, e.g. "tg".
func (r *Router) Mount(prefix string, m Messenger) {
	r.gateways[prefix] = m
}

func (r *Router) Send(chatID string, text string) error {
	prefix, _, ok := strings.Cut(chatID, ":")
	if !ok {
		return fmt.Errorf("gateway: chat ID %q has no gateway prefix", chatID)
	}
	m, ok := r.gateways[prefix]
	if !ok {
		return fmt.Errorf("gateway: no gateway mounted for prefix %q", prefix)
	}
	return m.Send(chatID, text)
}
