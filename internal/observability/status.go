package observability

import (
	"sync"
	"time"
)

type SystemStatus struct {
	mu            sync.RWMutex
	Conversations int
	ActivePlans   int
	TurnsHandled  int
	LastTurn      time.Time
	LastHeartbeat time.Time
}

var globalStatus = &SystemStatus{
	LastHeartbeat: time.Now(),
}

// SetStatus updates the conversation/plan gauges on the global status.
func SetStatus(conversations, activePlans int) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.Conversations = conversations
	globalStatus.ActivePlans = activePlans
}

// CountTurn records one handled conversational turn.
func CountTurn() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.TurnsHandled++
	globalStatus.LastTurn = time.Now()
}

// GetStatus retrieves a copy of the global system status.
func GetStatus() (conversations, activePlans, turns int, lastTurn, lastHB time.Time) {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.Conversations, globalStatus.ActivePlans,
		globalStatus.TurnsHandled, globalStatus.LastTurn, globalStatus.LastHeartbeat
}

// Heartbeat updates the last heartbeat time.
func Heartbeat() {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()
	globalStatus.LastHeartbeat = time.Now()
}
