package agent

import (
	"context"
	"log"
	"time"
)

// Messenger is the slice of the gateway the sweeper needs to notify users.
type Messenger interface {
	Send(chatID string, text string) error
}

// Sweeper periodically abandons plans in conversations that have gone
// quiet, so half-finished bookings don't linger forever. The host owns the
// timeout; the plan engine itself has no notion of time.
type Sweeper struct {
	Runtime   *Runtime
	Gateway   Messenger
	IdleAfter time.Duration
	Interval  time.Duration
}

func NewSweeper(rt *Runtime, gateway Messenger, idleAfter time.Duration) *Sweeper {
	return &Sweeper{
		Runtime:   rt,
		Gateway:   gateway,
		IdleAfter: idleAfter,
		Interval:  time.Minute,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Println("Idle-session sweeper started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	chats, err := s.Runtime.Store.IdleSessions(s.IdleAfter)
	if err != nil {
		log.Printf("Error polling idle sessions: %v", err)
		return
	}

	for _, chatID := range chats {
		abandoned, err := s.Runtime.AbandonPlan(chatID)
		if err != nil {
			log.Printf("Error abandoning plan for chat %s: %v", chatID, err)
			continue
		}
		if !abandoned {
			// Session row was stale; clear it so it stops showing up.
			if err := s.Runtime.Store.TouchSession(chatID, ""); err != nil {
				log.Printf("Error clearing session %s: %v", chatID, err)
			}
			continue
		}

		log.Printf("Abandoned idle plan for chat %s", chatID)
		if s.Gateway != nil {
			s.Gateway.Send(chatID, "I've set your unfinished request aside. Message me again whenever you want to pick it back up.")
		}
	}
}
