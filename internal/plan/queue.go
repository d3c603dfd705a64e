package plan

// queueState makes the engine's two steady states explicit instead of
// relying on queue emptiness as an implicit discriminant.
type queueState int

const (
	stateIdle queueState = iota
	stateDraining
)

// actionQueue is the ordered buffer of pending action names. The engine
// emits exactly one entry per invocation; a refill always replaces the whole
// queue, discarding anything a previous decision left behind.
type actionQueue struct {
	state queueState
	items []string
}

// Replace commits a full batch of pending actions, dropping any unconsumed
// leftovers from an earlier refill.
func (q *actionQueue) Replace(items []string) {
	q.items = append(q.items[:0:0], items...)
	if len(q.items) == 0 {
		q.state = stateIdle
	} else {
		q.state = stateDraining
	}
}

// Pop removes and returns the front entry. The second return is false when
// the queue is empty.
func (q *actionQueue) Pop() (string, bool) {
	if len(q.items) == 0 {
		q.state = stateIdle
		return "", false
	}
	head := q.items[0]
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.state = stateIdle
	}
	return head, true
}

// Draining reports whether entries from the last refill are still pending.
func (q *actionQueue) Draining() bool {
	return q.state == stateDraining
}

// Pending returns a copy of the not-yet-emitted entries, oldest first.
func (q *actionQueue) Pending() []string {
	return append([]string{}, q.items...)
}
