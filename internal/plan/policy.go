package plan

import "math/rand"

// Selector picks which unfilled required slot to ask about next. Candidates
// are always passed in sorted order so a seeded selector is reproducible.
type Selector interface {
	Choose(candidates []string) string
}

// RandomSelector picks uniformly among the candidates, matching the engine's
// default behavior. Seed it in tests for reproducible runs.
type RandomSelector struct {
	rng *rand.Rand
}

func NewRandomSelector(seed int64) *RandomSelector {
	return &RandomSelector{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomSelector) Choose(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[s.rng.Intn(len(candidates))]
}

// OrderedSelector asks slots in their declaration order. Deterministic
// alternative to RandomSelector for hosts that want stable transcripts.
type OrderedSelector struct {
	Order []string
}

func (s *OrderedSelector) Choose(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	in := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		in[c] = true
	}
	for _, slot := range s.Order {
		if in[slot] {
			return slot
		}
	}
	return candidates[0]
}
