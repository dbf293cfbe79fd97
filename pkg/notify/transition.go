package notify

import "math/bits"

// transition is one pending step of an entry's reconciliation. Values are
// ordered by priority: a lower value is always applied first.
type transition uint8

const (
	requestSend transition = iota
	requestUpdate
	requestCancel
	sendFinished
	sendIgnored
	updateFinished
	cancelFinished

	numTransitions
)

var transitionNames = [numTransitions]string{
	requestSend:    "request_send",
	requestUpdate:  "request_update",
	requestCancel:  "request_cancel",
	sendFinished:   "send_finished",
	sendIgnored:    "send_ignored",
	updateFinished: "update_finished",
	cancelFinished: "cancel_finished",
}

func (t transition) String() string {
	if t < numTransitions {
		return transitionNames[t]
	}
	return "unknown"
}

// transitionSet is a priority queue of distinct transitions backed by a
// bitset. Pushing a transition already queued is a no-op.
type transitionSet uint8

func (s *transitionSet) push(t transition) {
	*s |= 1 << t
}

// pop removes and returns the highest-priority queued transition.
func (s *transitionSet) pop() (transition, bool) {
	if *s == 0 {
		return 0, false
	}
	t := transition(bits.TrailingZeros8(uint8(*s)))
	*s &^= 1 << t
	return t, true
}

func (s transitionSet) has(t transition) bool {
	return s&(1<<t) != 0
}

func (s *transitionSet) remove(t transition) {
	*s &^= 1 << t
}

func (s transitionSet) Len() int {
	return bits.OnesCount8(uint8(s))
}
