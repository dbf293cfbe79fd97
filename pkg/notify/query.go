package notify

// Phase selects which table a Query looks at.
type Phase uint8

const (
	PhaseAny Phase = iota
	PhasePending
	PhaseActive
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	}
	return "any"
}

// Query filters entries held by a Center. Zero fields match everything;
// Targets matches entries sharing at least one bit with it.
type Query struct {
	Targets Target
	Tag     string
	Phase   Phase
}

func (q Query) match(e *Entry, phase Phase) bool {
	if q.Phase != PhaseAny && q.Phase != phase {
		return false
	}
	if q.Tag != "" && q.Tag != e.Tag {
		return false
	}
	if q.Targets != TargetNone && e.Targets()&q.Targets == 0 {
		return false
	}
	return true
}
