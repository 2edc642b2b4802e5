package pipeline

import "fmt"

// State is the runtime state of one job.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateSkipped   State = "skipped"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateSkipped:
		return true
	}
	return false
}

// RunState maps job IDs to their current state. It is a plain map so the
// scheduling functions stay pure; the executor owns the locking.
type RunState map[string]State

// NewRunState returns a state map with every plan job pending.
func NewRunState(p *Plan) RunState {
	state := make(RunState, p.Len())
	for _, job := range p.Jobs() {
		state[job.ID] = StatePending
	}
	return state
}

// Terminal reports whether every job has reached a final state.
func (s RunState) Terminal() bool {
	for _, st := range s {
		if !st.Terminal() {
			return false
		}
	}
	return true
}

// Clone returns a copy of the state map.
func (s RunState) Clone() RunState {
	cp := make(RunState, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// Transition performs a validated state change. The caller supplies the
// expected prior state so races surface as errors instead of silent
// overwrites.
func Transition(state RunState, id string, from, to State) error {
	cur, ok := state[id]
	if !ok {
		return fmt.Errorf("unknown job %q", id)
	}
	if cur != from {
		return fmt.Errorf("invalid transition for %q: expected %s, found %s", id, from, cur)
	}
	if !allowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", id, from, to)
	}
	state[id] = to
	return nil
}

func allowedTransition(from, to State) bool {
	switch from {
	case StatePending:
		return to == StateRunning || to == StateSkipped
	case StateRunning:
		return to == StateSucceeded || to == StateFailed
	}
	return false
}

// Ready returns the pending jobs whose needs have all succeeded, in plan
// order.
func Ready(p *Plan, state RunState) []string {
	var ready []string
	for _, job := range p.Jobs() {
		if state[job.ID] != StatePending {
			continue
		}
		ok := true
		for _, need := range job.Needs {
			if state[need] != StateSucceeded {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, job.ID)
		}
	}
	return ready
}

// FailAndPropagate marks a running job failed and transitively skips every
// pending job downstream of it. Jobs that do not depend on the failed one
// are left alone, so sibling platform builds keep running.
func FailAndPropagate(p *Plan, state RunState, id string) error {
	cur, ok := state[id]
	if !ok {
		return fmt.Errorf("unknown job %q", id)
	}
	if cur != StateRunning && cur != StateFailed {
		return fmt.Errorf("cannot fail %q from state %s", id, cur)
	}
	if cur == StateRunning {
		state[id] = StateFailed
	}

	seen := map[string]bool{id: true}
	queue := append([]string(nil), p.dependents[id]...)

	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true

		switch state[next] {
		case StatePending:
			state[next] = StateSkipped
		case StateRunning:
			// A dependent can only be running if it was dispatched before
			// its need finished, which the scheduler never does.
			return fmt.Errorf("job %q is running while its dependency %q failed", next, id)
		}

		queue = append(queue, p.dependents[next]...)
	}

	return nil
}
