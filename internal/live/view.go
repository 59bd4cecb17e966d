package live

import "sync"

// State is what a subscriber renders.
type State[T any] struct {
	Items   []T    `json:"items"`
	Error   string `json:"error,omitempty"`
	Version int64  `json:"version"`
}

// View holds the local copy of a collection. Every snapshot replaces the
// list, errors leave it untouched.
type View[T any] struct {
	mu    sync.RWMutex
	order Order[T]
	state State[T]
	sink  func(State[T])
}

// NewView creates an empty view. sink may be nil.
func NewView[T any](order Order[T], sink func(State[T])) *View[T] {
	return &View[T]{
		order: order,
		state: State[T]{Items: []T{}},
		sink:  sink,
	}
}

// Apply replaces the list with the snapshot's documents and clears the error.
func (v *View[T]) Apply(s Snapshot[T]) {
	sorted := Sorted(s.Items, v.order)

	v.mu.Lock()
	v.state = State[T]{Items: sorted, Version: s.Version}
	st := v.state
	v.mu.Unlock()

	v.notify(st)
}

// Fail publishes an error message and keeps the current list.
func (v *View[T]) Fail(msg string) {
	v.mu.Lock()
	v.state.Error = msg
	st := v.state
	v.mu.Unlock()

	v.notify(st)
}

// State returns the current state.
func (v *View[T]) State() State[T] {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.state
}

func (v *View[T]) notify(st State[T]) {
	if v.sink != nil {
		v.sink(st)
	}
}
