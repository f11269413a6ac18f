// Package watcher keeps change-detected readings of values living in another process.
package watcher

import (
	"fmt"

	"github.com/rythin-sr/LiveSplit.Dishonored/process"
)

// FailPolicy decides what a watcher holds after a failed read.
type FailPolicy int

const (
	// KeepLast leaves Current untouched, the field reports no change.
	KeepLast FailPolicy = iota
	// SetZero forces Current to the zero value of its type.
	SetZero
)

func (p FailPolicy) String() string {
	switch p {
	case KeepLast:
		return "keep-last"
	case SetZero:
		return "set-zero"
	default:
		return fmt.Sprintf("FailPolicy(%d)", int(p))
	}
}

// Pair is the previous and current reading of one value.
type Pair[T comparable] struct {
	Old     T
	Current T
	Changed bool // Current != Old as of the last refresh
	Failed  bool // the last refresh could not read the value
}

// ReadFunc produces the current value of a field.
type ReadFunc[T comparable] func(proc process.Process) (T, error)

// Watcher refreshes one value per poll and remembers the previous reading.
type Watcher[T comparable] struct {
	Pair[T]

	name   string
	path   string
	policy FailPolicy
	read   ReadFunc[T]

	seeded bool
	err    error
}

// New returns a watcher reading through fn. path only describes the source for display.
func New[T comparable](name, path string, policy FailPolicy, fn ReadFunc[T]) *Watcher[T] {
	return &Watcher[T]{name: name, path: path, policy: policy, read: fn}
}

// NewScalar watches a fixed size value at the end of dp.
func NewScalar[T process.Scalar](name string, dp process.DeepPointer, policy FailPolicy) *Watcher[T] {
	return New[T](name, dp.String(), policy, func(proc process.Process) (T, error) {
		return process.ReadDeep[T](proc, dp)
	})
}

// NewString watches a null-terminated string of at most maxLength bytes at the end of dp.
func NewString(name string, dp process.DeepPointer, maxLength process.ProcessMemorySize, policy FailPolicy) *Watcher[string] {
	return New[string](name, fmt.Sprintf("%s [%d]", dp, maxLength), policy, func(proc process.Process) (string, error) {
		return process.ReadDeepNTS(proc, dp, maxLength)
	})
}

// Update reads the value once and reports whether it changed.
// A read failure is never returned, it is recorded and the fail policy applied.
func (w *Watcher[T]) Update(proc process.Process) bool {
	var zero T

	val, err := w.read(proc)
	w.err = err
	w.Failed = err != nil
	w.Changed = false

	if err != nil {
		w.Old = w.Current
		if w.policy == SetZero {
			w.Current = zero
			w.Changed = w.seeded && w.Old != zero
		}
		return w.Changed
	}

	if !w.seeded {
		// the first successful read is the baseline, it is not a change
		w.seeded = true
		w.Old, w.Current = val, val
		return false
	}

	w.Old, w.Current = w.Current, val
	w.Changed = w.Old != w.Current
	return w.Changed
}

// Snapshot returns a copy of the current pair.
func (w *Watcher[T]) Snapshot() Pair[T] {
	return w.Pair
}

func (w *Watcher[T]) Name() string       { return w.name }
func (w *Watcher[T]) Path() string       { return w.path }
func (w *Watcher[T]) Policy() FailPolicy { return w.policy }

// Err is the error of the last refresh, nil when it succeeded.
func (w *Watcher[T]) Err() error { return w.err }

// Value renders the current reading.
func (w *Watcher[T]) Value() string {
	switch v := any(w.Current).(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case float32, float64:
		return fmt.Sprintf("%.3f", v)
	case int32:
		return fmt.Sprintf("%d (0x%x)", v, uint32(v))
	default:
		return fmt.Sprint(v)
	}
}

// Field is the type independent view of a watcher used for listing.
type Field interface {
	Name() string
	Path() string
	Value() string
	Err() error
	Update(proc process.Process) bool
}
