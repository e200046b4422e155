// Package history implements a linear undo/redo log.
//
// A State is a value: every operation returns a new State and leaves its
// argument untouched, so callers can keep old states around, compare them,
// or hand them to other goroutines without copying. Appending after an undo
// discards the undone entries, the usual editor convention.
package history

import "fmt"

// NoCursor is the cursor of an empty history.
const NoCursor = -1

// State is an ordered log of entries with one of them selected as current.
// The zero value is an empty history.
type State[T any] struct {
	entries []T
	cursor  int
}

// New returns an empty history.
func New[T any]() State[T] {
	return State[T]{cursor: NoCursor}
}

// Restore rebuilds a state from persisted entries and cursor. It rejects a
// cursor that does not select an entry of a non-empty log, or that is not
// NoCursor for an empty one.
func Restore[T any](entries []T, cursor int) (State[T], error) {
	if len(entries) == 0 {
		if cursor != NoCursor {
			return State[T]{}, fmt.Errorf("history: cursor %d on empty log", cursor)
		}
		return New[T](), nil
	}
	if cursor < 0 || cursor >= len(entries) {
		return State[T]{}, fmt.Errorf("history: cursor %d out of range [0,%d)", cursor, len(entries))
	}
	return State[T]{entries: clone(entries), cursor: cursor}, nil
}

// Append drops every entry after the cursor, pushes e, and selects it.
func Append[T any](s State[T], e T) State[T] {
	kept := s.cursor + 1
	if kept < 0 {
		kept = 0
	}
	if kept > len(s.entries) {
		kept = len(s.entries)
	}
	next := make([]T, kept, kept+1)
	copy(next, s.entries[:kept])
	next = append(next, e)
	return State[T]{entries: next, cursor: len(next) - 1}
}

// Undo moves the cursor one entry back. At the first entry it is a no-op.
func Undo[T any](s State[T]) State[T] {
	if !CanUndo(s) {
		return s
	}
	return State[T]{entries: s.entries, cursor: s.cursor - 1}
}

// Redo moves the cursor one entry forward. At the last entry it is a no-op.
func Redo[T any](s State[T]) State[T] {
	if !CanRedo(s) {
		return s
	}
	return State[T]{entries: s.entries, cursor: s.cursor + 1}
}

// Current returns the selected entry, or false when the log is empty.
func Current[T any](s State[T]) (T, bool) {
	if s.cursor < 0 || s.cursor >= len(s.entries) {
		var zero T
		return zero, false
	}
	return s.entries[s.cursor], true
}

func CanUndo[T any](s State[T]) bool { return s.cursor > 0 }

func CanRedo[T any](s State[T]) bool {
	return s.cursor >= 0 && s.cursor < len(s.entries)-1
}

// Len reports the number of entries.
func Len[T any](s State[T]) int { return len(s.entries) }

// Cursor reports the index of the current entry, or NoCursor.
func (s State[T]) Cursor() int {
	if len(s.entries) == 0 {
		return NoCursor
	}
	return s.cursor
}

// Entries returns a copy of the log in chronological order.
func (s State[T]) Entries() []T { return clone(s.entries) }

func clone[T any](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
