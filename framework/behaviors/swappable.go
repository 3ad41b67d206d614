package behaviors

import "go.uber.org/atomic"

// Swappable is the mutable cell behind a hot-swap proxy.
type Swappable struct {
	delegate atomic.Value
}

// holder lets the cell store nil and values of differing concrete types.
type holder struct{ v any }

// Instance returns the current delegate, or nil.
func (s *Swappable) Instance() any {
	h, _ := s.delegate.Load().(holder)
	return h.v
}

// Swap installs delegate and returns the previous one.
func (s *Swappable) Swap(delegate any) any {
	old, _ := s.delegate.Swap(holder{v: delegate}).(holder)
	return old.v
}

// Delegate returns the current delegate as T, or T's zero value.
func Delegate[T any](s *Swappable) T {
	v, _ := s.Instance().(T)
	return v
}
