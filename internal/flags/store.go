// Package flags holds the process-wide feature switches read by the gateway.
package flags

import "sync/atomic"

// Flags is a point-in-time copy of every switch.
type Flags struct {
	EnableGemini bool `json:"enable_gemini"`
}

// Store holds the current switch values. Safe for concurrent use.
type Store struct {
	enableGemini atomic.Bool
}

// NewStore returns a store seeded from startup configuration.
func NewStore(enableGemini bool) *Store {
	s := &Store{}
	s.enableGemini.Store(enableGemini)
	return s
}

// GeminiEnabled reports whether generative calls may reach a provider.
func (s *Store) GeminiEnabled() bool {
	return s.enableGemini.Load()
}

// Set updates the switch and reports whether the value changed.
func (s *Store) Set(enableGemini bool) bool {
	return s.enableGemini.Swap(enableGemini) != enableGemini
}

// Snapshot returns the current values.
func (s *Store) Snapshot() Flags {
	return Flags{EnableGemini: s.GeminiEnabled()}
}
