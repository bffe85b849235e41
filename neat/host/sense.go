package host

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Sense produces one scalar per decision tick.
type Sense interface {
	Value() float64
}

// SenseFunc adapts a function to Sense.
type SenseFunc func() float64

// Value calls f.
func (f SenseFunc) Value() float64 { return f() }

// Switch lets a sense be turned off. A disabled sense reads 0.
// The zero value is enabled.
type Switch struct {
	disabled atomic.Bool
}

// Enable turns the sense on.
func (s *Switch) Enable() { s.disabled.Store(false) }

// Disable turns the sense off.
func (s *Switch) Disable() { s.disabled.Store(true) }

// Enabled reports whether the sense is on.
func (s *Switch) Enabled() bool { return !s.disabled.Load() }

// FloatSense reports a value the host sets.
type FloatSense struct {
	Switch
	bits atomic.Uint64
}

// Set stores the value reported from now on.
func (s *FloatSense) Set(v float64) {
	s.bits.Store(math.Float64bits(v))
}

func (s *FloatSense) Value() float64 {
	if !s.Enabled() {
		return 0
	}
	return math.Float64frombits(s.bits.Load())
}

// TriggerSense reports 1 while triggered and 0 otherwise, like a collider
// that something is touching.
type TriggerSense struct {
	Switch
	triggered atomic.Bool
}

// Set marks the trigger as touched or released.
func (s *TriggerSense) Set(triggered bool) {
	s.triggered.Store(triggered)
}

func (s *TriggerSense) Value() float64 {
	if !s.Enabled() || !s.triggered.Load() {
		return 0
	}
	return 1
}

// TypeName names the concrete type of a sense as recorded in snapshots.
func TypeName(s Sense) string {
	if s == nil {
		return ""
	}
	return fmt.Sprintf("%T", s)
}
