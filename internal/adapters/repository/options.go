// Package repository defines the bounded stores for spins and patterns.
package repository

// Default store capacities, matching the upstream deployment limits.
const (
	defaultLedgerCapacity  = 2000
	defaultPatternCapacity = 5000
)

// LedgerOption applies a configuration option to the SpinLedger.
type LedgerOption func(*SpinLedger)

// WithLedgerCapacity bounds the number of retained spins.
func WithLedgerCapacity(n int) LedgerOption {
	return func(l *SpinLedger) {
		if n > 0 {
			l.capacity = n
		}
	}
}

// PatternOption applies a configuration option to the PatternTable.
type PatternOption func(*PatternTable)

// WithPatternCapacity bounds the number of retained patterns.
func WithPatternCapacity(n int) PatternOption {
	return func(t *PatternTable) {
		if n > 0 {
			t.capacity = n
		}
	}
}
