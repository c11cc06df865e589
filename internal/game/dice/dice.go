// Package dice provides the randomness abstraction used for score jitter
// and any other stochastic tie-breaking in the combat core.
package dice

// Source is the randomness provider.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
