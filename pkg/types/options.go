package types

import "time"

// DefaultMaxConcurrent bounds how many rule evaluations run at once
// within a single file's batch.
const DefaultMaxConcurrent = 10

// EvaluateOptions tune a single evaluation call.
type EvaluateOptions struct {
	// UseCache enables the evaluation cache for both lookup and store.
	UseCache bool

	// Timeout is advisory: the engine logs when a batch exceeds it but
	// never hard-aborts. Callers needing a hard deadline must cancel at
	// their own boundary.
	Timeout time.Duration

	// MaxConcurrent bounds concurrent rule evaluations per file batch.
	// Zero means DefaultMaxConcurrent.
	MaxConcurrent int
}

// DefaultEvaluateOptions returns the options used when a caller passes nil.
func DefaultEvaluateOptions() *EvaluateOptions {
	return &EvaluateOptions{
		UseCache:      true,
		MaxConcurrent: DefaultMaxConcurrent,
	}
}

// Concurrency returns the effective concurrency bound.
func (o *EvaluateOptions) Concurrency() int {
	if o == nil || o.MaxConcurrent <= 0 {
		return DefaultMaxConcurrent
	}
	return o.MaxConcurrent
}
