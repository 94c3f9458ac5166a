package grouping

import (
	"fmt"

	"go.uber.org/zap"
)

// CommitPolicy controls when a pass records the encounters it creates.
type CommitPolicy int

const (
	// CommitAtomic records encounters only once the whole partition is built.
	// A failed pass leaves every encounter set as it was.
	CommitAtomic CommitPolicy = iota

	// CommitIncremental records encounters as each participant is placed.
	// A failed pass keeps whatever it recorded before the failure.
	CommitIncremental
)

func (c CommitPolicy) String() string {
	switch c {
	case CommitAtomic:
		return "atomic"
	case CommitIncremental:
		return "incremental"
	default:
		return "unknown"
	}
}

func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch s {
	case "atomic":
		return CommitAtomic, nil
	case "incremental":
		return CommitIncremental, nil
	default:
		return 0, fmt.Errorf("%w: unknown commit policy %q", ErrInvalidArgument, s)
	}
}

type Option func(*Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithCommitPolicy(policy CommitPolicy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}
