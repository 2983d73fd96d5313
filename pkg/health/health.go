package health

import (
	"context"
	"time"

	"github.com/cuemby/burrow/pkg/metrics"
)

// Result represents the outcome of a preflight check
type Result struct {
	Healthy   bool
	Message   string
	CheckedAt time.Time
	Duration  time.Duration
}

// Checker is the interface that all preflight checks implement
type Checker interface {
	// Name is the component the check reports on
	Name() string
	// Check performs the check and returns the result
	Check(ctx context.Context) Result
}

// FuncChecker adapts a function returning an error. A nil error is
// healthy; ok, when set, supplies the message of a healthy result.
type FuncChecker struct {
	Component string
	Fn        func(ctx context.Context) (ok string, err error)
}

func (f *FuncChecker) Name() string { return f.Component }

func (f *FuncChecker) Check(ctx context.Context) Result {
	start := time.Now()
	msg, err := f.Fn(ctx)
	if err != nil {
		return Result{Healthy: false, Message: err.Error(), CheckedAt: start, Duration: time.Since(start)}
	}
	return Result{Healthy: true, Message: msg, CheckedAt: start, Duration: time.Since(start)}
}

// Run performs every check in order and registers its outcome with the
// metrics health registry
func Run(ctx context.Context, checkers ...Checker) map[string]Result {
	results := make(map[string]Result, len(checkers))
	for _, c := range checkers {
		res := c.Check(ctx)
		results[c.Name()] = res
		metrics.RegisterComponent(c.Name(), res.Healthy, res.Message)
	}
	return results
}
