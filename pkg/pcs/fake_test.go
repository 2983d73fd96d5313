package pcs

import (
	"context"
	"strings"
	"sync"
)

// fakeRunner records commands and answers them from a response table
// keyed by the argv joined with spaces, without the binary.
type fakeRunner struct {
	mu        sync.Mutex
	calls     [][]string
	responses map[string][]Result
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: map[string][]Result{}}
}

func (f *fakeRunner) on(cmd string, results ...Result) {
	f.responses[cmd] = append(f.responses[cmd], results...)
}

func (f *fakeRunner) Run(ctx context.Context, argv []string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, argv)
	key := strings.Join(argv[1:], " ")
	queue := f.responses[key]
	if len(queue) == 0 {
		return Result{}, nil
	}
	res := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return res, nil
}

func (f *fakeRunner) commands() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = strings.Join(c[1:], " ")
	}
	return out
}
