package testsupport

import (
	"context"
	"fmt"
	"sync"

	"arforge/internal/services/command"
)

// FakeRunner satisfies command.Runner with a per-binary hook so tests can
// simulate tool success, crashes, and produced output files.
type FakeRunner struct {
	mu sync.Mutex
	// Handlers maps a binary name to its behavior. A handler typically
	// writes the output file named in spec.Args before returning.
	Handlers map[string]func(spec command.Spec) (command.Result, error)
	// Calls records every invocation in order.
	Calls []command.Spec
}

var _ command.Runner = (*FakeRunner)(nil)

// NewFakeRunner constructs an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{Handlers: make(map[string]func(command.Spec) (command.Result, error))}
}

// Handle registers the behavior for a binary.
func (f *FakeRunner) Handle(binary string, fn func(spec command.Spec) (command.Result, error)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Handlers[binary] = fn
}

// Run dispatches to the registered handler or fails for unexpected binaries.
func (f *FakeRunner) Run(ctx context.Context, spec command.Spec) (command.Result, error) {
	if err := ctx.Err(); err != nil {
		return command.Result{}, err
	}
	f.mu.Lock()
	f.Calls = append(f.Calls, spec)
	handler := f.Handlers[spec.Binary]
	f.mu.Unlock()

	if handler == nil {
		return command.Result{}, fmt.Errorf("unexpected binary %q", spec.Binary)
	}
	return handler(spec)
}

// CallsFor returns recorded invocations of one binary.
func (f *FakeRunner) CallsFor(binary string) []command.Spec {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []command.Spec
	for _, call := range f.Calls {
		if call.Binary == binary {
			calls = append(calls, call)
		}
	}
	return calls
}
