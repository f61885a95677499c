package procexec

import (
	"context"
	"strings"
	"sync"
)

// FakeRunner is a scripted Runner for deterministic tests. Responses are
// keyed by a space-joined argv prefix; the longest matching prefix wins.
// Unmatched commands succeed with empty output.
type FakeRunner struct {
	mu        sync.Mutex
	responses map[string]Result
	errs      map[string]error
	calls     []FakeCall
}

// FakeCall records one invocation seen by the fake
type FakeCall struct {
	Dir  string
	Argv []string
}

// NewFakeRunner creates an empty FakeRunner
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		responses: make(map[string]Result),
		errs:      make(map[string]error),
	}
}

// Stub registers a Result for commands starting with the given prefix
func (f *FakeRunner) Stub(prefix string, result Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[prefix] = result
	return f
}

// StubError registers a process-start error for commands with the given prefix
func (f *FakeRunner) StubError(prefix string, err error) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[prefix] = err
	return f
}

// Run records the call and returns the scripted response
func (f *FakeRunner) Run(_ context.Context, dir string, argv []string) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, FakeCall{Dir: dir, Argv: argv})

	cmd := strings.Join(argv, " ")
	var bestPrefix string
	for prefix := range f.responses {
		if strings.HasPrefix(cmd, prefix) && len(prefix) > len(bestPrefix) {
			bestPrefix = prefix
		}
	}
	for prefix := range f.errs {
		if strings.HasPrefix(cmd, prefix) && len(prefix) > len(bestPrefix) {
			return Result{}, f.errs[prefix]
		}
	}
	if bestPrefix != "" {
		if err, ok := f.errs[bestPrefix]; ok {
			return Result{}, err
		}
		return f.responses[bestPrefix], nil
	}

	return Result{}, nil
}

// Calls returns a copy of all recorded invocations
func (f *FakeRunner) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many recorded invocations start with the given prefix
func (f *FakeRunner) CallCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, call := range f.calls {
		if strings.HasPrefix(strings.Join(call.Argv, " "), prefix) {
			n++
		}
	}
	return n
}
