package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/model"
	"github.com/sentientiq/collective/internal/provider"
)

// fakeCaller scripts one provider role and records every task it was given.
type fakeCaller struct {
	mu       sync.Mutex
	tasks    []provider.Task
	complete func(t provider.Task) (string, error)
	stream   func(t provider.Task, emit func(string) error) error
}

func (f *fakeCaller) Complete(_ context.Context, t provider.Task) (string, error) {
	f.record(t)
	if f.complete == nil {
		return "", errors.New("unexpected Complete call")
	}
	return f.complete(t)
}

func (f *fakeCaller) Stream(_ context.Context, t provider.Task, emit func(string) error) error {
	f.record(t)
	if f.stream == nil {
		return errors.New("unexpected Stream call")
	}
	return f.stream(t, emit)
}

func (f *fakeCaller) record(t provider.Task) {
	f.mu.Lock()
	f.tasks = append(f.tasks, t)
	f.mu.Unlock()
}

func (f *fakeCaller) recorded() []provider.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]provider.Task(nil), f.tasks...)
}

// fixedSource returns a canned snippet set for positive topK.
type fixedSource struct {
	snippets []model.Snippet
	lastTopK int
}

func (s *fixedSource) Retrieve(_ context.Context, _ string, topK int) []model.Snippet {
	s.lastTopK = topK
	if topK <= 0 {
		return nil
	}
	return s.snippets
}

func newTestEngine(fast, primary, precision *fakeCaller, source ContextSource) *Engine {
	return New(fast, primary, precision, provider.NewPools(4, 4, 4), source, 6000, zap.NewNop().Sugar())
}

// collect runs an orchestration and gathers everything it emitted.
func collect(run func(out chan<- Event)) []Event {
	out := make(chan Event, 16)
	var events []Event
	done := make(chan struct{})
	go func() {
		for ev := range out {
			events = append(events, ev)
		}
		close(done)
	}()
	run(out)
	close(out)
	<-done
	return events
}

func phaseBegins(events []Event) []string {
	var labels []string
	for _, ev := range events {
		if ev.Kind == KindPhase && ev.Status == StatusBegin {
			labels = append(labels, ev.Label)
		}
	}
	return labels
}

func deltasFor(events []Event, label string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == KindDelta && ev.Label == label {
			out = append(out, ev)
		}
	}
	return out
}

func errorsFor(events []Event, label string) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Kind == KindError && ev.Label == label {
			out = append(out, ev)
		}
	}
	return out
}

// assertBalancedPhases checks every begin has a later matching end.
func assertBalancedPhases(t *testing.T, events []Event) {
	t.Helper()
	open := map[string]int{}
	for _, ev := range events {
		if ev.Kind != KindPhase {
			continue
		}
		switch ev.Status {
		case StatusBegin:
			open[ev.Label]++
		case StatusEnd:
			open[ev.Label]--
			if open[ev.Label] < 0 {
				t.Fatalf("phase %q ended before it began", ev.Label)
			}
		}
	}
	for label, n := range open {
		if n != 0 {
			t.Fatalf("phase %q has %d unmatched begin(s)", label, n)
		}
	}
}
