package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentientiq/collective/internal/model"
	"github.com/sentientiq/collective/internal/provider"
)

func TestDebateDefaultStrategy(t *testing.T) {
	fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "1. look 2. decide", nil }}
	primary := &fakeCaller{complete: func(provider.Task) (string, error) { return "full answer", nil }}
	precision := &fakeCaller{complete: func(provider.Task) (string, error) { return "tight answer", nil }}
	source := &fixedSource{snippets: []model.Snippet{{ID: "s1", Text: "churn is up"}}}

	eng := newTestEngine(fast, primary, precision, source)
	req := &model.DebateRequest{Prompt: "What should we fix first?", Strategy: model.StrategyDefault}
	events := collect(func(out chan<- Event) { eng.Debate(context.Background(), req, out) })

	assert.Equal(t, []string{"retrieval", "planner", "primary", "refiner"}, phaseBegins(events))
	assertBalancedPhases(t, events)

	require.Len(t, deltasFor(events, "planner"), 1)
	require.Len(t, deltasFor(events, "primary"), 1)
	require.Len(t, deltasFor(events, "refiner"), 1)
	assert.Equal(t, "full answer", deltasFor(events, "primary")[0].Text)
	assert.Equal(t, "tight answer", deltasFor(events, "refiner")[0].Text)

	// Each hop is conditioned on its predecessor and the shared context.
	primaryTasks := primary.recorded()
	require.Len(t, primaryTasks, 1)
	assert.Contains(t, primaryTasks[0].User, "churn is up")
	assert.Contains(t, primaryTasks[0].User, "1. look 2. decide")

	refinerTasks := precision.recorded()
	require.Len(t, refinerTasks, 1)
	assert.Contains(t, refinerTasks[0].User, "full answer")
}

func TestDebateRetrievalHits(t *testing.T) {
	t.Run("reports hit count on phase end", func(t *testing.T) {
		fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "plan", nil }}
		primary := &fakeCaller{complete: func(provider.Task) (string, error) { return "a", nil }}
		precision := &fakeCaller{complete: func(provider.Task) (string, error) { return "b", nil }}
		source := &fixedSource{snippets: []model.Snippet{{Text: "one"}, {Text: "two"}}}

		eng := newTestEngine(fast, primary, precision, source)
		events := collect(func(out chan<- Event) {
			eng.Debate(context.Background(), &model.DebateRequest{Prompt: "why?", Strategy: model.StrategyDefault}, out)
		})

		end := events[1]
		require.Equal(t, KindPhase, end.Kind)
		require.Equal(t, StatusEnd, end.Status)
		require.NotNil(t, end.Hits)
		assert.Equal(t, 2, *end.Hits)
	})

	t.Run("topK zero yields hits zero", func(t *testing.T) {
		fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "plan", nil }}
		primary := &fakeCaller{complete: func(provider.Task) (string, error) { return "a", nil }}
		precision := &fakeCaller{complete: func(provider.Task) (string, error) { return "b", nil }}
		source := &fixedSource{snippets: []model.Snippet{{Text: "never packed"}}}

		eng := newTestEngine(fast, primary, precision, source)
		zero := 0
		events := collect(func(out chan<- Event) {
			eng.Debate(context.Background(), &model.DebateRequest{Prompt: "why?", TopK: &zero, Strategy: model.StrategyDefault}, out)
		})

		assert.Equal(t, 0, source.lastTopK)
		end := events[1]
		require.NotNil(t, end.Hits)
		assert.Equal(t, 0, *end.Hits)
	})
}

func TestDebateHopFailureContinues(t *testing.T) {
	fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "plan", nil }}
	primary := &fakeCaller{complete: func(provider.Task) (string, error) { return "", errors.New("rate limited") }}
	precision := &fakeCaller{complete: func(provider.Task) (string, error) { return "refined anyway", nil }}

	eng := newTestEngine(fast, primary, precision, &fixedSource{})
	events := collect(func(out chan<- Event) {
		eng.Debate(context.Background(), &model.DebateRequest{Prompt: "why?", Strategy: model.StrategyDefault}, out)
	})

	// The failed hop emits a tagged placeholder and the pipeline completes.
	primaryDeltas := deltasFor(events, "primary")
	require.Len(t, primaryDeltas, 1)
	assert.Equal(t, "[primary unavailable: provider error]", primaryDeltas[0].Text)

	assert.Equal(t, []string{"retrieval", "planner", "primary", "refiner"}, phaseBegins(events))
	assertBalancedPhases(t, events)

	// The next hop consumes the placeholder as its input.
	refinerTasks := precision.recorded()
	require.Len(t, refinerTasks, 1)
	assert.Contains(t, refinerTasks[0].User, "[primary unavailable: provider error]")
}

func TestDebatePlannerFailureFeedsPlaceholderForward(t *testing.T) {
	fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "", errors.New("down") }}
	primary := &fakeCaller{complete: func(provider.Task) (string, error) { return "answer", nil }}
	precision := &fakeCaller{complete: func(provider.Task) (string, error) { return "refined", nil }}

	eng := newTestEngine(fast, primary, precision, &fixedSource{})
	events := collect(func(out chan<- Event) {
		eng.Debate(context.Background(), &model.DebateRequest{Prompt: "why?", Strategy: model.StrategyDefault}, out)
	})

	assert.Equal(t, "[planner unavailable: provider error]", deltasFor(events, "planner")[0].Text)
	primaryTasks := primary.recorded()
	require.Len(t, primaryTasks, 1)
	assert.Contains(t, primaryTasks[0].User, "[planner unavailable: provider error]")
	assertBalancedPhases(t, events)
}

func TestDebateSinglePass(t *testing.T) {
	fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "plan", nil }}
	primary := &fakeCaller{}
	precision := &fakeCaller{
		stream: func(t provider.Task, emit func(string) error) error {
			for _, tok := range []string{"Fix ", "onboarding ", "first."} {
				if err := emit(tok); err != nil {
					return err
				}
			}
			return nil
		},
	}

	eng := newTestEngine(fast, primary, precision, &fixedSource{})
	events := collect(func(out chan<- Event) {
		eng.Debate(context.Background(), &model.DebateRequest{Prompt: "why?", Strategy: model.StrategySinglePass}, out)
	})

	assert.Equal(t, []string{"retrieval", "planner", "refiner"}, phaseBegins(events))
	assert.Empty(t, primary.recorded(), "primary hop must be skipped in single-pass")

	tokens := deltasFor(events, "refiner")
	require.Len(t, tokens, 3)
	assert.Equal(t, "Fix ", tokens[0].Text)
	assert.Equal(t, "first.", tokens[2].Text)

	// The streaming pass is conditioned on the plan.
	streamTasks := precision.recorded()
	require.Len(t, streamTasks, 1)
	assert.Contains(t, streamTasks[0].User, "plan")
}

func TestDebateSinglePassStreamFailure(t *testing.T) {
	fast := &fakeCaller{complete: func(provider.Task) (string, error) { return "plan", nil }}
	precision := &fakeCaller{
		stream: func(t provider.Task, emit func(string) error) error {
			_ = emit("partial ")
			return errors.New("connection reset")
		},
	}

	eng := newTestEngine(fast, &fakeCaller{}, precision, &fixedSource{})
	events := collect(func(out chan<- Event) {
		eng.Debate(context.Background(), &model.DebateRequest{Prompt: "why?", Strategy: model.StrategySinglePass}, out)
	})

	tokens := deltasFor(events, "refiner")
	require.NotEmpty(t, tokens)
	assert.Equal(t, "[refiner unavailable: provider error]", tokens[len(tokens)-1].Text)
	assertBalancedPhases(t, events)
}
