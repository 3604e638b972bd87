package engine

import (
	"context"
	"fmt"

	"github.com/sentientiq/collective/internal/model"
	"github.com/sentientiq/collective/internal/provider"
)

// Phase labels in emission order.
const (
	labelRetrieval = "retrieval"
	labelPlanner   = "planner"
	labelPrimary   = "primary"
	labelRefiner   = "refiner"
)

const plannerSystem = "You are a fast tactical planner. Produce a short numbered plan " +
	"for answering the question. No prose outside the plan."

const primarySystem = "You are the lead strategist. Answer the question fully, " +
	"following the plan and grounding every claim in the supplied context."

const refinerSystem = "You are a precision editor. Tighten the draft answer: cut filler, " +
	"fix errors, keep every substantive point."

// Debate runs the sequential pipeline and emits its events to out. Provider
// failures degrade the output, they never abort the request; the pipeline
// always runs to completion.
func (e *Engine) Debate(ctx context.Context, req *model.DebateRequest, out chan<- Event) {
	packed := e.gatherContext(ctx, out, req.Prompt, req.ResolvedTopK())

	plan := e.hop(ctx, out, labelPlanner, e.pools.Fast, e.fast, provider.Task{
		System:      plannerSystem,
		User:        plannerUser(req.Prompt, packed),
		Temperature: 0.3,
	})

	if req.Strategy == model.StrategySinglePass {
		e.streamingHop(ctx, out, labelRefiner, provider.Task{
			System:      refinerSystem,
			User:        singlePassUser(req.Prompt, packed, plan),
			Temperature: 0.2,
		})
		return
	}

	answer := e.hop(ctx, out, labelPrimary, e.pools.Primary, e.primary, provider.Task{
		System:      primarySystem,
		User:        primaryUser(req.Prompt, packed, plan),
		Temperature: 0.4,
	})

	e.hop(ctx, out, labelRefiner, e.pools.Precision, e.precision, provider.Task{
		System:      refinerSystem,
		User:        refinerUser(req.Prompt, answer),
		Temperature: 0.2,
	})
}

// hop runs one non-streaming pipeline stage: phase begin, scheduled call,
// one delta carrying the full output, phase end. On failure the delta
// carries a tagged placeholder, and that placeholder is what the next hop
// consumes as input.
func (e *Engine) hop(ctx context.Context, out chan<- Event, label string, pool *provider.Pool, caller provider.Caller, t provider.Task) string {
	out <- PhaseBegin(label)

	var text string
	err := pool.Schedule(func() error {
		var callErr error
		text, callErr = caller.Complete(ctx, t)
		return callErr
	})
	if err != nil {
		e.log.Warnw("hop failed, substituting placeholder", "hop", label, "err", err)
		text = placeholder(label)
	}

	out <- Delta(label, text)
	out <- PhaseEnd(label)
	return text
}

// streamingHop runs the single-pass variant's final stage on the precision
// provider, forwarding each token as its own delta.
func (e *Engine) streamingHop(ctx context.Context, out chan<- Event, label string, t provider.Task) {
	out <- PhaseBegin(label)

	err := e.pools.Precision.Schedule(func() error {
		return e.precision.Stream(ctx, t, func(delta string) error {
			out <- Delta(label, delta)
			return nil
		})
	})
	if err != nil {
		e.log.Warnw("streaming hop failed, substituting placeholder", "hop", label, "err", err)
		out <- Delta(label, placeholder(label))
	}

	out <- PhaseEnd(label)
}

func placeholder(label string) string {
	return fmt.Sprintf("[%s unavailable: provider error]", label)
}

func plannerUser(prompt, packed string) string {
	if packed == "" {
		return fmt.Sprintf("Question: %s", prompt)
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", packed, prompt)
}

func primaryUser(prompt, packed, plan string) string {
	return fmt.Sprintf("Context:\n%s\n\nPlan:\n%s\n\nQuestion: %s", packed, plan, prompt)
}

func refinerUser(prompt, draft string) string {
	return fmt.Sprintf("Question: %s\n\nDraft answer:\n%s", prompt, draft)
}

func singlePassUser(prompt, packed, plan string) string {
	return fmt.Sprintf("Context:\n%s\n\nPlan:\n%s\n\nAnswer the question in one pass: %s", packed, plan, prompt)
}
