package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sentientiq/collective/internal/model"
	"github.com/sentientiq/collective/internal/persona"
	"github.com/sentientiq/collective/internal/provider"
)

// Boardroom fans one task per persona out against the precision provider,
// all sharing the same packed context. Token streams interleave freely on
// the wire; ordering holds only within one persona. Returns once every
// persona has reached a terminal outcome.
func (e *Engine) Boardroom(ctx context.Context, req *model.BoardroomRequest, defs []persona.Definition, out chan<- Event) {
	// An empty panel must still terminate; waiting on a counter that can
	// never reach its target would hang the request.
	if len(defs) == 0 {
		return
	}

	packed := e.gatherContext(ctx, out, req.Prompt, req.ResolvedTopK())
	temp := req.ResolvedTemperature()

	total := int32(len(defs))
	var completed atomic.Int32
	finished := make(chan struct{})

	for _, def := range defs {
		go func(d persona.Definition) {
			e.runPersona(ctx, out, d, req.Prompt, packed, temp)
			// Increment-and-compare: exactly one goroutine observes the
			// final count, even when two personas finish at once.
			if completed.Add(1) == total {
				close(finished)
			}
		}(def)
	}

	<-finished
}

// runPersona drives one persona to a terminal outcome: streamed success, or
// an error event followed by exactly one non-streaming retry. A persona
// whose retry also fails completes with error events only; the panel never
// fabricates content for it.
func (e *Engine) runPersona(ctx context.Context, out chan<- Event, d persona.Definition, prompt, packed string, temp float32) {
	out <- PhaseBegin(d.Name)
	defer func() { out <- PhaseEnd(d.Name) }()

	task := provider.Task{
		System:      d.Prompt,
		User:        personaUser(prompt, packed),
		Temperature: temp,
	}

	err := e.pools.Precision.Schedule(func() error {
		return e.precision.Stream(ctx, task, func(delta string) error {
			out <- Delta(d.Name, delta)
			return nil
		})
	})
	if err == nil {
		return
	}

	e.log.Warnw("persona stream failed, attempting fallback", "persona", d.Name, "err", err)
	out <- PersonaError(d.Name, fmt.Sprintf("stream failed: %v", err))

	var text string
	retryErr := e.pools.Precision.Schedule(func() error {
		var callErr error
		text, callErr = e.precision.Complete(ctx, task)
		return callErr
	})
	if retryErr != nil {
		e.log.Warnw("persona fallback failed", "persona", d.Name, "err", retryErr)
		out <- PersonaError(d.Name, fmt.Sprintf("fallback failed: %v", retryErr))
		return
	}

	out <- Delta(d.Name, text)
}

func personaUser(prompt, packed string) string {
	if packed == "" {
		return fmt.Sprintf("The board is asked: %s", prompt)
	}
	return fmt.Sprintf("Context:\n%s\n\nThe board is asked: %s", packed, prompt)
}
