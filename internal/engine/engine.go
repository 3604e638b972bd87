package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/model"
	"github.com/sentientiq/collective/internal/provider"
	"github.com/sentientiq/collective/internal/retrieval"
)

// ContextSource supplies best-effort retrieval. Satisfied by
// retrieval.Retriever; tests substitute fixed snippet sets.
type ContextSource interface {
	Retrieve(ctx context.Context, query string, topK int) []model.Snippet
}

// Engine coordinates the three provider roles behind both orchestration
// modes. Constructed once at process start; safe for concurrent requests.
type Engine struct {
	fast      provider.Caller
	primary   provider.Caller
	precision provider.Caller
	pools     *provider.Pools
	source    ContextSource
	budget    int
	log       *zap.SugaredLogger
}

func New(
	fast, primary, precision provider.Caller,
	pools *provider.Pools,
	source ContextSource,
	budget int,
	log *zap.SugaredLogger,
) *Engine {
	if budget <= 0 {
		budget = model.DefaultBudget
	}
	return &Engine{
		fast:      fast,
		primary:   primary,
		precision: precision,
		pools:     pools,
		source:    source,
		budget:    budget,
		log:       log,
	}
}

// Pools exposes the shared gates for stats reporting.
func (e *Engine) Pools() *provider.Pools { return e.pools }

// gatherContext runs the retrieval phase shared by both modes. The packed
// block is built exactly once per request and passed read-only into every
// downstream task.
func (e *Engine) gatherContext(ctx context.Context, out chan<- Event, query string, topK int) string {
	out <- PhaseBegin(labelRetrieval)
	snippets := e.source.Retrieve(ctx, query, topK)
	packed := retrieval.Pack(snippets, e.budget)
	out <- PhaseEndHits(labelRetrieval, len(snippets))
	return packed
}
