package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sentientiq/collective/internal/model"
)

// Embedder turns a query into a vector. Satisfied by provider.Embedder.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher is the similarity-search collaborator. Satisfied by store.PgStore.
type Searcher interface {
	Search(ctx context.Context, vec []float32, topK int) ([]model.Snippet, error)
}

// Retriever performs best-effort context lookups. A failed lookup degrades
// the answer, it never fails the request.
type Retriever struct {
	embed Embedder
	store Searcher
	log   *zap.SugaredLogger
}

func New(embed Embedder, store Searcher, log *zap.SugaredLogger) *Retriever {
	return &Retriever{embed: embed, store: store, log: log}
}

// Retrieve returns up to topK snippets for the query. topK <= 0 skips the
// lookup entirely; embedding or search failures are logged and yield an
// empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) []model.Snippet {
	if topK <= 0 {
		return nil
	}
	vec, err := r.embed.Embed(ctx, query)
	if err != nil {
		r.log.Warnw("retrieval embedding failed, continuing without context", "err", err)
		return nil
	}
	snippets, err := r.store.Search(ctx, vec, topK)
	if err != nil {
		r.log.Warnw("retrieval search failed, continuing without context", "err", err)
		return nil
	}
	return snippets
}

// Pack appends whitespace-normalized snippets in order until the next one
// would push the total past maxChars, then stops. Snippets are dropped
// whole, never split. Pure: identical input yields identical output.
func Pack(snippets []model.Snippet, maxChars int) string {
	const sep = "\n\n"
	var sb strings.Builder
	for _, sn := range snippets {
		block := normalize(sn.Text)
		if block == "" {
			continue
		}
		if sn.Source != "" {
			block = "[" + sn.Source + "] " + block
		}
		need := len(block)
		if sb.Len() > 0 {
			need += len(sep)
		}
		if sb.Len()+need > maxChars {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(block)
	}
	return sb.String()
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
