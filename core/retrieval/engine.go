package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/siherrmann/scout/core/fusion"
	"github.com/siherrmann/scout/core/graph"
	"github.com/siherrmann/scout/core/intel"
	"github.com/siherrmann/scout/core/pipeline"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
	"golang.org/x/sync/errgroup"
)

// VectorSearcher defines the interface for vector similarity search
type VectorSearcher interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error)
}

// LexicalSearcher defines the interface for full-text search
type LexicalSearcher interface {
	SelectChunksByLexical(ctx context.Context, query string, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error)
}

// Engine orchestrates a retrieval request through embedding, parallel
// search, rank fusion, entity extraction and parallel enrichment. The
// pipeline only moves forward; a failed stage degrades the response
// instead of being retried.
type Engine struct {
	vector    VectorSearcher
	lexical   LexicalSearcher
	traverser *graph.Traverser
	matcher   *intel.Matcher
	fuser     *fusion.Fuser
	embedder  pipeline.EmbedFunc
	extractor pipeline.ExtractFunc
	config    *model.RetrievalConfig
	logger    *slog.Logger
}

// NewEngine creates a retrieval engine over the given searchers and
// enrichers. A nil config falls back to the defaults, a nil logger to
// slog's default. The extractor starts as the lexicon heuristic and the
// embedder unset, use the setters to change either.
func NewEngine(vector VectorSearcher, lexical LexicalSearcher, traverser *graph.Traverser, matcher *intel.Matcher, config *model.RetrievalConfig, logger *slog.Logger) *Engine {
	if config == nil {
		config = model.DefaultRetrievalConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		vector:    vector,
		lexical:   lexical,
		traverser: traverser,
		matcher:   matcher,
		fuser:     fusion.NewFuser(config),
		extractor: pipeline.LexiconExtractor(nil, config),
		config:    config,
		logger:    logger,
	}
}

// SetEmbedder sets the embedding function. Without one every request
// runs lexical-only.
func (e *Engine) SetEmbedder(embedder pipeline.EmbedFunc) {
	e.embedder = embedder
}

// SetExtractor replaces the seed-entity extractor
func (e *Engine) SetExtractor(extractor pipeline.ExtractFunc) {
	e.extractor = extractor
}

// SetMatcher replaces the competitor matcher
func (e *Engine) SetMatcher(matcher *intel.Matcher) {
	e.matcher = matcher
}

// Embed generates an embedding with the configured embedder
func (e *Engine) Embed(text string) ([]float32, error) {
	if e.embedder == nil {
		return nil, fmt.Errorf("%w: no embedder configured", ErrUpstreamUnavailable)
	}
	return e.embedder(text)
}

// Retrieve runs the full pipeline for one request. Validation errors
// are returned before any external call. Upstream failures degrade the
// search strategy; when no signal is available at all the well-formed
// empty response is returned with a nil error.
func (e *Engine) Retrieve(ctx context.Context, request *model.RetrievalRequest) (*model.RetrievalResponse, error) {
	start := time.Now()

	if request == nil {
		return nil, &model.ValidationError{Field: "request", Reason: "must not be nil"}
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	embedding := e.embedQuery(request.QueryContext)
	vectorChunks, lexicalChunks, vectorErr, lexicalErr := e.parallelSearch(ctx, embedding, request)

	if ctx.Err() != nil {
		return nil, e.failCancelled(ctx, start)
	}

	if vectorErr != nil && lexicalErr != nil {
		e.logger.Error("All search signals failed, returning empty response",
			slog.Any("vectorError", vectorErr),
			slog.Any("lexicalError", lexicalErr),
		)
		return model.EmptyResponse(e.config.SimilarityThreshold, time.Since(start)), nil
	}

	strategy := model.StrategyHybrid
	switch {
	case vectorErr != nil:
		strategy = model.StrategyLexicalOnly
	case lexicalErr != nil:
		strategy = model.StrategyVectorOnly
	}

	totalSearched := len(vectorChunks) + len(lexicalChunks)
	chunks := e.fuser.Fuse(vectorChunks, lexicalChunks, request.QueryContext, request.RetrievalDepth)

	seeds := e.extractSeeds(chunks)
	relationships, insights := e.parallelEnrichment(ctx, request, seeds)

	if ctx.Err() != nil {
		return nil, e.failCancelled(ctx, start)
	}

	confidenceScores := make([]float64, len(chunks))
	for i, chunk := range chunks {
		confidenceScores[i] = chunk.RelevanceScore
	}
	if chunks == nil {
		chunks = []*model.RetrievedChunk{}
	}
	if relationships == nil {
		relationships = []*model.GraphRelationship{}
	}
	if insights == nil {
		insights = []*model.CompetitorInsight{}
	}

	e.logger.Info("Retrieval complete",
		slog.String("tenant", request.TenantID),
		slog.String("strategy", string(strategy)),
		slog.Int("chunks", len(chunks)),
		slog.Int("relationships", len(relationships)),
		slog.Int("insights", len(insights)),
	)

	return &model.RetrievalResponse{
		Chunks:           chunks,
		Relationships:    relationships,
		Insights:         insights,
		ConfidenceScores: confidenceScores,
		Metadata: model.ResponseMetadata{
			TotalChunksSearched:  totalSearched,
			HybridRankingApplied: strategy == model.StrategyHybrid,
			SimilarityThreshold:  e.config.SimilarityThreshold,
			ProcessingTimeMs:     time.Since(start).Milliseconds(),
			SearchStrategy:       strategy,
		},
	}, nil
}

// failCancelled records the elapsed time of a request aborted by its
// context before surfacing the cancellation
func (e *Engine) failCancelled(ctx context.Context, start time.Time) error {
	elapsed := time.Since(start)
	e.logger.Warn("Retrieval cancelled",
		slog.Duration("elapsed", elapsed),
		slog.Any("error", ctx.Err()),
	)
	return helper.NewError(fmt.Sprintf("retrieve after %dms", elapsed.Milliseconds()), ctx.Err())
}

// embedQuery returns the query embedding, or nil when no embedder is
// set or the model call fails
func (e *Engine) embedQuery(query string) []float32 {
	if e.embedder == nil {
		return nil
	}

	embedding, err := e.embedder(query)
	if err != nil {
		e.logger.Warn("Embedding failed, degrading to lexical-only search", slog.Any("error", err))
		return nil
	}
	return embedding
}

// parallelSearch issues the vector and lexical searches concurrently.
// Branch failures are recorded, not returned, so one failed signal does
// not cancel the other.
func (e *Engine) parallelSearch(ctx context.Context, embedding []float32, request *model.RetrievalRequest) (vectorChunks []*model.RetrievedChunk, lexicalChunks []*model.RetrievedChunk, vectorErr error, lexicalErr error) {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if embedding == nil {
			vectorErr = fmt.Errorf("%w: no query embedding", ErrUpstreamUnavailable)
			return nil
		}
		if e.vector == nil {
			vectorErr = fmt.Errorf("%w: no vector searcher configured", ErrUpstreamUnavailable)
			return nil
		}
		chunks, err := e.vector.SelectChunksBySimilarity(groupCtx, embedding, request.TenantID, e.config.FusionPoolSize, request.SearchScope)
		if err != nil {
			e.logger.Warn("Vector search failed", slog.Any("error", err))
			vectorErr = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			return nil
		}
		vectorChunks = chunks
		return nil
	})

	group.Go(func() error {
		if e.lexical == nil {
			lexicalErr = fmt.Errorf("%w: no lexical searcher configured", ErrUpstreamUnavailable)
			return nil
		}
		chunks, err := e.lexical.SelectChunksByLexical(groupCtx, request.QueryContext, request.TenantID, e.config.FusionPoolSize, request.SearchScope)
		if err != nil {
			e.logger.Warn("Lexical search failed", slog.Any("error", err))
			lexicalErr = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			return nil
		}
		lexicalChunks = chunks
		return nil
	})

	// Branches never return errors, Wait only joins them
	_ = group.Wait()

	return vectorChunks, lexicalChunks, vectorErr, lexicalErr
}

// extractSeeds runs the seed-entity extractor over the fused chunks.
// An extraction failure skips graph traversal, the competitor matcher
// still runs on the query alone.
func (e *Engine) extractSeeds(chunks []*model.RetrievedChunk) []string {
	if e.extractor == nil || len(chunks) == 0 {
		return nil
	}

	seeds, err := e.extractor(chunks)
	if err != nil {
		e.logger.Warn("Entity extraction failed, skipping graph traversal", slog.Any("error", err))
		return nil
	}
	return seeds
}

// parallelEnrichment issues graph traversal and competitor matching
// concurrently. Either failing leaves its part of the response empty.
func (e *Engine) parallelEnrichment(ctx context.Context, request *model.RetrievalRequest, seeds []string) (relationships []*model.GraphRelationship, insights []*model.CompetitorInsight) {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if e.traverser == nil || len(seeds) == 0 {
			return nil
		}
		paths, err := e.traverser.Traverse(groupCtx, seeds, request.TenantID, e.config.MaxHops(request.RetrievalDepth))
		if err != nil {
			e.logger.Warn("Graph traversal failed", slog.Any("error", err))
			return nil
		}
		relationships = paths
		return nil
	})

	group.Go(func() error {
		if e.matcher == nil {
			return nil
		}
		matched, err := e.matcher.Match(groupCtx, request.QueryContext, seeds, request.TenantID)
		if err != nil {
			e.logger.Warn("Competitor matching failed", slog.Any("error", err))
			return nil
		}
		insights = matched
		return nil
	})

	_ = group.Wait()

	return relationships, insights
}
