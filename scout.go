package scout

import (
	"context"
	"log/slog"
	"os"

	"github.com/siherrmann/scout/core/graph"
	"github.com/siherrmann/scout/core/intel"
	"github.com/siherrmann/scout/core/pipeline"
	"github.com/siherrmann/scout/core/retrieval"
	"github.com/siherrmann/scout/database"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
	loadSql "github.com/siherrmann/scout/sql"
)

// Scout provides a unified interface to the retrieval engine and all
// database handlers
type Scout struct {
	DB            *helper.Database
	Chunks        *database.ChunksDBHandler
	Relationships *database.RelationshipsDBHandler
	Competitors   *database.CompetitorRecordsDBHandler
	Engine        *retrieval.Engine
	// Logging
	log *slog.Logger
}

// NewScout creates a new Scout instance with all handlers initialized.
// The engine starts with the default config and the lexicon heuristic
// entity extractor; no embedder is set, so retrieval runs lexical-only
// until UseDefaultEmbedder or SetEmbedder is called.
func NewScout(config *helper.DatabaseConfiguration, embeddingDim int) (*Scout, error) {
	return NewScoutWithConfig(config, embeddingDim, model.DefaultRetrievalConfig())
}

// NewScoutWithConfig creates a Scout with custom ranking and traversal
// parameters
func NewScoutWithConfig(config *helper.DatabaseConfiguration, embeddingDim int, retrievalConfig *model.RetrievalConfig) (*Scout, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("scout", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers
	// force=false to not reload if functions already exist
	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	relationships, err := database.NewRelationshipsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create relationships handler", err)
	}

	competitors, err := database.NewCompetitorRecordsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create competitor records handler", err)
	}

	// Create retrieval engine with database handlers
	traverser := graph.NewTraverser(relationships, retrievalConfig)
	matcher := intel.NewMatcher(competitors, nil, retrievalConfig)
	engine := retrieval.NewEngine(chunks, chunks, traverser, matcher, retrievalConfig, logger)

	return &Scout{
		DB:            db,
		Chunks:        chunks,
		Relationships: relationships,
		Competitors:   competitors,
		Engine:        engine,
		log:           logger,
	}, nil
}

// Close closes the database connection
func (s *Scout) Close() error {
	if s.DB != nil && s.DB.Instance != nil {
		return s.DB.Instance.Close()
	}
	return nil
}

// UseDefaultEmbedder sets up the default local embedding model,
// all-MiniLM-L6-v2 with 384 dimensions
func (s *Scout) UseDefaultEmbedder() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	s.Engine.SetEmbedder(embedder)
	s.log.Info("Configured default embedder")
	return nil
}

// SetEmbedder sets a custom embedding function, for example an OpenAI
// backed one from pipeline.OpenAIEmbedder
func (s *Scout) SetEmbedder(embedder pipeline.EmbedFunc) {
	s.Engine.SetEmbedder(embedder)
}

// SetLexicon replaces the entity and competitor lexicon on the engine's
// extractor and matcher
func (s *Scout) SetLexicon(lexicon *model.Lexicon) {
	s.Engine.SetExtractor(pipeline.LexiconExtractor(lexicon, nil))
	matcher := intel.NewMatcher(s.Competitors, lexicon, nil)
	s.Engine.SetMatcher(matcher)
}

// Retrieve runs a retrieval request through the engine
func (s *Scout) Retrieve(ctx context.Context, request *model.RetrievalRequest) (*model.RetrievalResponse, error) {
	return s.Engine.Retrieve(ctx, request)
}

// InsertChunk inserts a knowledge chunk for a tenant, generating its
// embedding with the configured embedder when the chunk has none
func (s *Scout) InsertChunk(chunk *model.RetrievedChunk, tenantID string) error {
	if len(chunk.Embedding) == 0 {
		if embedding, err := s.Engine.Embed(chunk.Text); err == nil {
			chunk.Embedding = embedding
		}
	}
	return s.Chunks.InsertChunk(chunk, tenantID)
}

// InsertRelationship inserts a graph relationship for a tenant
func (s *Scout) InsertRelationship(rel *model.GraphRelationship, tenantID string) error {
	return s.Relationships.InsertRelationship(rel, tenantID)
}

// InsertCompetitorRecord inserts a competitor record for a tenant
func (s *Scout) InsertCompetitorRecord(record *model.CompetitorInsight, tenantID string) error {
	return s.Competitors.InsertRecord(record, tenantID)
}
