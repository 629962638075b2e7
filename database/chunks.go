package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
	loadSql "github.com/siherrmann/scout/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	InsertChunk(chunk *model.RetrievedChunk, tenantID string) error
	SelectChunk(id uuid.UUID) (*model.RetrievedChunk, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error)
	SelectChunksByLexical(ctx context.Context, query string, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error)
	DeleteChunk(id uuid.UUID) error
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary extensions and indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// InsertChunk inserts a new chunk for a tenant
func (h *ChunksDBHandler) InsertChunk(chunk *model.RetrievedChunk, tenantID string) error {
	var lastUpdated interface{}
	if !chunk.Metadata.LastUpdated.IsZero() {
		lastUpdated = chunk.Metadata.LastUpdated
	}
	var embedding interface{}
	if len(chunk.Embedding) > 0 {
		embedding = pgvector.NewVector(chunk.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		tenantID,
		chunk.Text,
		string(chunk.SourceType),
		chunk.Metadata.Domain,
		chunk.Metadata.EntityType,
		chunk.Metadata.Confidence,
		lastUpdated,
		chunk.Extra,
		embedding,
	)

	var scanTenant string
	err := row.Scan(
		&chunk.ID,
		&scanTenant,
		&chunk.Text,
		&chunk.SourceType,
		&chunk.Metadata.Domain,
		&chunk.Metadata.EntityType,
		&chunk.Metadata.Confidence,
		&chunk.Metadata.LastUpdated,
		&chunk.Extra,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(id uuid.UUID) (*model.RetrievedChunk, error) {
	chunk := &model.RetrievedChunk{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	var tenantID string
	err := row.Scan(
		&chunk.ID,
		&tenantID,
		&chunk.Text,
		&chunk.SourceType,
		&chunk.Metadata.Domain,
		&chunk.Metadata.EntityType,
		&chunk.Metadata.Confidence,
		&chunk.Metadata.LastUpdated,
		&chunk.Extra,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksBySimilarity retrieves the nearest chunks by cosine distance,
// scoped to a tenant and optionally filtered by the search scope. The raw
// cosine distance is returned on each chunk, normalization happens at
// fusion time.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error) {
	include, exclude, start, end := scopeParams(scope)

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4, $5, $6, $7)`,
		pgvector.NewVector(embedding),
		tenantID,
		limit,
		include,
		exclude,
		start,
		end,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.RetrievedChunk
	for rows.Next() {
		chunk := &model.RetrievedChunk{}
		var scanTenant string
		err := rows.Scan(
			&chunk.ID,
			&scanTenant,
			&chunk.Text,
			&chunk.SourceType,
			&chunk.Metadata.Domain,
			&chunk.Metadata.EntityType,
			&chunk.Metadata.Confidence,
			&chunk.Metadata.LastUpdated,
			&chunk.Extra,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// SelectChunksByLexical retrieves chunks matching the query by full-text
// rank, scoped to a tenant and optionally filtered by the search scope.
// The raw rank score is returned on each chunk.
func (h *ChunksDBHandler) SelectChunksByLexical(ctx context.Context, query string, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error) {
	include, exclude, start, end := scopeParams(scope)

	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_chunks_by_lexical($1, $2, $3, $4, $5, $6, $7)`,
		query,
		tenantID,
		limit,
		include,
		exclude,
		start,
		end,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.RetrievedChunk
	for rows.Next() {
		chunk := &model.RetrievedChunk{}
		var scanTenant string
		err := rows.Scan(
			&chunk.ID,
			&scanTenant,
			&chunk.Text,
			&chunk.SourceType,
			&chunk.Metadata.Domain,
			&chunk.Metadata.EntityType,
			&chunk.Metadata.Confidence,
			&chunk.Metadata.LastUpdated,
			&chunk.Extra,
			&chunk.CreatedAt,
			&chunk.LexicalScore,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	return chunks, rows.Err()
}

// DeleteChunk deletes a chunk by ID
func (h *ChunksDBHandler) DeleteChunk(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_chunk($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// scopeParams converts an optional search scope into SQL parameters
func scopeParams(scope *model.SearchScope) (include interface{}, exclude interface{}, start interface{}, end interface{}) {
	include, exclude, start, end = pq.Array([]string{}), pq.Array([]string{}), nil, nil
	if scope == nil {
		return include, exclude, start, end
	}
	if len(scope.IncludeDomains) > 0 {
		include = pq.Array(scope.IncludeDomains)
	}
	if len(scope.ExcludeDomains) > 0 {
		exclude = pq.Array(scope.ExcludeDomains)
	}
	if scope.TimeRange != nil {
		if !scope.TimeRange.Start.IsZero() {
			start = scope.TimeRange.Start
		}
		if !scope.TimeRange.End.IsZero() {
			end = scope.TimeRange.End
		}
	}
	return include, exclude, start, end
}
