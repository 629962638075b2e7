package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
)

// ElasticLexicalHandler is a drop-in lexical search backend on
// Elasticsearch. It satisfies the same lexical contract as the
// Postgres full-text functions in ChunksDBHandler, so the retrieval
// pipeline can run with either backend.
type ElasticLexicalHandler struct {
	client      *elasticsearch.Client
	indexPrefix string
	indexCache  map[string]bool
	mu          sync.Mutex
}

// NewElasticLexicalHandler creates a lexical handler backed by an
// Elasticsearch cluster. One index is kept per tenant under the given
// prefix.
func NewElasticLexicalHandler(addresses []string, username, password, apiKey, indexPrefix string) (*ElasticLexicalHandler, error) {
	if len(addresses) == 0 {
		return nil, helper.NewError("elastic configuration validation", fmt.Errorf("no addresses given"))
	}

	cfg := elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
		APIKey:    apiKey,
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, helper.NewError("create elasticsearch client", err)
	}

	if indexPrefix == "" {
		indexPrefix = "scout_chunks"
	}

	return &ElasticLexicalHandler{
		client:      client,
		indexPrefix: indexPrefix,
		indexCache:  map[string]bool{},
	}, nil
}

func (e *ElasticLexicalHandler) indexName(tenantID string) string {
	sanitized := strings.ToLower(strings.ReplaceAll(tenantID, " ", "_"))
	return fmt.Sprintf("%s_%s", e.indexPrefix, sanitized)
}

func (e *ElasticLexicalHandler) ensureIndex(ctx context.Context, tenantID string) error {
	name := e.indexName(tenantID)

	e.mu.Lock()
	if e.indexCache[name] {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	existsReq := esapi.IndicesExistsRequest{
		Index: []string{name},
	}
	resp, err := existsReq.Do(ctx, e.client)
	if err != nil {
		return helper.NewError("check index", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 200 {
		e.mu.Lock()
		e.indexCache[name] = true
		e.mu.Unlock()
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"tenant_id":    map[string]interface{}{"type": "keyword"},
				"content":      map[string]interface{}{"type": "text"},
				"source_type":  map[string]interface{}{"type": "keyword"},
				"domain":       map[string]interface{}{"type": "keyword"},
				"entity_type":  map[string]interface{}{"type": "keyword"},
				"confidence":   map[string]interface{}{"type": "float"},
				"last_updated": map[string]interface{}{"type": "date"},
				"extra":        map[string]interface{}{"type": "object", "enabled": true},
				"created_at":   map[string]interface{}{"type": "date"},
			},
		},
	}

	body, err := json.Marshal(mapping)
	if err != nil {
		return helper.NewError("marshal index mapping", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: name,
		Body:  bytes.NewReader(body),
	}
	createResp, err := createReq.Do(ctx, e.client)
	if err != nil {
		return helper.NewError("create index", err)
	}
	defer createResp.Body.Close()

	if createResp.IsError() {
		return helper.NewError("create index", fmt.Errorf("%s", createResp.String()))
	}

	e.mu.Lock()
	e.indexCache[name] = true
	e.mu.Unlock()
	return nil
}

// IndexChunk indexes a chunk for lexical search. The chunk must have an
// ID, so insert it through the chunk store first.
func (e *ElasticLexicalHandler) IndexChunk(ctx context.Context, chunk *model.RetrievedChunk, tenantID string) error {
	if chunk.ID == uuid.Nil {
		return helper.NewError("chunk validation", fmt.Errorf("chunk has no id"))
	}
	if err := e.ensureIndex(ctx, tenantID); err != nil {
		return err
	}

	doc := map[string]interface{}{
		"tenant_id":    tenantID,
		"content":      chunk.Text,
		"source_type":  string(chunk.SourceType),
		"domain":       chunk.Metadata.Domain,
		"entity_type":  chunk.Metadata.EntityType,
		"confidence":   chunk.Metadata.Confidence,
		"last_updated": chunk.Metadata.LastUpdated,
		"extra":        chunk.Extra,
		"created_at":   chunk.CreatedAt,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return helper.NewError("marshal chunk", err)
	}

	req := esapi.IndexRequest{
		Index:      e.indexName(tenantID),
		DocumentID: chunk.ID.String(),
		Body:       bytes.NewReader(payload),
		Refresh:    "true",
	}
	resp, err := req.Do(ctx, e.client)
	if err != nil {
		return helper.NewError("index chunk", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return helper.NewError("index chunk", fmt.Errorf("%s", resp.String()))
	}

	return nil
}

// DeleteChunkFromIndex removes a chunk from the lexical index.
func (e *ElasticLexicalHandler) DeleteChunkFromIndex(ctx context.Context, id uuid.UUID, tenantID string) error {
	req := esapi.DeleteRequest{
		Index:      e.indexName(tenantID),
		DocumentID: id.String(),
		Refresh:    "true",
	}
	resp, err := req.Do(ctx, e.client)
	if err != nil {
		return helper.NewError("delete chunk", err)
	}
	defer resp.Body.Close()

	if resp.IsError() && resp.StatusCode != 404 {
		return helper.NewError("delete chunk", fmt.Errorf("%s", resp.String()))
	}

	return nil
}

type elasticSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string  `json:"_id"`
			Score  float64 `json:"_score"`
			Source struct {
				TenantID    string         `json:"tenant_id"`
				Content     string         `json:"content"`
				SourceType  string         `json:"source_type"`
				Domain      string         `json:"domain"`
				EntityType  string         `json:"entity_type"`
				Confidence  float64        `json:"confidence"`
				LastUpdated time.Time      `json:"last_updated"`
				Extra       model.Metadata `json:"extra"`
				CreatedAt   time.Time      `json:"created_at"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SelectChunksByLexical retrieves chunks matching the query by relevance
// score, scoped to a tenant and optionally filtered by the search scope.
// The raw score is returned on each chunk.
func (e *ElasticLexicalHandler) SelectChunksByLexical(ctx context.Context, query string, tenantID string, limit int, scope *model.SearchScope) ([]*model.RetrievedChunk, error) {
	if err := e.ensureIndex(ctx, tenantID); err != nil {
		return nil, err
	}

	must := []interface{}{
		map[string]interface{}{
			"match": map[string]interface{}{
				"content": map[string]interface{}{
					"query": query,
				},
			},
		},
	}
	var filter []interface{}
	var mustNot []interface{}

	if scope != nil {
		if len(scope.IncludeDomains) > 0 {
			filter = append(filter, map[string]interface{}{
				"terms": map[string]interface{}{"domain": scope.IncludeDomains},
			})
		}
		if len(scope.ExcludeDomains) > 0 {
			mustNot = append(mustNot, map[string]interface{}{
				"terms": map[string]interface{}{"domain": scope.ExcludeDomains},
			})
		}
		if scope.TimeRange != nil {
			rangeQuery := map[string]interface{}{}
			if !scope.TimeRange.Start.IsZero() {
				rangeQuery["gte"] = scope.TimeRange.Start
			}
			if !scope.TimeRange.End.IsZero() {
				rangeQuery["lte"] = scope.TimeRange.End
			}
			if len(rangeQuery) > 0 {
				filter = append(filter, map[string]interface{}{
					"range": map[string]interface{}{"last_updated": rangeQuery},
				})
			}
		}
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	if len(mustNot) > 0 {
		boolQuery["must_not"] = mustNot
	}

	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, helper.NewError("marshal search request", err)
	}

	searchReq := esapi.SearchRequest{
		Index: []string{e.indexName(tenantID)},
		Body:  bytes.NewReader(payload),
	}
	resp, err := searchReq.Do(ctx, e.client)
	if err != nil {
		return nil, helper.NewError("search", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, helper.NewError("search", fmt.Errorf("%s", resp.String()))
	}

	var parsed elasticSearchResponse
	err = json.NewDecoder(resp.Body).Decode(&parsed)
	if err != nil {
		return nil, helper.NewError("decode search response", err)
	}

	var chunks []*model.RetrievedChunk
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			return nil, helper.NewError("parse chunk id", err)
		}
		chunks = append(chunks, &model.RetrievedChunk{
			ID:         id,
			Text:       hit.Source.Content,
			SourceType: model.SourceType(hit.Source.SourceType),
			Metadata: model.ChunkMetadata{
				Domain:      hit.Source.Domain,
				EntityType:  hit.Source.EntityType,
				Confidence:  hit.Source.Confidence,
				LastUpdated: hit.Source.LastUpdated,
			},
			Extra:        hit.Source.Extra,
			CreatedAt:    hit.Source.CreatedAt,
			LexicalScore: hit.Score,
		})
	}

	return chunks, nil
}
