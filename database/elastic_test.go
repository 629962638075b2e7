package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/siherrmann/scout/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubElasticResponse struct {
	status int
	body   string
}

// stubElasticTransport records every request and replays canned
// responses in order, defaulting to an empty 200.
type stubElasticTransport struct {
	requests  []*http.Request
	bodies    []string
	responses []stubElasticResponse
}

func (s *stubElasticTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(raw)
	}
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)

	response := stubElasticResponse{status: 200, body: "{}"}
	if len(s.responses) > 0 {
		response = s.responses[0]
		s.responses = s.responses[1:]
	}

	return &http.Response{
		StatusCode: response.status,
		Header: http.Header{
			"X-Elastic-Product": []string{"Elasticsearch"},
			"Content-Type":      []string{"application/json"},
		},
		Body: io.NopCloser(strings.NewReader(response.body)),
	}, nil
}

func newStubElasticHandler(t *testing.T, transport *stubElasticTransport) *ElasticLexicalHandler {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
		Transport: transport,
	})
	require.NoError(t, err, "Expected elasticsearch client creation to not return an error")

	return &ElasticLexicalHandler{
		client:      client,
		indexPrefix: "scout_chunks",
		indexCache:  map[string]bool{},
	}
}

func TestElasticIndexName(t *testing.T) {
	handler := newStubElasticHandler(t, &stubElasticTransport{})

	t.Run("Tenant ID is lowercased and sanitized", func(t *testing.T) {
		assert.Equal(t, "scout_chunks_tenant_a", handler.indexName("Tenant A"))
	})

	t.Run("Clean tenant ID passes through", func(t *testing.T) {
		assert.Equal(t, "scout_chunks_demo", handler.indexName("demo"))
	})
}

func TestElasticEnsureIndex(t *testing.T) {
	t.Run("Existing index is cached after the first check", func(t *testing.T) {
		transport := &stubElasticTransport{}
		handler := newStubElasticHandler(t, transport)

		require.NoError(t, handler.ensureIndex(context.Background(), "tenant_a"))
		require.NoError(t, handler.ensureIndex(context.Background(), "tenant_a"))
		assert.Len(t, transport.requests, 1, "Expected the second call to hit the cache")
		assert.Equal(t, http.MethodHead, transport.requests[0].Method)
	})

	t.Run("Missing index is created with the chunk mapping", func(t *testing.T) {
		transport := &stubElasticTransport{responses: []stubElasticResponse{
			{status: 404, body: "{}"},
			{status: 200, body: "{}"},
		}}
		handler := newStubElasticHandler(t, transport)

		require.NoError(t, handler.ensureIndex(context.Background(), "tenant_a"))
		require.Len(t, transport.requests, 2)
		assert.Equal(t, http.MethodPut, transport.requests[1].Method)
		assert.Equal(t, "/scout_chunks_tenant_a", transport.requests[1].URL.Path)
		assert.Contains(t, transport.bodies[1], `"last_updated":{"type":"date"}`)
	})
}

func TestElasticIndexChunk(t *testing.T) {
	t.Run("Chunk without ID is rejected before any request", func(t *testing.T) {
		transport := &stubElasticTransport{}
		handler := newStubElasticHandler(t, transport)

		err := handler.IndexChunk(context.Background(), &model.RetrievedChunk{Text: "no id"}, "tenant_a")
		assert.Error(t, err, "Expected a chunk without ID to be rejected")
		assert.Empty(t, transport.requests)
	})

	t.Run("Chunk is indexed under its ID", func(t *testing.T) {
		transport := &stubElasticTransport{}
		handler := newStubElasticHandler(t, transport)
		handler.indexCache["scout_chunks_tenant_a"] = true

		id := uuid.New()
		chunk := &model.RetrievedChunk{
			ID:         id,
			Text:       "Alaska leads the milk segment in NCR",
			SourceType: model.SourceTypeMarketData,
			Metadata:   model.ChunkMetadata{Domain: "dairy", Confidence: 0.9},
		}
		require.NoError(t, handler.IndexChunk(context.Background(), chunk, "tenant_a"))
		require.Len(t, transport.requests, 1)
		assert.Equal(t, http.MethodPut, transport.requests[0].Method)
		assert.Contains(t, transport.requests[0].URL.Path, id.String())
		assert.Contains(t, transport.bodies[0], "Alaska leads the milk segment")
		assert.Contains(t, transport.bodies[0], `"domain":"dairy"`)
	})
}

func TestElasticSelectChunksByLexical(t *testing.T) {
	searchBody := func(t *testing.T, transport *stubElasticTransport) map[string]interface{} {
		require.NotEmpty(t, transport.bodies)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(transport.bodies[len(transport.bodies)-1]), &body))
		return body
	}

	t.Run("Query body carries the match and the limit", func(t *testing.T) {
		transport := &stubElasticTransport{}
		handler := newStubElasticHandler(t, transport)
		handler.indexCache["scout_chunks_tenant_a"] = true

		_, err := handler.SelectChunksByLexical(context.Background(), "alaska milk", "tenant_a", 30, nil)
		require.NoError(t, err)

		body := searchBody(t, transport)
		assert.Equal(t, float64(30), body["size"])
		assert.Contains(t, transport.bodies[0], `"content":{"query":"alaska milk"}`)
	})

	t.Run("Scope filters domains and ranges on last_updated", func(t *testing.T) {
		transport := &stubElasticTransport{}
		handler := newStubElasticHandler(t, transport)
		handler.indexCache["scout_chunks_tenant_a"] = true

		start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
		scope := &model.SearchScope{
			IncludeDomains: []string{"dairy"},
			ExcludeDomains: []string{"snacks"},
			TimeRange:      &model.TimeRange{Start: start, End: end},
		}
		_, err := handler.SelectChunksByLexical(context.Background(), "milk", "tenant_a", 30, scope)
		require.NoError(t, err)

		request := transport.bodies[0]
		assert.Contains(t, request, `"terms":{"domain":["dairy"]}`)
		assert.Contains(t, request, `"must_not":[{"terms":{"domain":["snacks"]}}]`)
		assert.Contains(t, request, `"range":{"last_updated":`, "Expected the time range to filter on last_updated like the full-text function")
		assert.NotContains(t, request, `"range":{"created_at":`)
	})

	t.Run("Hits map onto retrieved chunks with the raw score", func(t *testing.T) {
		id := uuid.New()
		hit := fmt.Sprintf(`{
			"hits": {"hits": [{
				"_id": "%s",
				"_score": 3.2,
				"_source": {
					"tenant_id": "tenant_a",
					"content": "Alaska leads the milk segment",
					"source_type": "market_data",
					"domain": "dairy",
					"entity_type": "brand",
					"confidence": 0.9,
					"last_updated": "2025-08-01T00:00:00Z",
					"created_at": "2025-08-01T00:00:00Z"
				}
			}]}
		}`, id)
		transport := &stubElasticTransport{responses: []stubElasticResponse{{status: 200, body: hit}}}
		handler := newStubElasticHandler(t, transport)
		handler.indexCache["scout_chunks_tenant_a"] = true

		chunks, err := handler.SelectChunksByLexical(context.Background(), "alaska milk", "tenant_a", 30, nil)
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, id, chunks[0].ID)
		assert.Equal(t, "Alaska leads the milk segment", chunks[0].Text)
		assert.Equal(t, model.SourceTypeMarketData, chunks[0].SourceType)
		assert.Equal(t, "dairy", chunks[0].Metadata.Domain)
		assert.InDelta(t, 3.2, chunks[0].LexicalScore, 1e-9, "Expected the raw score on the chunk")
	})

	t.Run("Error response fails the search", func(t *testing.T) {
		transport := &stubElasticTransport{responses: []stubElasticResponse{{status: 500, body: `{"error":"boom"}`}}}
		handler := newStubElasticHandler(t, transport)
		handler.indexCache["scout_chunks_tenant_a"] = true

		_, err := handler.SelectChunksByLexical(context.Background(), "milk", "tenant_a", 30, nil)
		assert.Error(t, err, "Expected an error response to fail the search")
	})
}

func TestElasticDeleteChunkFromIndex(t *testing.T) {
	t.Run("Missing document is tolerated", func(t *testing.T) {
		transport := &stubElasticTransport{responses: []stubElasticResponse{{status: 404, body: "{}"}}}
		handler := newStubElasticHandler(t, transport)

		err := handler.DeleteChunkFromIndex(context.Background(), uuid.New(), "tenant_a")
		assert.NoError(t, err, "Expected a 404 on delete to be tolerated")
	})

	t.Run("Other error responses fail the delete", func(t *testing.T) {
		transport := &stubElasticTransport{responses: []stubElasticResponse{{status: 500, body: `{"error":"boom"}`}}}
		handler := newStubElasticHandler(t, transport)

		err := handler.DeleteChunkFromIndex(context.Background(), uuid.New(), "tenant_a")
		assert.Error(t, err)
	})
}
