package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/scout"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	s, err := scout.NewScout(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create scout: %v", err)
	}
	defer s.Close()

	// Set up the default local embedding model (all-MiniLM-L6-v2)
	if err := s.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	tenantID := "example_tenant"

	// Ingest a few knowledge chunks
	fmt.Println("Ingesting knowledge chunks...")
	chunks := []*model.RetrievedChunk{
		{
			Text:       "Alaska leads the evaporated milk segment in NCR with 38% market share",
			SourceType: model.SourceTypeMarketData,
			Metadata:   model.ChunkMetadata{Domain: "dairy", EntityType: "brand", Confidence: 0.9},
		},
		{
			Text:       "Bear Brand cut suggested retail prices on powdered milk in Luzon last quarter",
			SourceType: model.SourceTypeCompetitiveIntel,
			Metadata:   model.ChunkMetadata{Domain: "dairy", EntityType: "brand", Confidence: 0.8},
		},
		{
			Text:       "Promotions during the rainy season historically lift canned milk sales by 12%",
			SourceType: model.SourceTypeHistoricalInsight,
			Metadata:   model.ChunkMetadata{Domain: "dairy", Confidence: 0.7},
		},
	}
	for _, chunk := range chunks {
		if err := s.InsertChunk(chunk, tenantID); err != nil {
			log.Fatalf("Failed to insert chunk: %v", err)
		}
	}

	// Ingest graph relationships and a competitor record
	relationships := []*model.GraphRelationship{
		{SourceEntity: "Alaska", TargetEntity: "NCR", RelationshipType: "sells_in", Strength: 0.9},
		{SourceEntity: "Alaska", TargetEntity: "Bear Brand", RelationshipType: "competes_with", Strength: 0.8},
		{SourceEntity: "Bear Brand", TargetEntity: "Nestle", RelationshipType: "owned_by", Strength: 1.0},
	}
	for _, rel := range relationships {
		if err := s.InsertRelationship(rel, tenantID); err != nil {
			log.Fatalf("Failed to insert relationship: %v", err)
		}
	}

	err = s.InsertCompetitorRecord(&model.CompetitorInsight{
		Competitor:  "Bear Brand",
		InsightType: model.InsightTypePricing,
		Text:        "Bear Brand price cuts put pressure on the mid-tier milk segment",
		Confidence:  0.8,
		Source:      "field_report",
	}, tenantID)
	if err != nil {
		log.Fatalf("Failed to insert competitor record: %v", err)
	}

	// Run a hybrid retrieval request
	query := "How is Alaska milk performing against Bear Brand in NCR?"
	fmt.Printf("\nQuerying: %s\n", query)

	response, err := s.Retrieve(context.Background(), &model.RetrievalRequest{
		QueryContext:   query,
		TenantID:       tenantID,
		RetrievalDepth: model.DepthMedium,
	})
	if err != nil {
		log.Fatalf("Failed to retrieve: %v", err)
	}

	fmt.Printf("\nStrategy: %s (hybrid ranking: %v)\n",
		response.Metadata.SearchStrategy, response.Metadata.HybridRankingApplied)

	fmt.Printf("\nFound %d chunks:\n", len(response.Chunks))
	for i, chunk := range response.Chunks {
		fmt.Printf("\n--- Chunk %d ---\n", i+1)
		fmt.Printf("Score: %.4f (vector %.4f, lexical %.4f, boost %.4f)\n",
			chunk.RelevanceScore, chunk.VectorScore, chunk.LexicalScore, chunk.MetadataBoost)
		fmt.Printf("Text: %s\n", chunk.Text)
	}

	fmt.Printf("\nGraph paths (%d):\n", len(response.Relationships))
	for _, rel := range response.Relationships {
		fmt.Printf("  %s -[%s]-> %s (strength %.2f, hops %d)\n",
			rel.SourceEntity, rel.RelationshipType, rel.TargetEntity, rel.Strength, rel.PathLength)
	}

	fmt.Printf("\nCompetitor insights (%d):\n", len(response.Insights))
	for _, insight := range response.Insights {
		fmt.Printf("  [%s] %s (relevance %.2f)\n", insight.Competitor, insight.Text, insight.RelevanceToQuery)
	}

	fmt.Println("\nBasic example completed successfully!")
}
