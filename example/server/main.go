package main

import (
	"context"
	"log"

	"github.com/siherrmann/scout"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/server"
)

// Runs the retrieval engine behind the HTTP API on a disposable
// PostgreSQL container. Try it with:
//
//	curl -X POST localhost:8080/retrieve \
//	  -d '{"queryContext":"alaska milk prices","tenantId":"demo"}'
func main() {
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

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

	if err := s.UseDefaultEmbedder(); err != nil {
		log.Fatalf("Failed to set up embedder: %v", err)
	}

	srv, err := server.NewServer(s, nil)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.ListenAndServe(":8080"); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
