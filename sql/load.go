package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed chunks.sql
var chunksSQL string

//go:embed relationships.sql
var relationshipsSQL string

//go:embed competitors.sql
var competitorsSQL string

// Function lists for verification
var ChunksFunctions = []string{
	"init_chunks",
	"insert_chunk",
	"select_chunk",
	"select_chunks_by_similarity",
	"select_chunks_by_lexical",
	"delete_chunk",
}

var RelationshipsFunctions = []string{
	"init_relationships",
	"insert_relationship",
	"select_relationships_for_entity",
	"delete_relationship",
}

var CompetitorRecordsFunctions = []string{
	"init_competitor_records",
	"insert_competitor_record",
	"select_recent_competitor_records",
	"delete_competitor_record",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadChunksSql loads chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ChunksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing chunks functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(chunksSQL)
	if err != nil {
		return fmt.Errorf("error executing chunks SQL: %w", err)
	}

	exist, err := checkFunctions(db, ChunksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL chunks functions loaded successfully")
	return nil
}

// LoadRelationshipsSql loads relationship-related SQL functions
func LoadRelationshipsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, RelationshipsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing relationships functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(relationshipsSQL)
	if err != nil {
		return fmt.Errorf("error executing relationships SQL: %w", err)
	}

	exist, err := checkFunctions(db, RelationshipsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL relationships functions loaded successfully")
	return nil
}

// LoadCompetitorRecordsSql loads competitor-record-related SQL functions
func LoadCompetitorRecordsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, CompetitorRecordsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing competitor records functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(competitorsSQL)
	if err != nil {
		return fmt.Errorf("error executing competitor records SQL: %w", err)
	}

	exist, err := checkFunctions(db, CompetitorRecordsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL competitor records functions loaded successfully")
	return nil
}

// checkFunctions returns true if all named SQL functions already exist
func checkFunctions(db *sql.DB, functions []string) (bool, error) {
	for _, name := range functions {
		var exists bool
		err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`, name).Scan(&exists)
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}
