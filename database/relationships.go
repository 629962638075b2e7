package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
	loadSql "github.com/siherrmann/scout/sql"
)

// RelationshipsDBHandlerFunctions defines the interface for Relationships database operations.
type RelationshipsDBHandlerFunctions interface {
	InsertRelationship(rel *model.GraphRelationship, tenantID string) error
	SelectRelationshipsForEntity(ctx context.Context, entity string, tenantID string, limit int) ([]*model.GraphRelationship, error)
	DeleteRelationship(id uuid.UUID) error
}

// RelationshipsDBHandler handles relationship-related database operations
type RelationshipsDBHandler struct {
	db *helper.Database
}

// NewRelationshipsDBHandler creates a new relationships database handler.
// It initializes the database connection and loads relationship-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewRelationshipsDBHandler(db *helper.Database, force bool) (*RelationshipsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	relationshipsDbHandler := &RelationshipsDBHandler{
		db: db,
	}

	err := loadSql.LoadRelationshipsSql(relationshipsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load relationships sql", err)
	}

	err = relationshipsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized RelationshipsDBHandler")

	return relationshipsDbHandler, nil
}

// CreateTable creates the 'relationships' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *RelationshipsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_relationships();`)
	if err != nil {
		log.Panicf("error initializing relationships table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table relationships")

	return nil
}

// InsertRelationship inserts a new relationship (or updates the strength if
// the triple already exists)
func (h *RelationshipsDBHandler) InsertRelationship(rel *model.GraphRelationship, tenantID string) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_relationship($1, $2, $3, $4, $5)`,
		tenantID,
		rel.SourceEntity,
		rel.TargetEntity,
		rel.RelationshipType,
		rel.Strength,
	)

	var scanTenant string
	err := row.Scan(
		&rel.ID,
		&scanTenant,
		&rel.SourceEntity,
		&rel.TargetEntity,
		&rel.RelationshipType,
		&rel.Strength,
		&rel.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRelationshipsForEntity retrieves the direct relationships of an
// entity ordered by strength descending. PathLength is set to 1, the
// traverser adjusts it for deeper hops.
func (h *RelationshipsDBHandler) SelectRelationshipsForEntity(ctx context.Context, entity string, tenantID string, limit int) ([]*model.GraphRelationship, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_relationships_for_entity($1, $2, $3)`,
		entity,
		tenantID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var relationships []*model.GraphRelationship
	for rows.Next() {
		rel := &model.GraphRelationship{PathLength: 1}
		var scanTenant string
		err := rows.Scan(
			&rel.ID,
			&scanTenant,
			&rel.SourceEntity,
			&rel.TargetEntity,
			&rel.RelationshipType,
			&rel.Strength,
			&rel.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		relationships = append(relationships, rel)
	}

	return relationships, rows.Err()
}

// DeleteRelationship deletes a relationship by ID
func (h *RelationshipsDBHandler) DeleteRelationship(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_relationship($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
