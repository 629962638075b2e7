package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/siherrmann/scout/helper"
	"github.com/siherrmann/scout/model"
	loadSql "github.com/siherrmann/scout/sql"
)

// CompetitorRecordsDBHandlerFunctions defines the interface for competitor record database operations.
type CompetitorRecordsDBHandlerFunctions interface {
	InsertRecord(record *model.CompetitorInsight, tenantID string) error
	SelectRecentRecords(ctx context.Context, competitors []string, tenantID string, limit int) ([]*model.CompetitorInsight, error)
	DeleteRecord(id uuid.UUID) error
}

// CompetitorRecordsDBHandler handles competitor-record database operations
type CompetitorRecordsDBHandler struct {
	db *helper.Database
}

// NewCompetitorRecordsDBHandler creates a new competitor records database handler.
// It initializes the database connection and loads record-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewCompetitorRecordsDBHandler(db *helper.Database, force bool) (*CompetitorRecordsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	recordsDbHandler := &CompetitorRecordsDBHandler{
		db: db,
	}

	err := loadSql.LoadCompetitorRecordsSql(recordsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load competitor records sql", err)
	}

	err = recordsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized CompetitorRecordsDBHandler")

	return recordsDbHandler, nil
}

// CreateTable creates the 'competitor_records' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *CompetitorRecordsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_competitor_records();`)
	if err != nil {
		log.Panicf("error initializing competitor_records table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table competitor_records")

	return nil
}

// InsertRecord inserts a new competitor record for a tenant
func (h *CompetitorRecordsDBHandler) InsertRecord(record *model.CompetitorInsight, tenantID string) error {
	var recordedAt interface{}
	if !record.RecordedAt.IsZero() {
		recordedAt = record.RecordedAt
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_competitor_record($1, $2, $3, $4, $5, $6, $7)`,
		tenantID,
		record.Competitor,
		string(record.InsightType),
		record.Text,
		record.Confidence,
		record.Source,
		recordedAt,
	)

	var scanTenant string
	err := row.Scan(
		&record.ID,
		&scanTenant,
		&record.Competitor,
		&record.InsightType,
		&record.Text,
		&record.Confidence,
		&record.Source,
		&record.RecordedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectRecentRecords retrieves up to limit records for the named
// competitors, newest first. RelevanceToQuery is left at zero, scoring
// happens at match time.
func (h *CompetitorRecordsDBHandler) SelectRecentRecords(ctx context.Context, competitors []string, tenantID string, limit int) ([]*model.CompetitorInsight, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_recent_competitor_records($1, $2, $3)`,
		pq.Array(competitors),
		tenantID,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var records []*model.CompetitorInsight
	for rows.Next() {
		record := &model.CompetitorInsight{}
		var scanTenant string
		err := rows.Scan(
			&record.ID,
			&scanTenant,
			&record.Competitor,
			&record.InsightType,
			&record.Text,
			&record.Confidence,
			&record.Source,
			&record.RecordedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteRecord deletes a competitor record by ID
func (h *CompetitorRecordsDBHandler) DeleteRecord(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_competitor_record($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
