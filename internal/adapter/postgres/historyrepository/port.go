// Package historyrepository stores finished submission results in PostgreSQL.
package historyrepository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
	querybuilder "gitlab.com/codearena.net/internal/utils"
)

var _ secondary.HistoryRepository = (*HistoryRepository)(nil)

const defaultListLimit = 20

type HistoryRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

func NewHistoryRepository(db *sqlx.DB, logger primary.Logger, schema string) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

// EnsureSchema creates the history table when it does not exist.
func (r *HistoryRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTableQuery(r.schema)); err != nil {
		r.logger.Error("Failed to create history table", "error", err)
		return fmt.Errorf("failed to create history table: %w", err)
	}
	return nil
}

// SaveEntry upserts by submission id, so a replayed terminal view overwrites the earlier row.
func (r *HistoryRepository) SaveEntry(ctx context.Context, entry *domain.HistoryEntry) error {
	query, args := saveQuery(r.schema, entry)
	if query == "" {
		return fmt.Errorf("failed to build history insert")
	}

	if _, err := r.db.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to save history entry", "submissionId", entry.SubmissionID, "error", err)
		return fmt.Errorf("failed to save history entry: %w", err)
	}
	return nil
}

// ListEntries returns the newest entries first. An empty problemID lists every problem.
func (r *HistoryRepository) ListEntries(ctx context.Context, problemID string, limit int) ([]*domain.HistoryEntry, error) {
	query, args := listQuery(r.schema, problemID, limit)

	entries := make([]*domain.HistoryEntry, 0)
	if err := r.db.SelectContext(ctx, &entries, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to list history", "problemId", problemID, "error", err)
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return entries, nil
}

func columns() []string {
	tbl := domain.GetHistoryTable()
	return []string{
		tbl.SubmissionID, tbl.ProblemID, tbl.Language, tbl.State, tbl.RawStatus,
		tbl.Passed, tbl.Total, tbl.Percentage, tbl.ErrorText, tbl.FinishedAt,
	}
}

func saveQuery(schema string, e *domain.HistoryEntry) (string, []interface{}) {
	tbl := domain.GetHistoryTable()
	cols := columns()
	return querybuilder.NewQueryBuilder(schema).
		Insert(cols...).
		Into(tbl.TableName()).
		Values(
			e.SubmissionID, e.ProblemID, e.Language, e.State, e.RawStatus,
			e.Passed, e.Total, e.Percentage, e.ErrorText, e.FinishedAt,
		).
		OnConflict(tbl.SubmissionID).
		SetExclude(cols[1:]...).
		Build()
}

func listQuery(schema, problemID string, limit int) (string, []interface{}) {
	tbl := domain.GetHistoryTable()
	if limit <= 0 {
		limit = defaultListLimit
	}
	qb := querybuilder.NewQueryBuilder(schema).
		Select(columns()...).
		From(tbl.TableName())
	if problemID != "" {
		qb = qb.Where(tbl.ProblemID+" = ?", problemID)
	}
	return qb.OrderBy(tbl.FinishedAt, false).Limit(limit).Build()
}

func createTableQuery(schema string) string {
	tbl := domain.GetHistoryTable()
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			%s TEXT PRIMARY KEY,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s INTEGER NOT NULL DEFAULT 0,
			%s INTEGER NOT NULL DEFAULT 0,
			%s INTEGER NOT NULL DEFAULT 0,
			%s TEXT NOT NULL DEFAULT '',
			%s TIMESTAMPTZ NOT NULL
		)`,
		schema, tbl.TableName(),
		tbl.SubmissionID, tbl.ProblemID, tbl.Language, tbl.State, tbl.RawStatus,
		tbl.Passed, tbl.Total, tbl.Percentage, tbl.ErrorText, tbl.FinishedAt,
	)
}
