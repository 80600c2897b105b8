package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/usira-okay/release-kit/internal/apperrors"
	"github.com/usira-okay/release-kit/internal/domain"
)

// WorkItemRepository reads the work item snapshots the tracker adapter
// mirrors into the work_items table.
type WorkItemRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewWorkItemRepository(db *sqlx.DB, log *slog.Logger) *WorkItemRepository {
	return &WorkItemRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *WorkItemRepository) GetWorkItem(ctx context.Context, id int) (*domain.PlanningItem, error) {
	const op = "internal.repository.postgres.GetWorkItem"

	query, args, err := r.sq.Select("id", "title", "type", "state", "url", "area_path", "parent_id").
		From("work_items").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var item domain.PlanningItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w: work item %d", op, apperrors.ErrNotFound, id)
		}

		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	item.IsSuccess = true

	return &item, nil
}
