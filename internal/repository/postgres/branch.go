package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type BranchRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewBranchRepository(db *sqlx.DB, log *slog.Logger) *BranchRepository {
	return &BranchRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *BranchRepository) ListBranches(ctx context.Context, projectPath string, prefix string) ([]string, error) {
	const op = "internal.repository.postgres.ListBranches"

	builder := r.sq.Select("name").
		From("repository_branches").
		Where(sq.Eq{"project_path": projectPath})

	if prefix != "" {
		builder = builder.Where(sq.ILike{"name": likeEscaper.Replace(prefix) + "%"})
	}

	query, args, err := builder.OrderBy("name").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	branches := []string{}
	if err := r.db.SelectContext(ctx, &branches, query, args...); err != nil {
		return nil, fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	r.log.Debug("branches listed",
		slog.String("op", op),
		slog.String("project_path", projectPath),
		slog.Int("count", len(branches)),
	)

	return branches, nil
}
