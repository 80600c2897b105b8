package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/usira-okay/release-kit/internal/apperrors"
)

const handoffTable = "handoff_entries"

type HandoffRepository struct {
	db  *sqlx.DB
	log *slog.Logger
	sq  sq.StatementBuilderType
}

func NewHandoffRepository(db *sqlx.DB, log *slog.Logger) *HandoffRepository {
	return &HandoffRepository{
		db:  db,
		log: log,
		sq:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *HandoffRepository) Get(ctx context.Context, key string, dst any) error {
	const op = "internal.repository.postgres.HandoffRepository.Get"

	query, args, err := r.sq.Select("value").
		From(handoffTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build query: %w", op, err)
	}

	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%s: %w: handoff key '%s'", op, apperrors.ErrNotFound, key)
		}

		return fmt.Errorf("%s: failed to execute query: %w", op, err)
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: failed to decode value of '%s': %w", op, key, err)
	}

	return nil
}

func (r *HandoffRepository) Put(ctx context.Context, key string, value any) error {
	const op = "internal.repository.postgres.HandoffRepository.Put"

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: failed to encode value of '%s': %w", op, key, err)
	}

	query, args, err := r.sq.Insert(handoffTable).
		Columns("key", "value", "updated_at").
		Values(key, sq.Expr("?::jsonb", string(payload)), sq.Expr("NOW()")).
		Suffix(`ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("%s: failed to build upsert query: %w", op, err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: failed to execute upsert: %w", op, err)
	}

	r.log.Debug("handoff value stored", slog.String("op", op), slog.String("key", key), slog.Int("bytes", len(payload)))

	return nil
}
