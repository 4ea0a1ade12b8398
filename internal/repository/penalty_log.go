package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/taskreview/internal/domain"
)

// PenaltyLogRepository handles the append-only admin penalty log.
type PenaltyLogRepository struct {
	pool *pgxpool.Pool
}

// NewPenaltyLogRepository creates a new PenaltyLogRepository.
func NewPenaltyLogRepository(pool *pgxpool.Pool) *PenaltyLogRepository {
	return &PenaltyLogRepository{pool: pool}
}

// Append records a penalty and fills in its id and timestamp.
func (r *PenaltyLogRepository) Append(ctx context.Context, entry *domain.AdminPenaltyLogEntry) error {
	query, args, err := psql.
		Insert("admin_penalty_log").
		Columns("task_id", "admin_id", "dispatcher_id", "penalty_amount", "reason").
		Values(entry.TaskID, entry.AdminID, entry.DispatcherID, entry.PenaltyAmount, entry.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("append penalty log: %w", err)
	}

	return nil
}

// ListByTask retrieves all penalties recorded against a task.
func (r *PenaltyLogRepository) ListByTask(ctx context.Context, taskID int64) ([]*domain.AdminPenaltyLogEntry, error) {
	query, args, err := psql.
		Select("id", "task_id", "admin_id", "dispatcher_id", "penalty_amount", "reason", "created_at").
		From("admin_penalty_log").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query penalty log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AdminPenaltyLogEntry
	for rows.Next() {
		var entry domain.AdminPenaltyLogEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TaskID,
			&entry.AdminID,
			&entry.DispatcherID,
			&entry.PenaltyAmount,
			&entry.Reason,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan penalty log entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
