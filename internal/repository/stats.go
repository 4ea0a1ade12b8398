package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StatsFilters holds filters for statistics queries.
type StatsFilters struct {
	DispatcherID *string // Optional: filter by specific dispatcher
	Now          time.Time
}

// DispatcherStatsResult holds review and money totals for one dispatcher.
type DispatcherStatsResult struct {
	DispatcherID    string
	FullName        string
	UnderReview     int
	Completed       int
	OverdueInReview int
	TotalRewards    decimal.Decimal
	TotalPenalties  decimal.Decimal
}

// GetDispatcherStats aggregates the review workload and earnings of dispatchers.
func (r *TaskRepository) GetDispatcherStats(ctx context.Context, filters StatsFilters) ([]DispatcherStatsResult, error) {
	query := `
		SELECT
			u.id,
			u.full_name,
			COUNT(t.id) FILTER (WHERE t.status = 'under_review') AS under_review,
			COUNT(t.id) FILTER (WHERE t.status = 'completed') AS completed,
			COUNT(t.id) FILTER (WHERE t.status = 'under_review' AND t.original_deadline < $1) AS overdue_in_review,
			COALESCE(SUM(t.dispatcher_reward_amount) FILTER (WHERE t.dispatcher_reward_applied), 0) AS total_rewards,
			COALESCE((
				SELECT SUM(p.penalty_amount) FROM admin_penalty_log p WHERE p.dispatcher_id = u.id
			), 0) AS total_penalties
		FROM users u
		LEFT JOIN tasks t ON t.dispatcher_id = u.id
		WHERE u.role = 'dispatcher'
	`

	args := []interface{}{filters.Now}

	// Filter by specific dispatcher if provided
	if filters.DispatcherID != nil {
		query += " AND u.id = $2"
		args = append(args, *filters.DispatcherID)
	}

	query += " GROUP BY u.id, u.full_name ORDER BY u.full_name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query dispatcher stats: %w", err)
	}
	defer rows.Close()

	results := []DispatcherStatsResult{}
	for rows.Next() {
		var result DispatcherStatsResult
		err := rows.Scan(
			&result.DispatcherID,
			&result.FullName,
			&result.UnderReview,
			&result.Completed,
			&result.OverdueInReview,
			&result.TotalRewards,
			&result.TotalPenalties,
		)
		if err != nil {
			return nil, fmt.Errorf("scan dispatcher stats: %w", err)
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dispatcher stats rows: %w", err)
	}

	return results, nil
}
