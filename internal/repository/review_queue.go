package repository

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/mtlprog/taskreview/internal/domain"
)

// ReviewQueueFilters selects a page of the review queue.
type ReviewQueueFilters struct {
	DispatcherID *string   // Optional: only tasks reviewed by this dispatcher
	Now          time.Time // Reference instant for overdue flags
	Limit        int
	Offset       int
}

// ReviewQueueItem is an under-review task with the context a reviewer needs.
type ReviewQueueItem struct {
	Task         *domain.Task
	WorkerName   *string
	OrderTitle   *string
	ClientName   *string
	ReturnsCount int
	IsOverdue    bool
}

// ReviewQueue holds one page of the queue and totals over the whole queue.
type ReviewQueue struct {
	Items        []ReviewQueueItem
	Total        int
	OverdueCount int
}

func (f ReviewQueueFilters) apply(qb sq.SelectBuilder) sq.SelectBuilder {
	qb = qb.Where(sq.Eq{"t.status": domain.TaskStatusUnderReview})
	if f.DispatcherID != nil {
		qb = qb.Where(sq.Eq{"t.dispatcher_id": *f.DispatcherID})
	}
	return qb
}

// ReviewQueue lists under-review tasks ordered by due date, earliest first.
func (r *TaskRepository) ReviewQueue(ctx context.Context, filters ReviewQueueFilters) (*ReviewQueue, error) {
	columns := make([]string, 0, len(taskColumns)+4)
	for _, c := range taskColumns {
		columns = append(columns, "t."+c)
	}
	columns = append(columns,
		"u.full_name",
		"o.title",
		"o.client_name",
		"(SELECT COUNT(*) FROM review_returns rr WHERE rr.task_id = t.id)",
	)

	qb := filters.apply(psql.Select(columns...).
		From("tasks t").
		LeftJoin("users u ON u.id = t.responsible_user_id").
		LeftJoin("orders o ON o.id = t.order_id")).
		OrderBy("t.due_date ASC NULLS LAST", "t.id ASC").
		Limit(uint64(filters.Limit)).
		Offset(uint64(filters.Offset))

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ReviewQueue query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review queue: %w", err)
	}
	defer rows.Close()

	queue := &ReviewQueue{Items: []ReviewQueueItem{}}
	for rows.Next() {
		var s taskScan
		var item ReviewQueueItem
		dest := append(s.dest(), &item.WorkerName, &item.OrderTitle, &item.ClientName, &item.ReturnsCount)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan review queue row: %w", err)
		}
		item.Task = s.result()
		item.IsOverdue = item.Task.IsOverdue(filters.Now)
		queue.Items = append(queue.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	countQuery, countArgs, err := filters.apply(psql.
		Select("COUNT(*)").
		Column(sq.Expr("COUNT(*) FILTER (WHERE t.original_deadline < ?)", filters.Now)).
		From("tasks t")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&queue.Total, &queue.OverdueCount); err != nil {
		return nil, fmt.Errorf("count review queue: %w", err)
	}

	return queue, nil
}
