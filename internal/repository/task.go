package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

// taskColumns is the shared list of columns for task queries.
var taskColumns = []string{
	"id", "uuid", "title", "description", "status",
	"responsible_user_id", "order_id", "due_date", "original_deadline", "is_locked",
	"salary", "dispatcher_id", "dispatcher_percentage", "dispatcher_reward_amount",
	"dispatcher_reward_applied", "dispatcher_reward_applied_at", "penalty_applied",
	"completed_at", "execution_time_seconds", "created_at", "updated_at",
}

var returningTask = "RETURNING " + strings.Join(taskColumns, ", ")

// TaskRepository handles database operations for tasks and their review ledger.
type TaskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// taskScan holds the scan destinations for one task row.
type taskScan struct {
	task       domain.Task
	salary     decimal.NullDecimal
	percentage decimal.NullDecimal
	reward     decimal.NullDecimal
}

func (s *taskScan) dest() []any {
	return []any{
		&s.task.ID,
		&s.task.UUID,
		&s.task.Title,
		&s.task.Description,
		&s.task.Status,
		&s.task.ResponsibleUserID,
		&s.task.OrderID,
		&s.task.DueDate,
		&s.task.OriginalDeadline,
		&s.task.IsLocked,
		&s.salary,
		&s.task.DispatcherID,
		&s.percentage,
		&s.reward,
		&s.task.DispatcherRewardApplied,
		&s.task.DispatcherRewardAppliedAt,
		&s.task.PenaltyApplied,
		&s.task.CompletedAt,
		&s.task.ExecutionTimeSeconds,
		&s.task.CreatedAt,
		&s.task.UpdatedAt,
	}
}

func (s *taskScan) result() *domain.Task {
	task := s.task
	task.Salary = decimalPtr(s.salary)
	task.DispatcherPercentage = decimalPtr(s.percentage)
	task.DispatcherRewardAmount = decimalPtr(s.reward)
	return &task
}

// scanTask scans a single row into a Task struct.
func scanTask(row pgx.Row) (*domain.Task, error) {
	var s taskScan
	if err := row.Scan(s.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return s.result(), nil
}

// scanTasks scans multiple rows into a slice of Task structs.
func scanTasks(rows pgx.Rows) ([]*domain.Task, error) {
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return tasks, nil
}

// GetByID retrieves a task by ID together with its review ledger.
func (r *TaskRepository) GetByID(ctx context.Context, taskID int64) (*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for task %d: %w", taskID, err)
	}

	task, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	task.ReviewReturns, err = r.ledger(ctx, r.pool, taskID)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ledger loads the review returns of a task in return order.
func (r *TaskRepository) ledger(ctx context.Context, q querier, taskID int64) (domain.ReviewLedger, error) {
	query, args, err := psql.
		Select("task_id", "return_number", "comment", "returned_at").
		From("review_returns").
		Where(sq.Eq{"task_id": taskID}).
		OrderBy("return_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ledger query for task %d: %w", taskID, err)
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query review returns: %w", err)
	}
	defer rows.Close()

	ledger := domain.ReviewLedger{}
	for rows.Next() {
		var entry domain.ReviewReturn
		if err := rows.Scan(&entry.TaskID, &entry.ReturnNumber, &entry.Comment, &entry.ReturnedAt); err != nil {
			return nil, fmt.Errorf("scan review return: %w", err)
		}
		ledger = append(ledger, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review returns: %w", err)
	}
	return ledger, nil
}

// conflict explains a conditional update that matched no row.
func (r *TaskRepository) conflict(ctx context.Context, taskID int64) error {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)", taskID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check task %d: %w", taskID, err)
	}
	if !exists {
		return domain.ErrTaskNotFound
	}
	return domain.ErrConcurrentUpdate
}

// execCAS runs a conditional update and maps zero affected rows to a conflict.
func (r *TaskRepository) execCAS(ctx context.Context, taskID int64, qb sq.UpdateBuilder, op string) error {
	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query for task %d: %w", op, taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s task %d: %w", op, taskID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.conflict(ctx, taskID)
	}
	return nil
}

// SubmitForReview moves an active task to under_review and locks it.
// The original deadline is taken from the due date only on the first submission,
// and the assignment only fills an empty dispatcher.
func (r *TaskRepository) SubmitForReview(
	ctx context.Context,
	taskID int64,
	assignment *domain.DispatcherAssignment,
) (*domain.Task, error) {
	qb := psql.
		Update("tasks").
		Set("status", domain.TaskStatusUnderReview).
		Set("is_locked", true).
		Set("original_deadline", sq.Expr("COALESCE(original_deadline, due_date)")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":     taskID,
			"status": []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress},
		}).
		Suffix(returningTask)

	if assignment != nil {
		// right-hand sides see the pre-update row
		qb = qb.
			Set("dispatcher_percentage", sq.Expr(
				"CASE WHEN dispatcher_id IS NULL THEN CAST(? AS NUMERIC) ELSE dispatcher_percentage END",
				assignment.DispatcherPercentage,
			)).
			Set("dispatcher_id", sq.Expr("COALESCE(dispatcher_id, CAST(? AS UUID))", assignment.DispatcherID))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SubmitForReview query for task %d: %w", taskID, err)
	}

	task, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, r.conflict(ctx, taskID)
		}
		return nil, err
	}
	return task, nil
}

// ReturnForRework appends the next review return and reopens the task in one transaction.
func (r *TaskRepository) ReturnForRework(
	ctx context.Context,
	taskID int64,
	comment string,
	returnedAt time.Time,
) (*domain.ReviewReturn, error) {
	var entry domain.ReviewReturn

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		var status domain.TaskStatus
		err := tx.QueryRow(ctx, "SELECT status FROM tasks WHERE id = $1 FOR UPDATE", taskID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrTaskNotFound
			}
			return fmt.Errorf("lock task %d: %w", taskID, err)
		}
		if status != domain.TaskStatusUnderReview {
			return domain.ErrConcurrentUpdate
		}

		ledger, err := r.ledger(ctx, tx, taskID)
		if err != nil {
			return err
		}
		entry, err = ledger.Next(taskID, comment, returnedAt)
		if err != nil {
			return err
		}
		if _, err := ledger.Append(entry); err != nil {
			return err
		}

		query, args, err := psql.
			Insert("review_returns").
			Columns("task_id", "return_number", "comment", "returned_at").
			Values(entry.TaskID, entry.ReturnNumber, entry.Comment, entry.ReturnedAt).
			ToSql()
		if err != nil {
			return fmt.Errorf("build review return insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert review return: %w", err)
		}

		query, args, err = psql.
			Update("tasks").
			Set("status", domain.TaskStatusInProgress).
			Set("is_locked", false).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": taskID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build reopen query for task %d: %w", taskID, err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("reopen task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Settle completes an under-review task whose reward has not been applied yet.
func (r *TaskRepository) Settle(ctx context.Context, taskID int64, s domain.Settlement) error {
	qb := psql.
		Update("tasks").
		Set("status", domain.TaskStatusCompleted).
		Set("completed_at", s.CompletedAt).
		Set("execution_time_seconds", s.ExecutionTimeSeconds).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":                        taskID,
			"status":                    domain.TaskStatusUnderReview,
			"dispatcher_reward_applied": false,
		})

	if s.RewardApplied() {
		qb = qb.
			Set("dispatcher_reward_amount", *s.RewardAmount).
			Set("dispatcher_reward_applied", true).
			Set("dispatcher_reward_applied_at", s.CompletedAt)
	}

	return r.execCAS(ctx, taskID, qb, "settle")
}

// Unsettle reverts Settle for a task that has not been penalized.
func (r *TaskRepository) Unsettle(ctx context.Context, taskID int64) error {
	qb := psql.
		Update("tasks").
		Set("status", domain.TaskStatusUnderReview).
		Set("completed_at", nil).
		Set("execution_time_seconds", nil).
		Set("dispatcher_reward_amount", nil).
		Set("dispatcher_reward_applied", false).
		Set("dispatcher_reward_applied_at", nil).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":              taskID,
			"status":          domain.TaskStatusCompleted,
			"penalty_applied": false,
		})

	return r.execCAS(ctx, taskID, qb, "unsettle")
}

// ClaimPenalty sets penalty_applied on a rewarded, unpenalized task.
func (r *TaskRepository) ClaimPenalty(ctx context.Context, taskID int64) error {
	qb := psql.
		Update("tasks").
		Set("penalty_applied", true).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{
			"id":                        taskID,
			"dispatcher_reward_applied": true,
			"penalty_applied":           false,
		})

	return r.execCAS(ctx, taskID, qb, "claim penalty")
}

// ReleasePenalty clears penalty_applied.
func (r *TaskRepository) ReleasePenalty(ctx context.Context, taskID int64) error {
	qb := psql.
		Update("tasks").
		Set("penalty_applied", false).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": taskID})

	return r.execCAS(ctx, taskID, qb, "release penalty")
}

// Delete removes a task. Review returns and completed-task rows cascade.
func (r *TaskRepository) Delete(ctx context.Context, taskID int64) error {
	query, args, err := psql.
		Delete("tasks").
		Where(sq.Eq{"id": taskID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Delete query for task %d: %w", taskID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ListUncreditedSettlements finds rewarded tasks whose worker has no completed-task row.
func (r *TaskRepository) ListUncreditedSettlements(ctx context.Context) ([]*domain.Task, error) {
	query, args, err := psql.
		Select(taskColumns...).
		From("tasks t").
		Where(sq.Eq{
			"t.status":                    domain.TaskStatusCompleted,
			"t.dispatcher_reward_applied": true,
		}).
		Where(sq.NotEq{"t.responsible_user_id": nil}).
		Where("t.salary > 0").
		Where("NOT EXISTS (SELECT 1 FROM completed_tasks ct WHERE ct.task_id = t.id AND ct.worker_id = t.responsible_user_id)").
		OrderBy("t.completed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListUncreditedSettlements query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query uncredited settlements: %w", err)
	}

	return scanTasks(rows)
}

// Create inserts a task and returns it with generated fields populated.
func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}

	query, args, err := psql.
		Insert("tasks").
		Columns(
			"title", "description", "status", "responsible_user_id", "order_id",
			"due_date", "salary", "dispatcher_id", "dispatcher_percentage",
		).
		Values(
			task.Title,
			task.Description,
			task.Status,
			task.ResponsibleUserID,
			task.OrderID,
			task.DueDate,
			nullDecimal(task.Salary),
			task.DispatcherID,
			nullDecimal(task.DispatcherPercentage),
		).
		Suffix(returningTask).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query for task: %w", err)
	}

	created, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	created.ReviewReturns = domain.ReviewLedger{}
	return created, nil
}
