package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

var userColumns = []string{"id", "full_name", "role", "token", "salary", "created_at"}

// UserRepository handles database operations for users and their salary.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Role,
		&user.Token,
		&user.Salary,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// GetByToken finds a user by authentication token.
func (r *UserRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"token": token}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// GetByID retrieves a user with the completed-task list.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	query, args, err = psql.
		Select("task_id", "payment", "has_penalty", "completed_at").
		From("completed_tasks").
		Where(sq.Eq{"worker_id": userID}).
		OrderBy("completed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build completed tasks query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completed tasks: %w", err)
	}
	defer rows.Close()

	user.CompletedTasks = []domain.CompletedTask{}
	for rows.Next() {
		var ct domain.CompletedTask
		if err := rows.Scan(&ct.TaskID, &ct.Payment, &ct.HasPenalty, &ct.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan completed task: %w", err)
		}
		user.CompletedTasks = append(user.CompletedTasks, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed tasks: %w", err)
	}

	return user, nil
}

// Create inserts a user and fills in the generated id and timestamp.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query, args, err := psql.
		Insert("users").
		Columns("full_name", "role", "token", "salary").
		Values(user.FullName, user.Role, user.Token, user.Salary).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// AdjustSalary adds delta to the balance in one statement and returns the result.
// There is no floor; penalties may drive a balance negative.
func (r *UserRepository) AdjustSalary(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query, args, err := psql.
		Update("users").
		Set("salary", sq.Expr("salary + CAST(? AS NUMERIC)", delta)).
		Where(sq.Eq{"id": userID}).
		Suffix("RETURNING salary").
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build AdjustSalary query for user %s: %w", userID, err)
	}

	var salary decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&salary); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrUserNotFound
		}
		return decimal.Zero, fmt.Errorf("adjust salary of user %s: %w", userID, err)
	}
	return salary, nil
}

// CreditWorkerForTask records the payment through the privileged procedure,
// which credits the salary only for a task the worker has not been paid for.
func (r *UserRepository) CreditWorkerForTask(
	ctx context.Context,
	workerID string,
	taskID int64,
	payment decimal.Decimal,
	hasPenalty bool,
) (bool, error) {
	var credited bool
	err := r.pool.QueryRow(ctx,
		"SELECT add_completed_task_and_salary($1, $2, $3, $4)",
		workerID, taskID, payment, hasPenalty,
	).Scan(&credited)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "P0002" {
			return false, domain.ErrUserNotFound
		}
		return false, fmt.Errorf("credit worker %s for task %d: %w", workerID, taskID, err)
	}
	return credited, nil
}

// ReverseWorkerCredit debits amount with a floor at zero and removes the
// completed-task row, atomically. The debit applies even when no row existed.
func (r *UserRepository) ReverseWorkerCredit(
	ctx context.Context,
	workerID string,
	taskID int64,
	amount decimal.Decimal,
) (decimal.Decimal, error) {
	var salary decimal.Decimal

	err := withTx(ctx, r.pool, func(tx pgx.Tx) error {
		query, args, err := psql.
			Update("users").
			Set("salary", sq.Expr("GREATEST(0, salary - CAST(? AS NUMERIC))", amount)).
			Where(sq.Eq{"id": workerID}).
			Suffix("RETURNING salary").
			ToSql()
		if err != nil {
			return fmt.Errorf("build debit query for user %s: %w", workerID, err)
		}
		if err := tx.QueryRow(ctx, query, args...).Scan(&salary); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("debit worker %s: %w", workerID, err)
		}

		query, args, err = psql.
			Delete("completed_tasks").
			Where(sq.Eq{"worker_id": workerID, "task_id": taskID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build completed task delete: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("remove completed task: %w", err)
		}
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return salary, nil
}
