package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mtlprog/taskreview/internal/domain"
)

// OrderRepository handles database operations for orders.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	query, args, err := psql.
		Select("id", "title", "client_name", "stage", "created_at").
		From("orders").
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for order %d: %w", orderID, err)
	}

	var order domain.Order
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&order.ID,
		&order.Title,
		&order.ClientName,
		&order.Stage,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("query order: %w", err)
	}

	return &order, nil
}

// GetStage returns the order's current stage.
func (r *OrderRepository) GetStage(ctx context.Context, orderID int64) (string, error) {
	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return order.Stage, nil
}

// ListTaskIDs derives the order's task list from tasks.order_id.
func (r *OrderRepository) ListTaskIDs(ctx context.Context, orderID int64) ([]int64, error) {
	if _, err := r.GetByID(ctx, orderID); err != nil {
		return nil, err
	}

	query, args, err := psql.
		Select("id").
		From("tasks").
		Where(sq.Eq{"order_id": orderID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ListTaskIDs query for order %d: %w", orderID, err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query order tasks: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect order tasks: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// Create inserts an order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query, args, err := psql.
		Insert("orders").
		Columns("title", "client_name", "stage").
		Values(order.Title, order.ClientName, order.Stage).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build Create query for order: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&order.ID, &order.CreatedAt); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// SetStage moves an order to another stage.
func (r *OrderRepository) SetStage(ctx context.Context, orderID int64, stage string) error {
	query, args, err := psql.
		Update("orders").
		Set("stage", stage).
		Where(sq.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build SetStage query for order %d: %w", orderID, err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}
