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

var automationColumns = []string{"stage_id", "dispatcher_id", "dispatcher_percentage", "updated_at"}

// AutomationRepository handles database operations for automation settings.
type AutomationRepository struct {
	pool *pgxpool.Pool
}

// NewAutomationRepository creates a new AutomationRepository.
func NewAutomationRepository(pool *pgxpool.Pool) *AutomationRepository {
	return &AutomationRepository{pool: pool}
}

func scanAutomationSetting(row pgx.Row) (*domain.AutomationSetting, error) {
	var setting domain.AutomationSetting
	err := row.Scan(
		&setting.StageID,
		&setting.DispatcherID,
		&setting.DispatcherPercentage,
		&setting.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

// GetByStage returns the default dispatcher configured for a stage.
func (r *AutomationRepository) GetByStage(ctx context.Context, stageID string) (*domain.AutomationSetting, error) {
	query, args, err := psql.
		Select(automationColumns...).
		From("automation_settings").
		Where(sq.Eq{"stage_id": stageID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByStage query for stage %s: %w", stageID, err)
	}

	setting, err := scanAutomationSetting(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAutomationSettingNotFound, stageID)
		}
		return nil, fmt.Errorf("query automation setting: %w", err)
	}
	return setting, nil
}

// List returns every automation setting ordered by stage.
func (r *AutomationRepository) List(ctx context.Context) ([]*domain.AutomationSetting, error) {
	query, args, err := psql.
		Select(automationColumns...).
		From("automation_settings").
		OrderBy("stage_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build List query for automation settings: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query automation settings: %w", err)
	}
	defer rows.Close()

	var settings []*domain.AutomationSetting
	for rows.Next() {
		setting, err := scanAutomationSetting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan automation setting: %w", err)
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate automation settings: %w", err)
	}
	return settings, nil
}

// Upsert validates and stores a setting, replacing any existing one for the stage.
func (r *AutomationRepository) Upsert(ctx context.Context, setting *domain.AutomationSetting) error {
	if err := setting.Validate(); err != nil {
		return err
	}

	query, args, err := psql.
		Insert("automation_settings").
		Columns("stage_id", "dispatcher_id", "dispatcher_percentage").
		Values(setting.StageID, setting.DispatcherID, setting.DispatcherPercentage).
		Suffix(`ON CONFLICT (stage_id) DO UPDATE SET
			dispatcher_id = EXCLUDED.dispatcher_id,
			dispatcher_percentage = EXCLUDED.dispatcher_percentage,
			updated_at = NOW()
			RETURNING updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build Upsert query for stage %s: %w", setting.StageID, err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&setting.UpdatedAt); err != nil {
		return fmt.Errorf("upsert automation setting %s: %w", setting.StageID, err)
	}
	return nil
}
