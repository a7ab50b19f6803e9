// Package repository 提供数据访问层
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
)

// ProjectionRepository 营业额预测与需求调整仓储
type ProjectionRepository struct {
	db DB
}

// NewProjectionRepository 创建预测仓储
func NewProjectionRepository(db DB) *ProjectionRepository {
	return &ProjectionRepository{db: db}
}

// Upsert 写入或覆盖某日的营业额预测
func (r *ProjectionRepository) Upsert(ctx context.Context, orgID uuid.UUID, p *model.Projection) error {
	query := `
		INSERT INTO projections (org_id, day, sales, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (org_id, day) DO UPDATE SET sales = $3, updated_at = $4
	`

	_, err := r.db.ExecContext(ctx, query, orgID, p.Day, p.Sales, time.Now())
	if err != nil {
		return fmt.Errorf("写入营业额预测失败: %w", err)
	}

	return nil
}

// ListRange 查询日期区间内的预测，按日期升序
func (r *ProjectionRepository) ListRange(ctx context.Context, orgID uuid.UUID, startDay, endDay string) ([]model.Projection, error) {
	query := `
		SELECT day, sales
		FROM projections
		WHERE org_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("查询营业额预测失败: %w", err)
	}
	defer rows.Close()

	var projections []model.Projection
	for rows.Next() {
		var p model.Projection
		if err := rows.Scan(&p.Day, &p.Sales); err != nil {
			return nil, fmt.Errorf("扫描预测数据失败: %w", err)
		}
		projections = append(projections, p)
	}

	return projections, nil
}

// CreateModifier 创建需求调整项
func (r *ProjectionRepository) CreateModifier(ctx context.Context, orgID uuid.UUID, m *model.Modifier) (uuid.UUID, error) {
	id := uuid.New()
	query := `
		INSERT INTO modifiers (id, org_id, name, day, kind, value, start_minute, end_minute, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		id, orgID, m.Name, m.Day, m.Kind, m.Value, m.StartMinute, m.EndMinute, time.Now(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("创建需求调整项失败: %w", err)
	}

	return id, nil
}

// ListModifiersRange 查询日期区间内的调整项，按日期、名称升序
func (r *ProjectionRepository) ListModifiersRange(ctx context.Context, orgID uuid.UUID, startDay, endDay string) ([]model.Modifier, error) {
	query := `
		SELECT name, day, kind, value, start_minute, end_minute
		FROM modifiers
		WHERE org_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC, name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("查询需求调整项失败: %w", err)
	}
	defer rows.Close()

	var modifiers []model.Modifier
	for rows.Next() {
		var m model.Modifier
		if err := rows.Scan(&m.Name, &m.Day, &m.Kind, &m.Value, &m.StartMinute, &m.EndMinute); err != nil {
			return nil, fmt.Errorf("扫描调整项数据失败: %w", err)
		}
		modifiers = append(modifiers, m)
	}

	return modifiers, nil
}

// DeleteModifier 删除需求调整项
func (r *ProjectionRepository) DeleteModifier(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM modifiers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除需求调整项失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("调整项不存在")
	}

	return nil
}
