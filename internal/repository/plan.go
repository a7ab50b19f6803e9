// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
)

// PlanRepository 周计划仓储
// 槽位快照与分配整体存为 JSON 列，计划是不可变文档
type PlanRepository struct {
	db DB
}

// NewPlanRepository 创建周计划仓储
func NewPlanRepository(db DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Save 保存周计划及生成摘要
func (r *PlanRepository) Save(ctx context.Context, orgID uuid.UUID, plan *model.WeekPlan, summary *model.GenerationSummary) error {
	slotsJSON, _ := json.Marshal(plan.Slots)
	assignmentsJSON, _ := json.Marshal(plan.Assignments)
	summaryJSON, _ := json.Marshal(summary)

	query := `
		INSERT INTO week_plans (
			id, org_id, week_start, seed, generated_at, projected_sales,
			slots, assignments, summary, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		plan.ID, orgID, plan.WeekStart, plan.Seed, plan.GeneratedAt, plan.ProjectedSales,
		slotsJSON, assignmentsJSON, summaryJSON, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("保存周计划失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取周计划
func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.WeekPlan, error) {
	query := `
		SELECT id, week_start, seed, generated_at, projected_sales, slots, assignments
		FROM week_plans
		WHERE id = $1
	`

	return r.scanPlan(r.db.QueryRowContext(ctx, query, id))
}

// GetLatestForWeek 获取某周最近一次生成的计划
func (r *PlanRepository) GetLatestForWeek(ctx context.Context, orgID uuid.UUID, weekStart string) (*model.WeekPlan, error) {
	query := `
		SELECT id, week_start, seed, generated_at, projected_sales, slots, assignments
		FROM week_plans
		WHERE org_id = $1 AND week_start = $2
		ORDER BY generated_at DESC
		LIMIT 1
	`

	return r.scanPlan(r.db.QueryRowContext(ctx, query, orgID, weekStart))
}

// List 查询周计划列表（不含槽位与分配明细）
func (r *PlanRepository) List(ctx context.Context, orgID uuid.UUID, filter ListFilter) ([]*model.WeekPlan, int, error) {
	countQuery := `SELECT COUNT(*) FROM week_plans WHERE org_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := `
		SELECT id, week_start, seed, generated_at, projected_sales
		FROM week_plans
		WHERE org_id = $1
		ORDER BY generated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, orgID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var plans []*model.WeekPlan
	for rows.Next() {
		plan := &model.WeekPlan{}
		if err := rows.Scan(&plan.ID, &plan.WeekStart, &plan.Seed, &plan.GeneratedAt, &plan.ProjectedSales); err != nil {
			return nil, 0, fmt.Errorf("扫描周计划数据失败: %w", err)
		}
		plans = append(plans, plan)
	}

	return plans, total, nil
}

// Delete 删除周计划
func (r *PlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM week_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("删除周计划失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("周计划不存在")
	}

	return nil
}

// scanPlan 扫描单行周计划数据
func (r *PlanRepository) scanPlan(row *sql.Row) (*model.WeekPlan, error) {
	plan := &model.WeekPlan{}
	var slotsJSON, assignmentsJSON []byte

	err := row.Scan(
		&plan.ID, &plan.WeekStart, &plan.Seed, &plan.GeneratedAt, &plan.ProjectedSales,
		&slotsJSON, &assignmentsJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描周计划数据失败: %w", err)
	}

	json.Unmarshal(slotsJSON, &plan.Slots)
	json.Unmarshal(assignmentsJSON, &plan.Assignments)

	return plan, nil
}
