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

// PolicyRepository 排班策略仓储
type PolicyRepository struct {
	db DB
}

// NewPolicyRepository 创建策略仓储
func NewPolicyRepository(db DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Create 创建策略
func (r *PolicyRepository) Create(ctx context.Context, p *model.Policy) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	guardrailsJSON, _ := json.Marshal(p.Guardrails)
	budgetJSON, _ := json.Marshal(p.Budget)
	hoursJSON, _ := json.Marshal(p.Hours)
	blocksJSON, _ := json.Marshal(p.Blocks)
	groupsJSON, _ := json.Marshal(p.Groups)
	coverageJSON, _ := json.Marshal(p.Coverage)

	query := `
		INSERT INTO policies (
			id, name, active, guardrails, budget, hours, blocks, groups, coverage,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Active,
		guardrailsJSON, budgetJSON, hoursJSON, blocksJSON, groupsJSON, coverageJSON,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建策略失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取策略
func (r *PolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Policy, error) {
	query := `
		SELECT id, name, active, guardrails, budget, hours, blocks, groups, coverage,
			created_at, updated_at
		FROM policies
		WHERE id = $1 AND deleted_at IS NULL
	`

	return r.scanPolicy(r.db.QueryRowContext(ctx, query, id))
}

// GetActive 获取当前生效策略
// 不存在生效策略时返回 nil
func (r *PolicyRepository) GetActive(ctx context.Context) (*model.Policy, error) {
	query := `
		SELECT id, name, active, guardrails, budget, hours, blocks, groups, coverage,
			created_at, updated_at
		FROM policies
		WHERE active = TRUE AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT 1
	`

	return r.scanPolicy(r.db.QueryRowContext(ctx, query))
}

// Update 更新策略
func (r *PolicyRepository) Update(ctx context.Context, p *model.Policy) error {
	p.UpdatedAt = time.Now()

	guardrailsJSON, _ := json.Marshal(p.Guardrails)
	budgetJSON, _ := json.Marshal(p.Budget)
	hoursJSON, _ := json.Marshal(p.Hours)
	blocksJSON, _ := json.Marshal(p.Blocks)
	groupsJSON, _ := json.Marshal(p.Groups)
	coverageJSON, _ := json.Marshal(p.Coverage)

	query := `
		UPDATE policies SET
			name = $2, active = $3, guardrails = $4, budget = $5,
			hours = $6, blocks = $7, groups = $8, coverage = $9, updated_at = $10
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Active,
		guardrailsJSON, budgetJSON, hoursJSON, blocksJSON, groupsJSON, coverageJSON,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新策略失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("策略不存在")
	}

	return nil
}

// Activate 把指定策略设为唯一生效策略
func (r *PolicyRepository) Activate(ctx context.Context, id uuid.UUID) error {
	now := time.Now()

	if _, err := r.db.ExecContext(ctx,
		`UPDATE policies SET active = FALSE, updated_at = $1 WHERE active = TRUE AND deleted_at IS NULL`,
		now,
	); err != nil {
		return fmt.Errorf("取消旧策略失败: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE policies SET active = TRUE, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`,
		id, now,
	)
	if err != nil {
		return fmt.Errorf("启用策略失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("策略不存在")
	}

	return nil
}

// Delete 软删除策略
func (r *PolicyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE policies SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除策略失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("策略不存在")
	}

	return nil
}

// List 查询策略列表
func (r *PolicyRepository) List(ctx context.Context, filter ListFilter) ([]*model.Policy, int, error) {
	countQuery := `SELECT COUNT(*) FROM policies WHERE deleted_at IS NULL`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := `
		SELECT id, name, active, guardrails, budget, hours, blocks, groups, coverage,
			created_at, updated_at
		FROM policies
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var policies []*model.Policy
	for rows.Next() {
		p, err := r.scanPolicyRow(rows)
		if err != nil {
			return nil, 0, err
		}
		policies = append(policies, p)
	}

	return policies, total, nil
}

// scanPolicy 扫描单行策略数据
func (r *PolicyRepository) scanPolicy(row *sql.Row) (*model.Policy, error) {
	p := &model.Policy{}
	var guardrailsJSON, budgetJSON, hoursJSON, blocksJSON, groupsJSON, coverageJSON []byte

	err := row.Scan(
		&p.ID, &p.Name, &p.Active,
		&guardrailsJSON, &budgetJSON, &hoursJSON, &blocksJSON, &groupsJSON, &coverageJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("扫描策略数据失败: %w", err)
	}

	json.Unmarshal(guardrailsJSON, &p.Guardrails)
	json.Unmarshal(budgetJSON, &p.Budget)
	json.Unmarshal(hoursJSON, &p.Hours)
	json.Unmarshal(blocksJSON, &p.Blocks)
	json.Unmarshal(groupsJSON, &p.Groups)
	json.Unmarshal(coverageJSON, &p.Coverage)

	return p, nil
}

// scanPolicyRow 扫描Rows中的策略数据
func (r *PolicyRepository) scanPolicyRow(rows *sql.Rows) (*model.Policy, error) {
	p := &model.Policy{}
	var guardrailsJSON, budgetJSON, hoursJSON, blocksJSON, groupsJSON, coverageJSON []byte

	err := rows.Scan(
		&p.ID, &p.Name, &p.Active,
		&guardrailsJSON, &budgetJSON, &hoursJSON, &blocksJSON, &groupsJSON, &coverageJSON,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("扫描策略数据失败: %w", err)
	}

	json.Unmarshal(guardrailsJSON, &p.Guardrails)
	json.Unmarshal(budgetJSON, &p.Budget)
	json.Unmarshal(hoursJSON, &p.Hours)
	json.Unmarshal(blocksJSON, &p.Blocks)
	json.Unmarshal(groupsJSON, &p.Groups)
	json.Unmarshal(coverageJSON, &p.Coverage)

	return p, nil
}
