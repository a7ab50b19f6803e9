package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
)

// Store 聚合周排班所需的各仓储，作为处理器的统一持久化入口
type Store struct {
	policies    *PolicyRepository
	employees   *EmployeeRepository
	projections *ProjectionRepository
	plans       *PlanRepository
}

// NewStore 创建聚合仓储
func NewStore(db DB) *Store {
	return &Store{
		policies:    NewPolicyRepository(db),
		employees:   NewEmployeeRepository(db),
		projections: NewProjectionRepository(db),
		plans:       NewPlanRepository(db),
	}
}

// ActivePolicy 返回当前生效的排班策略，没有时返回 (nil, nil)
func (s *Store) ActivePolicy(ctx context.Context) (*model.Policy, error) {
	return s.policies.GetActive(ctx)
}

// ActiveEmployees 返回组织的在职员工名单
func (s *Store) ActiveEmployees(ctx context.Context, orgID uuid.UUID) ([]*model.Employee, error) {
	return s.employees.ListActive(ctx, orgID)
}

// ProjectionsRange 返回日期区间内的营业额预测
func (s *Store) ProjectionsRange(ctx context.Context, orgID uuid.UUID, startDay, endDay string) ([]model.Projection, error) {
	return s.projections.ListRange(ctx, orgID, startDay, endDay)
}

// ModifiersRange 返回日期区间内的需求修正
func (s *Store) ModifiersRange(ctx context.Context, orgID uuid.UUID, startDay, endDay string) ([]model.Modifier, error) {
	return s.projections.ListModifiersRange(ctx, orgID, startDay, endDay)
}

// SavePlan 持久化生成的周计划及其摘要
func (s *Store) SavePlan(ctx context.Context, orgID uuid.UUID, plan *model.WeekPlan, summary *model.GenerationSummary) error {
	return s.plans.Save(ctx, orgID, plan, summary)
}

// LatestPlan 返回某周最近一次持久化的计划，没有时返回 (nil, nil)
func (s *Store) LatestPlan(ctx context.Context, orgID uuid.UUID, weekStart string) (*model.WeekPlan, error) {
	return s.plans.GetLatestForWeek(ctx, orgID, weekStart)
}
