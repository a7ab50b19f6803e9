// Package stats 提供周计划的覆盖、公平性与预算分析
package stats

import (
	"github.com/zhoupai/zhoupai/pkg/model"
)

// BudgetReport 人力预算核算结果
type BudgetReport struct {
	TotalCost   float64            `json:"total_cost"`
	LaborPct    float64            `json:"labor_pct"` // 成本占预测营业额比例
	Target      float64            `json:"target"`
	Floor       float64            `json:"floor"`   // 目标 ×(1-容差)
	Ceiling     float64            `json:"ceiling"` // 目标 ×(1+容差)
	GroupCost   map[string]float64 `json:"group_cost"`
	OverCeiling bool               `json:"over_ceiling"` // 全局或任一角色组超出上限
}

// AssessBudget 核算计划的人力成本并与预算目标比对
// 成本 = Σ 工时 × 对应角色时薪；缺失时薪的分配不应存在（前置条件已拦截）
func AssessBudget(policy *model.Policy, employees map[string]*model.Employee, plan *model.WeekPlan) *BudgetReport {
	report := &BudgetReport{
		GroupCost: make(map[string]float64),
	}

	for _, a := range plan.Assignments {
		emp := employees[a.EmployeeID.String()]
		if emp == nil {
			continue
		}
		wage, ok := emp.WageFor(a.Role)
		if !ok {
			continue
		}
		cost := a.WorkingHours() * wage
		report.TotalCost += cost
		report.GroupCost[a.GroupID] += cost
	}

	report.Target = policy.Budget.GlobalPctOfSales * plan.ProjectedSales
	report.Floor = report.Target * (1 - policy.Budget.TolerancePct)
	report.Ceiling = report.Target * (1 + policy.Budget.TolerancePct)
	if plan.ProjectedSales > 0 {
		report.LaborPct = report.TotalCost / plan.ProjectedSales
	}

	if report.Target > 0 && report.TotalCost > report.Ceiling {
		report.OverCeiling = true
	}

	for groupID, cost := range report.GroupCost {
		target := policy.GroupBudgetPct(groupID) * plan.ProjectedSales
		if target <= 0 {
			continue
		}
		if cost > target*(1+policy.Budget.TolerancePct) {
			report.OverCeiling = true
		}
	}

	return report
}
