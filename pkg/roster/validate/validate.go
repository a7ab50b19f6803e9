// Package validate 实现周计划校验引擎
// 纯函数：不依赖生成引擎内部状态，对生成或手工编辑的计划一视同仁
package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint/builtin"
	"github.com/zhoupai/zhoupai/pkg/stats"
)

// Validate 校验周计划并生成报告
// 不修改计划；同一计划重复调用产出完全一致的报告
func Validate(plan *model.WeekPlan, policy *model.Policy, employees []*model.Employee) *model.ValidationReport {
	report := &model.ValidationReport{
		Issues:   make([]model.Finding, 0),
		Warnings: make([]model.Finding, 0),
	}
	if plan == nil || policy == nil {
		return report
	}

	ctx := constraint.NewContext(policy, plan.WeekStart, employees)
	ctx.SetSlots(plan.Slots)
	ctx.SetAssignments(plan.Assignments)

	manager := builtin.NewDefaultManager(policy)
	result := manager.Evaluate(ctx)

	for _, v := range result.HardViolations {
		report.Add(hardFinding(ctx, v))
	}
	for _, v := range result.SoftViolations {
		report.Add(softFinding(ctx, v))
	}

	checkCoverage(plan, report)
	checkBudget(plan, policy, employees, report)

	sortFindings(report.Issues)
	sortFindings(report.Warnings)
	return report
}

// hardFinding 把硬约束违反转换为阻断性问题
func hardFinding(ctx *constraint.Context, v constraint.ViolationDetail) model.Finding {
	f := model.Finding{
		Type:     findingType(v.ConstraintType),
		Severity: model.SeverityIssue,
		Day:      v.Day,
		SlotID:   v.SlotID,
		Hours:    v.Hours,
		Limit:    v.Limit,
		Message:  v.Message,
	}
	fillEmployee(ctx, &f, v)
	return f
}

// softFinding 把软约束违反转换为非阻断警告
func softFinding(ctx *constraint.Context, v constraint.ViolationDetail) model.Finding {
	f := model.Finding{
		Type:     findingType(v.ConstraintType),
		Severity: model.SeverityWarning,
		Day:      v.Day,
		Hours:    v.Hours,
		Limit:    v.Limit,
		Message:  v.Message,
	}
	if v.Limit > 0 && v.Hours > v.Limit {
		f.Overage = math.Round((v.Hours-v.Limit)*100) / 100
	}
	fillEmployee(ctx, &f, v)
	return f
}

// fillEmployee 补充员工标识字段
func fillEmployee(ctx *constraint.Context, f *model.Finding, v constraint.ViolationDetail) {
	if v.EmployeeID == uuid.Nil {
		return
	}
	f.EmployeeID = v.EmployeeID.String()
	if emp := ctx.GetEmployee(v.EmployeeID); emp != nil {
		f.Employee = emp.Name
	}
}

// findingType 约束类型到结果类型标记的映射
func findingType(t constraint.Type) string {
	switch t {
	case constraint.TypeConcurrency:
		return model.FindingConcurrency
	case constraint.TypeRestWindow:
		return model.FindingRestWindow
	case constraint.TypeAvailability:
		return model.FindingAvailability
	case constraint.TypeRoleMatch:
		return model.FindingRoleMatch
	case constraint.TypeWeeklyHours:
		return model.FindingWeeklyHours
	case constraint.TypeLaborBudget:
		return model.FindingLaborBudget
	default:
		return string(t)
	}
}

// checkCoverage 覆盖检查：每个槽位的已分配人数不得少于需求人数
func checkCoverage(plan *model.WeekPlan, report *model.ValidationReport) {
	assigned := make(map[string]int, len(plan.Slots))
	for _, a := range plan.Assignments {
		assigned[a.SlotID]++
	}

	for i := range plan.Slots {
		slot := &plan.Slots[i]
		if assigned[slot.ID] >= slot.Required {
			continue
		}
		shortfall := slot.Required - assigned[slot.ID]
		report.Add(model.Finding{
			Type:      model.FindingCoverage,
			Severity:  model.SeverityIssue,
			Day:       slot.Day,
			SlotID:    slot.ID,
			GroupID:   slot.GroupID,
			Shortfall: shortfall,
			Message: fmt.Sprintf(
				"%s %s 时段角色组 '%s' 缺 %d 人（需 %d 实排 %d）",
				slot.Day, slot.Block, slot.GroupID, shortfall, slot.Required, assigned[slot.ID],
			),
		})
	}
}

// checkBudget 预算检查：全局与各角色组成本须落在目标 ± 容差带内
func checkBudget(plan *model.WeekPlan, policy *model.Policy, employees []*model.Employee, report *model.ValidationReport) {
	if plan.ProjectedSales <= 0 {
		return
	}

	empByID := make(map[string]*model.Employee, len(employees))
	for _, emp := range employees {
		empByID[emp.ID.String()] = emp
	}

	budget := stats.AssessBudget(policy, empByID, plan)

	if budget.Target > 0 && budget.TotalCost > budget.Ceiling {
		report.Add(model.Finding{
			Type:     model.FindingLaborBudget,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf(
				"人力成本 %.2f 超出预算上限 %.2f（目标 %.2f，占营业额 %.1f%%）",
				budget.TotalCost, budget.Ceiling, budget.Target, budget.LaborPct*100,
			),
		})
	}

	// 低于容差带下限同样提示，可能意味着人手排得过少
	if budget.Target > 0 && budget.TotalCost < budget.Floor {
		report.Add(model.Finding{
			Type:     model.FindingLaborBudget,
			Severity: model.SeverityWarning,
			Message: fmt.Sprintf(
				"人力成本 %.2f 低于预算下限 %.2f（目标 %.2f，占营业额 %.1f%%）",
				budget.TotalCost, budget.Floor, budget.Target, budget.LaborPct*100,
			),
		})
	}

	// 按策略声明顺序逐组检查，保证报告顺序稳定
	for _, group := range policy.Groups {
		cost, ok := budget.GroupCost[group.ID]
		if !ok {
			continue
		}
		target := policy.GroupBudgetPct(group.ID) * plan.ProjectedSales
		if target <= 0 {
			continue
		}
		ceiling := target * (1 + policy.Budget.TolerancePct)
		if cost <= ceiling {
			continue
		}
		report.Add(model.Finding{
			Type:     model.FindingLaborBudget,
			Severity: model.SeverityWarning,
			GroupID:  group.ID,
			Message: fmt.Sprintf(
				"角色组 '%s' 人力成本 %.2f 超出组预算上限 %.2f",
				group.Name, cost, ceiling,
			),
		})
	}
}

// sortFindings 对结果做稳定全序排序，保证重复校验字节级一致
func sortFindings(findings []model.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := &findings[i], &findings[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.SlotID != b.SlotID {
			return a.SlotID < b.SlotID
		}
		if a.EmployeeID != b.EmployeeID {
			return a.EmployeeID < b.EmployeeID
		}
		return a.Message < b.Message
	})
}
