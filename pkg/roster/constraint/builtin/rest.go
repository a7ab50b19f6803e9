// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"

	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// RestWindowConstraint 班次间最小休息约束
type RestWindowConstraint struct {
	*BaseConstraint
	minHours   float64
	allowSplit bool // 是否允许同日两头班
}

// NewRestWindowConstraint 创建班次间最小休息约束
func NewRestWindowConstraint(minHours float64, allowSplit bool) *RestWindowConstraint {
	return &RestWindowConstraint{
		BaseConstraint: NewBaseConstraint(
			"班次间最小休息",
			constraint.TypeRestWindow,
			constraint.CategoryHard,
			100,
		),
		minHours:   minHours,
		allowSplit: allowSplit,
	}
}

// Evaluate 评估整个周计划
func (c *RestWindowConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	for _, emp := range ctx.Employees {
		assignments := ctx.GetEmployeeAssignments(emp.ID)
		for i := 0; i < len(assignments)-1; i++ {
			rest := assignments[i+1].Start.Sub(assignments[i].End).Hours()
			// 首尾相接视为连续上班（开闭店连贯），重叠由并发约束单独报告
			if rest <= 0 {
				continue
			}
			if c.allowSplit && assignments[i].Day == assignments[i+1].Day {
				continue
			}
			if rest < c.minHours {
				isValid = false
				violations = append(violations, constraint.ViolationDetail{
					ConstraintType: c.Type(),
					ConstraintName: c.Name(),
					EmployeeID:     emp.ID,
					Day:            assignments[i+1].Day,
					SlotID:         assignments[i+1].SlotID,
					Hours:          rest,
					Limit:          c.minHours,
					Message: fmt.Sprintf(
						"员工 %s 班次间隔仅 %.1f 小时，少于要求的 %.0f 小时",
						emp.Name, rest, c.minHours,
					),
				})
			}
		}
	}

	return isValid, violations
}

// EvaluateAssignment 评估单个分配
func (c *RestWindowConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) bool {
	for _, existing := range ctx.GetEmployeeAssignments(a.EmployeeID) {
		if existing.ID == a.ID {
			continue
		}

		var rest float64
		switch {
		case !a.Start.Before(existing.End):
			rest = a.Start.Sub(existing.End).Hours()
		case !existing.Start.Before(a.End):
			rest = existing.Start.Sub(a.End).Hours()
		default:
			// 重叠
			return false
		}

		// 首尾相接视为连续上班，允许两头班时同日间隔不设限
		if rest > 0 && rest < c.minHours {
			if c.allowSplit && existing.Day == a.Day {
				continue
			}
			return false
		}
	}
	return true
}
