// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"
	"math"

	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// 周工时浮点容差：恰好等于上限（误差以内）不算超出
const weeklyHoursEpsilon = 1e-6

// WeeklyHoursConstraint 周工时上限约束
// 超出上限不阻断发布，只产生警告
type WeeklyHoursConstraint struct {
	*BaseConstraint
	maxHours float64
}

// NewWeeklyHoursConstraint 创建周工时上限约束
func NewWeeklyHoursConstraint(maxHours float64) *WeeklyHoursConstraint {
	return &WeeklyHoursConstraint{
		BaseConstraint: NewBaseConstraint(
			"周工时上限",
			constraint.TypeWeeklyHours,
			constraint.CategorySoft,
			70,
		),
		maxHours: maxHours,
	}
}

// Evaluate 评估整个周计划
func (c *WeeklyHoursConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail

	for _, emp := range ctx.Employees {
		total := ctx.GetEmployeeHours(emp.ID)
		if total <= c.maxHours+weeklyHoursEpsilon {
			continue
		}

		hours := round2(total)
		overage := round2(total - c.maxHours)
		violations = append(violations, constraint.ViolationDetail{
			ConstraintType: c.Type(),
			ConstraintName: c.Name(),
			EmployeeID:     emp.ID,
			Hours:          hours,
			Limit:          c.maxHours,
			Message: fmt.Sprintf(
				"员工 %s 本周排班 %.2f 小时（超出 %.0f 小时上限 %.2f 小时）",
				emp.Name, hours, c.maxHours, overage,
			),
		})
	}

	// 软约束不影响有效性
	return true, violations
}

// EvaluateAssignment 评估单个分配
func (c *WeeklyHoursConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) bool {
	// 软约束，总是允许
	return true
}

// round2 四舍五入到两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
