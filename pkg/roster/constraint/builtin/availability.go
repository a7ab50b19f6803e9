// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"
	"time"

	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// AvailabilityConstraint 可用时间约束
// 分配必须完整落在员工声明的可用窗口内
type AvailabilityConstraint struct {
	*BaseConstraint
}

// NewAvailabilityConstraint 创建可用时间约束
func NewAvailabilityConstraint() *AvailabilityConstraint {
	return &AvailabilityConstraint{
		BaseConstraint: NewBaseConstraint(
			"可用时间匹配",
			constraint.TypeAvailability,
			constraint.CategoryHard,
			100,
		),
	}
}

// Evaluate 评估整个周计划
func (c *AvailabilityConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	for _, emp := range ctx.Employees {
		for _, a := range ctx.GetEmployeeAssignments(emp.ID) {
			if coveredByAvailability(emp, a) {
				continue
			}
			isValid = false
			violations = append(violations, constraint.ViolationDetail{
				ConstraintType: c.Type(),
				ConstraintName: c.Name(),
				EmployeeID:     emp.ID,
				Day:            a.Day,
				SlotID:         a.SlotID,
				Message: fmt.Sprintf(
					"员工 %s 在 %s 的班次 %s~%s 不在声明的可用时间内",
					emp.Name, a.Day, a.Start.Format("15:04"), a.End.Format("15:04"),
				),
			})
		}
	}

	return isValid, violations
}

// EvaluateAssignment 评估单个分配
func (c *AvailabilityConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) bool {
	emp := ctx.GetEmployee(a.EmployeeID)
	if emp == nil {
		return false
	}
	return coveredByAvailability(emp, a)
}

// coveredByAvailability 检查分配是否被某个可用窗口完整覆盖
func coveredByAvailability(emp *model.Employee, a *model.Assignment) bool {
	start, end := minutesOfDay(a)
	return emp.AvailableFor(a.Day, start, end)
}

// minutesOfDay 把分配的起止换算为当日零点起算的分钟数
// 结束分钟可超过 1440（跨零点班次）
func minutesOfDay(a *model.Assignment) (int, int) {
	dayStart, err := time.Parse("2006-01-02", a.Day)
	if err != nil {
		return 0, 0
	}
	start := int(a.Start.Sub(dayStart).Minutes())
	end := int(a.End.Sub(dayStart).Minutes())
	return start, end
}
