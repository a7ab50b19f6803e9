// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"

	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// ConcurrencyConstraint 班次重叠约束
// 同一员工的任意两条分配不得在时间上重叠
type ConcurrencyConstraint struct {
	*BaseConstraint
}

// NewConcurrencyConstraint 创建班次重叠约束
func NewConcurrencyConstraint() *ConcurrencyConstraint {
	return &ConcurrencyConstraint{
		BaseConstraint: NewBaseConstraint(
			"班次不重叠",
			constraint.TypeConcurrency,
			constraint.CategoryHard,
			100,
		),
	}
}

// Evaluate 评估整个周计划
func (c *ConcurrencyConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	for _, emp := range ctx.Employees {
		assignments := ctx.GetEmployeeAssignments(emp.ID)
		// 列表按开始时间有序，只需比较相邻及后续重叠项
		for i := 0; i < len(assignments); i++ {
			for j := i + 1; j < len(assignments); j++ {
				if !assignments[j].Start.Before(assignments[i].End) {
					break
				}
				isValid = false
				violations = append(violations, constraint.ViolationDetail{
					ConstraintType: c.Type(),
					ConstraintName: c.Name(),
					EmployeeID:     emp.ID,
					Day:            assignments[j].Day,
					SlotID:         assignments[j].SlotID,
					Message: fmt.Sprintf(
						"员工 %s 的班次 %s 与 %s 时间重叠",
						emp.Name, assignments[i].SlotID, assignments[j].SlotID,
					),
				})
			}
		}
	}

	return isValid, violations
}

// EvaluateAssignment 评估单个分配
func (c *ConcurrencyConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) bool {
	for _, existing := range ctx.GetEmployeeAssignments(a.EmployeeID) {
		if existing.ID == a.ID {
			continue
		}
		if existing.OverlapsWith(a) {
			return false
		}
	}
	return true
}
