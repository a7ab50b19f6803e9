// Package builtin 提供内置约束实现
package builtin

import (
	"fmt"

	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// RoleMatchConstraint 角色匹配约束
// 分配的角色必须在员工可胜任集合内，且员工须有该角色的时薪
type RoleMatchConstraint struct {
	*BaseConstraint
}

// NewRoleMatchConstraint 创建角色匹配约束
func NewRoleMatchConstraint() *RoleMatchConstraint {
	return &RoleMatchConstraint{
		BaseConstraint: NewBaseConstraint(
			"角色匹配",
			constraint.TypeRoleMatch,
			constraint.CategoryHard,
			100,
		),
	}
}

// Evaluate 评估整个周计划
func (c *RoleMatchConstraint) Evaluate(ctx *constraint.Context) (bool, []constraint.ViolationDetail) {
	var violations []constraint.ViolationDetail
	isValid := true

	for _, emp := range ctx.Employees {
		for _, a := range ctx.GetEmployeeAssignments(emp.ID) {
			if emp.HasRole(a.Role) {
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
					"员工 %s 不可胜任角色 '%s'",
					emp.Name, a.Role,
				),
			})
		}
	}

	return isValid, violations
}

// EvaluateAssignment 评估单个分配
func (c *RoleMatchConstraint) EvaluateAssignment(ctx *constraint.Context, a *model.Assignment) bool {
	emp := ctx.GetEmployee(a.EmployeeID)
	if emp == nil || !emp.HasRole(a.Role) {
		return false
	}
	_, ok := emp.WageFor(a.Role)
	return ok
}
