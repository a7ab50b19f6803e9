// Package availability 维护单次生成运行内的员工可用性索引
// 索引随分配提交增量更新，供引擎反复廉价查询
package availability

import (
	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// Index 可用性索引
// 作用域限定在单次生成运行内，不跨运行共享
type Index struct {
	ctx     *constraint.Context
	manager *constraint.Manager
}

// NewIndex 基于周排班上下文创建索引
// 上下文在运行开始时从只读快照重建
func NewIndex(ctx *constraint.Context, manager *constraint.Manager) *Index {
	return &Index{ctx: ctx, manager: manager}
}

// Candidate 某槽位的合格候选人
type Candidate struct {
	Employee *model.Employee
	Role     string // 将以该角色填充槽位
}

// EligibleFor 返回可填充槽位的候选人
// 过滤条件：角色匹配、可用窗口完整覆盖、与既有分配不重叠、休息间隔足够
// 通过硬约束统一判定，保证与校验引擎口径一致
func (idx *Index) EligibleFor(slot *model.ShiftSlot, group *model.RoleGroup) []Candidate {
	var candidates []Candidate

	for _, emp := range idx.ctx.Employees {
		if !emp.IsActive() {
			continue
		}

		role, ok := matchRole(emp, group)
		if !ok {
			continue
		}

		probe := &model.Assignment{
			ID:         uuid.New(),
			EmployeeID: emp.ID,
			SlotID:     slot.ID,
			Day:        slot.Day,
			Start:      slot.Start,
			End:        slot.End,
			Role:       role,
			GroupID:    group.ID,
		}

		if ok, _ := idx.manager.CanAssign(idx.ctx, probe); !ok {
			continue
		}

		candidates = append(candidates, Candidate{Employee: emp, Role: role})
	}

	return candidates
}

// Commit 提交一条分配并更新索引
func (idx *Index) Commit(a *model.Assignment) {
	idx.ctx.AddAssignment(a)
}

// CommittedHours 返回员工本周已提交工时
func (idx *Index) CommittedHours(empID uuid.UUID) float64 {
	return idx.ctx.GetEmployeeHours(empID)
}

// HasAnyRoleMatch 检查角色组在整个名单中是否存在可胜任的员工
// 与时段无关，用于判定结构性不可行
func (idx *Index) HasAnyRoleMatch(group *model.RoleGroup) bool {
	for _, emp := range idx.ctx.Employees {
		if !emp.IsActive() {
			continue
		}
		if _, ok := matchRole(emp, group); ok {
			return true
		}
	}
	return false
}

// matchRole 返回员工在该组内可胜任的首个角色
func matchRole(emp *model.Employee, group *model.RoleGroup) (string, bool) {
	for _, role := range group.Roles {
		if emp.HasRole(role) {
			return role, true
		}
	}
	return "", false
}
