// Package constraint 定义周排班约束接口和管理器
// 生成引擎与校验引擎共用同一套约束，保证两边判定一致
package constraint

import (
	"sort"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
)

// Type 约束类型标识
type Type string

const (
	// 硬约束类型
	TypeConcurrency  Type = "concurrency"   // 同一员工班次不得重叠
	TypeRestWindow   Type = "rest_window"   // 班次间最小休息
	TypeAvailability Type = "availability"  // 分配须落在声明的可用时间内
	TypeRoleMatch    Type = "role_match"    // 角色须在员工可胜任集合内

	// 软约束类型
	TypeWeeklyHours Type = "weekly_hours" // 周工时上限（超出仅警告）
	TypeLaborBudget Type = "labor_budget" // 人力预算容差带
)

// Category 约束类别
type Category string

const (
	CategoryHard Category = "hard" // 硬约束（必须满足）
	CategorySoft Category = "soft" // 软约束（尽量满足）
)

// Constraint 约束接口
type Constraint interface {
	// Name 返回约束名称
	Name() string

	// Type 返回约束类型
	Type() Type

	// Category 返回约束类别
	Category() Category

	// Weight 返回约束权重 (1-100)
	Weight() int

	// Evaluate 评估整个周计划
	// 返回：是否满足、违反详情
	Evaluate(ctx *Context) (valid bool, details []ViolationDetail)

	// EvaluateAssignment 评估把候选分配加入当前计划是否可行
	EvaluateAssignment(ctx *Context, assignment *model.Assignment) bool
}

// ViolationDetail 约束违反详情
type ViolationDetail struct {
	ConstraintType Type      `json:"constraint_type"`
	ConstraintName string    `json:"constraint_name"`
	EmployeeID     uuid.UUID `json:"employee_id,omitempty"`
	Day            string    `json:"day,omitempty"`
	SlotID         string    `json:"slot_id,omitempty"`
	Message        string    `json:"message"`
	Hours          float64   `json:"hours,omitempty"`
	Limit          float64   `json:"limit,omitempty"`
}

// Context 周排班上下文
// 持有只读快照与当前分配状态，生成期间由引擎独占写入
type Context struct {
	Policy    *model.Policy     `json:"policy"`
	WeekStart string            `json:"week_start"`
	Employees []*model.Employee `json:"employees"`
	Slots     []model.ShiftSlot `json:"slots"`

	// 当前分配结果
	Assignments []*model.Assignment `json:"assignments"`

	// 索引缓存
	employeeMap      map[uuid.UUID]*model.Employee
	assignmentsByEmp map[uuid.UUID][]*model.Assignment
	hoursByEmp       map[uuid.UUID]float64
}

// NewContext 创建新的周排班上下文
func NewContext(policy *model.Policy, weekStart string, employees []*model.Employee) *Context {
	ctx := &Context{
		Policy:           policy,
		WeekStart:        weekStart,
		Employees:        employees,
		Assignments:      make([]*model.Assignment, 0),
		employeeMap:      make(map[uuid.UUID]*model.Employee, len(employees)),
		assignmentsByEmp: make(map[uuid.UUID][]*model.Assignment),
		hoursByEmp:       make(map[uuid.UUID]float64),
	}
	for _, e := range employees {
		ctx.employeeMap[e.ID] = e
	}
	return ctx
}

// SetSlots 设置槽位快照
func (c *Context) SetSlots(slots []model.ShiftSlot) {
	c.Slots = slots
}

// SetAssignments 设置分配并重建索引
func (c *Context) SetAssignments(assignments []*model.Assignment) {
	c.Assignments = assignments
	c.rebuildIndexes()
}

// AddAssignment 添加一条分配
// 员工的分配列表按开始时间保持有序，休息检查依赖该顺序
func (c *Context) AddAssignment(a *model.Assignment) {
	c.Assignments = append(c.Assignments, a)

	list := c.assignmentsByEmp[a.EmployeeID]
	idx := sort.Search(len(list), func(i int) bool {
		return list[i].Start.After(a.Start)
	})
	list = append(list, nil)
	copy(list[idx+1:], list[idx:])
	list[idx] = a
	c.assignmentsByEmp[a.EmployeeID] = list

	c.hoursByEmp[a.EmployeeID] += a.WorkingHours()
}

// rebuildIndexes 重建分配索引
func (c *Context) rebuildIndexes() {
	c.assignmentsByEmp = make(map[uuid.UUID][]*model.Assignment)
	c.hoursByEmp = make(map[uuid.UUID]float64)
	for _, a := range c.Assignments {
		c.assignmentsByEmp[a.EmployeeID] = append(c.assignmentsByEmp[a.EmployeeID], a)
		c.hoursByEmp[a.EmployeeID] += a.WorkingHours()
	}
	for _, list := range c.assignmentsByEmp {
		sort.Slice(list, func(i, j int) bool {
			return list[i].Start.Before(list[j].Start)
		})
	}
}

// GetEmployee 获取员工
func (c *Context) GetEmployee(id uuid.UUID) *model.Employee {
	return c.employeeMap[id]
}

// GetEmployeeAssignments 获取员工全部分配（按开始时间有序）
func (c *Context) GetEmployeeAssignments(empID uuid.UUID) []*model.Assignment {
	return c.assignmentsByEmp[empID]
}

// GetEmployeeHours 获取员工本周累计工时
func (c *Context) GetEmployeeHours(empID uuid.UUID) float64 {
	return c.hoursByEmp[empID]
}

// Result 约束评估结果
type Result struct {
	IsValid        bool              `json:"is_valid"`
	HardViolations []ViolationDetail `json:"hard_violations"`
	SoftViolations []ViolationDetail `json:"soft_violations"`
}
