// Package model 定义周排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Assignment 一条班次分配
// 同一员工的任意两条分配不得在时间上重叠
type Assignment struct {
	ID         uuid.UUID `json:"id"`
	EmployeeID uuid.UUID `json:"employee_id"`
	SlotID     string    `json:"slot_id"`
	Day        string    `json:"day"` // YYYY-MM-DD
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Role       string    `json:"role"`
	GroupID    string    `json:"group_id"`
	Fallback   bool      `json:"fallback"` // 是否由跨组兜底填充
}

// WorkingHours 返回分配的工时（小时）
func (a *Assignment) WorkingHours() float64 {
	return a.End.Sub(a.Start).Hours()
}

// Range 返回分配的时间范围
func (a *Assignment) Range() TimeRange {
	return TimeRange{Start: a.Start, End: a.End}
}

// OverlapsWith 检查两条分配是否时间重叠
func (a *Assignment) OverlapsWith(other *Assignment) bool {
	return a.Range().Overlaps(other.Range())
}

// WeekPlan 一周排班计划
// 由引擎整体构建后返回，生成过程中不对外暴露部分状态
// 携带生成时的槽位快照与预测营业额，使校验无需额外输入即可独立运行
type WeekPlan struct {
	ID             uuid.UUID     `json:"id"`
	WeekStart      string        `json:"week_start"` // 周一日期 YYYY-MM-DD
	Seed           int64         `json:"seed"`
	GeneratedAt    time.Time     `json:"generated_at"`
	Slots          []ShiftSlot   `json:"slots"`
	Assignments    []*Assignment `json:"assignments"`
	ProjectedSales float64       `json:"projected_sales"`
}

// NewWeekPlan 创建空的周计划
func NewWeekPlan(weekStart string, seed int64) *WeekPlan {
	return &WeekPlan{
		ID:          uuid.New(),
		WeekStart:   weekStart,
		Seed:        seed,
		GeneratedAt: time.Now(),
	}
}

// AssignmentsFor 返回某员工的全部分配
func (p *WeekPlan) AssignmentsFor(employeeID uuid.UUID) []*Assignment {
	var result []*Assignment
	for _, a := range p.Assignments {
		if a.EmployeeID == employeeID {
			result = append(result, a)
		}
	}
	return result
}

// AssignedCount 返回某槽位已分配人数
func (p *WeekPlan) AssignedCount(slotID string) int {
	count := 0
	for _, a := range p.Assignments {
		if a.SlotID == slotID {
			count++
		}
	}
	return count
}

// TotalHours 返回计划总工时
func (p *WeekPlan) TotalHours() float64 {
	var total float64
	for _, a := range p.Assignments {
		total += a.WorkingHours()
	}
	return total
}

// EngineState 生成引擎状态
type EngineState string

const (
	StateInit         EngineState = "init"
	StateFillingSlots EngineState = "filling_slots"
	StateBudgetCheck  EngineState = "budget_check"
	StateFinalizing   EngineState = "finalizing"
	StateComplete     EngineState = "complete"
	StateInfeasible   EngineState = "infeasible"
)

// GenerationSummary 生成结果摘要
type GenerationSummary struct {
	Seed           int64         `json:"seed"`
	Attempts       int           `json:"attempts"`
	UnfilledSlots  int           `json:"unfilled_slots"` // 存在缺口的槽位数
	UnfilledHeads  int           `json:"unfilled_heads"` // 缺口总人数
	LaborCost      float64       `json:"labor_cost"`
	LaborPct       float64       `json:"labor_pct"` // 人力成本占预测营业额比例
	BudgetExceeded bool          `json:"budget_exceeded"`
	State          EngineState   `json:"state"`
	Reason         string        `json:"reason,omitempty"` // Infeasible 时的具体原因
	Duration       time.Duration `json:"duration"`
}
