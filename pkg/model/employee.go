// Package model 定义周排班引擎的核心数据模型
package model

import "github.com/google/uuid"

// Employee 员工
type Employee struct {
	BaseModel
	OrgID  uuid.UUID `json:"org_id" db:"org_id"`
	Name   string    `json:"name" db:"name"`
	Code   string    `json:"code" db:"code"`
	Status string    `json:"status" db:"status"` // active/inactive/leave

	// Roles 可胜任的角色
	Roles []string `json:"roles" db:"roles"`

	// Wages 各角色的时薪，员工可胜任的每个角色都必须有对应时薪
	Wages map[string]float64 `json:"wages" db:"wages"`

	// DesiredHours 期望周工时区间
	DesiredHours HourRange `json:"desired_hours" db:"desired_hours"`

	// Availability 声明的可用时间窗口
	Availability []AvailabilityWindow `json:"availability" db:"availability"`
}

// HourRange 周工时区间
type HourRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid 返回区间中点
func (r HourRange) Mid() float64 {
	return (r.Min + r.Max) / 2
}

// AvailabilityWindow 单日可用时间窗口
// 分钟数为当日零点起算，可超过 1440（跨零点）
type AvailabilityWindow struct {
	Day         string `json:"day"` // YYYY-MM-DD
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

// IsActive 检查员工是否在职
func (e *Employee) IsActive() bool {
	return e.Status == "active"
}

// HasRole 检查员工是否可胜任某角色
func (e *Employee) HasRole(role string) bool {
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// WageFor 返回员工某角色的时薪
func (e *Employee) WageFor(role string) (float64, bool) {
	w, ok := e.Wages[role]
	return w, ok
}

// AvailableFor 检查声明的可用窗口是否覆盖指定日期的分钟区间
func (e *Employee) AvailableFor(day string, startMinute, endMinute int) bool {
	for _, w := range e.Availability {
		if w.Day == day && w.StartMinute <= startMinute && w.EndMinute >= endMinute {
			return true
		}
	}
	return false
}
