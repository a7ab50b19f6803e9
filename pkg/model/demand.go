// Package model 定义周排班引擎的核心数据模型
package model

import "time"

// Projection 单日营业额预测
type Projection struct {
	Day   string  `json:"day" db:"day"` // YYYY-MM-DD
	Sales float64 `json:"sales" db:"sales"`
}

// ModifierKind 需求调整类型
type ModifierKind string

const (
	ModifierMultiplicative ModifierKind = "multiplicative" // 百分比调整，系数 = 1 + Value/100
	ModifierAdditive       ModifierKind = "additive"       // 绝对额调整
)

// Modifier 需求调整项
// 作用于某日的全天或分钟窗口 [StartMinute, EndMinute)
// 两者同为 0 表示全天生效
type Modifier struct {
	Name        string       `json:"name" db:"name"`
	Day         string       `json:"day" db:"day"` // YYYY-MM-DD
	Kind        ModifierKind `json:"kind" db:"kind"`
	Value       float64      `json:"value" db:"value"`
	StartMinute int          `json:"start_minute" db:"start_minute"`
	EndMinute   int          `json:"end_minute" db:"end_minute"`
}

// AppliesTo 检查调整项是否作用于指定日期的分钟窗口
func (m *Modifier) AppliesTo(day string, startMinute, endMinute int) bool {
	if m.Day != day {
		return false
	}
	if m.StartMinute == 0 && m.EndMinute == 0 {
		return true
	}
	return m.StartMinute < endMinute && startMinute < m.EndMinute
}

// Factor 返回乘法调整的系数
func (m *Modifier) Factor() float64 {
	return 1 + m.Value/100
}

// ShiftSlot 待填充的班次槽位
// (日期, 时段, 角色组, 需求人数) 是引擎的填充单元
type ShiftSlot struct {
	ID       string    `json:"id"`
	Day      string    `json:"day"` // YYYY-MM-DD
	Block    string    `json:"block"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	GroupID  string    `json:"group_id"`
	Required int       `json:"required"`
}

// Hours 返回槽位时长（小时）
func (s *ShiftSlot) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

// Range 返回槽位的时间范围
func (s *ShiftSlot) Range() TimeRange {
	return TimeRange{Start: s.Start, End: s.End}
}
