// Package model 定义周排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// Severity 校验结果严重级别
type Severity string

const (
	SeverityIssue   Severity = "issue"   // 阻断性问题（禁止发布）
	SeverityWarning Severity = "warning" // 非阻断性警告
)

// ConstraintCategory 约束类别
type ConstraintCategory string

const (
	ConstraintHard ConstraintCategory = "hard" // 硬约束（必须满足）
	ConstraintSoft ConstraintCategory = "soft" // 软约束（尽量满足）
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// TimeRange 时间范围
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration 返回时间范围的持续时间
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// Overlaps 检查两个时间范围是否重叠
func (tr TimeRange) Overlaps(other TimeRange) bool {
	return tr.Start.Before(other.End) && other.Start.Before(tr.End)
}

// Contains 检查时间范围是否包含某个时间点
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && t.Before(tr.End)
}

// Weekdays 一周内的日期顺序（周一为第一天）
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayToken 返回日期对应的周几标记（Mon..Sun）
func WeekdayToken(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return ""
	}
	// time.Weekday 以周日为 0
	idx := (int(t.Weekday()) + 6) % 7
	return Weekdays[idx]
}

// WeekDates 返回从周起始日开始的 7 个日期（YYYY-MM-DD）
func WeekDates(weekStart string) ([]string, error) {
	start, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return nil, err
	}
	dates := make([]string, 7)
	for i := 0; i < 7; i++ {
		dates[i] = start.AddDate(0, 0, i).Format("2006-01-02")
	}
	return dates, nil
}

// MinutesToTime 把当日零点起的分钟数转换为绝对时间
// 分钟数可超过 1440（跨零点营业，如 25:00 收盘）
func MinutesToTime(day string, minutes int) (time.Time, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, err
	}
	return t.Add(time.Duration(minutes) * time.Minute), nil
}
