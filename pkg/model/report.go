// Package model 定义周排班引擎的核心数据模型
package model

// 校验结果类型标记，用于前端过滤
const (
	FindingCoverage     = "coverage"     // 覆盖不足
	FindingAvailability = "availability" // 分配落在可用时间之外
	FindingConcurrency  = "concurrency"  // 同一员工班次重叠
	FindingRestWindow   = "rest_window"  // 班次间休息不足
	FindingRoleMatch    = "role_match"   // 角色与员工不匹配
	FindingWeeklyHours  = "weekly_hours" // 周工时超限
	FindingLaborBudget  = "labor_budget" // 人力预算超出容差带
)

// Finding 单条校验结果
// Type/Severity/Message 恒存在，其余字段按类型取舍
type Finding struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	EmployeeID string   `json:"employee_id,omitempty"`
	Employee   string   `json:"employee,omitempty"`
	Day        string   `json:"day,omitempty"`
	SlotID     string   `json:"slot_id,omitempty"`
	GroupID    string   `json:"group_id,omitempty"`
	Hours      float64  `json:"hours,omitempty"`
	Limit      float64  `json:"limit,omitempty"`
	Overage    float64  `json:"overage,omitempty"`
	Shortfall  int      `json:"shortfall,omitempty"`
	Message    string   `json:"message"`
}

// ValidationReport 校验报告
// 每次校验重新生成，绝不修改被校验的计划
type ValidationReport struct {
	Issues   []Finding `json:"issues"`
	Warnings []Finding `json:"warnings"`
}

// Valid 检查是否不存在阻断性问题
func (r *ValidationReport) Valid() bool {
	return len(r.Issues) == 0
}

// Add 按严重级别归档一条结果
func (r *ValidationReport) Add(f Finding) {
	if f.Severity == SeverityIssue {
		r.Issues = append(r.Issues, f)
	} else {
		r.Warnings = append(r.Warnings, f)
	}
}

// Count 返回结果总数
func (r *ValidationReport) Count() int {
	return len(r.Issues) + len(r.Warnings)
}
