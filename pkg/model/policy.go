// Package model 定义周排班引擎的核心数据模型
package model

// Policy 排班策略文档
// 生成期间只读，单次生成只有一个生效策略
type Policy struct {
	BaseModel
	Name   string `json:"name" db:"name"`
	Active bool   `json:"active" db:"active"`

	Guardrails Guardrails `json:"guardrails" db:"guardrails"`
	Budget     Budget     `json:"budget" db:"budget"`

	// Hours 各周几的营业时间，key 为 Mon..Sun
	Hours map[string]DayHours `json:"hours" db:"hours"`

	// Blocks 相对锚点定义的时段模板，按一天内的先后顺序排列
	Blocks []BlockTemplate `json:"blocks" db:"blocks"`

	// Groups 角色组，按 Priority 决定填充顺序
	Groups []RoleGroup `json:"groups" db:"groups"`

	// Coverage 覆盖规则：角色组 -> 时段名 -> 人数公式
	Coverage map[string]map[string]CoverageRule `json:"coverage" db:"coverage"`
}

// Guardrails 全局护栏
type Guardrails struct {
	MinRestHours          float64 `json:"min_rest_hours"`          // 班次间最小休息小时数
	MaxHoursWeek          float64 `json:"max_hours_week"`          // 周工时上限（超出仅警告）
	AllowSplitShifts      bool    `json:"allow_split_shifts"`      // 是否允许两头班
	OvertimePenaltyWeight float64 `json:"overtime_penalty_weight"` // 加班成本权重
	DesiredFloorPct       float64 `json:"desired_floor_pct"`       // 期望工时下限系数
	DesiredCeilingPct     float64 `json:"desired_ceiling_pct"`     // 期望工时上限系数
}

// Budget 人力预算目标
type Budget struct {
	GlobalPctOfSales float64            `json:"global_pct_of_sales"` // 人力成本占预测营业额的目标比例
	TolerancePct     float64            `json:"tolerance_pct"`       // 相对容差：上限 = 目标 ×(1+容差)
	PerGroupPct      map[string]float64 `json:"per_group_pct"`       // 角色组级覆盖（可选）
}

// DayHours 单日营业时间
// Close 允许超过 24:00（如 "25:00" 表示次日凌晨 1 点收盘）
type DayHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// BlockTemplate 锚点相对时段模板
// Start/End 为锚点表达式：@open / @close / @mid，可带 ± 分钟偏移
// 例如 "@open-30"、"@close+35"
type BlockTemplate struct {
	Name  string `json:"name"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// RoleGroup 角色组
type RoleGroup struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Priority      int      `json:"priority"`       // 填充顺序，小者先填
	Roles         []string `json:"roles"`          // 可胜任该组的角色
	Covers        []string `json:"covers"`         // 跨组兜底：主名单耗尽后按声明顺序尝试的组
	AllocationPct float64  `json:"allocation_pct"` // 占人力预算份额
}

// HasRole 检查角色是否属于该组
func (g *RoleGroup) HasRole(role string) bool {
	for _, r := range g.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CoverageRule 覆盖人数公式
// 需求人数 = ceil(Base + 有效需求/PerSalesUnit × PerSales)，夹在 [Min,Max]
type CoverageRule struct {
	Base         float64 `json:"base"`
	PerSales     float64 `json:"per_sales"`
	PerSalesUnit float64 `json:"per_sales_unit"`
	Min          int     `json:"min"`
	Max          int     `json:"max"` // 0 表示不设上限
}

// GroupByID 根据 ID 查找角色组
func (p *Policy) GroupByID(id string) *RoleGroup {
	for i := range p.Groups {
		if p.Groups[i].ID == id {
			return &p.Groups[i]
		}
	}
	return nil
}

// GroupForRole 返回包含指定角色的第一个角色组
func (p *Policy) GroupForRole(role string) *RoleGroup {
	for i := range p.Groups {
		if p.Groups[i].HasRole(role) {
			return &p.Groups[i]
		}
	}
	return nil
}

// CoverageFor 返回角色组在某时段的覆盖规则
func (p *Policy) CoverageFor(groupID, block string) (CoverageRule, bool) {
	rules, ok := p.Coverage[groupID]
	if !ok {
		return CoverageRule{}, false
	}
	rule, ok := rules[block]
	return rule, ok
}

// GroupBudgetPct 返回角色组的预算比例
// 优先使用 Budget.PerGroupPct 覆盖，否则按全局比例 × 组份额
func (p *Policy) GroupBudgetPct(groupID string) float64 {
	if pct, ok := p.Budget.PerGroupPct[groupID]; ok {
		return pct
	}
	if g := p.GroupByID(groupID); g != nil {
		return p.Budget.GlobalPctOfSales * g.AllocationPct
	}
	return 0
}

// DefaultPolicy 返回餐饮门店的基线策略
func DefaultPolicy() *Policy {
	hours := map[string]DayHours{
		"Mon": {Open: "11:00", Close: "23:00"},
		"Tue": {Open: "11:00", Close: "23:00"},
		"Wed": {Open: "11:00", Close: "23:00"},
		"Thu": {Open: "11:00", Close: "23:00"},
		"Fri": {Open: "11:00", Close: "25:00"},
		"Sat": {Open: "11:00", Close: "25:00"},
		"Sun": {Open: "11:00", Close: "23:00"},
	}

	return &Policy{
		BaseModel: NewBaseModel(),
		Name:      "餐饮门店基线策略",
		Active:    true,
		Guardrails: Guardrails{
			MinRestHours:          10,
			MaxHoursWeek:          40,
			AllowSplitShifts:      false,
			OvertimePenaltyWeight: 1.5,
			DesiredFloorPct:       0.85,
			DesiredCeilingPct:     1.15,
		},
		Budget: Budget{
			GlobalPctOfSales: 0.27,
			TolerancePct:     0.08,
		},
		Hours: hours,
		Blocks: []BlockTemplate{
			{Name: "AM", Start: "@open-30", End: "@mid"},
			{Name: "PM", Start: "@mid", End: "@close"},
			{Name: "Close", Start: "@close", End: "@close+35"},
		},
		Groups: []RoleGroup{
			{ID: "kitchen", Name: "后厨", Priority: 1, Roles: []string{"厨师", "帮厨"}, AllocationPct: 0.34},
			{ID: "servers", Name: "服务员", Priority: 2, Roles: []string{"服务员"}, AllocationPct: 0.39},
			{ID: "bartenders", Name: "吧台", Priority: 3, Roles: []string{"调酒师"}, Covers: []string{"servers"}, AllocationPct: 0.12},
			{ID: "cashier", Name: "收银", Priority: 4, Roles: []string{"收银员"}, Covers: []string{"servers"}, AllocationPct: 0.15},
		},
		Coverage: map[string]map[string]CoverageRule{
			"kitchen": {
				"AM":    {Base: 1, PerSales: 1, PerSalesUnit: 4000, Min: 1, Max: 6},
				"PM":    {Base: 1, PerSales: 1, PerSalesUnit: 3000, Min: 1, Max: 8},
				"Close": {Base: 1, PerSalesUnit: 1, Min: 1, Max: 2},
			},
			"servers": {
				"AM":    {Base: 1, PerSales: 1, PerSalesUnit: 3000, Min: 1, Max: 8},
				"PM":    {Base: 1, PerSales: 1, PerSalesUnit: 2500, Min: 2, Max: 10},
				"Close": {Base: 1, PerSalesUnit: 1, Min: 1, Max: 2},
			},
			"bartenders": {
				"PM": {Base: 1, PerSalesUnit: 1, Min: 1, Max: 2},
			},
			"cashier": {
				"AM": {Base: 1, PerSalesUnit: 1, Min: 1, Max: 1},
				"PM": {Base: 1, PerSalesUnit: 1, Min: 1, Max: 2},
			},
		},
	}
}
