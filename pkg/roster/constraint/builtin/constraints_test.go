package builtin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

func testEmployee(name string, roles []string) *model.Employee {
	wages := make(map[string]float64, len(roles))
	for _, r := range roles {
		wages[r] = 30
	}
	return &model.Employee{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		Name:         name,
		Status:       "active",
		Roles:        roles,
		Wages:        wages,
		DesiredHours: model.HourRange{Min: 20, Max: 40},
	}
}

// testAssignment 构造一条分配，起止为当日零点起的分钟数（可超过 1440）
func testAssignment(emp *model.Employee, day string, startMin, endMin int, role string) *model.Assignment {
	dayStart, _ := time.Parse("2006-01-02", day)
	return &model.Assignment{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		SlotID:     day + "/test",
		Day:        day,
		Start:      dayStart.Add(time.Duration(startMin) * time.Minute),
		End:        dayStart.Add(time.Duration(endMin) * time.Minute),
		Role:       role,
	}
}

func testContext(employees []*model.Employee, assignments []*model.Assignment) *constraint.Context {
	ctx := constraint.NewContext(model.DefaultPolicy(), "2026-01-05", employees)
	ctx.SetAssignments(assignments)
	return ctx
}

func TestConcurrencyConstraint_Evaluate(t *testing.T) {
	emp := testEmployee("张三", []string{"服务员"})

	tests := []struct {
		name        string
		assignments []*model.Assignment
		wantValid   bool
	}{
		{
			name:      "无分配，应通过",
			wantValid: true,
		},
		{
			name: "不重叠班次，应通过",
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 1020, "服务员"),
				testAssignment(emp, "2026-01-06", 630, 1020, "服务员"),
			},
			wantValid: true,
		},
		{
			name: "首尾相接不算重叠",
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 1020, "服务员"),
				testAssignment(emp, "2026-01-05", 1020, 1380, "服务员"),
			},
			wantValid: true,
		},
		{
			name: "同日时间重叠，应失败",
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 1020, "服务员"),
				testAssignment(emp, "2026-01-05", 900, 1380, "服务员"),
			},
			wantValid: false,
		},
	}

	c := NewConcurrencyConstraint()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext([]*model.Employee{emp}, tt.assignments)
			valid, details := c.Evaluate(ctx)
			if valid != tt.wantValid {
				t.Errorf("Evaluate() valid = %v, want %v", valid, tt.wantValid)
			}
			if !tt.wantValid && len(details) == 0 {
				t.Error("Evaluate() 未返回违反详情")
			}
		})
	}
}

func TestConcurrencyConstraint_EvaluateAssignment(t *testing.T) {
	emp := testEmployee("张三", []string{"服务员"})
	ctx := testContext([]*model.Employee{emp}, []*model.Assignment{
		testAssignment(emp, "2026-01-05", 630, 1020, "服务员"),
	})

	c := NewConcurrencyConstraint()

	if c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 900, 1380, "服务员")) {
		t.Error("重叠分配应被拒绝")
	}
	if !c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 1020, 1380, "服务员")) {
		t.Error("首尾相接的分配应被允许")
	}
}

func TestRestWindowConstraint_Evaluate(t *testing.T) {
	emp := testEmployee("李四", []string{"厨师"})

	tests := []struct {
		name        string
		minHours    float64
		allowSplit  bool
		assignments []*model.Assignment
		wantValid   bool
	}{
		{
			name:     "隔日休息充足，应通过",
			minHours: 10,
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 1380, "厨师"),  // 周一至 23:00
				testAssignment(emp, "2026-01-06", 630, 1020, "厨师"), // 周二 10:30 起，间隔 11.5h
			},
			wantValid: true,
		},
		{
			name:     "晚班接早班休息不足，应失败",
			minHours: 10,
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 1020, 1500, "厨师"), // 周一至 25:00（次日 01:00）
				testAssignment(emp, "2026-01-06", 630, 1020, "厨师"),  // 周二 10:30 起，间隔 9.5h
			},
			wantValid: false,
		},
		{
			name:     "首尾相接视为连续上班，应通过",
			minHours: 10,
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 1020, "厨师"),
				testAssignment(emp, "2026-01-05", 1020, 1380, "厨师"),
			},
			wantValid: true,
		},
		{
			name:     "同日间断且不允许两头班，应失败",
			minHours: 10,
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 900, "厨师"),
				testAssignment(emp, "2026-01-05", 1080, 1380, "厨师"), // 间隔 3h
			},
			wantValid: false,
		},
		{
			name:       "同日间断且允许两头班，应通过",
			minHours:   10,
			allowSplit: true,
			assignments: []*model.Assignment{
				testAssignment(emp, "2026-01-05", 630, 900, "厨师"),
				testAssignment(emp, "2026-01-05", 1080, 1380, "厨师"),
			},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewRestWindowConstraint(tt.minHours, tt.allowSplit)
			ctx := testContext([]*model.Employee{emp}, tt.assignments)
			valid, _ := c.Evaluate(ctx)
			if valid != tt.wantValid {
				t.Errorf("Evaluate() valid = %v, want %v", valid, tt.wantValid)
			}
		})
	}
}

func TestRestWindowConstraint_EvaluateAssignment(t *testing.T) {
	emp := testEmployee("李四", []string{"厨师"})
	ctx := testContext([]*model.Employee{emp}, []*model.Assignment{
		testAssignment(emp, "2026-01-05", 1020, 1500, "厨师"), // 至次日 01:00
	})

	c := NewRestWindowConstraint(10, false)

	// 周二 10:30 开始，间隔仅 9.5 小时
	if c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-06", 630, 1020, "厨师")) {
		t.Error("休息不足的分配应被拒绝")
	}
	// 周二 12:00 开始，间隔 11 小时
	if !c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-06", 720, 1020, "厨师")) {
		t.Error("休息充足的分配应被允许")
	}
	// 紧接前班结束，连续上班
	if !c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-06", 60, 300, "厨师")) {
		t.Error("首尾相接的分配应被允许")
	}
}

func TestWeeklyHoursConstraint_Evaluate(t *testing.T) {
	emp := testEmployee("王五", []string{"服务员"})

	tests := []struct {
		name          string
		maxHours      float64
		totalMinutes  int
		wantWarnings  int
		wantedOverage float64
	}{
		{name: "恰好等于上限不警告", maxHours: 40, totalMinutes: 2400, wantWarnings: 0},
		{name: "低于上限不警告", maxHours: 40, totalMinutes: 2100, wantWarnings: 0},
		{name: "超出上限产生警告", maxHours: 40, totalMinutes: 2550, wantWarnings: 1, wantedOverage: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 拆成 5 天均匀分配，避免单日跨度越界
			perDay := tt.totalMinutes / 5
			days := []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09"}
			var assignments []*model.Assignment
			for _, day := range days {
				assignments = append(assignments, testAssignment(emp, day, 600, 600+perDay, "服务员"))
			}

			c := NewWeeklyHoursConstraint(tt.maxHours)
			ctx := testContext([]*model.Employee{emp}, assignments)

			valid, details := c.Evaluate(ctx)
			if !valid {
				t.Error("软约束不应影响有效性")
			}
			if len(details) != tt.wantWarnings {
				t.Fatalf("警告数 = %d, want %d", len(details), tt.wantWarnings)
			}
			if tt.wantWarnings > 0 {
				d := details[0]
				if d.Limit != tt.maxHours {
					t.Errorf("Limit = %v, want %v", d.Limit, tt.maxHours)
				}
				if got := d.Hours - d.Limit; got != tt.wantedOverage {
					t.Errorf("超出小时 = %v, want %v", got, tt.wantedOverage)
				}
			}
		})
	}
}

func TestAvailabilityConstraint(t *testing.T) {
	emp := testEmployee("赵六", []string{"服务员"})
	emp.Availability = []model.AvailabilityWindow{
		{Day: "2026-01-05", StartMinute: 600, EndMinute: 1080},
	}

	c := NewAvailabilityConstraint()

	ctx := testContext([]*model.Employee{emp}, nil)

	// 完整落在窗口内
	if !c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 630, 1020, "服务员")) {
		t.Error("窗口内的分配应被允许")
	}
	// 超出窗口尾部
	if c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 630, 1200, "服务员")) {
		t.Error("超出可用窗口的分配应被拒绝")
	}
	// 无该日窗口
	if c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-06", 630, 1020, "服务员")) {
		t.Error("未声明可用的日期应被拒绝")
	}

	// 整周评估找出窗口外的既有分配
	ctx = testContext([]*model.Employee{emp}, []*model.Assignment{
		testAssignment(emp, "2026-01-06", 630, 1020, "服务员"),
	})
	valid, details := c.Evaluate(ctx)
	if valid || len(details) != 1 {
		t.Errorf("Evaluate() valid = %v, 详情数 = %d, want false/1", valid, len(details))
	}
}

func TestRoleMatchConstraint(t *testing.T) {
	emp := testEmployee("孙七", []string{"调酒师"})

	c := NewRoleMatchConstraint()
	ctx := testContext([]*model.Employee{emp}, nil)

	if !c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 1020, 1380, "调酒师")) {
		t.Error("可胜任角色的分配应被允许")
	}
	if c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 1020, 1380, "厨师")) {
		t.Error("不可胜任角色的分配应被拒绝")
	}

	// 缺失时薪也应被拒绝
	delete(emp.Wages, "调酒师")
	if c.EvaluateAssignment(ctx, testAssignment(emp, "2026-01-05", 1020, 1380, "调酒师")) {
		t.Error("缺失时薪的角色分配应被拒绝")
	}
}

func TestNewDefaultManager(t *testing.T) {
	policy := model.DefaultPolicy()
	m := NewDefaultManager(policy)

	if m.Count() != 5 {
		t.Fatalf("内置约束数 = %d, want 5", m.Count())
	}

	// 硬约束在前
	all := m.GetAll()
	for i, c := range all {
		if c.Category() == constraint.CategorySoft {
			for _, rest := range all[i:] {
				if rest.Category() == constraint.CategoryHard {
					t.Fatal("硬约束应排在软约束之前")
				}
			}
			break
		}
	}
}
