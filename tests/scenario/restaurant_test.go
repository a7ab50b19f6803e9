// Package scenario 提供场景测试
package scenario

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/engine"
	"github.com/zhoupai/zhoupai/pkg/roster/validate"
	"github.com/zhoupai/zhoupai/pkg/stats"
)

const weekStart = "2026-01-05" // 周一

// makeStaff 批量创建整周全时段可用的员工
func makeStaff(prefix string, count int, roles []string, wage float64) []*model.Employee {
	dates, _ := model.WeekDates(weekStart)

	staff := make([]*model.Employee, 0, count)
	for i := 0; i < count; i++ {
		wages := make(map[string]float64, len(roles))
		for _, r := range roles {
			wages[r] = wage
		}
		emp := &model.Employee{
			BaseModel:    model.BaseModel{ID: uuid.New()},
			Name:         prefix + string(rune('A'+i)),
			Status:       "active",
			Roles:        roles,
			Wages:        wages,
			DesiredHours: model.HourRange{Min: 25, Max: 40},
		}
		for _, day := range dates {
			emp.Availability = append(emp.Availability, model.AvailabilityWindow{
				Day: day, StartMinute: 0, EndMinute: 1536,
			})
		}
		staff = append(staff, emp)
	}
	return staff
}

// TestRestaurantFullWeek 餐饮门店整周排班端到端测试
// 基线策略 + 周末跨零点营业 + 周五活动调整，生成后校验与统计应自洽
func TestRestaurantFullWeek(t *testing.T) {
	policy := model.DefaultPolicy()

	// 后厨与前厅按周五晚高峰加次日早班的需求配置人手
	var employees []*model.Employee
	employees = append(employees, makeStaff("厨师", 10, []string{"厨师", "帮厨"}, 35)...)
	employees = append(employees, makeStaff("服务员", 12, []string{"服务员"}, 28)...)
	employees = append(employees, makeStaff("调酒师", 2, []string{"调酒师"}, 32)...)
	employees = append(employees, makeStaff("收银员", 2, []string{"收银员"}, 26)...)

	dates, _ := model.WeekDates(weekStart)
	projections := make([]model.Projection, 0, 7)
	for i, day := range dates {
		sales := 8000.0
		if i == 4 || i == 5 { // 周五周六
			sales = 10000
		}
		projections = append(projections, model.Projection{Day: day, Sales: sales})
	}
	modifiers := []model.Modifier{
		{Name: "周五乐队之夜", Day: "2026-01-09", Kind: model.ModifierMultiplicative, Value: 20},
	}

	in := &engine.Input{
		Policy:      policy,
		Employees:   employees,
		Projections: projections,
		Modifiers:   modifiers,
		WeekStart:   weekStart,
		Seed:        20260105,
	}

	eng := engine.New(engine.DefaultConfig())
	plan, summary, err := eng.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if summary.State != model.StateComplete {
		t.Fatalf("State = %s, want %s", summary.State, model.StateComplete)
	}
	if summary.UnfilledHeads != 0 {
		t.Errorf("人手充足的名单不应有缺口, UnfilledHeads = %d", summary.UnfilledHeads)
	}

	// 4 个角色组的覆盖规则共产出 63 个槽位
	if len(plan.Slots) != 63 {
		t.Errorf("槽位数 = %d, want 63", len(plan.Slots))
	}

	// 校验引擎对生成结果不应报任何阻断性问题
	report := validate.Validate(plan, policy, employees)
	if !report.Valid() {
		t.Errorf("生成的计划应通过校验, issues = %+v", report.Issues)
	}

	// 覆盖率统计应与摘要一致
	coverage := stats.AnalyzeCoverage(plan)
	if coverage.OverallRate != 100 {
		t.Errorf("OverallRate = %v, want 100", coverage.OverallRate)
	}
	if len(coverage.Gaps) != 0 {
		t.Errorf("覆盖缺口 = %+v, want 空", coverage.Gaps)
	}

	// 公平性评分在有效区间内
	fairness := stats.AnalyzeFairness(plan, employees)
	if fairness.Score < 0 || fairness.Score > 100 {
		t.Errorf("公平性评分 = %v, 应落在 [0,100]", fairness.Score)
	}
	if fairness.MaxHours <= 0 {
		t.Error("应统计到员工工时")
	}

	// 预算核算与摘要口径一致
	empByID := make(map[string]*model.Employee, len(employees))
	for _, emp := range employees {
		empByID[emp.ID.String()] = emp
	}
	budget := stats.AssessBudget(policy, empByID, plan)
	if budget.TotalCost != summary.LaborCost {
		t.Errorf("预算核算 %v 与摘要 %v 不一致", budget.TotalCost, summary.LaborCost)
	}
	if budget.OverCeiling != summary.BudgetExceeded {
		t.Errorf("超限标记不一致: %v vs %v", budget.OverCeiling, summary.BudgetExceeded)
	}
}

// TestRestaurantUnderstaffedWeekend 周末人手不足时仍交付计划并如实报告缺口
func TestRestaurantUnderstaffedWeekend(t *testing.T) {
	policy := model.DefaultPolicy()

	var employees []*model.Employee
	employees = append(employees, makeStaff("厨师", 3, []string{"厨师"}, 35)...)
	employees = append(employees, makeStaff("服务员", 4, []string{"服务员"}, 28)...)
	employees = append(employees, makeStaff("调酒师", 1, []string{"调酒师"}, 32)...)
	employees = append(employees, makeStaff("收银员", 1, []string{"收银员"}, 26)...)

	dates, _ := model.WeekDates(weekStart)
	projections := make([]model.Projection, 0, 7)
	for _, day := range dates {
		projections = append(projections, model.Projection{Day: day, Sales: 12000})
	}

	in := &engine.Input{
		Policy:      policy,
		Employees:   employees,
		Projections: projections,
		WeekStart:   weekStart,
		Seed:        7,
	}

	eng := engine.New(engine.DefaultConfig())
	plan, summary, err := eng.Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("覆盖缺口不应中断生成, error = %v", err)
	}

	if summary.State != model.StateComplete {
		t.Errorf("State = %s, want %s", summary.State, model.StateComplete)
	}
	if summary.UnfilledHeads == 0 {
		t.Error("人手不足应产生缺口")
	}

	// 缺口在校验报告中逐槽位列出
	report := validate.Validate(plan, policy, employees)
	if report.Valid() {
		t.Error("存在缺口的计划不应通过校验")
	}
	shortfall := 0
	for _, f := range report.Issues {
		if f.Type == model.FindingCoverage {
			shortfall += f.Shortfall
		}
	}
	if shortfall != summary.UnfilledHeads {
		t.Errorf("校验缺口合计 %d 与摘要 %d 不一致", shortfall, summary.UnfilledHeads)
	}
}
