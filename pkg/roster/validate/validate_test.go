package validate

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
)

const testWeekStart = "2026-01-05" // 周一

func makeEmployee(name string, roles []string) *model.Employee {
	wages := make(map[string]float64, len(roles))
	for _, r := range roles {
		wages[r] = 30
	}
	emp := &model.Employee{
		BaseModel:    model.BaseModel{ID: uuid.New()},
		Name:         name,
		Status:       "active",
		Roles:        roles,
		Wages:        wages,
		DesiredHours: model.HourRange{Min: 20, Max: 40},
	}
	dates, _ := model.WeekDates(testWeekStart)
	for _, day := range dates {
		emp.Availability = append(emp.Availability, model.AvailabilityWindow{
			Day: day, StartMinute: 0, EndMinute: 1536,
		})
	}
	return emp
}

func makeAssignment(emp *model.Employee, slotID, day string, startMin, endMin int, role string) *model.Assignment {
	dayStart, _ := time.Parse("2006-01-02", day)
	return &model.Assignment{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		SlotID:     slotID,
		Day:        day,
		Start:      dayStart.Add(time.Duration(startMin) * time.Minute),
		End:        dayStart.Add(time.Duration(endMin) * time.Minute),
		Role:       role,
		GroupID:    "servers",
	}
}

func makeSlot(day, block string, startMin, endMin, required int) model.ShiftSlot {
	dayStart, _ := time.Parse("2006-01-02", day)
	return model.ShiftSlot{
		ID:       day + "/" + block + "/servers",
		Day:      day,
		Block:    block,
		Start:    dayStart.Add(time.Duration(startMin) * time.Minute),
		End:      dayStart.Add(time.Duration(endMin) * time.Minute),
		GroupID:  "servers",
		Required: required,
	}
}

func makePlan(slots []model.ShiftSlot, assignments []*model.Assignment) *model.WeekPlan {
	plan := model.NewWeekPlan(testWeekStart, 42)
	plan.Slots = slots
	plan.Assignments = assignments
	plan.ProjectedSales = 70000
	return plan
}

func TestValidate_CleanPlan(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})
	slot := makeSlot("2026-01-05", "PM", 1020, 1380, 1)
	plan := makePlan([]model.ShiftSlot{slot},
		[]*model.Assignment{makeAssignment(emp, slot.ID, "2026-01-05", 1020, 1380, "服务员")})
	// 成本 180，目标 189，落在 ±8% 容差带 [173.88, 204.12] 内
	plan.ProjectedSales = 700

	policy := model.DefaultPolicy()
	policy.GroupByID("servers").AllocationPct = 1

	report := Validate(plan, policy, []*model.Employee{emp})

	if !report.Valid() {
		t.Errorf("干净计划应通过校验, issues = %+v", report.Issues)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("不应有警告, warnings = %+v", report.Warnings)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	emp1 := makeEmployee("张三", []string{"服务员"})
	emp2 := makeEmployee("李四", []string{"服务员"})
	slot := makeSlot("2026-01-05", "PM", 1020, 1380, 3)
	plan := makePlan([]model.ShiftSlot{slot}, []*model.Assignment{
		makeAssignment(emp1, slot.ID, "2026-01-05", 1020, 1380, "服务员"),
		// 重叠分配制造硬违反
		makeAssignment(emp2, slot.ID, "2026-01-05", 1020, 1380, "服务员"),
		makeAssignment(emp2, "2026-01-05/X/servers", "2026-01-05", 1200, 1440, "服务员"),
	})
	employees := []*model.Employee{emp1, emp2}
	policy := model.DefaultPolicy()

	first := Validate(plan, policy, employees)
	second := Validate(plan, policy, employees)

	if !reflect.DeepEqual(first, second) {
		t.Error("同一计划重复校验应产出完全一致的报告")
	}
	if first.Valid() {
		t.Error("存在重叠与缺口的计划不应通过校验")
	}
}

func TestValidate_CoverageShortfall(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})
	slot := makeSlot("2026-01-05", "PM", 1020, 1380, 3)
	plan := makePlan([]model.ShiftSlot{slot},
		[]*model.Assignment{makeAssignment(emp, slot.ID, "2026-01-05", 1020, 1380, "服务员")})

	report := Validate(plan, model.DefaultPolicy(), []*model.Employee{emp})

	var coverage *model.Finding
	for i := range report.Issues {
		if report.Issues[i].Type == model.FindingCoverage {
			coverage = &report.Issues[i]
			break
		}
	}
	if coverage == nil {
		t.Fatalf("应报告覆盖缺口, issues = %+v", report.Issues)
	}
	if coverage.Shortfall != 2 {
		t.Errorf("Shortfall = %d, want 2", coverage.Shortfall)
	}
	if coverage.GroupID != "servers" {
		t.Errorf("GroupID = %s, want servers", coverage.GroupID)
	}
	if coverage.SlotID != slot.ID {
		t.Errorf("SlotID = %s, want %s", coverage.SlotID, slot.ID)
	}
}

func TestValidate_OverlapIsIssue(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})
	slots := []model.ShiftSlot{
		makeSlot("2026-01-05", "AM", 630, 1020, 1),
		makeSlot("2026-01-05", "PM", 900, 1380, 1),
	}
	plan := makePlan(slots, []*model.Assignment{
		makeAssignment(emp, slots[0].ID, "2026-01-05", 630, 1020, "服务员"),
		makeAssignment(emp, slots[1].ID, "2026-01-05", 900, 1380, "服务员"),
	})

	report := Validate(plan, model.DefaultPolicy(), []*model.Employee{emp})

	found := false
	for _, f := range report.Issues {
		if f.Type == model.FindingConcurrency {
			found = true
			if f.Employee != "张三" {
				t.Errorf("Employee = %s, want 张三", f.Employee)
			}
		}
	}
	if !found {
		t.Errorf("应报告班次重叠, issues = %+v", report.Issues)
	}
}

func TestValidate_WeeklyHoursWarning(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})

	// 5 天 × 8.5 小时 = 42.5 小时，超出 40 小时上限
	days := []string{"2026-01-05", "2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09"}
	var slots []model.ShiftSlot
	var assignments []*model.Assignment
	for _, day := range days {
		slot := makeSlot(day, "PM", 600, 1110, 1)
		slots = append(slots, slot)
		assignments = append(assignments, makeAssignment(emp, slot.ID, day, 600, 1110, "服务员"))
	}
	plan := makePlan(slots, assignments)

	report := Validate(plan, model.DefaultPolicy(), []*model.Employee{emp})

	if !report.Valid() {
		t.Errorf("周工时超限是警告而非阻断, issues = %+v", report.Issues)
	}

	var warning *model.Finding
	for i := range report.Warnings {
		if report.Warnings[i].Type == model.FindingWeeklyHours {
			warning = &report.Warnings[i]
			break
		}
	}
	if warning == nil {
		t.Fatalf("应报告周工时警告, warnings = %+v", report.Warnings)
	}
	if warning.Hours != 42.5 {
		t.Errorf("Hours = %v, want 42.5", warning.Hours)
	}
	if warning.Limit != 40 {
		t.Errorf("Limit = %v, want 40", warning.Limit)
	}
	if warning.Overage != 2.5 {
		t.Errorf("Overage = %v, want 2.5", warning.Overage)
	}
}

func TestValidate_BudgetWarning(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})
	emp.Wages["服务员"] = 500 // 抬高时薪触发预算超限

	slot := makeSlot("2026-01-05", "PM", 1020, 1380, 1)
	plan := makePlan([]model.ShiftSlot{slot},
		[]*model.Assignment{makeAssignment(emp, slot.ID, "2026-01-05", 1020, 1380, "服务员")})
	plan.ProjectedSales = 10000 // 成本 3000，上限 10000×0.27×1.08 = 2916

	report := Validate(plan, model.DefaultPolicy(), []*model.Employee{emp})

	found := false
	for _, f := range report.Warnings {
		if f.Type == model.FindingLaborBudget {
			found = true
		}
	}
	if !found {
		t.Errorf("应报告预算超限警告, warnings = %+v", report.Warnings)
	}
	if !report.Valid() {
		t.Errorf("预算超限是警告而非阻断, issues = %+v", report.Issues)
	}
}

func TestValidate_BudgetUnderFloor(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})

	// 成本 180，下限 70000×0.27×0.92 = 17388，远低于容差带
	slot := makeSlot("2026-01-05", "PM", 1020, 1380, 1)
	plan := makePlan([]model.ShiftSlot{slot},
		[]*model.Assignment{makeAssignment(emp, slot.ID, "2026-01-05", 1020, 1380, "服务员")})

	report := Validate(plan, model.DefaultPolicy(), []*model.Employee{emp})

	found := false
	for _, f := range report.Warnings {
		if f.Type == model.FindingLaborBudget && strings.Contains(f.Message, "低于预算下限") {
			found = true
		}
	}
	if !found {
		t.Errorf("应报告预算下限警告, warnings = %+v", report.Warnings)
	}
	if !report.Valid() {
		t.Errorf("低于预算下限是警告而非阻断, issues = %+v", report.Issues)
	}
}

func TestValidate_AvailabilityIssue(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"})
	emp.Availability = []model.AvailabilityWindow{
		{Day: "2026-01-05", StartMinute: 600, EndMinute: 1080},
	}

	slot := makeSlot("2026-01-05", "PM", 1020, 1380, 1)
	plan := makePlan([]model.ShiftSlot{slot},
		[]*model.Assignment{makeAssignment(emp, slot.ID, "2026-01-05", 1020, 1380, "服务员")})

	report := Validate(plan, model.DefaultPolicy(), []*model.Employee{emp})

	found := false
	for _, f := range report.Issues {
		if f.Type == model.FindingAvailability {
			found = true
		}
	}
	if !found {
		t.Errorf("应报告可用性违反, issues = %+v", report.Issues)
	}
}

func TestValidate_NilInputs(t *testing.T) {
	report := Validate(nil, model.DefaultPolicy(), nil)
	if !report.Valid() || report.Count() != 0 {
		t.Error("空计划应返回空报告")
	}

	report = Validate(model.NewWeekPlan(testWeekStart, 1), nil, nil)
	if !report.Valid() || report.Count() != 0 {
		t.Error("空策略应返回空报告")
	}
}
