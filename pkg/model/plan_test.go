package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func testAssignment(empID uuid.UUID, slotID string, startMin, endMin int) *Assignment {
	base := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	return &Assignment{
		ID:         uuid.New(),
		EmployeeID: empID,
		SlotID:     slotID,
		Day:        "2026-01-05",
		Start:      base.Add(time.Duration(startMin) * time.Minute),
		End:        base.Add(time.Duration(endMin) * time.Minute),
	}
}

func TestAssignment_WorkingHours(t *testing.T) {
	a := testAssignment(uuid.New(), "s1", 630, 1020)
	if got := a.WorkingHours(); got != 6.5 {
		t.Errorf("WorkingHours() = %v, want 6.5", got)
	}
}

func TestAssignment_OverlapsWith(t *testing.T) {
	empID := uuid.New()
	a := testAssignment(empID, "s1", 630, 1020)

	if !a.OverlapsWith(testAssignment(empID, "s2", 900, 1380)) {
		t.Error("部分重叠应返回 true")
	}
	if a.OverlapsWith(testAssignment(empID, "s2", 1020, 1380)) {
		t.Error("首尾相接不算重叠")
	}
}

func TestWeekPlan_Accessors(t *testing.T) {
	emp1, emp2 := uuid.New(), uuid.New()

	plan := NewWeekPlan("2026-01-05", 42)
	if plan.ID == uuid.Nil {
		t.Error("新计划应分配 ID")
	}
	if plan.WeekStart != "2026-01-05" || plan.Seed != 42 {
		t.Errorf("WeekStart/Seed = %s/%d", plan.WeekStart, plan.Seed)
	}

	plan.Assignments = []*Assignment{
		testAssignment(emp1, "s1", 630, 1020),
		testAssignment(emp1, "s2", 1020, 1380),
		testAssignment(emp2, "s1", 630, 1020),
	}

	if got := plan.AssignmentsFor(emp1); len(got) != 2 {
		t.Errorf("emp1 分配数 = %d, want 2", len(got))
	}
	if got := plan.AssignedCount("s1"); got != 2 {
		t.Errorf("AssignedCount(s1) = %d, want 2", got)
	}
	if got := plan.AssignedCount("missing"); got != 0 {
		t.Errorf("AssignedCount(missing) = %d, want 0", got)
	}
	// 6.5 + 6 + 6.5
	if got := plan.TotalHours(); got != 19 {
		t.Errorf("TotalHours() = %v, want 19", got)
	}
}

func TestValidationReport(t *testing.T) {
	report := &ValidationReport{}
	if !report.Valid() {
		t.Error("空报告应视为通过")
	}

	report.Add(Finding{Type: FindingWeeklyHours, Severity: SeverityWarning})
	if !report.Valid() {
		t.Error("仅警告不应导致不通过")
	}

	report.Add(Finding{Type: FindingCoverage, Severity: SeverityIssue})
	if report.Valid() {
		t.Error("存在阻断性问题应不通过")
	}
	if report.Count() != 2 {
		t.Errorf("Count() = %d, want 2", report.Count())
	}
}
