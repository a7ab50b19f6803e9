package constraint

import (
	"testing"
	"time"

	"github.com/zhoupai/zhoupai/pkg/model"
)

// fakeConstraint 测试用约束桩
type fakeConstraint struct {
	name     string
	typ      Type
	cat      Category
	weight   int
	pass     bool
	details  []ViolationDetail
	canAdded bool
}

func (f *fakeConstraint) Name() string       { return f.name }
func (f *fakeConstraint) Type() Type         { return f.typ }
func (f *fakeConstraint) Category() Category { return f.cat }
func (f *fakeConstraint) Weight() int        { return f.weight }

func (f *fakeConstraint) Evaluate(ctx *Context) (bool, []ViolationDetail) {
	return f.pass, f.details
}

func (f *fakeConstraint) EvaluateAssignment(ctx *Context, a *model.Assignment) bool {
	return f.canAdded
}

func newFake(name string, typ Type, cat Category, weight int) *fakeConstraint {
	return &fakeConstraint{name: name, typ: typ, cat: cat, weight: weight, pass: true, canAdded: true}
}

func TestManager_RegisterReplacesSameType(t *testing.T) {
	m := NewManager()

	m.Register(newFake("第一版", TypeConcurrency, CategoryHard, 100))
	m.Register(newFake("第二版", TypeConcurrency, CategoryHard, 100))

	if m.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", m.Count())
	}
	if got := m.GetConstraint(TypeConcurrency); got == nil || got.Name() != "第二版" {
		t.Errorf("同类型注册应替换旧约束, got %v", got)
	}
}

func TestManager_Ordering(t *testing.T) {
	m := NewManager()

	m.Register(newFake("软-高", TypeWeeklyHours, CategorySoft, 70))
	m.Register(newFake("硬-低", TypeAvailability, CategoryHard, 80))
	m.Register(newFake("硬-高", TypeConcurrency, CategoryHard, 100))
	m.Register(newFake("软-低", TypeLaborBudget, CategorySoft, 50))

	all := m.GetAll()
	wantOrder := []string{"硬-高", "硬-低", "软-高", "软-低"}
	for i, want := range wantOrder {
		if all[i].Name() != want {
			t.Errorf("第 %d 个约束 = %s, want %s", i, all[i].Name(), want)
		}
	}
}

func TestManager_GetByCategory(t *testing.T) {
	m := NewManager()
	m.Register(newFake("硬", TypeConcurrency, CategoryHard, 100))
	m.Register(newFake("软", TypeWeeklyHours, CategorySoft, 70))

	if got := m.GetByCategory(CategoryHard); len(got) != 1 || got[0].Name() != "硬" {
		t.Errorf("GetByCategory(hard) = %v", got)
	}
	if got := m.GetByCategory(CategorySoft); len(got) != 1 || got[0].Name() != "软" {
		t.Errorf("GetByCategory(soft) = %v", got)
	}
}

func TestManager_Evaluate(t *testing.T) {
	m := NewManager()

	hard := newFake("硬", TypeConcurrency, CategoryHard, 100)
	hard.pass = false
	hard.details = []ViolationDetail{{ConstraintType: TypeConcurrency, Message: "重叠"}}
	soft := newFake("软", TypeWeeklyHours, CategorySoft, 70)
	soft.details = []ViolationDetail{{ConstraintType: TypeWeeklyHours, Message: "超时"}}

	m.Register(hard)
	m.Register(soft)

	ctx := NewContext(model.DefaultPolicy(), "2026-01-05", nil)
	result := m.Evaluate(ctx)

	if result.IsValid {
		t.Error("存在硬违反时 IsValid 应为 false")
	}
	if len(result.HardViolations) != 1 || result.HardViolations[0].Message != "重叠" {
		t.Errorf("HardViolations = %+v", result.HardViolations)
	}
	if len(result.SoftViolations) != 1 || result.SoftViolations[0].Message != "超时" {
		t.Errorf("SoftViolations = %+v", result.SoftViolations)
	}
}

func TestManager_EvaluateSoftOnly(t *testing.T) {
	m := NewManager()
	soft := newFake("软", TypeWeeklyHours, CategorySoft, 70)
	soft.details = []ViolationDetail{{ConstraintType: TypeWeeklyHours, Message: "超时"}}
	m.Register(soft)

	result := m.Evaluate(NewContext(model.DefaultPolicy(), "2026-01-05", nil))
	if !result.IsValid {
		t.Error("仅软违反时 IsValid 应保持 true")
	}
	if len(result.SoftViolations) != 1 {
		t.Errorf("SoftViolations 数 = %d, want 1", len(result.SoftViolations))
	}
}

func TestManager_CanAssign(t *testing.T) {
	m := NewManager()

	hard := newFake("班次重叠", TypeConcurrency, CategoryHard, 100)
	soft := newFake("周工时", TypeWeeklyHours, CategorySoft, 70)
	soft.canAdded = false // 软约束不应参与 CanAssign
	m.Register(hard)
	m.Register(soft)

	ctx := NewContext(model.DefaultPolicy(), "2026-01-05", nil)
	a := &model.Assignment{}

	if ok, reason := m.CanAssign(ctx, a); !ok {
		t.Errorf("硬约束全通过时应允许, reason = %s", reason)
	}

	hard.canAdded = false
	ok, reason := m.CanAssign(ctx, a)
	if ok {
		t.Fatal("硬约束拒绝时应不允许")
	}
	if reason != "违反硬约束: 班次重叠" {
		t.Errorf("reason = %q, want %q", reason, "违反硬约束: 班次重叠")
	}
}

func TestManager_Clear(t *testing.T) {
	m := NewManager()
	m.Register(newFake("硬", TypeConcurrency, CategoryHard, 100))
	m.Clear()
	if m.Count() != 0 {
		t.Errorf("Clear() 后 Count() = %d, want 0", m.Count())
	}
}

func TestContext_AddAssignmentKeepsOrder(t *testing.T) {
	emp := &model.Employee{BaseModel: model.BaseModel{ID: model.NewBaseModel().ID}, Status: "active"}
	ctx := NewContext(model.DefaultPolicy(), "2026-01-05", []*model.Employee{emp})

	mk := func(day string, startMin, endMin int) *model.Assignment {
		dayStart, _ := time.Parse("2006-01-02", day)
		return &model.Assignment{
			EmployeeID: emp.ID,
			Day:        day,
			Start:      dayStart.Add(time.Duration(startMin) * time.Minute),
			End:        dayStart.Add(time.Duration(endMin) * time.Minute),
		}
	}

	// 乱序加入
	ctx.AddAssignment(mk("2026-01-07", 600, 960))
	ctx.AddAssignment(mk("2026-01-05", 600, 960))
	ctx.AddAssignment(mk("2026-01-06", 600, 960))

	list := ctx.GetEmployeeAssignments(emp.ID)
	if len(list) != 3 {
		t.Fatalf("分配数 = %d, want 3", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Start.Before(list[i-1].Start) {
			t.Fatal("员工分配列表应按开始时间有序")
		}
	}

	if got := ctx.GetEmployeeHours(emp.ID); got != 18 {
		t.Errorf("累计工时 = %v, want 18", got)
	}
}
