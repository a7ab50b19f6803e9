package availability

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint/builtin"
)

func makeEmployee(name string, roles []string, availability []model.AvailabilityWindow) *model.Employee {
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
		Availability: availability,
	}
}

// allDay 生成整周全天可用的窗口
func allDay(days ...string) []model.AvailabilityWindow {
	windows := make([]model.AvailabilityWindow, 0, len(days))
	for _, d := range days {
		windows = append(windows, model.AvailabilityWindow{Day: d, StartMinute: 0, EndMinute: 1536})
	}
	return windows
}

func makeSlot(day string, startMin, endMin int, groupID string) *model.ShiftSlot {
	dayStart, _ := time.Parse("2006-01-02", day)
	return &model.ShiftSlot{
		ID:       day + "/PM/" + groupID,
		Day:      day,
		Block:    "PM",
		Start:    dayStart.Add(time.Duration(startMin) * time.Minute),
		End:      dayStart.Add(time.Duration(endMin) * time.Minute),
		GroupID:  groupID,
		Required: 2,
	}
}

func newTestIndex(employees []*model.Employee) *Index {
	policy := model.DefaultPolicy()
	ctx := constraint.NewContext(policy, "2026-01-05", employees)
	return NewIndex(ctx, builtin.NewDefaultManager(policy))
}

func TestEligibleFor(t *testing.T) {
	week := []string{"2026-01-05", "2026-01-06", "2026-01-07"}
	group := &model.RoleGroup{ID: "servers", Name: "服务员组", Roles: []string{"服务员", "传菜员"}}

	available := makeEmployee("张三", []string{"服务员"}, allDay(week...))
	wrongRole := makeEmployee("李四", []string{"厨师"}, allDay(week...))
	inactive := makeEmployee("王五", []string{"服务员"}, allDay(week...))
	inactive.Status = "leave"
	noWindow := makeEmployee("赵六", []string{"服务员"}, nil)
	fallbackRole := makeEmployee("孙七", []string{"传菜员"}, allDay(week...))

	idx := newTestIndex([]*model.Employee{available, wrongRole, inactive, noWindow, fallbackRole})

	slot := makeSlot("2026-01-05", 1020, 1380, "servers")
	candidates := idx.EligibleFor(slot, group)

	if len(candidates) != 2 {
		t.Fatalf("候选人数 = %d, want 2", len(candidates))
	}
	byID := make(map[uuid.UUID]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.Employee.ID] = c
	}
	if c, ok := byID[available.ID]; !ok || c.Role != "服务员" {
		t.Errorf("张三应以服务员角色入选, got %+v", c)
	}
	// 组内首个匹配角色
	if c, ok := byID[fallbackRole.ID]; !ok || c.Role != "传菜员" {
		t.Errorf("孙七应以传菜员角色入选, got %+v", c)
	}
}

func TestEligibleFor_ExcludesOverlapping(t *testing.T) {
	week := []string{"2026-01-05"}
	group := &model.RoleGroup{ID: "servers", Roles: []string{"服务员"}}
	emp := makeEmployee("张三", []string{"服务员"}, allDay(week...))

	idx := newTestIndex([]*model.Employee{emp})

	slot := makeSlot("2026-01-05", 1020, 1380, "servers")
	if got := idx.EligibleFor(slot, group); len(got) != 1 {
		t.Fatalf("提交前候选人数 = %d, want 1", len(got))
	}

	dayStart, _ := time.Parse("2006-01-02", "2026-01-05")
	idx.Commit(&model.Assignment{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		SlotID:     "2026-01-05/AM/servers",
		Day:        "2026-01-05",
		Start:      dayStart.Add(630 * time.Minute),
		End:        dayStart.Add(1100 * time.Minute),
		Role:       "服务员",
		GroupID:    "servers",
	})

	// 与已提交分配重叠
	if got := idx.EligibleFor(slot, group); len(got) != 0 {
		t.Errorf("提交重叠分配后候选人数 = %d, want 0", len(got))
	}
}

func TestCommittedHours(t *testing.T) {
	emp := makeEmployee("张三", []string{"服务员"}, allDay("2026-01-05"))
	idx := newTestIndex([]*model.Employee{emp})

	if got := idx.CommittedHours(emp.ID); got != 0 {
		t.Fatalf("初始工时 = %v, want 0", got)
	}

	dayStart, _ := time.Parse("2006-01-02", "2026-01-05")
	idx.Commit(&model.Assignment{
		ID:         uuid.New(),
		EmployeeID: emp.ID,
		Day:        "2026-01-05",
		Start:      dayStart.Add(630 * time.Minute),
		End:        dayStart.Add(1020 * time.Minute),
		Role:       "服务员",
	})

	if got := idx.CommittedHours(emp.ID); got != 6.5 {
		t.Errorf("提交后工时 = %v, want 6.5", got)
	}
}

func TestHasAnyRoleMatch(t *testing.T) {
	cook := makeEmployee("李四", []string{"厨师"}, nil)
	idle := makeEmployee("王五", []string{"服务员"}, nil)
	idle.Status = "inactive"

	idx := newTestIndex([]*model.Employee{cook, idle})

	if !idx.HasAnyRoleMatch(&model.RoleGroup{ID: "kitchen", Roles: []string{"厨师"}}) {
		t.Error("厨师组应有匹配员工")
	}
	// 仅有的服务员不在职
	if idx.HasAnyRoleMatch(&model.RoleGroup{ID: "servers", Roles: []string{"服务员"}}) {
		t.Error("不在职员工不应计入角色匹配")
	}
	if idx.HasAnyRoleMatch(&model.RoleGroup{ID: "bar", Roles: []string{"调酒师"}}) {
		t.Error("无人可胜任的组不应匹配")
	}
}
