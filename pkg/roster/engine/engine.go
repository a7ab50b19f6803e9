// Package engine 实现周排班生成引擎
// 单次运行的状态机：Init → FillingSlots → BudgetCheck → Finalizing → {Complete | Infeasible}
package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/pkg/errors"
	"github.com/zhoupai/zhoupai/pkg/logger"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/availability"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint/builtin"
	"github.com/zhoupai/zhoupai/pkg/roster/demand"
	"github.com/zhoupai/zhoupai/pkg/roster/policyres"
	"github.com/zhoupai/zhoupai/pkg/stats"
)

// Config 引擎配置
type Config struct {
	// Attempts 多草稿尝试次数，按主种子派生子种子逐次尝试并保留最优
	Attempts int

	// BudgetRetries 预算超限后以保守排序重试的次数上限
	BudgetRetries int
}

// DefaultConfig 返回默认引擎配置
func DefaultConfig() Config {
	return Config{
		Attempts:      3,
		BudgetRetries: 2,
	}
}

// Engine 周排班生成引擎
// 对正在构建的计划拥有独占写权限，运行间不共享可变状态
type Engine struct {
	cfg Config
	log *logger.RosterLogger
}

// New 创建引擎
func New(cfg Config) *Engine {
	if cfg.Attempts < 1 {
		cfg.Attempts = 1
	}
	if cfg.BudgetRetries < 0 {
		cfg.BudgetRetries = 0
	}
	return &Engine{
		cfg: cfg,
		log: logger.NewRosterLogger(),
	}
}

// Input 单次生成的只读输入快照
type Input struct {
	Policy      *model.Policy
	Employees   []*model.Employee
	Projections []model.Projection
	Modifiers   []model.Modifier
	WeekStart   string // 周一日期 YYYY-MM-DD
	Seed        int64
}

// Gap 未填满的覆盖缺口
type Gap struct {
	SlotID    string `json:"slot_id"`
	Day       string `json:"day"`
	Block     string `json:"block"`
	GroupID   string `json:"group_id"`
	Shortfall int    `json:"shortfall"`
}

// Generate 生成一周排班计划
// 覆盖缺口与预算超限只记入摘要，不中断；结构性不可行返回 Infeasible
func (e *Engine) Generate(ctx context.Context, in *Input) (*model.WeekPlan, *model.GenerationSummary, error) {
	started := time.Now()

	summary := &model.GenerationSummary{
		Seed:  in.Seed,
		State: model.StateInit,
	}

	if err := checkPreconditions(in); err != nil {
		return nil, summary, err
	}

	blocks, err := policyres.Resolve(in.Policy, in.WeekStart)
	if err != nil {
		return nil, summary, err
	}

	resolved := demand.Resolve(in.Policy, blocks, in.Projections, in.Modifiers)

	// 结构性可行检查：角色组（含兜底组）全名单无人可胜任即不可行
	// 角色匹配口径与填充阶段共用可用性索引
	idx := availability.NewIndex(
		constraint.NewContext(in.Policy, in.WeekStart, in.Employees),
		builtin.NewDefaultManager(in.Policy),
	)
	if reason := structuralCheck(in.Policy, idx, resolved.Slots); reason != "" {
		summary.State = model.StateInfeasible
		summary.Reason = reason
		summary.Duration = time.Since(started)
		return nil, summary, errors.NoFeasibleSolution(reason)
	}

	// 多草稿：按主种子派生子种子逐次尝试，保留得分最低的草稿
	var (
		best       *model.WeekPlan
		bestGaps   []Gap
		bestBudget *stats.BudgetReport
		bestScore  = math.Inf(1)
	)

	for attempt := 0; attempt < e.cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}

		seed := in.Seed + int64(attempt)
		plan, gaps, budget, err := e.runOnce(ctx, in, resolved, seed)
		if err != nil {
			return nil, summary, err
		}

		score := draftScore(in.Policy, gaps, budget)
		if score < bestScore {
			best, bestGaps, bestBudget, bestScore = plan, gaps, budget, score
		}
	}

	e.log.StateTransition(best.ID.String(), string(model.StateBudgetCheck), string(model.StateFinalizing))

	summary.State = model.StateComplete
	summary.Attempts = e.cfg.Attempts
	summary.UnfilledSlots = len(bestGaps)
	for _, g := range bestGaps {
		summary.UnfilledHeads += g.Shortfall
	}
	summary.LaborCost = bestBudget.TotalCost
	summary.LaborPct = bestBudget.LaborPct
	summary.BudgetExceeded = bestBudget.OverCeiling
	summary.Duration = time.Since(started)

	e.log.GenerateComplete(best.ID.String(), summary.Duration, summary.UnfilledHeads, summary.LaborPct)
	return best, summary, nil
}

// runOnce 执行一次完整的状态机运行（含预算重试）
func (e *Engine) runOnce(ctx context.Context, in *Input, resolved *demand.Result, seed int64) (*model.WeekPlan, []Gap, *stats.BudgetReport, error) {
	empByID := make(map[string]*model.Employee, len(in.Employees))
	for _, emp := range in.Employees {
		empByID[emp.ID.String()] = emp
	}

	plan, gaps, err := e.fill(ctx, in, resolved, seed, false)
	if err != nil {
		return nil, nil, nil, err
	}

	budget := stats.AssessBudget(in.Policy, empByID, plan)

	// 预算超限：以保守排序（压低加班倾向候选人）重试，次数受限
	// 仍超限则照常返回并打上标记，覆盖完整性优先于预算精确
	for retry := 1; budget.OverCeiling && retry <= e.cfg.BudgetRetries; retry++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}
		e.log.BudgetExceeded(plan.ID.String(), budget.LaborPct, in.Policy.Budget.GlobalPctOfSales, retry)

		retryPlan, retryGaps, err := e.fill(ctx, in, resolved, seed+int64(retry)<<32, true)
		if err != nil {
			return nil, nil, nil, err
		}
		retryBudget := stats.AssessBudget(in.Policy, empByID, retryPlan)

		// 保守草稿不得引入新的覆盖缺口
		if headsOf(retryGaps) <= headsOf(gaps) {
			plan, gaps, budget = retryPlan, retryGaps, retryBudget
		}
		if !budget.OverCeiling {
			break
		}
	}

	return plan, gaps, budget, nil
}

// fill 状态机的 FillingSlots 阶段：按固定顺序填充全部槽位
func (e *Engine) fill(ctx context.Context, in *Input, resolved *demand.Result, seed int64, conservative bool) (*model.WeekPlan, []Gap, error) {
	rng := rand.New(rand.NewSource(seed))

	cctx := constraint.NewContext(in.Policy, in.WeekStart, in.Employees)
	manager := builtin.NewDefaultManager(in.Policy)
	idx := availability.NewIndex(cctx, manager)

	plan := model.NewWeekPlan(in.WeekStart, in.Seed)
	plan.Slots = resolved.Slots
	plan.ProjectedSales = resolved.TotalSales
	cctx.SetSlots(resolved.Slots)

	e.log.StartGenerate(plan.ID.String(), seed, len(in.Employees), len(resolved.Slots))
	e.log.StateTransition(plan.ID.String(), string(model.StateInit), string(model.StateFillingSlots))

	// 填充顺序：角色组优先级 → 日期 → 时段开始时间，固定顺序保证同种子可复现
	slots := make([]model.ShiftSlot, len(resolved.Slots))
	copy(slots, resolved.Slots)
	priority := groupPriorities(in.Policy)
	sort.SliceStable(slots, func(i, j int) bool {
		pi, pj := priority[slots[i].GroupID], priority[slots[j].GroupID]
		if pi != pj {
			return pi < pj
		}
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		return slots[i].Start.Before(slots[j].Start)
	})

	var gaps []Gap

	for si := range slots {
		// 协作式取消：每个槽位之间检查一次
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		slot := &slots[si]
		group := in.Policy.GroupByID(slot.GroupID)
		if group == nil {
			continue
		}

		filled := 0
		for filled < slot.Required {
			a := e.fillOne(idx, rng, slot, group, in.Policy, conservative)
			if a == nil {
				break
			}
			idx.Commit(a)
			plan.Assignments = append(plan.Assignments, a)
			filled++
		}

		if filled < slot.Required {
			shortfall := slot.Required - filled
			gaps = append(gaps, Gap{
				SlotID:    slot.ID,
				Day:       slot.Day,
				Block:     slot.Block,
				GroupID:   slot.GroupID,
				Shortfall: shortfall,
			})
			e.log.CoverageGap(slot.Day, slot.Block, slot.GroupID, shortfall)
		}
	}

	e.log.StateTransition(plan.ID.String(), string(model.StateFillingSlots), string(model.StateBudgetCheck))
	return plan, gaps, nil
}

// fillOne 为槽位挑选一名候选人，主名单耗尽后按声明顺序尝试兜底组
func (e *Engine) fillOne(idx *availability.Index, rng *rand.Rand, slot *model.ShiftSlot, group *model.RoleGroup, policy *model.Policy, conservative bool) *model.Assignment {
	pick := func(g *model.RoleGroup, fallback bool) *model.Assignment {
		candidates := idx.EligibleFor(slot, g)
		if len(candidates) == 0 {
			return nil
		}
		chosen := rank(idx, rng, candidates, slot, policy, conservative)[0]
		return &model.Assignment{
			ID:         uuid.New(),
			EmployeeID: chosen.Employee.ID,
			SlotID:     slot.ID,
			Day:        slot.Day,
			Start:      slot.Start,
			End:        slot.End,
			Role:       chosen.Role,
			GroupID:    group.ID,
			Fallback:   fallback,
		}
	}

	if a := pick(group, false); a != nil {
		return a
	}

	for _, coverID := range group.Covers {
		cover := policy.GroupByID(coverID)
		if cover == nil {
			continue
		}
		if a := pick(cover, true); a != nil {
			return a
		}
	}

	return nil
}

// rank 候选人排序
// 先以种子随机打乱做平手裁决，再按期望工时缺口稳定降序：
// 离期望区间中点越远（越欠班）的越靠前
// 保守模式下已达期望上限的候选人整体后置，用于预算重试
func rank(idx *availability.Index, rng *rand.Rand, candidates []availability.Candidate, slot *model.ShiftSlot, policy *model.Policy, conservative bool) []availability.Candidate {
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	slotHours := slot.Hours()
	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		hi := idx.CommittedHours(ci.Employee.ID)
		hj := idx.CommittedHours(cj.Employee.ID)

		if conservative {
			oi := hi+slotHours > ci.Employee.DesiredHours.Max*policy.Guardrails.DesiredCeilingPct
			oj := hj+slotHours > cj.Employee.DesiredHours.Max*policy.Guardrails.DesiredCeilingPct
			if oi != oj {
				return !oi
			}
		}

		di := ci.Employee.DesiredHours.Mid() - hi
		dj := cj.Employee.DesiredHours.Mid() - hj
		return di > dj
	})

	return candidates
}

// draftScore 草稿得分，越低越好
// 缺口人数权重最高，其次预算超限，最后离预算目标的距离
func draftScore(policy *model.Policy, gaps []Gap, budget *stats.BudgetReport) float64 {
	score := float64(headsOf(gaps)) * 100
	if budget.OverCeiling {
		score += 50
	}
	score += math.Abs(budget.LaborPct-policy.Budget.GlobalPctOfSales) * 10
	return score
}

// headsOf 统计缺口总人数
func headsOf(gaps []Gap) int {
	total := 0
	for _, g := range gaps {
		total += g.Shortfall
	}
	return total
}

// groupPriorities 建立角色组优先级索引
func groupPriorities(policy *model.Policy) map[string]int {
	m := make(map[string]int, len(policy.Groups))
	for _, g := range policy.Groups {
		m[g.ID] = g.Priority
	}
	return m
}

// structuralCheck 检查每个有需求的角色组（含兜底组）是否至少有一名可胜任员工
// 按策略声明顺序扫描，保证不可行原因稳定；返回空串表示可行
func structuralCheck(policy *model.Policy, idx *availability.Index, slots []model.ShiftSlot) string {
	needed := make(map[string]bool)
	for _, s := range slots {
		if s.Required > 0 {
			needed[s.GroupID] = true
		}
	}

	for i := range policy.Groups {
		group := &policy.Groups[i]
		if !needed[group.ID] {
			continue
		}
		if idx.HasAnyRoleMatch(group) {
			continue
		}

		covered := false
		for _, coverID := range group.Covers {
			if cover := policy.GroupByID(coverID); cover != nil && idx.HasAnyRoleMatch(cover) {
				covered = true
				break
			}
		}
		if !covered {
			return fmt.Sprintf("角色组 '%s' 整周无任何可胜任员工", group.Name)
		}
	}

	return ""
}

// checkPreconditions 前置条件检查：员工、策略、时薪、预测全部就绪才允许生成
func checkPreconditions(in *Input) error {
	if in.Policy == nil {
		return errors.PreconditionFailed("policy", "没有生效的排班策略")
	}
	if !in.Policy.Active {
		return errors.PreconditionFailed("policy", fmt.Sprintf("策略 '%s' 未启用", in.Policy.Name))
	}
	if len(in.Employees) == 0 {
		return errors.PreconditionFailed("employees", "员工名单为空")
	}
	if _, err := model.WeekDates(in.WeekStart); err != nil {
		return errors.InvalidInput("week_start", err.Error())
	}

	for _, emp := range in.Employees {
		for _, role := range emp.Roles {
			if _, ok := emp.WageFor(role); !ok {
				return errors.PreconditionFailed("wages",
					fmt.Sprintf("员工 %s 缺少角色 '%s' 的时薪", emp.Name, role))
			}
		}
	}

	dates, _ := model.WeekDates(in.WeekStart)
	have := make(map[string]bool, len(in.Projections))
	for _, p := range in.Projections {
		have[p.Day] = true
	}
	for _, day := range dates {
		if !have[day] {
			return errors.PreconditionFailed("projections",
				fmt.Sprintf("缺少 %s 的营业额预测", day))
		}
	}

	return nil
}
