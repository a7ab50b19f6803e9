// Package stats 提供周计划的覆盖、公平性与预算分析
package stats

import (
	"github.com/zhoupai/zhoupai/pkg/model"
)

// CoverageMetrics 覆盖率指标
type CoverageMetrics struct {
	TotalHeads    int     `json:"total_heads"`    // 需求总人头数
	AssignedHeads int     `json:"assigned_heads"` // 已排人头数
	OverallRate   float64 `json:"overall_rate"`   // 整体覆盖率 (%)

	DailyCoverage map[string]DayCoverage `json:"daily_coverage"` // 按周几统计
	GroupCoverage map[string]float64     `json:"group_coverage"` // 按角色组覆盖率 (%)
	BlockCoverage map[string]float64     `json:"block_coverage"` // 按时段类型覆盖率 (%)

	Gaps []CoverageGap `json:"gaps"` // 缺口明细
}

// DayCoverage 单日覆盖情况
type DayCoverage struct {
	Day        string  `json:"day"`
	Required   int     `json:"required"`
	Assigned   int     `json:"assigned"`
	Rate       float64 `json:"rate"`
	TotalHours float64 `json:"total_hours"` // 已排工时
}

// CoverageGap 覆盖缺口
type CoverageGap struct {
	SlotID    string `json:"slot_id"`
	Day       string `json:"day"`
	Block     string `json:"block"`
	GroupID   string `json:"group_id"`
	Required  int    `json:"required"`
	Assigned  int    `json:"assigned"`
	Shortfall int    `json:"shortfall"`
}

// AnalyzeCoverage 分析周计划的覆盖情况
// 空计划视为全覆盖（无需求即无缺口）
func AnalyzeCoverage(plan *model.WeekPlan) *CoverageMetrics {
	metrics := &CoverageMetrics{
		DailyCoverage: make(map[string]DayCoverage),
		GroupCoverage: make(map[string]float64),
		BlockCoverage: make(map[string]float64),
		OverallRate:   100,
	}
	if plan == nil || len(plan.Slots) == 0 {
		return metrics
	}

	assigned := make(map[string]int, len(plan.Slots))
	for _, a := range plan.Assignments {
		assigned[a.SlotID]++
	}

	dailyStats := make(map[string]*DayCoverage)
	groupRequired := make(map[string]int)
	groupAssigned := make(map[string]int)
	blockRequired := make(map[string]int)
	blockAssigned := make(map[string]int)

	for i := range plan.Slots {
		slot := &plan.Slots[i]
		got := assigned[slot.ID]
		if got > slot.Required {
			got = slot.Required
		}

		metrics.TotalHeads += slot.Required
		metrics.AssignedHeads += got

		day, exists := dailyStats[slot.Day]
		if !exists {
			day = &DayCoverage{Day: slot.Day}
			dailyStats[slot.Day] = day
		}
		day.Required += slot.Required
		day.Assigned += got
		day.TotalHours += float64(got) * slot.Hours()

		groupRequired[slot.GroupID] += slot.Required
		groupAssigned[slot.GroupID] += got
		blockRequired[slot.Block] += slot.Required
		blockAssigned[slot.Block] += got

		if got < slot.Required {
			metrics.Gaps = append(metrics.Gaps, CoverageGap{
				SlotID:    slot.ID,
				Day:       slot.Day,
				Block:     slot.Block,
				GroupID:   slot.GroupID,
				Required:  slot.Required,
				Assigned:  got,
				Shortfall: slot.Required - got,
			})
		}
	}

	if metrics.TotalHeads > 0 {
		metrics.OverallRate = float64(metrics.AssignedHeads) / float64(metrics.TotalHeads) * 100
	}

	for day, stats := range dailyStats {
		if stats.Required > 0 {
			stats.Rate = float64(stats.Assigned) / float64(stats.Required) * 100
		} else {
			stats.Rate = 100
		}
		metrics.DailyCoverage[day] = *stats
	}

	for groupID, required := range groupRequired {
		if required > 0 {
			metrics.GroupCoverage[groupID] = float64(groupAssigned[groupID]) / float64(required) * 100
		}
	}

	for block, required := range blockRequired {
		if required > 0 {
			metrics.BlockCoverage[block] = float64(blockAssigned[block]) / float64(required) * 100
		}
	}

	return metrics
}
