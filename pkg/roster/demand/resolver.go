// Package demand 把营业额预测与需求调整合成每时段每角色组的需求人数
package demand

import (
	"fmt"
	"math"

	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/policyres"
)

// Result 需求解析结果
type Result struct {
	Slots []model.ShiftSlot `json:"slots"`

	// TotalSales 全周预测营业额（未经调整）
	TotalSales float64 `json:"total_sales"`

	// DayIndex 各日需求指数：调整后营业额 / 周内最大值，夹在 [0, 1.5]
	DayIndex map[string]float64 `json:"day_index"`
}

// Resolve 为每个 (日期, 时段, 角色组) 计算需求人数
//
// 有效需求 = 预测营业额 × Π(1+乘法调整/100) + Σ(加法调整)
// 乘法调整先于加法调整合成，顺序固定
// 人数 = ceil(Base + 有效需求/PerSalesUnit × PerSales)，夹在 [Min, Max]，向上取整避免欠覆盖
func Resolve(policy *model.Policy, blocks []policyres.ResolvedBlock, projections []model.Projection, modifiers []model.Modifier) *Result {
	sales := make(map[string]float64, len(projections))
	var total float64
	for _, p := range projections {
		sales[p.Day] = p.Sales
		total += p.Sales
	}

	result := &Result{
		TotalSales: total,
		DayIndex:   make(map[string]float64),
	}

	adjusted := make(map[string]float64)

	for _, block := range blocks {
		eff := Effective(sales[block.Day], block.Day, block.StartMinute, block.EndMinute, modifiers)

		for gi := range policy.Groups {
			group := &policy.Groups[gi]
			rule, ok := policy.CoverageFor(group.ID, block.Block)
			if !ok {
				continue
			}

			result.Slots = append(result.Slots, model.ShiftSlot{
				ID:       fmt.Sprintf("%s/%s/%s", block.Day, block.Block, group.ID),
				Day:      block.Day,
				Block:    block.Block,
				Start:    block.Start,
				End:      block.End,
				GroupID:  group.ID,
				Required: Headcount(eff, rule),
			})
		}

		if eff > adjusted[block.Day] {
			adjusted[block.Day] = eff
		}
	}

	var weekMax float64
	for _, v := range adjusted {
		if v > weekMax {
			weekMax = v
		}
	}
	for day, v := range adjusted {
		idx := 0.0
		if weekMax > 0 {
			idx = v / weekMax
		}
		if idx > 1.5 {
			idx = 1.5
		}
		result.DayIndex[day] = idx
	}

	return result
}

// Effective 计算某日某分钟窗口的有效需求
// 所有命中的乘法调整先连乘，再叠加命中的加法调整
func Effective(sales float64, day string, startMinute, endMinute int, modifiers []model.Modifier) float64 {
	eff := sales
	for i := range modifiers {
		m := &modifiers[i]
		if m.Kind != model.ModifierMultiplicative || !m.AppliesTo(day, startMinute, endMinute) {
			continue
		}
		eff *= m.Factor()
	}
	for i := range modifiers {
		m := &modifiers[i]
		if m.Kind != model.ModifierAdditive || !m.AppliesTo(day, startMinute, endMinute) {
			continue
		}
		eff += m.Value
	}
	if eff < 0 {
		eff = 0
	}
	return eff
}

// Headcount 根据覆盖规则把有效需求转换为人数
func Headcount(effective float64, rule model.CoverageRule) int {
	raw := rule.Base
	if rule.PerSalesUnit > 0 {
		raw += effective / rule.PerSalesUnit * rule.PerSales
	}

	count := int(math.Ceil(raw - 1e-9))
	if count < rule.Min {
		count = rule.Min
	}
	if rule.Max > 0 && count > rule.Max {
		count = rule.Max
	}
	if count < 0 {
		count = 0
	}
	return count
}
