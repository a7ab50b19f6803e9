// Package policyres 把策略中的锚点相对时段解析为具体日期上的绝对时段
package policyres

import (
	"fmt"
	"time"

	"github.com/zhoupai/zhoupai/pkg/errors"
	"github.com/zhoupai/zhoupai/pkg/model"
)

// ResolvedBlock 解析后的绝对时段
type ResolvedBlock struct {
	Day         string    `json:"day"` // YYYY-MM-DD
	Block       string    `json:"block"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	StartMinute int       `json:"start_minute"` // 当日零点起算
	EndMinute   int       `json:"end_minute"`
}

// Hours 返回时段时长（小时）
func (b *ResolvedBlock) Hours() float64 {
	return b.End.Sub(b.Start).Hours()
}

// Resolve 把策略的时段模板解析为目标周 7 天的绝对时段列表
// 纯转换，无随机性；输出按日期、模板声明顺序排列
// 营业时间缺失的周几视为歇业，不产生时段
func Resolve(policy *model.Policy, weekStart string) ([]ResolvedBlock, error) {
	dates, err := model.WeekDates(weekStart)
	if err != nil {
		return nil, errors.InvalidInput("week_start", err.Error())
	}

	hasCoverage := policyHasCoverage(policy)

	var blocks []ResolvedBlock
	for _, day := range dates {
		hours, ok := policy.Hours[model.WeekdayToken(day)]
		if !ok {
			continue
		}

		openMin, err := ParseClock(hours.Open)
		if err != nil {
			return nil, errors.PolicyResolution(day, err.Error())
		}
		closeMin, err := ParseClock(hours.Close)
		if err != nil {
			return nil, errors.PolicyResolution(day, err.Error())
		}

		if openMin >= closeMin {
			if hasCoverage {
				return nil, errors.PolicyResolution(day,
					fmt.Sprintf("开门时间 %s 不早于打烊时间 %s", hours.Open, hours.Close))
			}
			continue
		}

		anchors := NewAnchors(openMin, closeMin)

		for _, tpl := range policy.Blocks {
			startMin, err := ResolveAnchor(tpl.Start, anchors)
			if err != nil {
				return nil, errors.PolicyResolution(day, err.Error())
			}
			endMin, err := ResolveAnchor(tpl.End, anchors)
			if err != nil {
				return nil, errors.PolicyResolution(day, err.Error())
			}

			if endMin <= startMin {
				return nil, errors.PolicyResolution(day,
					fmt.Sprintf("时段 %s 的跨度无效（%d 分钟）", tpl.Name, endMin-startMin))
			}

			start, err := model.MinutesToTime(day, startMin)
			if err != nil {
				return nil, errors.PolicyResolution(day, err.Error())
			}
			end, err := model.MinutesToTime(day, endMin)
			if err != nil {
				return nil, errors.PolicyResolution(day, err.Error())
			}

			blocks = append(blocks, ResolvedBlock{
				Day:         day,
				Block:       tpl.Name,
				Start:       start,
				End:         end,
				StartMinute: startMin,
				EndMinute:   endMin,
			})
		}
	}

	return blocks, nil
}

// policyHasCoverage 检查策略是否配置了任何非零覆盖目标
func policyHasCoverage(policy *model.Policy) bool {
	for _, rules := range policy.Coverage {
		for _, rule := range rules {
			if rule.Base > 0 || rule.PerSales > 0 || rule.Min > 0 {
				return true
			}
		}
	}
	return false
}
