// Package stats 提供周计划的覆盖、公平性与预算分析
package stats

import (
	"math"
	"sort"

	"github.com/zhoupai/zhoupai/pkg/model"
)

// FairnessMetrics 工时分配公平性指标
type FairnessMetrics struct {
	AvgHours     float64 `json:"avg_hours"`     // 人均工时
	MaxHours     float64 `json:"max_hours"`     // 最大工时
	MinHours     float64 `json:"min_hours"`     // 最小工时
	HoursRange   float64 `json:"hours_range"`   // 工时极差
	StdDev       float64 `json:"std_dev"`       // 工时标准差
	WorkloadGini float64 `json:"workload_gini"` // 基尼系数 (0=完全公平)

	EmployeeStats []EmployeeHoursStat `json:"employee_stats"` // 员工明细，按工时降序

	Score float64 `json:"score"` // 综合公平性评分 (0-100)
}

// EmployeeHoursStat 单个员工的工时统计
type EmployeeHoursStat struct {
	EmployeeID string  `json:"employee_id"`
	Employee   string  `json:"employee"`
	TotalHours float64 `json:"total_hours"`
	ShiftCount int     `json:"shift_count"`
	DesiredMid float64 `json:"desired_mid"` // 期望工时区间中点
	Deviation  float64 `json:"deviation"`   // 与人均工时的偏差百分比
}

// AnalyzeFairness 分析周计划内的工时分配公平性
// 只统计有分配的员工；空计划返回满分
func AnalyzeFairness(plan *model.WeekPlan, employees []*model.Employee) *FairnessMetrics {
	metrics := &FairnessMetrics{Score: 100}
	if plan == nil || len(plan.Assignments) == 0 {
		return metrics
	}

	empByID := make(map[string]*model.Employee, len(employees))
	for _, emp := range employees {
		empByID[emp.ID.String()] = emp
	}

	statMap := make(map[string]*EmployeeHoursStat)
	for _, a := range plan.Assignments {
		id := a.EmployeeID.String()
		stat, exists := statMap[id]
		if !exists {
			stat = &EmployeeHoursStat{EmployeeID: id, Employee: id}
			if emp, ok := empByID[id]; ok {
				stat.Employee = emp.Name
				stat.DesiredMid = emp.DesiredHours.Mid()
			}
			statMap[id] = stat
		}
		stat.TotalHours += a.WorkingHours()
		stat.ShiftCount++
	}

	hours := make([]float64, 0, len(statMap))
	for _, stat := range statMap {
		hours = append(hours, stat.TotalHours)
		metrics.EmployeeStats = append(metrics.EmployeeStats, *stat)
	}

	metrics.AvgHours = mean(hours)
	metrics.StdDev = math.Sqrt(variance(hours, metrics.AvgHours))
	metrics.MaxHours, metrics.MinHours = extrema(hours)
	metrics.HoursRange = metrics.MaxHours - metrics.MinHours
	metrics.WorkloadGini = gini(hours)

	for i := range metrics.EmployeeStats {
		if metrics.AvgHours > 0 {
			metrics.EmployeeStats[i].Deviation =
				(metrics.EmployeeStats[i].TotalHours - metrics.AvgHours) / metrics.AvgHours * 100
		}
	}
	sort.SliceStable(metrics.EmployeeStats, func(i, j int) bool {
		a, b := &metrics.EmployeeStats[i], &metrics.EmployeeStats[j]
		if a.TotalHours != b.TotalHours {
			return a.TotalHours > b.TotalHours
		}
		return a.EmployeeID < b.EmployeeID
	})

	metrics.Score = fairnessScore(metrics.WorkloadGini, metrics.StdDev, metrics.AvgHours)
	return metrics
}

// mean 计算平均值
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// variance 计算方差
func variance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// extrema 计算极值
func extrema(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// gini 计算基尼系数
func gini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	g := 0.0
	for i, v := range sorted {
		g += (2*float64(i+1) - float64(n) - 1) * v
	}
	g = g / (float64(n) * sum)
	return math.Max(0, math.Min(1, g))
}

// fairnessScore 把基尼系数与变异系数折算为 0-100 评分
func fairnessScore(workloadGini, stdDev, avgHours float64) float64 {
	const (
		giniWeight = 0.7
		cvWeight   = 0.3
	)

	giniScore := (1 - workloadGini) * 100

	cvScore := 100.0
	if avgHours > 0 {
		cv := stdDev / avgHours
		cvScore = math.Max(0, 100-cv*200)
	}

	score := giniWeight*giniScore + cvWeight*cvScore
	return math.Max(0, math.Min(100, score))
}
