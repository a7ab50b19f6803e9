// Package policyres 把策略中的锚点相对时段解析为具体日期上的绝对时段
package policyres

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 锚点表达式：@open / @close / @mid，可带 ± 分钟偏移，如 "@open-30"、"@close+35"
var anchorPattern = regexp.MustCompile(`^@(open|close|mid)([+-]\d+)?$`)

// Anchors 单日的锚点分钟数（当日零点起算，收盘可超过 1440）
type Anchors struct {
	Open  int
	Close int
	Mid   int
}

// NewAnchors 根据营业时间构造锚点
func NewAnchors(openMinute, closeMinute int) Anchors {
	return Anchors{
		Open:  openMinute,
		Close: closeMinute,
		Mid:   (openMinute + closeMinute) / 2,
	}
}

// ResolveAnchor 把锚点表达式解析为分钟数
func ResolveAnchor(expr string, anchors Anchors) (int, error) {
	m := anchorPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return 0, fmt.Errorf("无效的锚点表达式 %q", expr)
	}

	var base int
	switch m[1] {
	case "open":
		base = anchors.Open
	case "close":
		base = anchors.Close
	case "mid":
		base = anchors.Mid
	}

	if m[2] != "" {
		offset, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, fmt.Errorf("无效的锚点偏移 %q", expr)
		}
		base += offset
	}

	return base, nil
}

// ParseClock 解析 "HH:MM" 为分钟数
// 小时允许超过 24（如 "25:00" 表示次日凌晨 1 点）
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("无效的时间格式 %q", clock)
	}
	return h*60 + m, nil
}
