package policyres

import (
	"testing"
)

func TestResolveAnchor(t *testing.T) {
	anchors := NewAnchors(660, 1380) // 11:00 - 23:00，mid = 17:00

	tests := []struct {
		name    string
		expr    string
		want    int
		wantErr bool
	}{
		{name: "开门锚点", expr: "@open", want: 660},
		{name: "打烊锚点", expr: "@close", want: 1380},
		{name: "中点锚点", expr: "@mid", want: 1020},
		{name: "开门前30分钟", expr: "@open-30", want: 630},
		{name: "打烊后35分钟", expr: "@close+35", want: 1415},
		{name: "带空白仍可解析", expr: "  @mid+15 ", want: 1035},
		{name: "未知锚点，应报错", expr: "@noon", wantErr: true},
		{name: "缺少@前缀，应报错", expr: "open", wantErr: true},
		{name: "偏移缺少符号，应报错", expr: "@open30", wantErr: true},
		{name: "空表达式，应报错", expr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAnchor(tt.expr, anchors)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveAnchor(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ResolveAnchor(%q) = %d, want %d", tt.expr, got, tt.want)
			}
		})
	}
}

func TestResolveAnchor_CrossMidnight(t *testing.T) {
	// 周五营业到次日凌晨 1 点：close = 1500 分钟
	anchors := NewAnchors(660, 1500)

	got, err := ResolveAnchor("@close+35", anchors)
	if err != nil {
		t.Fatalf("ResolveAnchor() error = %v", err)
	}
	if got != 1535 {
		t.Errorf("ResolveAnchor(@close+35) = %d, want 1535", got)
	}

	mid, err := ResolveAnchor("@mid", anchors)
	if err != nil {
		t.Fatalf("ResolveAnchor() error = %v", err)
	}
	if mid != 1080 { // (660+1500)/2 = 18:00
		t.Errorf("ResolveAnchor(@mid) = %d, want 1080", mid)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		clock   string
		want    int
		wantErr bool
	}{
		{name: "整点", clock: "11:00", want: 660},
		{name: "带分钟", clock: "23:45", want: 1425},
		{name: "跨零点收盘", clock: "25:00", want: 1500},
		{name: "零点", clock: "00:00", want: 0},
		{name: "分钟越界，应报错", clock: "11:60", wantErr: true},
		{name: "负小时，应报错", clock: "-1:00", wantErr: true},
		{name: "缺少冒号，应报错", clock: "1100", wantErr: true},
		{name: "非数字，应报错", clock: "ab:cd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseClock(tt.clock)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseClock(%q) error = %v, wantErr %v", tt.clock, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.clock, got, tt.want)
			}
		})
	}
}
