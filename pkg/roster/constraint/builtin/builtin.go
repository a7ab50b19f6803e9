// Package builtin 提供内置约束实现
package builtin

import (
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/constraint"
)

// NewDefaultManager 根据策略护栏构建带全部内置约束的管理器
// 生成引擎与校验引擎共用该组合
func NewDefaultManager(policy *model.Policy) *constraint.Manager {
	m := constraint.NewManager()
	m.Register(NewConcurrencyConstraint())
	m.Register(NewRoleMatchConstraint())
	m.Register(NewAvailabilityConstraint())
	m.Register(NewRestWindowConstraint(policy.Guardrails.MinRestHours, policy.Guardrails.AllowSplitShifts))
	m.Register(NewWeeklyHoursConstraint(policy.Guardrails.MaxHoursWeek))
	return m
}
