// Package constraint 定义周排班约束接口和管理器
package constraint

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zhoupai/zhoupai/pkg/model"
)

// Manager 约束管理器
type Manager struct {
	constraints []Constraint
	mu          sync.RWMutex
}

// NewManager 创建约束管理器
func NewManager() *Manager {
	return &Manager{
		constraints: make([]Constraint, 0),
	}
}

// Register 注册约束，同类型约束被替换
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c
			return
		}
	}

	m.constraints = append(m.constraints, c)

	// 硬约束在前，权重高的在前
	sort.SliceStable(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// GetConstraint 获取约束
func (m *Manager) GetConstraint(t Type) Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.constraints {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// GetAll 获取所有约束
func (m *Manager) GetAll() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Constraint, len(m.constraints))
	copy(result, m.constraints)
	return result
}

// GetByCategory 按类别获取约束
func (m *Manager) GetByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			result = append(result, c)
		}
	}
	return result
}

// Evaluate 评估所有约束
func (m *Manager) Evaluate(ctx *Context) *Result {
	constraints := m.GetAll()

	result := &Result{
		IsValid:        true,
		HardViolations: make([]ViolationDetail, 0),
		SoftViolations: make([]ViolationDetail, 0),
	}

	for _, c := range constraints {
		valid, details := c.Evaluate(ctx)
		if valid && len(details) == 0 {
			continue
		}

		for _, d := range details {
			if c.Category() == CategoryHard {
				result.IsValid = false
				result.HardViolations = append(result.HardViolations, d)
			} else {
				result.SoftViolations = append(result.SoftViolations, d)
			}
		}
	}

	return result
}

// CanAssign 检查把候选分配加入当前计划是否违反硬约束
func (m *Manager) CanAssign(ctx *Context, assignment *model.Assignment) (bool, string) {
	for _, c := range m.GetByCategory(CategoryHard) {
		if !c.EvaluateAssignment(ctx, assignment) {
			return false, fmt.Sprintf("违反硬约束: %s", c.Name())
		}
	}
	return true, ""
}

// Clear 清除所有约束
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = make([]Constraint, 0)
}

// Count 返回约束数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}
