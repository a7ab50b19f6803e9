// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/zhoupai/zhoupai/internal/metrics"
	"github.com/zhoupai/zhoupai/pkg/errors"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/stats"
)

// StatsRequest 统计分析请求
// 计划自带槽位快照，员工名单仅公平性与预算分析需要
type StatsRequest struct {
	Plan      *model.WeekPlan `json:"plan"`
	Policy    *model.Policy   `json:"policy,omitempty"`
	Employees []EmployeeInput `json:"employees,omitempty"`
}

// CoverageResponse 覆盖率响应
type CoverageResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.CoverageMetrics `json:"data,omitempty"`
}

// FairnessResponse 公平性响应
type FairnessResponse struct {
	Success bool                   `json:"success"`
	Data    *stats.FairnessMetrics `json:"data,omitempty"`
}

// BudgetResponse 预算响应
type BudgetResponse struct {
	Success bool                `json:"success"`
	Data    *stats.BudgetReport `json:"data,omitempty"`
}

// GetCoverageHandler 覆盖率分析API
func GetCoverageHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStatsRequest(w, r)
	if !ok {
		return
	}

	data := stats.AnalyzeCoverage(req.Plan)
	metrics.SetCoverageRate("", data.OverallRate)

	respondJSON(w, http.StatusOK, CoverageResponse{Success: true, Data: data})
}

// GetFairnessHandler 公平性分析API
func GetFairnessHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStatsRequest(w, r)
	if !ok {
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	data := stats.AnalyzeFairness(req.Plan, employees)

	respondJSON(w, http.StatusOK, FairnessResponse{Success: true, Data: data})
}

// GetBudgetHandler 预算核算API
func GetBudgetHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeStatsRequest(w, r)
	if !ok {
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	policy := req.Policy
	if policy == nil {
		policy = model.DefaultPolicy()
	}

	empByID := make(map[string]*model.Employee, len(employees))
	for _, emp := range employees {
		empByID[emp.ID.String()] = emp
	}

	data := stats.AssessBudget(policy, empByID, req.Plan)
	metrics.SetLaborPct("", data.LaborPct)

	respondJSON(w, http.StatusOK, BudgetResponse{Success: true, Data: data})
}

// decodeStatsRequest 解析并校验统计请求
func decodeStatsRequest(w http.ResponseWriter, r *http.Request) (*StatsRequest, bool) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return nil, false
	}

	var req StatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return nil, false
	}

	if req.Plan == nil {
		respondError(w, errors.InvalidInput("plan", "待分析计划不能为空"))
		return nil, false
	}

	return &req, true
}
