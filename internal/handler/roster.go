// Package handler 提供HTTP请求处理器
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/zhoupai/zhoupai/internal/metrics"
	"github.com/zhoupai/zhoupai/pkg/errors"
	"github.com/zhoupai/zhoupai/pkg/logger"
	"github.com/zhoupai/zhoupai/pkg/model"
	"github.com/zhoupai/zhoupai/pkg/roster/engine"
	"github.com/zhoupai/zhoupai/pkg/roster/policyres"
	"github.com/zhoupai/zhoupai/pkg/roster/validate"
)

// RosterStore 周排班持久化入口
// 请求未携带的输入从存储补齐，生成结果写回存储
type RosterStore interface {
	ActivePolicy(ctx context.Context) (*model.Policy, error)
	ActiveEmployees(ctx context.Context, orgID uuid.UUID) ([]*model.Employee, error)
	ProjectionsRange(ctx context.Context, orgID uuid.UUID, startDay, endDay string) ([]model.Projection, error)
	ModifiersRange(ctx context.Context, orgID uuid.UUID, startDay, endDay string) ([]model.Modifier, error)
	SavePlan(ctx context.Context, orgID uuid.UUID, plan *model.WeekPlan, summary *model.GenerationSummary) error
	LatestPlan(ctx context.Context, orgID uuid.UUID, weekStart string) (*model.WeekPlan, error)
}

// RosterHandler 周排班处理器
type RosterHandler struct {
	engine  *engine.Engine
	timeout time.Duration
	store   RosterStore // 可为 nil，此时只接受请求自带的输入
}

// NewRosterHandler 创建周排班处理器
func NewRosterHandler(cfg engine.Config, timeout time.Duration) *RosterHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RosterHandler{
		engine:  engine.New(cfg),
		timeout: timeout,
	}
}

// WithStore 挂接持久化存储
func (h *RosterHandler) WithStore(store RosterStore) *RosterHandler {
	h.store = store
	return h
}

// GenerateRequest 周计划生成请求
// Policy 缺省时使用存储中的生效策略，再退到餐饮门店基线策略
// 挂接存储后员工与预测也可缺省，由存储按 org_id 补齐
type GenerateRequest struct {
	WeekStart   string             `json:"week_start"` // 周一日期 YYYY-MM-DD
	Seed        int64              `json:"seed"`
	OrgID       string             `json:"org_id,omitempty"`
	Policy      *model.Policy      `json:"policy,omitempty"`
	Employees   []EmployeeInput    `json:"employees,omitempty"`
	Projections []model.Projection `json:"projections,omitempty"`
	Modifiers   []model.Modifier   `json:"modifiers,omitempty"`
}

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	Code         string                     `json:"code,omitempty"`
	Status       string                     `json:"status,omitempty"`
	Roles        []string                   `json:"roles"`
	Wages        map[string]float64         `json:"wages"`
	DesiredHours model.HourRange            `json:"desired_hours"`
	Availability []model.AvailabilityWindow `json:"availability"`
}

// GenerateResponse 周计划生成响应
type GenerateResponse struct {
	Plan    *model.WeekPlan          `json:"plan"`
	Summary *model.GenerationSummary `json:"summary"`
}

// Generate 生成一周排班计划
func (h *RosterHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateGenerateRequest(&req, h.store != nil); appErr != nil {
		respondError(w, appErr)
		return
	}

	employees, appErr := buildEmployees(req.Employees)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	policy := req.Policy
	projections := req.Projections
	modifiers := req.Modifiers
	orgID := uuid.Nil

	// 请求未携带的输入从存储补齐
	if h.store != nil {
		orgID, appErr = parseOrgID(req.OrgID)
		if appErr != nil {
			respondError(w, appErr)
			return
		}

		if policy == nil {
			stored, err := h.store.ActivePolicy(r.Context())
			if err != nil {
				respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取生效策略失败"))
				return
			}
			policy = stored
		}
		if len(employees) == 0 {
			stored, err := h.store.ActiveEmployees(r.Context(), orgID)
			if err != nil {
				respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取员工名单失败"))
				return
			}
			employees = stored
		}
		if len(projections) == 0 {
			dates, derr := model.WeekDates(req.WeekStart)
			if derr != nil {
				respondError(w, errors.InvalidInput("week_start", derr.Error()))
				return
			}
			stored, err := h.store.ProjectionsRange(r.Context(), orgID, dates[0], dates[6])
			if err != nil {
				respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取营业额预测失败"))
				return
			}
			projections = stored

			if len(modifiers) == 0 {
				mods, err := h.store.ModifiersRange(r.Context(), orgID, dates[0], dates[6])
				if err != nil {
					respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取需求修正失败"))
					return
				}
				modifiers = mods
			}
		}
	}

	if policy == nil {
		policy = model.DefaultPolicy()
	}

	in := &engine.Input{
		Policy:      policy,
		Employees:   employees,
		Projections: projections,
		Modifiers:   modifiers,
		WeekStart:   req.WeekStart,
		Seed:        req.Seed,
	}

	genCtx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	started := time.Now()
	plan, summary, err := h.engine.Generate(genCtx, in)
	metrics.RecordRosterGeneration(err == nil, time.Since(started))

	if err != nil {
		if err == context.DeadlineExceeded {
			respondError(w, errors.New(errors.CodeTimeout, "生成超时，请缩小排班规模或放宽约束"))
			return
		}
		if err == context.Canceled {
			respondError(w, errors.New(errors.CodeInternal, "生成请求已取消"))
			return
		}
		if appErr, ok := err.(*errors.AppError); ok {
			respondErrorWithSummary(w, appErr, summary)
			return
		}
		respondError(w, errors.Wrap(err, errors.CodeInternal, "生成失败"))
		return
	}

	// 持久化失败不影响已生成的结果，只记录告警
	if h.store != nil {
		if err := h.store.SavePlan(r.Context(), orgID, plan, summary); err != nil {
			logger.Warn().Err(err).Str("plan_id", plan.ID.String()).Msg("周计划持久化失败")
		}
	}

	respondJSON(w, http.StatusOK, GenerateResponse{Plan: plan, Summary: summary})
}

// LatestPlanResponse 历史计划查询响应
type LatestPlanResponse struct {
	Plan *model.WeekPlan `json:"plan"`
}

// LatestPlan 查询某周最近一次持久化的计划
// GET 请求以 week_start 查询参数指定周一日期，org_id 可选
func (h *RosterHandler) LatestPlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.store == nil {
		respondError(w, errors.New(errors.CodePreconditionFailed, "未配置持久化存储，无法查询历史计划"))
		return
	}

	weekStart := r.URL.Query().Get("week_start")
	if weekStart == "" {
		respondError(w, errors.InvalidInput("week_start", "周一日期不能为空"))
		return
	}
	if _, err := time.Parse("2006-01-02", weekStart); err != nil {
		respondError(w, errors.InvalidInput("week_start", "日期格式无效，应为YYYY-MM-DD"))
		return
	}

	orgID, appErr := parseOrgID(r.URL.Query().Get("org_id"))
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	plan, err := h.store.LatestPlan(r.Context(), orgID, weekStart)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询周计划失败"))
		return
	}
	if plan == nil {
		respondError(w, errors.NotFound("周计划", weekStart))
		return
	}

	respondJSON(w, http.StatusOK, LatestPlanResponse{Plan: plan})
}

// ValidateRequest 周计划校验请求
// 计划自带槽位快照与预测营业额，无需重复提交需求输入
type ValidateRequest struct {
	Plan      *model.WeekPlan `json:"plan"`
	Policy    *model.Policy   `json:"policy,omitempty"`
	Employees []EmployeeInput `json:"employees"`
}

// ValidateResponse 校验响应
type ValidateResponse struct {
	Valid  bool                    `json:"valid"`
	Report *model.ValidationReport `json:"report"`
}

// Validate 校验周计划
// 对生成的计划和手工编辑后的计划口径一致
func (h *RosterHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if req.Plan == nil {
		respondError(w, errors.InvalidInput("plan", "待校验计划不能为空"))
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

	report := validate.Validate(req.Plan, policy, employees)
	metrics.RecordRosterValidation(report.Valid())

	respondJSON(w, http.StatusOK, ValidateResponse{
		Valid:  report.Valid(),
		Report: report,
	})
}

// BlockPreviewResponse 时段预览响应
type BlockPreviewResponse struct {
	WeekStart string           `json:"week_start"`
	Blocks    []BlockOutput    `json:"blocks"`
	Policy    blockPolicyBrief `json:"policy"`
}

// BlockOutput 已解析的具体时段
type BlockOutput struct {
	Day   string  `json:"day"`
	Block string  `json:"block"`
	Start string  `json:"start"` // HH:MM，可超过 24:00
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

type blockPolicyBrief struct {
	Name string `json:"name"`
}

// PolicyBlocks 把策略的锚点时段模板解析为某周的具体时段
// 用于前端在生成前预览，GET 请求以 week_start 查询参数指定周一日期
func (h *RosterHandler) PolicyBlocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}

	weekStart := r.URL.Query().Get("week_start")
	if weekStart == "" {
		respondError(w, errors.InvalidInput("week_start", "周一日期不能为空"))
		return
	}

	policy := model.DefaultPolicy()
	blocks, err := policyres.Resolve(policy, weekStart)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			respondError(w, appErr)
			return
		}
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析时段失败"))
		return
	}

	out := make([]BlockOutput, len(blocks))
	for i, b := range blocks {
		out[i] = BlockOutput{
			Day:   b.Day,
			Block: b.Block,
			Start: minuteClock(b.StartMinute),
			End:   minuteClock(b.EndMinute),
			Hours: b.Hours(),
		}
	}

	respondJSON(w, http.StatusOK, BlockPreviewResponse{
		WeekStart: weekStart,
		Blocks:    out,
		Policy:    blockPolicyBrief{Name: policy.Name},
	})
}

// minuteClock 把当日分钟数格式化为 HH:MM，跨零点时小时可超过 24
func minuteClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// validateGenerateRequest 验证请求
// 挂接存储后员工与预测允许缺省，由存储补齐，缺口交给引擎前置条件拦截
func validateGenerateRequest(req *GenerateRequest, hasStore bool) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.WeekStart == "" {
		ve.Add("week_start", "周一日期不能为空")
	} else if _, err := time.Parse("2006-01-02", req.WeekStart); err != nil {
		ve.Add("week_start", "日期格式无效，应为YYYY-MM-DD")
	}
	if !hasStore {
		if len(req.Employees) == 0 {
			ve.Add("employees", "员工列表不能为空")
		}
		if len(req.Projections) == 0 {
			ve.Add("projections", "营业额预测不能为空")
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// parseOrgID 解析可选的组织ID，缺省为零值
func parseOrgID(raw string) (uuid.UUID, *errors.AppError) {
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.InvalidInput("org_id", "无效的UUID格式")
	}
	return id, nil
}

// buildEmployees 把员工输入转换为领域模型
func buildEmployees(inputs []EmployeeInput) ([]*model.Employee, *errors.AppError) {
	employees := make([]*model.Employee, 0, len(inputs))
	for _, e := range inputs {
		id, err := uuid.Parse(e.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+e.ID)
		}
		emp := &model.Employee{
			BaseModel:    model.BaseModel{ID: id},
			Name:         e.Name,
			Code:         e.Code,
			Status:       e.Status,
			Roles:        e.Roles,
			Wages:        e.Wages,
			DesiredHours: e.DesiredHours,
			Availability: e.Availability,
		}
		if emp.Status == "" {
			emp.Status = "active"
		}
		employees = append(employees, emp)
	}
	return employees, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}

// respondErrorWithSummary 返回附带生成摘要的错误响应
// Infeasible 等引擎级失败仍把摘要透出，便于前端展示原因
func respondErrorWithSummary(w http.ResponseWriter, err *errors.AppError, summary *model.GenerationSummary) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
		"summary": summary,
	})
}
