// Package logger 提供统一的日志框架
package logger

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// Level 日志级别
type Level = zerolog.Level

const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
	FatalLevel = zerolog.FatalLevel
)

// Config 日志配置
type Config struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"` // json/console
	Output     string `yaml:"output" json:"output"` // stdout/stderr/file
	FilePath   string `yaml:"file_path,omitempty" json:"file_path,omitempty"`
	TimeFormat string `yaml:"time_format,omitempty" json:"time_format,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// Init 初始化日志器
func Init(cfg Config) {
	once.Do(func() {
		level := parseLevel(cfg.Level)
		zerolog.SetGlobalLevel(level)

		var output io.Writer
		switch cfg.Output {
		case "stderr":
			output = os.Stderr
		case "file":
			if cfg.FilePath != "" {
				f, err := os.OpenFile(cfg.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
				if err == nil {
					output = f
				} else {
					output = os.Stdout
				}
			} else {
				output = os.Stdout
			}
		default:
			output = os.Stdout
		}

		if cfg.Format == "console" {
			output = zerolog.ConsoleWriter{
				Out:        output,
				TimeFormat: cfg.TimeFormat,
			}
		}

		logger = zerolog.New(output).With().Timestamp().Logger()
	})
}

// parseLevel 解析日志级别
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Get 获取日志器
func Get() *zerolog.Logger {
	if logger.GetLevel() == zerolog.Disabled {
		Init(DefaultConfig())
	}
	return &logger
}

// WithContext 从上下文创建日志器
func WithContext(ctx context.Context) *zerolog.Logger {
	l := Get().With().Logger()

	// 添加请求ID
	if reqID, ok := ctx.Value("request_id").(string); ok {
		l = l.With().Str("request_id", reqID).Logger()
	}

	return &l
}

// Debug 记录调试日志
func Debug() *zerolog.Event {
	return Get().Debug()
}

// Info 记录信息日志
func Info() *zerolog.Event {
	return Get().Info()
}

// Warn 记录警告日志
func Warn() *zerolog.Event {
	return Get().Warn()
}

// Error 记录错误日志
func Error() *zerolog.Event {
	return Get().Error()
}

// Fatal 记录致命错误日志
func Fatal() *zerolog.Event {
	return Get().Fatal()
}

// WithError 添加错误信息
func WithError(err error) *zerolog.Event {
	return Get().Error().Err(err)
}

// WithField 添加字段
func WithField(key string, value interface{}) *zerolog.Logger {
	l := Get().With().Interface(key, value).Logger()
	return &l
}

// RosterLogger 周排班引擎专用日志器
type RosterLogger struct {
	base *zerolog.Logger
}

// NewRosterLogger 创建周排班引擎日志器
func NewRosterLogger() *RosterLogger {
	l := Get().With().Str("component", "roster").Logger()
	return &RosterLogger{base: &l}
}

// StartGenerate 记录生成开始
func (l *RosterLogger) StartGenerate(planID string, seed int64, employees, slots int) {
	l.base.Info().
		Str("plan_id", planID).
		Int64("seed", seed).
		Int("employees", employees).
		Int("slots", slots).
		Msg("开始生成周排班")
}

// StateTransition 记录引擎状态迁移
func (l *RosterLogger) StateTransition(planID string, from, to string) {
	l.base.Debug().
		Str("plan_id", planID).
		Str("from", from).
		Str("to", to).
		Msg("引擎状态迁移")
}

// CoverageGap 记录覆盖缺口
func (l *RosterLogger) CoverageGap(day, block, groupID string, shortfall int) {
	l.base.Warn().
		Str("day", day).
		Str("block", block).
		Str("group", groupID).
		Int("shortfall", shortfall).
		Msg("槽位覆盖缺口")
}

// BudgetExceeded 记录预算超限
func (l *RosterLogger) BudgetExceeded(planID string, laborPct, targetPct float64, retry int) {
	l.base.Warn().
		Str("plan_id", planID).
		Float64("labor_pct", laborPct).
		Float64("target_pct", targetPct).
		Int("retry", retry).
		Msg("人力预算超出容差带")
}

// GenerateComplete 记录生成完成
func (l *RosterLogger) GenerateComplete(planID string, duration time.Duration, unfilled int, laborPct float64) {
	l.base.Info().
		Str("plan_id", planID).
		Dur("duration", duration).
		Int("unfilled", unfilled).
		Float64("labor_pct", laborPct).
		Msg("周排班生成完成")
}
