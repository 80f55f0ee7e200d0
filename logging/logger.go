// Package logging 提供分级日志接口抽象。
//
// 日志是"发出即忘"的：实现不得阻塞调用方，也不得向调用方返回错误。
package logging

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// Level 日志级别
type Level int32

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int32(l))
}

// ParseLevel 解析大小写不敏感的级别名，空串返回 WarnLevel
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "", "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return WarnLevel, fmt.Errorf("logging: unknown level %q", s)
	}
}

// Logger 日志接口
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...Field)
	Info(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)

	// WithFields 添加字段，返回新的Logger
	WithFields(fields ...Field) Logger
}

// Field 日志字段
type Field struct {
	Key   string
	Value any
}

func String(key, value string) Field             { return Field{Key: key, Value: value} }
func Int(key string, value int) Field            { return Field{Key: key, Value: value} }
func Int64(key string, value int64) Field        { return Field{Key: key, Value: value} }
func Bool(key string, value bool) Field          { return Field{Key: key, Value: value} }
func Any(key string, value any) Field            { return Field{Key: key, Value: value} }
func Error(err error) Field                      { return Field{Key: "error", Value: err} }
func Component(name string) Field                { return Field{Key: "component", Value: name} }
func Duration(key string, d time.Duration) Field { return Field{Key: key, Value: d} }

// dumpValue 延迟到真正输出时才调用 spew 渲染
type dumpValue struct{ v any }

func (d dumpValue) String() string {
	return strings.TrimSpace(dumpConfig.Sdump(d.v))
}

var dumpConfig = spew.ConfigState{
	Indent:                  " ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump 以 go-spew 的格式输出任意值，主要用于 Debug 级别打印实体
func Dump(key string, value any) Field {
	return Field{Key: key, Value: dumpValue{v: value}}
}

// StdLogger 基于标准库 log 的实现，低于 level 的日志直接丢弃
type StdLogger struct {
	prefix string
	fields []Field
	level  *atomic.Int32
	out    *log.Logger
}

// NewStdLogger 创建输出到 stderr、级别为 Warn 的 Logger
func NewStdLogger(prefix string) *StdLogger {
	return NewStdLoggerWithWriter(prefix, os.Stderr, WarnLevel)
}

// NewStdLoggerWithWriter 创建输出到指定 writer 的 Logger
func NewStdLoggerWithWriter(prefix string, w io.Writer, level Level) *StdLogger {
	lv := &atomic.Int32{}
	lv.Store(int32(level))
	return &StdLogger{
		prefix: prefix,
		fields: make([]Field, 0),
		level:  lv,
		out:    log.New(w, "", log.LstdFlags),
	}
}

// SetLevel 调整最低输出级别，对 WithFields 派生出的 Logger 同样生效
func (l *StdLogger) SetLevel(level Level) {
	l.level.Store(int32(level))
}

// Enabled 判断级别是否会被输出
func (l *StdLogger) Enabled(level Level) bool {
	return int32(level) >= l.level.Load()
}

func (l *StdLogger) format(msg string, fields ...Field) string {
	var sb strings.Builder
	if l.prefix != "" {
		sb.WriteString(l.prefix)
		sb.WriteByte(' ')
	}
	sb.WriteString(msg)
	for _, f := range l.fields {
		sb.WriteString(" " + f.Key + "=" + formatValue(f.Value))
	}
	for _, f := range fields {
		sb.WriteString(" " + f.Key + "=" + formatValue(f.Value))
	}
	return sb.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func (l *StdLogger) emit(level Level, msg string, fields []Field) {
	if !l.Enabled(level) {
		return
	}
	l.out.Println("["+level.String()+"]", l.format(msg, fields...))
}

func (l *StdLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.emit(DebugLevel, msg, fields)
}

func (l *StdLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.emit(InfoLevel, msg, fields)
}

func (l *StdLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.emit(WarnLevel, msg, fields)
}

func (l *StdLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.emit(ErrorLevel, msg, fields)
}

func (l *StdLogger) WithFields(fields ...Field) Logger {
	newFields := make([]Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)
	return &StdLogger{
		prefix: l.prefix,
		fields: newFields,
		level:  l.level,
		out:    l.out,
	}
}

// NoopLogger 空日志实现（用于测试）
type NoopLogger struct{}

func NewNoopLogger() *NoopLogger {
	return &NoopLogger{}
}

func (l *NoopLogger) Debug(ctx context.Context, msg string, fields ...Field) {}
func (l *NoopLogger) Info(ctx context.Context, msg string, fields ...Field)  {}
func (l *NoopLogger) Warn(ctx context.Context, msg string, fields ...Field)  {}
func (l *NoopLogger) Error(ctx context.Context, msg string, fields ...Field) {}
func (l *NoopLogger) WithFields(fields ...Field) Logger                      { return l }

var globalLogger atomic.Value

func init() {
	globalLogger.Store(loggerHolder{NewStdLogger("[sqlbean]")})
}

// loggerHolder 让 atomic.Value 始终存放同一具体类型
type loggerHolder struct{ Logger }

// SetLogger 设置全局Logger，nil 时改为 NoopLogger
func SetLogger(logger Logger) {
	if logger == nil {
		logger = NewNoopLogger()
	}
	globalLogger.Store(loggerHolder{logger})
}

// GetLogger 获取全局Logger
func GetLogger() Logger {
	return globalLogger.Load().(loggerHolder).Logger
}
