package errors

import (
	"context"
	"fmt"
	"runtime"

	"sqlbean/logging"
)

// Wrap 包装错误并以 Debug 级别记录调用位置
func Wrap(ctx context.Context, err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}

	_, file, line, _ := runtime.Caller(1)
	wrapped := WrapError(err, code, msg)
	logging.GetLogger().Debug(ctx, "error wrapped",
		logging.String("message", msg),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	)
	return wrapped
}

// WrapDatabaseError 将连接层/驱动层错误包装为 "<operation> operation failed"。
//
// 已经是 AppError 的错误（例如映射错误、重复键错误）原样返回，保证调用方只收到一层领域错误。
func WrapDatabaseError(ctx context.Context, err error, operation string, fields ...logging.Field) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(IError); ok {
		return err
	}

	_, file, line, _ := runtime.Caller(1)
	msg := fmt.Sprintf("database %s operation failed", operation)

	all := append([]logging.Field{
		logging.Error(err),
		logging.String("operation", operation),
		logging.String("location", fmt.Sprintf("%s:%d", file, line)),
	}, fields...)
	logging.GetLogger().Warn(ctx, msg, all...)

	return WrapError(err, ErrCodeDatabase, msg).WithContext("operation", operation)
}

// New 创建新错误
func New(code ErrorCode, msg string) error {
	return NewError(code, msg)
}

// Newf 创建带格式化消息的新错误
func Newf(code ErrorCode, format string, args ...any) error {
	return NewError(code, fmt.Sprintf(format, args...))
}
