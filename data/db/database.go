// Package db 定义连接提供者契约与语句执行抽象。
//
// 会话只持有一个物理连接句柄；句柄由外部提供者按读/写模式打开，
// 提供者负责文件位置、驱动注册、PRAGMA 等平台相关细节。
package db

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// OpenMode 句柄打开模式
type OpenMode int

const (
	ModeNone OpenMode = iota
	ModeRead
	ModeWrite
)

func (m OpenMode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	default:
		return "none"
	}
}

// ErrConnectionFailed 提供者无法打开句柄时返回（通过 %w 包装底层原因）
var ErrConnectionFailed = errors.New("db: connection failed")

// IProvider 连接提供者
type IProvider interface {
	// ReadableHandle 打开只读句柄
	ReadableHandle(ctx context.Context) (*sqlx.DB, error)
	// WritableHandle 打开读写句柄
	WritableHandle(ctx context.Context) (*sqlx.DB, error)
}

// IExecutor 语句执行器，*sqlx.DB 与 *sqlx.Tx 均满足
type IExecutor interface {
	sqlx.ExtContext
}

// Open 按模式从提供者获取句柄
func Open(ctx context.Context, p IProvider, mode OpenMode) (*sqlx.DB, error) {
	switch mode {
	case ModeRead:
		return p.ReadableHandle(ctx)
	case ModeWrite:
		return p.WritableHandle(ctx)
	default:
		return nil, errors.New("db: invalid open mode")
	}
}
