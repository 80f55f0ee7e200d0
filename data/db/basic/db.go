// Package basic 提供基于 modernc.org/sqlite 的连接提供者。
//
// 每次 ReadableHandle/WritableHandle 都会打开一个新的 *sqlx.DB，连接池上限固定为 1，
// 保证会话始终只持有一个物理连接；只读句柄通过 PRAGMA query_only 拒绝写入。
package basic

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"sqlbean/config"
	core "sqlbean/data/db"
	"sqlbean/logging"
)

// Provider 按模式打开 SQLite 句柄
type Provider struct {
	cfg    config.DatabaseConfig
	logger logging.Logger
}

var _ core.IProvider = (*Provider)(nil)

// New 根据数据库配置创建提供者。
// 调用方使用非默认驱动时必须确保驱动已通过空导入注册。
func New(cfg config.DatabaseConfig) (*Provider, error) {
	if cfg.Driver == "" {
		cfg.Driver = "sqlite"
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("basic.New: database path is required")
	}
	return &Provider{
		cfg:    cfg,
		logger: logging.GetLogger().WithFields(logging.Component("db.provider")),
	}, nil
}

// FromConfig 从顶层配置创建提供者
func FromConfig(cfg *config.Config) (*Provider, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	return New(cfg.Database)
}

// Path 返回数据库文件路径
func (p *Provider) Path() string { return p.cfg.Path }

// ReadableHandle 打开只读句柄
func (p *Provider) ReadableHandle(ctx context.Context) (*sqlx.DB, error) {
	return p.open(ctx, core.ModeRead)
}

// WritableHandle 打开读写句柄
func (p *Provider) WritableHandle(ctx context.Context) (*sqlx.DB, error) {
	return p.open(ctx, core.ModeWrite)
}

func (p *Provider) open(ctx context.Context, mode core.OpenMode) (_ *sqlx.DB, rerr error) {
	pragmas := p.pragmas(mode)

	dsn := p.cfg.Path
	inline := p.cfg.Driver == "sqlite"
	if inline && len(pragmas) > 0 {
		// modernc.org/sqlite 在每个新连接上执行 _pragma 参数
		q := url.Values{}
		for _, pr := range pragmas {
			q.Add("_pragma", pr)
		}
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + q.Encode()
	}

	conn, err := sqlx.Open(p.cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", core.ErrConnectionFailed, p.cfg.Path, err)
	}
	defer func() {
		if rerr != nil {
			_ = conn.Close()
		}
	}()

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: ping %s: %w", core.ErrConnectionFailed, p.cfg.Path, err)
	}

	if !inline {
		for _, pr := range pragmas {
			if _, err := conn.ExecContext(ctx, "PRAGMA "+pragmaAssignment(pr)); err != nil {
				return nil, fmt.Errorf("%w: pragma %s: %w", core.ErrConnectionFailed, pr, err)
			}
		}
	}

	p.logger.Debug(ctx, "handle opened",
		logging.String("path", p.cfg.Path),
		logging.String("mode", mode.String()),
	)
	return conn, nil
}

func (p *Provider) pragmas(mode core.OpenMode) []string {
	var out []string
	if p.cfg.BusyTimeoutMS > 0 {
		out = append(out, fmt.Sprintf("busy_timeout(%d)", p.cfg.BusyTimeoutMS))
	}
	out = append(out, p.cfg.Pragmas...)
	if mode == core.ModeRead {
		out = append(out, "query_only(1)")
	}
	return out
}

// pragmaAssignment 将 "name(value)" 转为 "name = value"
func pragmaAssignment(pr string) string {
	open := strings.IndexByte(pr, '(')
	if open < 0 || !strings.HasSuffix(pr, ")") {
		return pr
	}
	return pr[:open] + " = " + pr[open+1:len(pr)-1]
}
