// Command sqlbean 对 SQLite 数据库文件执行原始查询与语句，结果以 JSON 输出。
//
//	sqlbean -db app.db query "SELECT * FROM person WHERE age > ?" 18
//	sqlbean -config sqlbean.yaml exec "DELETE FROM person WHERE id = ?" 3
//	sqlbean -db app.db tables
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"

	"sqlbean/config"
	"sqlbean/data/orm/session"
	"sqlbean/errors"
	"sqlbean/logging"
)

type queryResult struct {
	Columns []string    `json:"columns"`
	Rows    [][]*string `json:"rows"`
}

type execResult struct {
	RowsAffected int64 `json:"rows_affected"`
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "sqlbean:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, argv []string, out io.Writer) error {
	fs := flag.NewFlagSet("sqlbean", flag.ContinueOnError)
	configPath := fs.String("config", "", "YAML 配置文件")
	dbPath := fs.String("db", "", "数据库文件路径（覆盖配置）")
	level := fs.String("log", "", "日志级别 debug|info|warn|error（覆盖配置）")
	if err := fs.Parse(argv); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.NewStdLogger("[sqlbean] ")
	logger.SetLevel(cfg.LogLevel())
	logging.SetLogger(logger)

	s, err := session.FromConfig(cfg)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	args := fs.Args()
	if len(args) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "missing command (query, exec, tables)")
	}
	cmd, rest := args[0], args[1:]

	var result any
	switch cmd {
	case "query", "exec":
		if len(rest) == 0 {
			return errors.Newf(errors.ErrCodeInvalidInput, "%s: missing SQL statement", cmd)
		}
		params := make([]any, len(rest)-1)
		for i, p := range rest[1:] {
			params[i] = p
		}
		if cmd == "exec" {
			n, err := s.ExecuteUpdate(ctx, rest[0], params...)
			if err != nil {
				return err
			}
			result = execResult{RowsAffected: n}
			break
		}
		cols, rows, err := s.RawQueryColumns(ctx, rest[0], params...)
		if err != nil {
			return err
		}
		result = queryResult{Columns: cols, Rows: rows}
	case "tables":
		cols, rows, err := s.RawQueryColumns(ctx,
			"SELECT name, sql FROM sqlite_master WHERE type = 'table' ORDER BY name")
		if err != nil {
			return err
		}
		result = queryResult{Columns: cols, Rows: rows}
	default:
		return errors.Newf(errors.ErrCodeInvalidInput, "unknown command %q", cmd)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
