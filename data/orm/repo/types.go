package repo

// SortDirection 排序方向
type SortDirection string

const (
	ASC  SortDirection = "ASC"
	DESC SortDirection = "DESC"
)

func (s SortDirection) IsValid() bool { return s == ASC || s == DESC }

// QueryOptions 分页查询选项，字段名均为属性名。
//
// Filters 的键支持后缀运算符：_like、_gt、_gte、_lt、_lte、_ne、_in、_not_in（逗号分隔），
// 无后缀表示相等。
type QueryOptions struct {
	Page    int                      `json:"page"`
	Size    int                      `json:"size"`
	Sorts   map[string]SortDirection `json:"sorts"`
	Filters map[string]string        `json:"filters"`
}

// PagedResult 分页结果
type PagedResult[T any] struct {
	Data       []*T  `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalPages int   `json:"total_pages"`
}
