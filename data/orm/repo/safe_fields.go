package repo

// isAllowedField 字段必须是映射中的列属性（关联属性与列名都不算）
func (r *Repo[T]) isAllowedField(field string) bool {
	_, ok := r.mapping.Column(field)
	return ok
}
