package orm

import (
	"fmt"

	"sqlbean/errors"
)

// NewMappingError 类型无法映射为实体，或反射读取标识值失败
func NewMappingError(message string) error {
	return errors.NewError(errors.ErrCodeInvalidClass, message)
}

// WrapMappingError 以映射错误包装底层原因
func WrapMappingError(err error, message string) error {
	return errors.WrapError(err, errors.ErrCodeInvalidClass, message)
}

// IsMappingError 判断是否为映射错误
func IsMappingError(err error) bool {
	return errors.IsErrorCode(err, errors.ErrCodeInvalidClass)
}

// NewDuplicateKeyError 插入的标识值已存在
func NewDuplicateKeyError(table string, id any) error {
	return errors.NewError(errors.ErrCodeDuplicate, fmt.Sprintf("duplicate identity %v in table %s", id, table)).
		WithContext("table", table).
		WithContext("id", id)
}

// IsDuplicateKey 判断是否为重复标识错误
func IsDuplicateKey(err error) bool {
	return errors.IsErrorCode(err, errors.ErrCodeDuplicate)
}

// NewNotFoundError 按标识查询未命中
func NewNotFoundError(table string, id any) error {
	return errors.NewError(errors.ErrCodeNotFound, fmt.Sprintf("no row with identity %v in table %s", id, table)).
		WithContext("table", table).
		WithContext("id", id)
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.IsErrorCode(err, errors.ErrCodeNotFound)
}
