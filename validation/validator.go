// Package validation 提供配置与映射元数据的输入校验，失败时返回 INVALID_INPUT 错误。
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"sqlbean/errors"
)

var (
	sqlTypeRegex    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*$`)
	columnSizeRegex = regexp.MustCompile(`^\s*\d+\s*(,\s*\d+\s*)?$`)
)

// NewValidationError 创建校验错误
func NewValidationError(message string) error {
	return errors.NewError(errors.ErrCodeInvalidInput, message)
}

// ValidateRequired 验证必填字段
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(fmt.Sprintf("%s is required", fieldName))
	}
	return nil
}

// ValidateNonNegative 验证非负整数
func ValidateNonNegative(value int, fieldName string) error {
	if value < 0 {
		return NewValidationError(fmt.Sprintf("%s must not be negative (got %d)", fieldName, value))
	}
	return nil
}

// ValidateEnum 验证枚举值，大小写不敏感
func ValidateEnum(value, fieldName string, validValues []string) error {
	for _, valid := range validValues {
		if strings.EqualFold(value, valid) {
			return nil
		}
	}
	return NewValidationError(fmt.Sprintf("%s must be one of %v (got %q)", fieldName, validValues, value))
}

// ValidateSQLType 验证列类型名，例如 INTEGER、VARCHAR、DOUBLE PRECISION
func ValidateSQLType(value string) error {
	if !sqlTypeRegex.MatchString(value) {
		return NewValidationError(fmt.Sprintf("invalid SQL type %q", value))
	}
	return nil
}

// ValidateColumnSize 验证列长度限定，例如 "64" 或 "10,2"
func ValidateColumnSize(value string) error {
	if value == "" {
		return nil
	}
	if !columnSizeRegex.MatchString(value) {
		return NewValidationError(fmt.Sprintf("invalid column size %q", value))
	}
	return nil
}
