package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sqlbean/errors"
)

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("sqlite", "driver"))

	err := ValidateRequired("  ", "driver")
	assert.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "driver")
}

func TestValidateNonNegative(t *testing.T) {
	assert.NoError(t, ValidateNonNegative(0, "timeout"))
	assert.NoError(t, ValidateNonNegative(5, "timeout"))
	assert.Error(t, ValidateNonNegative(-1, "timeout"))
}

func TestValidateEnum(t *testing.T) {
	valid := []string{"read", "write"}
	assert.NoError(t, ValidateEnum("READ", "mode", valid))
	assert.Error(t, ValidateEnum("append", "mode", valid))
}

func TestValidateSQLType(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "INTEGER"},
		{in: "varchar"},
		{in: "DOUBLE PRECISION"},
		{in: "", wantErr: true},
		{in: "1NT", wantErr: true},
		{in: "TEXT); DROP TABLE x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := ValidateSQLType(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateColumnSize(t *testing.T) {
	assert.NoError(t, ValidateColumnSize(""))
	assert.NoError(t, ValidateColumnSize("64"))
	assert.NoError(t, ValidateColumnSize("10, 2"))
	assert.Error(t, ValidateColumnSize("64)"))
	assert.Error(t, ValidateColumnSize("abc"))
	assert.Error(t, ValidateColumnSize("1,2,3"))
}
