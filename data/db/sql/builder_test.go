package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSafeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "简单", in: "users", want: true},
		{name: "下划线开头", in: "_tmp1", want: true},
		{name: "限定名", in: "main.users", want: true},
		{name: "空串", in: "", want: false},
		{name: "数字开头", in: "1users", want: false},
		{name: "空段", in: "main.", want: false},
		{name: "注入片段", in: "users; DROP TABLE x", want: false},
		{name: "连字符", in: "user-name", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSafeIdentifier(tt.in))
		})
	}
}

func TestSelectBuilder_Build(t *testing.T) {
	q, args := Select(nil, "id", "first_name").
		Distinct(true).
		From("person").
		Where("first_name = ?", "ann").
		GroupBy("first_name").
		Having("COUNT(id) > ?").
		OrderBy("id DESC").
		Limit(" 10 ").
		Build()

	assert.Equal(t, "SELECT DISTINCT id, first_name FROM person WHERE first_name = ? GROUP BY first_name HAVING COUNT(id) > ? ORDER BY id DESC LIMIT 10", q)
	assert.Equal(t, []any{"ann"}, args)
}

func TestSelectBuilder_MultipleWhere(t *testing.T) {
	q, args := Select(nil).From("person").Where("a = ?", 1).Where("").Where("b = ? OR c = ?", 2, 3).Build()

	assert.Equal(t, "SELECT * FROM person WHERE (a = ?) AND (b = ? OR c = ?)", q)
	assert.Equal(t, []any{1, 2, 3}, args)
}

func TestSelectBuilder_UnsafeTablePanics(t *testing.T) {
	assert.Panics(t, func() {
		Select(nil, "id").From("person p").Build()
	})
}

func TestInsertBuilder_Build(t *testing.T) {
	q, args := InsertInto(nil, "person").Columns("name", "age").Values("ann", 3).Build()
	assert.Equal(t, "INSERT INTO person (name, age) VALUES (?, ?)", q)
	assert.Equal(t, []any{"ann", 3}, args)

	q, args = InsertInto(nil, "person").Build()
	assert.Equal(t, "INSERT INTO person DEFAULT VALUES", q)
	assert.Nil(t, args)

	assert.Panics(t, func() {
		InsertInto(nil, "person").Columns("name").Build()
	})
}

func TestUpdateBuilder_Build(t *testing.T) {
	q, args := Update(nil, "person").Set("name", "bob").Set("", "skip").Set("age", 4).Where("id = ?", 7).Build()
	assert.Equal(t, "UPDATE person SET name = ?, age = ? WHERE id = ?", q)
	assert.Equal(t, []any{"bob", 4, 7}, args)

	q, _ = Update(nil, "person").Set("age", 1).Build()
	assert.Equal(t, "UPDATE person SET age = ?", q)

	assert.Panics(t, func() { Update(nil, "person").Build() })
}

func TestDeleteBuilder_Build(t *testing.T) {
	q, args := DeleteFrom(nil, "person").Where("id = ?", 7).Build()
	assert.Equal(t, "DELETE FROM person WHERE id = ?", q)
	assert.Equal(t, []any{7}, args)

	q, args = DeleteFrom(nil, "person").Build()
	assert.Equal(t, "DELETE FROM person", q)
	assert.Nil(t, args)
}
