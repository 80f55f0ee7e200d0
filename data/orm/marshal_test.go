package orm

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbean/logging"
)

func newTestMarshaller() *Marshaller {
	return NewMarshaller(logging.NewNoopLogger())
}

func TestMarshaller_BeanToValues(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Person{}))
	require.NoError(t, err)

	born := time.UnixMilli(1_700_000_000_123)
	p := &Person{
		ID:        3,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       36,
		Score:     9.5,
		Active:    true,
		Avatar:    []byte{1, 2, 3},
		Born:      born,
		Friends:   []string{"Charles"},
		Scratch:   "ignored",
	}

	vals, err := newTestMarshaller().BeanToValues(ctx, em, p)
	require.NoError(t, err)
	assert.Equal(t, em.ColumnNames(), vals.Columns())

	expect := map[string]any{
		"id":         int64(3),
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"age":        int64(36),
		"score":      9.5,
		"active":     true,
		"avatar":     []byte{1, 2, 3},
		"born":       int64(1_700_000_000_123),
		"nickname":   nil,
	}
	for col, want := range expect {
		got, ok := vals.Get(col)
		require.True(t, ok, col)
		assert.Equal(t, want, got, col)
	}

	_, ok := vals.Get("scratch")
	assert.False(t, ok)
	assert.Len(t, vals.Without("id"), len(vals)-1)

	// 值类型同样可读
	byValue, err := newTestMarshaller().BeanToValues(ctx, em, *p)
	require.NoError(t, err)
	assert.Equal(t, vals, byValue)
}

func TestMarshaller_BeanToValues_Errors(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Person{}))
	require.NoError(t, err)
	m := newTestMarshaller()

	var nilPerson *Person
	_, err = m.BeanToValues(ctx, em, nilPerson)
	assert.True(t, IsMappingError(err))

	_, err = m.BeanToValues(ctx, em, &Fallback{})
	assert.True(t, IsMappingError(err))

	_, err = m.BeanToValues(ctx, em, nil)
	assert.True(t, IsMappingError(err))
}

func TestMarshaller_RoundTrip(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Person{}))
	require.NoError(t, err)
	m := newTestMarshaller()

	nick := "countess"
	in := &Person{
		ID:        11,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Age:       36,
		Score:     -0.25,
		Active:    true,
		Avatar:    []byte("png"),
		Born:      time.UnixMilli(-4_000_000_000_000),
		Nickname:  &nick,
	}

	vals, err := m.BeanToValues(ctx, em, in)
	require.NoError(t, err)

	out, err := m.ValuesToBean(ctx, RowFromValues(vals), em)
	require.NoError(t, err)
	got, ok := out.(*Person)
	require.True(t, ok)

	assert.Equal(t, in.ID, got.ID)
	assert.Equal(t, in.FirstName, got.FirstName)
	assert.Equal(t, in.LastName, got.LastName)
	assert.Equal(t, in.Age, got.Age)
	assert.Equal(t, in.Score, got.Score)
	assert.Equal(t, in.Active, got.Active)
	assert.Equal(t, in.Avatar, got.Avatar)
	assert.True(t, in.Born.Equal(got.Born))
	require.NotNil(t, got.Nickname)
	assert.Equal(t, nick, *got.Nickname)

	em, err = NewMapper().MapType(reflect.TypeOf(Wide{}))
	require.NoError(t, err)
	for _, id := range []uint64{0, math.MaxInt64, math.MaxInt64 + 1, math.MaxUint64} {
		vals, err := m.BeanToValues(ctx, em, &Wide{ID: id})
		require.NoError(t, err)
		out, err := m.ValuesToBean(ctx, RowFromValues(vals), em)
		require.NoError(t, err)
		assert.Equal(t, id, out.(*Wide).ID)
	}
}

func TestMarshaller_UnsignedFromText(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Wide{}))
	require.NoError(t, err)
	m := newTestMarshaller()

	out, err := m.ValuesToBean(ctx, NewRow([]string{"id"}, []any{"18446744073709551615"}), em)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), out.(*Wide).ID)

	out, err = m.ValuesToBean(ctx, NewRow([]string{"id"}, []any{int64(-2)}), em)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64-1), out.(*Wide).ID)
}

func TestMarshaller_AccessorsAndTextTypes(t *testing.T) {
	ctx := context.Background()
	mapper := NewMapper()
	m := newTestMarshaller()

	em, err := mapper.MapType(reflect.TypeOf(Shouting{}))
	require.NoError(t, err)
	vals, err := m.BeanToValues(ctx, em, &Shouting{Name: "quiet"})
	require.NoError(t, err)
	v, _ := vals.Get("field_name")
	assert.Equal(t, "QUIET", v)

	out, err := m.ValuesToBean(ctx, NewRow([]string{"field_name"}, []any{"LOUD"}), em)
	require.NoError(t, err)
	assert.Equal(t, "loud", out.(*Shouting).Name)

	em, err = mapper.MapType(reflect.TypeOf(Wide{}))
	require.NoError(t, err)
	in := &Wide{ID: math.MaxUint64, Small: -8, Ratio: 1.5, At: Point{X: 3, Y: 4}}
	vals, err = m.BeanToValues(ctx, em, in)
	require.NoError(t, err)

	id, _ := vals.Get("id")
	assert.Equal(t, int64(-1), id)
	at, _ := vals.Get("at")
	assert.Equal(t, "3,4", at)

	out, err = m.ValuesToBean(ctx, RowFromValues(vals), em)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMarshaller_NullAndEmptyText(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Person{}))
	require.NoError(t, err)

	row := NewRow(
		[]string{"id", "first_name", "last_name", "age", "score", "active", "born", "nickname", "avatar"},
		[]any{int64(1), "", "null", "", "null", nil, "", nil, nil},
	)
	out, err := newTestMarshaller().ValuesToBean(ctx, row, em)
	require.NoError(t, err)
	p := out.(*Person)

	assert.Equal(t, int64(1), p.ID)
	assert.Equal(t, "", p.FirstName)
	// 字符串属性原样保留 "null"
	assert.Equal(t, "null", p.LastName)
	assert.Zero(t, p.Age)
	assert.Zero(t, p.Score)
	assert.False(t, p.Active)
	assert.True(t, p.Born.IsZero())
	assert.Nil(t, p.Nickname)
	assert.Nil(t, p.Avatar)
}

func TestMarshaller_ColumnFailureKeepsOtherColumns(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Person{}))
	require.NoError(t, err)

	row := NewRow(
		[]string{"id", "first_name", "age", "active"},
		[]any{int64(5), "Grace", "not-a-number", int64(1)},
	)
	out, err := newTestMarshaller().ValuesToBean(ctx, row, em)
	require.NoError(t, err)
	p := out.(*Person)

	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, "Grace", p.FirstName)
	assert.Zero(t, p.Age)
	assert.True(t, p.Active)
}

func TestMarshaller_FillBean(t *testing.T) {
	ctx := context.Background()
	em, err := NewMapper().MapType(reflect.TypeOf(Account{}))
	require.NoError(t, err)
	m := newTestMarshaller()

	acc := &Account{Notes: "keep"}
	row := NewRow([]string{"id", "mail"}, []any{int64(42), []byte("a@b.c")})
	require.NoError(t, m.FillBean(ctx, row, em, acc))

	assert.Equal(t, int64(42), acc.GetId())
	assert.Equal(t, "a@b.c", acc.GetEmail())
	assert.Equal(t, "keep", acc.Notes)

	assert.True(t, IsMappingError(m.FillBean(ctx, row, em, Account{})))
}

func TestEntityMapping_IdentityValue(t *testing.T) {
	mapper := NewMapper()

	em, err := mapper.MapType(reflect.TypeOf(Account{}))
	require.NoError(t, err)
	acc := &Account{}
	acc.SetId(7)
	id, err := em.IdentityValue(acc)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	em, err = mapper.MapType(reflect.TypeOf(Coded{}))
	require.NoError(t, err)
	_, err = em.IdentityValue(&Coded{})
	assert.True(t, IsMappingError(err))
}

func TestCellText(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{in: nil, ok: false},
		{in: int64(-3), want: "-3", ok: true},
		{in: 2.5, want: "2.5", ok: true},
		{in: []byte("raw"), want: "raw", ok: true},
		{in: "s", want: "s", ok: true},
		{in: true, want: "true", ok: true},
		{in: time.UnixMilli(1500), want: "1500", ok: true},
	}
	for _, tt := range tests {
		got, ok := CellText(tt.in)
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}
