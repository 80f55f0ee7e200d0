package orm

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propertyNames(props []*Property) []string {
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}

func TestLowerCamel(t *testing.T) {
	cases := map[string]string{
		"FirstName": "firstName",
		"ID":        "id",
		"Id":        "id",
		"URLPath":   "urlPath",
		"already":   "already",
		"X":         "x",
	}
	for in, want := range cases {
		assert.Equal(t, want, lowerCamel(in), in)
	}
}

func TestResolveProperties_Fields(t *testing.T) {
	props, err := ResolveProperties(reflect.TypeOf(Person{}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"id", "firstName", "lastName", "age", "score", "active",
		"avatar", "born", "nickname", "friends",
	}, propertyNames(props))

	for _, p := range props {
		assert.True(t, p.HasField(), p.Name)
		assert.False(t, p.HasAccessor(), p.Name)
	}
	assert.Equal(t, AnnotationIdentity, props[0].Annotation.Kind)
	assert.Equal(t, AnnotationAssociation, props[len(props)-1].Annotation.Kind)
}

func TestResolveProperties_Accessors(t *testing.T) {
	props, err := ResolveProperties(reflect.TypeOf(&Account{}))
	require.NoError(t, err)

	// 字段属性在前，仅访问器属性按方法名排序；缺少 setter 的 summary/verified 以及 GetClass 被排除
	assert.Equal(t, []string{"notes", "email", "id"}, propertyNames(props))

	email := props[1]
	assert.False(t, email.HasField())
	assert.True(t, email.HasAccessor())
	assert.GreaterOrEqual(t, email.Setter, 0)
	assert.Equal(t, "mail", email.Annotation.Column)

	id := props[2]
	assert.Equal(t, AnnotationIdentity, id.Annotation.Kind)
	assert.False(t, id.Annotation.Enforce)
}

func TestResolveProperties_AccessorWinsOverField(t *testing.T) {
	props, err := ResolveProperties(reflect.TypeOf(Shouting{}))
	require.NoError(t, err)
	require.Len(t, props, 1)

	p := props[0]
	assert.Equal(t, "name", p.Name)
	assert.True(t, p.HasField())
	assert.True(t, p.HasAccessor())
	assert.Equal(t, "field_name", p.Annotation.Column)
}

func TestResolveProperties_EmbeddedStructs(t *testing.T) {
	props, err := ResolveProperties(reflect.TypeOf(Customer{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "address.city", "address.zip"}, propertyNames(props))

	props, err = ResolveProperties(reflect.TypeOf(Order{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"createdAt", "updatedBy", "id", "total"}, propertyNames(props))
}

func TestResolveProperties_BadTag(t *testing.T) {
	_, err := ResolveProperties(reflect.TypeOf(BadTag{}))
	require.Error(t, err)
	assert.True(t, IsMappingError(err))
}
