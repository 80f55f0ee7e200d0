package repo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sqlbean/config"
	"sqlbean/data/db/basic"
	"sqlbean/data/orm"
	"sqlbean/data/orm/session"
	"sqlbean/logging"
)

type Item struct {
	ID       int64 `orm:"id"`
	Name     string
	Price    int
	Category string `orm:"column:item_category"`
}

func (Item) TableName() string { return "item" }

func newTestRepo(t *testing.T) *Repo[Item] {
	t.Helper()
	p, err := basic.New(config.DatabaseConfig{
		Path:          filepath.Join(t.TempDir(), "repo.db"),
		BusyTimeoutMS: 1000,
	})
	require.NoError(t, err)
	s := session.New(p, session.WithLogger(logging.NewNoopLogger()))
	r, err := NewRepo[Item](s)
	require.NoError(t, err)
	return r
}

func seed(t *testing.T, r *Repo[Item]) {
	t.Helper()
	items := []*Item{
		{ID: 1, Name: "apple", Price: 10, Category: "fruit"},
		{ID: 2, Name: "banana", Price: 20, Category: "fruit"},
		{ID: 3, Name: "carrot", Price: 30, Category: "veg"},
		{ID: 4, Name: "durian", Price: 40, Category: "fruit"},
		{ID: 5, Name: "eggplant", Price: 50, Category: "veg"},
	}
	require.NoError(t, r.AddAll(context.Background(), items))
}

func names(items []*Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func TestNewRepo_RejectsUnmappableType(t *testing.T) {
	p, err := basic.New(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	_, err = NewRepo[int](session.New(p))
	require.Error(t, err)
	assert.True(t, orm.IsMappingError(err))
}

func TestRepo_EmptyTable(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	ok, err := r.Exists(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepo_CRUD(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seed(t, r)

	got, err := r.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "carrot", got.Name)
	assert.Equal(t, "veg", got.Category)

	_, err = r.Get(ctx, 99)
	require.Error(t, err)
	assert.True(t, orm.IsNotFound(err))

	got.Price = 35
	ok, err := r.Update(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = r.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 35, got.Price)

	ok, err = r.Delete(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = r.DeleteWhere(ctx, "category = ?", "veg")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRepo_List(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seed(t, r)

	items, err := r.List(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"banana", "carrot"}, names(items))

	items, err = r.List(ctx, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"durian", "eggplant"}, names(items))
}

func TestRepo_Filters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seed(t, r)

	cases := []struct {
		name    string
		filters map[string]string
		want    []string
	}{
		{"equal and range", map[string]string{"category": "fruit", "price_gte": "20"}, []string{"banana", "durian"}},
		{"like", map[string]string{"name_like": "an"}, []string{"banana", "durian", "eggplant"}},
		{"in", map[string]string{"name_in": "apple, carrot"}, []string{"apple", "carrot"}},
		{"not in", map[string]string{"category_not_in": "fruit"}, []string{"carrot", "eggplant"}},
		{"lt and ne", map[string]string{"price_lt": "40", "name_ne": "apple"}, []string{"banana", "carrot"}},
		{"unknown field ignored", map[string]string{"bogus": "1"}, []string{"apple", "banana", "carrot", "durian", "eggplant"}},
		{"column name is not a property", map[string]string{"item_category": "veg"}, []string{"apple", "banana", "carrot", "durian", "eggplant"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := r.Find(ctx, tc.filters)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, names(items))

			n, err := r.CountWithFilters(ctx, tc.filters)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tc.want)), n)
		})
	}
}

func TestRepo_ListPage(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seed(t, r)

	page, err := r.ListPage(ctx, &QueryOptions{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, []string{"carrot", "durian"}, names(page.Data))

	page, err = r.ListPage(ctx, &QueryOptions{
		Size:    2,
		Sorts:   map[string]SortDirection{"price": DESC, "bogus": ASC},
		Filters: map[string]string{"category": "fruit"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, []string{"durian", "banana"}, names(page.Data))

	page, err = r.ListPage(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, page.Size)
	assert.Len(t, page.Data, 5)
}

func TestRepo_AddAllRollsBackOnFailure(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	err := r.AddAll(ctx, []*Item{
		{ID: 1, Name: "apple"},
		{ID: 1, Name: "again"},
	})
	require.Error(t, err)
	assert.False(t, r.Session().InTransaction())

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRepo_AddAllJoinsCallerTransaction(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	s := r.Session()

	require.NoError(t, s.Begin(ctx))
	require.NoError(t, r.AddAll(ctx, []*Item{{ID: 1, Name: "apple"}, {ID: 2, Name: "banana"}}))
	assert.True(t, s.InTransaction())

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, s.Rollback(ctx))
	n, err = r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
