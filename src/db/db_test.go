package db

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	type CustomInt int
	type S struct {
		I   int        `db:"I"`
		PI  *int       `db:"PI"`
		CI  CustomInt  `db:"CI"`
		PCI *CustomInt `db:"PCI"`
		B   bool       `db:"B"`
		PB  *bool      `db:"PB"`

		NoTag int
	}
	type Nested struct {
		S  S  `db:"S"`
		PS *S `db:"PS"`

		NoTag S
	}

	names, paths := getColumnNamesAndPaths(reflect.TypeOf(Nested{}), nil, nil)
	assert.Equal(t, []columnName{
		{"S", "I"}, {"S", "PI"},
		{"S", "CI"}, {"S", "PCI"},
		{"S", "B"}, {"S", "PB"},
		{"PS", "I"}, {"PS", "PI"},
		{"PS", "CI"}, {"PS", "PCI"},
		{"PS", "B"}, {"PS", "PB"},
	}, names)
	assert.Equal(t, []fieldPath{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5},
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5},
	}, paths)
	assert.True(t, len(names) == len(paths))

	testStruct := Nested{}
	for i, path := range paths {
		val, field := followPathThroughStructs(reflect.ValueOf(&testStruct), path)
		assert.True(t, val.IsValid())
		assert.True(t, strings.Contains(strings.Join(names[i], "."), field.Name))
	}
}

func TestCompileQuery(t *testing.T) {
	type User struct {
		ID       int    `db:"id"`
		Username string `db:"username"`
	}

	t.Run("plain columns", func(t *testing.T) {
		c := compileQuery(`SELECT $columns FROM users`, reflect.TypeOf(User{}))
		assert.Equal(t, `SELECT id, username FROM users`, c.query)
	})
	t.Run("prefixed columns", func(t *testing.T) {
		c := compileQuery(`SELECT $columns{u} FROM users AS u`, reflect.TypeOf(User{}))
		assert.Equal(t, `SELECT u.id, u.username FROM users AS u`, c.query)
	})
}

func TestGetQueryName(t *testing.T) {
	name, ok := GetQueryName("---- FetchPosts\nSELECT 1")
	assert.True(t, ok)
	assert.Equal(t, "FetchPosts", name)

	_, ok = GetQueryName("SELECT 1")
	assert.False(t, ok)
}

func TestQueryBuilder(t *testing.T) {
	var qb QueryBuilder
	qb.Add(`SELECT stuff FROM thing WHERE id = $? AND deleted_at IS NULL`, 1)
	qb.Add(`AND slug = ANY ($?)`, []string{"a", "b"})

	assert.Equal(t, "SELECT stuff FROM thing WHERE id = $1 AND deleted_at IS NULL\nAND slug = ANY ($2)\n", qb.String())
	assert.Equal(t, []interface{}{1, []string{"a", "b"}}, qb.Args())

	assert.Panics(t, func() {
		qb.Add(`AND bad = $?`)
	})
}
