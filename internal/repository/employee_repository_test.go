package repository

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"ems/internal/model"
)

// dryRunDB returns a MySQL-dialect session that renders SQL without a server.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "user:password@tcp(127.0.0.1:3306)/employees?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func renderList(t *testing.T, q EmployeeQuery) string {
	t.Helper()
	stmt := listQuery(dryRunDB(t), q.Normalize()).Find(&[]model.Employee{}).Statement
	return stmt.Dialector.Explain(stmt.SQL.String(), stmt.Vars...)
}

func TestEmployeeQuery_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   EmployeeQuery
		want EmployeeQuery
	}{
		{name: "zero value", in: EmployeeQuery{}, want: EmployeeQuery{Page: 1, Limit: DefaultPageSize}},
		{name: "negative page", in: EmployeeQuery{Page: -3, Limit: 10}, want: EmployeeQuery{Page: 1, Limit: 10}},
		{name: "limit capped", in: EmployeeQuery{Page: 2, Limit: 5000}, want: EmployeeQuery{Page: 2, Limit: MaxPageSize}},
		{name: "trims search", in: EmployeeQuery{Search: "  jane ", Sort: " name"}, want: EmployeeQuery{Search: "jane", Sort: "name", Page: 1, Limit: DefaultPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestEmployeeQuery_TotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{total: 0, limit: 5, want: 0},
		{total: 1, limit: 5, want: 1},
		{total: 5, limit: 5, want: 1},
		{total: 6, limit: 5, want: 2},
		{total: 23, limit: 10, want: 3},
	}

	for _, tt := range tests {
		q := EmployeeQuery{Page: 1, Limit: tt.limit}
		assert.Equal(t, tt.want, q.TotalPages(tt.total), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestEmployeeQuery_Offset(t *testing.T) {
	assert.Equal(t, 0, EmployeeQuery{Page: 1, Limit: 5}.Offset())
	assert.Equal(t, 10, EmployeeQuery{Page: 3, Limit: 5}.Offset())
	assert.Equal(t, math.MaxInt, EmployeeQuery{Page: math.MaxInt / 2, Limit: 5}.Offset())
	assert.Equal(t, math.MaxInt, EmployeeQuery{Page: math.MaxInt, Limit: MaxPageSize}.Offset())
}

func TestEmployeeQuery_PastEnd(t *testing.T) {
	tests := []struct {
		name  string
		query EmployeeQuery
		total int64
		want  bool
	}{
		{name: "first page", query: EmployeeQuery{Page: 1, Limit: 5}, total: 12, want: false},
		{name: "last page", query: EmployeeQuery{Page: 3, Limit: 5}, total: 12, want: false},
		{name: "one past", query: EmployeeQuery{Page: 4, Limit: 5}, total: 12, want: true},
		{name: "huge page", query: EmployeeQuery{Page: math.MaxInt, Limit: 5}, total: 12, want: true},
		{name: "empty collection", query: EmployeeQuery{Page: 1, Limit: 5}, total: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query.PastEnd(tt.total))
		})
	}
}

func TestListQuery_Search(t *testing.T) {
	sql := renderList(t, EmployeeQuery{Search: "JaNe"})

	assert.Contains(t, sql, "LOWER(name) LIKE '%jane%' OR LOWER(email) LIKE '%jane%' OR LOWER(position) LIKE '%jane%'")
}

func TestListQuery_SearchEscapesWildcards(t *testing.T) {
	sql := renderList(t, EmployeeQuery{Search: "50%_off"})

	assert.NotContains(t, sql, "'%50%_off%'")
	assert.Contains(t, sql, "LIKE")
}

func TestListQuery_NoSearchHasNoWhere(t *testing.T) {
	sql := renderList(t, EmployeeQuery{})

	assert.NotContains(t, sql, "WHERE")
	assert.Contains(t, sql, "ORDER BY created_at ASC,id ASC")
}

func TestListQuery_Sort(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{sort: "salary", want: "ORDER BY salary DESC,id ASC"},
		{sort: "name", want: "ORDER BY LOWER(name) ASC,id ASC"},
		{sort: "position", want: "ORDER BY LOWER(position) ASC,id ASC"},
		{sort: "createdAt", want: "ORDER BY created_at ASC,id ASC"},
		{sort: "password; DROP TABLE employees", want: "ORDER BY created_at ASC,id ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.sort, func(t *testing.T) {
			assert.Contains(t, renderList(t, EmployeeQuery{Sort: tt.sort}), tt.want)
		})
	}
}

func TestListQuery_Pagination(t *testing.T) {
	sql := renderList(t, EmployeeQuery{Page: 3, Limit: 5})

	assert.Contains(t, sql, "LIMIT 5 OFFSET 10")

	sql = renderList(t, EmployeeQuery{Page: math.MaxInt / 2, Limit: 5})
	assert.Contains(t, sql, fmt.Sprintf("LIMIT 5 OFFSET %d", math.MaxInt))
}
