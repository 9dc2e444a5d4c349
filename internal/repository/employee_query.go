package repository

import (
	"fmt"
	"math"
	"strings"

	"gorm.io/gorm"
)

const (
	// DefaultPageSize is used when the caller gives no usable limit.
	DefaultPageSize = 5
	// MaxPageSize bounds a single page.
	MaxPageSize = 100
)

// EmployeeQuery describes one page of the employee list.
type EmployeeQuery struct {
	Search string
	Sort   string
	Page   int
	Limit  int
}

type sortField struct {
	column string
	text   bool
	desc   bool
}

// sortFields maps the sort keys clients may send to columns. Text columns
// compare case-insensitively.
var sortFields = map[string]sortField{
	"name":      {column: "name", text: true},
	"email":     {column: "email", text: true},
	"position":  {column: "position", text: true},
	"mobile":    {column: "mobile", text: true},
	"salary":    {column: "salary", desc: true},
	"createdAt": {column: "created_at"},
	"updatedAt": {column: "updated_at"},
}

// Normalize fills defaults: page 1, DefaultPageSize, limit capped at MaxPageSize.
func (q EmployeeQuery) Normalize() EmployeeQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Sort = strings.TrimSpace(q.Sort)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	return q
}

// Offset is the number of matching rows before the requested page. It
// saturates at math.MaxInt instead of wrapping negative.
func (q EmployeeQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// PastEnd reports whether the page starts after the last of total rows.
func (q EmployeeQuery) PastEnd(total int64) bool {
	return int64(q.Page) > int64(q.TotalPages(total))
}

// TotalPages is ceil(total/limit).
func (q EmployeeQuery) TotalPages(total int64) int {
	if q.Limit < 1 || total <= 0 {
		return 0
	}
	return int((total + int64(q.Limit) - 1) / int64(q.Limit))
}

// searchScope matches the term as a case-insensitive substring of name, email
// or position.
func searchScope(term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		return db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(position) LIKE ?", pattern, pattern, pattern)
	}
}

// sortScope orders by the requested key. Unknown keys fall back to insertion
// order; id always breaks ties so pages are stable.
func sortScope(key string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, ok := sortFields[key]
		if !ok {
			return db.Order("created_at ASC").Order("id ASC")
		}
		expr := field.column
		if field.text {
			expr = fmt.Sprintf("LOWER(%s)", field.column)
		}
		dir := "ASC"
		if field.desc {
			dir = "DESC"
		}
		return db.Order(expr + " " + dir).Order("id ASC")
	}
}

func pageScope(q EmployeeQuery) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(q.Offset()).Limit(q.Limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
