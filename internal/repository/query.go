package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page bounds a list query. A zero Size returns every row.
type Page struct {
	Number int
	Size   int
}

func (p Page) apply(q *gorm.DB) *gorm.DB {
	if p.Size <= 0 {
		return q
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	return q.Offset((number - 1) * p.Size).Limit(p.Size)
}

// orderBy resolves a client-supplied ordering key against a whitelist, using def when
// the key is empty or unknown.
func orderBy(q *gorm.DB, key string, allowed map[string]string, def string) *gorm.DB {
	if expr, ok := allowed[key]; ok {
		return q.Order(expr)
	}
	return q.Order(def)
}

// likePattern builds a case-insensitive substring pattern.
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// forUpdate adds a row lock where the dialect supports one.
func forUpdate(q *gorm.DB) *gorm.DB {
	return q.Clauses(clause.Locking{Strength: "UPDATE"})
}
