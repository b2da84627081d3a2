package models

import (
	"fmt"
	"strings"
	"time"
)

// Identity is the UUID identity shared by every domain entity.
type Identity struct {
	ID string `json:"id" db:"id"`
}

// Timestamps tracks creation and last update times.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SoftDelete marks a record inactive instead of removing it. Inactive records
// are excluded from default reads.
type SoftDelete struct {
	IsActive bool `json:"is_active" db:"is_active"`
}

// ParseIncludeInactive reports whether the include_inactive query parameter
// opts into inactive records. Only the exact values below count.
func ParseIncludeInactive(value string) bool {
	switch value {
	case "true", "1", "yes":
		return true
	}
	return false
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListParams carries the common list-endpoint query parameters.
type ListParams struct {
	Page            int
	PageSize        int
	Search          string
	Ordering        string
	IncludeInactive bool
}

// Normalize clamps pagination to sane bounds.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = defaultPageSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
}

// Offset returns the row offset for the current page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// OrderClause translates a DRF-style ordering value ("-created_at") into a SQL
// ORDER BY expression, restricted to the allowed field->column map. Unknown or
// empty orderings fall back to the given default.
func OrderClause(ordering string, allowed map[string]string, fallback string) string {
	field := strings.TrimSpace(ordering)
	desc := false
	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}
	column, ok := allowed[field]
	if !ok {
		return fallback
	}
	if desc {
		return fmt.Sprintf("%s DESC", column)
	}
	return fmt.Sprintf("%s ASC", column)
}
