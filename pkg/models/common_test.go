package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIncludeInactive(t *testing.T) {
	t.Run("should accept the opt-in values", func(t *testing.T) {
		assert.True(t, ParseIncludeInactive("true"))
		assert.True(t, ParseIncludeInactive("1"))
		assert.True(t, ParseIncludeInactive("yes"))
	})

	t.Run("should reject everything else", func(t *testing.T) {
		assert.False(t, ParseIncludeInactive(""))
		assert.False(t, ParseIncludeInactive("TRUE"))
		assert.False(t, ParseIncludeInactive("on"))
		assert.False(t, ParseIncludeInactive("0"))
	})
}

func TestListParamsNormalize(t *testing.T) {
	t.Run("should default page and page size", func(t *testing.T) {
		p := ListParams{}
		p.Normalize()
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.PageSize)
	})

	t.Run("should clamp oversized pages", func(t *testing.T) {
		p := ListParams{Page: 3, PageSize: 500}
		p.Normalize()
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, 100, p.PageSize)
	})

	t.Run("should leave valid values alone", func(t *testing.T) {
		p := ListParams{Page: 2, PageSize: 25}
		p.Normalize()
		assert.Equal(t, 2, p.Page)
		assert.Equal(t, 25, p.PageSize)
	})
}

func TestListParamsOffset(t *testing.T) {
	assert.Equal(t, 0, ListParams{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 40, ListParams{Page: 3, PageSize: 20}.Offset())
}

func TestOrderClause(t *testing.T) {
	allowed := map[string]string{
		"name":       "company_name",
		"created_at": "created_at",
	}

	t.Run("should order ascending by default", func(t *testing.T) {
		assert.Equal(t, "company_name ASC", OrderClause("name", allowed, "created_at DESC"))
	})

	t.Run("should order descending with a leading dash", func(t *testing.T) {
		assert.Equal(t, "created_at DESC", OrderClause("-created_at", allowed, "created_at DESC"))
	})

	t.Run("should fall back for unknown fields", func(t *testing.T) {
		assert.Equal(t, "created_at DESC", OrderClause("salary", allowed, "created_at DESC"))
	})

	t.Run("should fall back for empty orderings", func(t *testing.T) {
		assert.Equal(t, "created_at DESC", OrderClause("", allowed, "created_at DESC"))
		assert.Equal(t, "created_at DESC", OrderClause("-", allowed, "created_at DESC"))
	})
}
