package database

import (
	"github.com/huandu/go-sqlbuilder"
)

func init() {
	// All queries in this service target Postgres; builders created without
	// an explicit flavor must emit $N placeholders.
	sqlbuilder.DefaultFlavor = sqlbuilder.PostgreSQL
}

// InsertBuilder adds Postgres conflict handling on top of the sqlbuilder
// insert.
type InsertBuilder struct {
	*sqlbuilder.InsertBuilder
}

func NewInsertBuilder() *InsertBuilder {
	return &InsertBuilder{sqlbuilder.PostgreSQL.NewInsertBuilder()}
}

func (b *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	b.SQL("ON CONFLICT DO NOTHING")
	return b
}
