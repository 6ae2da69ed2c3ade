package models

// UniqueIndex is a composite unique index created after AutoMigrate; the
// tenant scoped ones span a column of the embedded tenant model.
type UniqueIndex struct {
	Name    string
	Table   string
	Columns string
}

// UniqueIndexes mirrors the unique indexes of the SQL migrations
func UniqueIndexes() []UniqueIndex {
	return []UniqueIndex{
		{Name: "idx_rfqs_tenant_number", Table: "rfqs", Columns: "tenant_id, number"},
		{Name: "idx_rfq_items_line", Table: "rfq_items", Columns: "rfq_id, line_number"},
		{Name: "idx_quotations_tenant_number", Table: "quotations", Columns: "tenant_id, number"},
		{Name: "idx_quotation_items_line", Table: "quotation_items", Columns: "quotation_id, line_number"},
	}
}

// CreateStatement renders the idempotent DDL for the index
func (u UniqueIndex) CreateStatement() string {
	return "CREATE UNIQUE INDEX IF NOT EXISTS " + u.Name + " ON " + u.Table + " (" + u.Columns + ")"
}
