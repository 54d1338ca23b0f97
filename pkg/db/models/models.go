package models

// All lists every persisted model in dependency order, for schema bootstrap
// on SQLite where the goose migrations do not apply.
func All() []any {
	return []any{
		&Medicine{},
		&Customer{},
		&Sale{},
		&SaleItem{},
		&Purchase{},
		&PurchaseItem{},
	}
}
