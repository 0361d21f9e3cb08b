package models

// All returns the model set for schema auto-migration.
func All() []any {
	return []any{
		&Product{},
		&Conversation{},
		&Message{},
		&Purchase{},
		&MediaEnrichment{},
	}
}
