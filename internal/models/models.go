package models

// All lists every persisted model, in dependency order, for AutoMigrate in tests.
func All() []interface{} {
	return []interface{}{
		&User{},
		&LinkedAccount{},
		&Transaction{},
		&Payment{},
		&AuditLog{},
	}
}
