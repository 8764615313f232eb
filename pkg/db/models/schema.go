package models

// All lists the models in dependency order. Production schemas come from the
// goose migrations; this list backs sqlite dev databases and tests.
func All() []any {
	return []any{
		&Fleet{},
		&Boat{},
		&InventoryItem{},
		&OrderItem{},
		&User{},
		&Otp{},
	}
}
