package postgres

import (
	"context"
	"fmt"

	"toolrent-backend/internal/logger"
)

// Migrations returns the idempotent schema statements in apply order.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS tool_groups (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(255) NOT NULL,
			replacement_value NUMERIC(14,2) NOT NULL,
			daily_rental_rate NUMERIC(14,2) NOT NULL,
			daily_fine_rate NUMERIC(14,2) NOT NULL,
			deactivated_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`ALTER TABLE tool_groups ADD COLUMN IF NOT EXISTS deactivated_at TIMESTAMPTZ`,
		`CREATE TABLE IF NOT EXISTS tool_units (
			id SERIAL PRIMARY KEY,
			group_id INTEGER NOT NULL REFERENCES tool_groups(id),
			status VARCHAR(20) NOT NULL CHECK (status IN ('AVAILABLE', 'LOANED', 'IN_REPAIR', 'RETIRED')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_units_group_status ON tool_units (group_id, status, id)`,
		`CREATE TABLE IF NOT EXISTS customers (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			rut VARCHAR(20) NOT NULL UNIQUE,
			phone VARCHAR(50) NOT NULL,
			email VARCHAR(255) NOT NULL,
			status VARCHAR(20) NOT NULL CHECK (status IN ('ACTIVE', 'RESTRICTED')),
			is_system BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS loans (
			id SERIAL PRIMARY KEY,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			unit_id INTEGER NOT NULL REFERENCES tool_units(id),
			group_id INTEGER NOT NULL REFERENCES tool_groups(id),
			loan_date TIMESTAMPTZ NOT NULL,
			due_date TIMESTAMPTZ NOT NULL,
			return_date TIMESTAMPTZ,
			total_cost NUMERIC(14,2) NOT NULL,
			fine_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
			damage_charge NUMERIC(14,2) NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loans_active ON loans (due_date) WHERE return_date IS NULL`,
		`CREATE TABLE IF NOT EXISTS kardex_movements (
			id BIGSERIAL PRIMARY KEY,
			group_id INTEGER NOT NULL REFERENCES tool_groups(id),
			unit_id INTEGER NOT NULL REFERENCES tool_units(id),
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			movement_type VARCHAR(20) NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			detail TEXT NOT NULL,
			correlation_id UUID NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_kardex_group ON kardex_movements (group_id, id)`,
		`CREATE INDEX IF NOT EXISTS idx_kardex_unit ON kardex_movements (unit_id, id)`,
	}
}

// Migrate applies every statement of Migrations in order.
func Migrate(ctx context.Context, db DBTX) error {
	for i, stmt := range Migrations() {
		logger.DatabaseCall("Migrate", stmt, "step", i+1)
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			logger.DatabaseResult("Migrate", 0, err, "step", i+1)
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}
	logger.Info("Database schema up to date", "steps", len(Migrations()))
	return nil
}
