package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// CurrentSchemaVersion tracks the database schema version.
const CurrentSchemaVersion = "1.1.0"

// Migration is one forward schema step.
type Migration struct {
	Version string
	Up      string
}

var sqliteMigrations = []Migration{
	{
		Version: "1.0.0",
		Up: `
CREATE TABLE IF NOT EXISTS customers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    tax_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    address TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sku TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    price_minor INTEGER NOT NULL CHECK (price_minor >= 0),
    stock INTEGER NOT NULL CHECK (stock >= 0),
    flags TEXT NOT NULL DEFAULT '[]',
    image_url TEXT,
    description TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_tax_id TEXT NOT NULL,
    generated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sale_product (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sale_id INTEGER NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
    sku TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_minor INTEGER NOT NULL,
    product_name TEXT NOT NULL,
    UNIQUE (sale_id, sku)
);
`,
	},
	{
		Version: "1.1.0",
		Up: `
CREATE INDEX IF NOT EXISTS idx_sales_customer_tax_id ON sales(customer_tax_id);
CREATE INDEX IF NOT EXISTS idx_sales_generated_at ON sales(generated_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_sale_product_sale_id ON sale_product(sale_id);
`,
	},
}

var postgresMigrations = []Migration{
	{
		Version: "1.0.0",
		Up: `
CREATE TABLE IF NOT EXISTS customers (
    id BIGSERIAL PRIMARY KEY,
    tax_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT,
    address TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    id BIGSERIAL PRIMARY KEY,
    sku TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    price_minor BIGINT NOT NULL CHECK (price_minor >= 0),
    stock INTEGER NOT NULL CHECK (stock >= 0),
    flags TEXT NOT NULL DEFAULT '[]',
    image_url TEXT,
    description TEXT,
    created_at TIMESTAMPTZ NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id BIGSERIAL PRIMARY KEY,
    customer_tax_id TEXT NOT NULL,
    generated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sale_product (
    id BIGSERIAL PRIMARY KEY,
    sale_id BIGINT NOT NULL REFERENCES sales(id) ON DELETE CASCADE,
    sku TEXT NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0),
    unit_price_minor BIGINT NOT NULL,
    product_name TEXT NOT NULL,
    UNIQUE (sale_id, sku)
);
`,
	},
	{
		Version: "1.1.0",
		Up: `
CREATE INDEX IF NOT EXISTS idx_sales_customer_tax_id ON sales(customer_tax_id);
CREATE INDEX IF NOT EXISTS idx_sales_generated_at ON sales(generated_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_sale_product_sale_id ON sale_product(sale_id);
`,
	},
}

const createSchemaVersion = `
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// applyMigrations runs every migration newer than the recorded version,
// each in its own transaction.
func applyMigrations(ctx context.Context, db *sql.DB, d dialect) error {
	current, err := schemaVersion(ctx, db, d)
	if err != nil {
		return err
	}

	for _, m := range d.migrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.Up); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %s: %w", m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, d.rebind("INSERT INTO schema_version (version) VALUES (?)"), m.Version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %s: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %s: %w", m.Version, err)
		}
		current = v
	}
	return nil
}

// schemaVersion returns the highest applied version, or 0.0.0 on a fresh
// database.
func schemaVersion(ctx context.Context, db *sql.DB, d dialect) (*semver.Version, error) {
	var n int
	if err := db.QueryRowContext(ctx, d.schemaVersionExists).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to check schema_version table: %w", err)
	}
	if n == 0 {
		if _, err := db.ExecContext(ctx, createSchemaVersion); err != nil {
			return nil, fmt.Errorf("failed to create schema_version table: %w", err)
		}
		return semver.MustParse("0.0.0"), nil
	}

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_version: %w", err)
	}
	defer rows.Close()

	current := semver.MustParse("0.0.0")
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid schema version %s: %w", raw, err)
		}
		if v.GreaterThan(current) {
			current = v
		}
	}
	return current, rows.Err()
}

// SchemaVersion reports the schema version recorded in the database.
func (s *Store) SchemaVersion(ctx context.Context) (string, error) {
	v, err := schemaVersion(ctx, s.db, s.dialect)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}
