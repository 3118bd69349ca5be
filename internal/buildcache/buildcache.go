// Package buildcache persists the table index assigned to each structural
// identity, so incremental builds keep function indices stable: a backend
// artifact that embedded an index last build keeps pointing at the same
// function as long as its body didn't change.
package buildcache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/funvibe/liftc/internal/ir"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS lifted_functions (
	identity    TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	table_index INTEGER NOT NULL,
	build_id    TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);`

// Cache is a sqlite-backed identity → index store.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening build cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing build cache: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// IndexHints loads the identity → index assignments of the previous build.
func (c *Cache) IndexHints() (map[string]int, error) {
	rows, err := c.db.Query(`SELECT identity, table_index FROM lifted_functions`)
	if err != nil {
		return nil, fmt.Errorf("reading build cache: %w", err)
	}
	defer rows.Close()

	hints := make(map[string]int)
	for rows.Next() {
		var identity string
		var index int
		if err := rows.Scan(&identity, &index); err != nil {
			return nil, err
		}
		hints[identity] = index
	}
	return hints, rows.Err()
}

// Store replaces the cached assignments with the module's final table.
func (c *Cache) Store(mod *ir.Module) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM lifted_functions`); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO lifted_functions (identity, name, table_index, build_id, updated_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, fn := range mod.Funcs {
		if _, err := stmt.Exec(fn.Identity, fn.Name, fn.Index, mod.BuildID, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}
