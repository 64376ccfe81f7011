package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/vibesphere/internal/catalog"
)

// ErrEmpty is returned by LoadCatalog when nothing has been imported yet.
var ErrEmpty = errors.New("catalog store is empty")

// Store keeps a catalog in SQLite so operators can curate items without
// rebuilding the binary.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens the SQLite database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")
	db.Exec("PRAGMA foreign_keys=ON")

	s := New(db)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ImportCatalog replaces the stored catalog with c and records the import.
func (s *Store) ImportCatalog(c *catalog.Catalog, source string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	var items int
	for ci, cat := range c.Categories {
		if _, err := tx.Exec(`
			INSERT INTO categories (category_id, title, position)
			VALUES (?, ?, ?)
		`, cat.ID, cat.Title, ci); err != nil {
			return fmt.Errorf("insert category %s: %w", cat.ID, err)
		}
		for ii, it := range cat.Items {
			if _, err := tx.Exec(`
				INSERT INTO items (item_id, category_id, name, glyph, color, description, position)
				VALUES (?, ?, ?, ?, ?, ?, ?)
			`, it.ID, cat.ID, it.Name, it.Glyph, it.Color, it.Description, ii); err != nil {
				return fmt.Errorf("insert item %s: %w", it.ID, err)
			}
			items++
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO catalog_imports (source, categories, items, imported_at)
		VALUES (?, ?, ?, ?)
	`, source, len(c.Categories), items, time.Now().UTC()); err != nil {
		return fmt.Errorf("record import: %w", err)
	}

	return tx.Commit()
}

// LoadCatalog reads the stored catalog in its imported order.
func (s *Store) LoadCatalog() (*catalog.Catalog, error) {
	rows, err := s.db.Query(`
		SELECT c.category_id, c.title, i.item_id, i.name, i.glyph, i.color, i.description
		FROM categories c
		LEFT JOIN items i ON i.category_id = c.category_id
		ORDER BY c.position ASC, i.position ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c := &catalog.Catalog{}
	for rows.Next() {
		var (
			catID, title                    string
			itemID, name, glyph, col, descr sql.NullString
		)
		if err := rows.Scan(&catID, &title, &itemID, &name, &glyph, &col, &descr); err != nil {
			return nil, err
		}
		if n := len(c.Categories); n == 0 || c.Categories[n-1].ID != catID {
			c.Categories = append(c.Categories, catalog.Category{ID: catID, Title: title})
		}
		if !itemID.Valid {
			continue
		}
		cat := &c.Categories[len(c.Categories)-1]
		cat.Items = append(cat.Items, catalog.Item{
			ID:          itemID.String,
			Name:        name.String,
			Glyph:       glyph.String,
			Color:       col.String,
			Description: descr.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(c.Categories) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// Import describes one recorded catalog import.
type Import struct {
	ID         int64
	Source     string
	Categories int
	Items      int
	ImportedAt time.Time
}

// LastImport returns the most recent import, or nil if there is none.
func (s *Store) LastImport() (*Import, error) {
	var imp Import
	err := s.db.QueryRow(`
		SELECT id, source, categories, items, imported_at
		FROM catalog_imports
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&imp.ID, &imp.Source, &imp.Categories, &imp.Items, &imp.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &imp, nil
}
