package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/catalog"
)

const attachedSchema = "dataset"

// Source reads catalogs from a DuckDB database or from a SQLite file
// attached through DuckDB's sqlite extension.
type Source struct {
	db     *sql.DB
	schema string
	owned  bool
}

// Open opens the dataset at location read-only. Files with a .duckdb
// extension are opened natively; anything else is attached as SQLite.
//
// SQLite datasets need DuckDB's sqlite extension. Open loads an installed
// copy and otherwise runs INSTALL sqlite, which downloads the extension and
// fails without network access. Offline hosts must preinstall it (for
// example with the duckdb CLI) or convert the dataset to .duckdb.
func Open(ctx context.Context, location string) (*Source, error) {
	if strings.EqualFold(filepath.Ext(location), ".duckdb") {
		db, err := sql.Open("duckdb", location+"?access_mode=read_only")
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb dataset %v: %w", location, err)
		}
		db.SetMaxOpenConns(1)
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to open duckdb dataset %v: %w", location, err)
		}
		return &Source{db: db, owned: true}, nil
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err = loadSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to attach sqlite dataset %v: %w", location, err)
	}
	attach := fmt.Sprintf("ATTACH '%s' AS %s (TYPE sqlite, READ_ONLY)", escapePath(location), attachedSchema)
	if _, err = db.ExecContext(ctx, attach); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to attach sqlite dataset %v: %w", location, err)
	}
	return &Source{db: db, schema: attachedSchema, owned: true}, nil
}

// loadSQLite loads the sqlite extension, installing it when missing
func loadSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "LOAD sqlite"); err == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, "INSTALL sqlite"); err != nil {
		return fmt.Errorf("sqlite extension unavailable (install needs network access): %w", err)
	}
	_, err := db.ExecContext(ctx, "LOAD sqlite")
	return err
}

// New wraps an open database holding cpu and memoria tables in schema
// (empty for the default schema). The caller keeps ownership of db.
func New(db *sql.DB, schema string) *Source {
	return &Source{db: db, schema: schema}
}

// Catalogs lists distinct catalogs of kind ordered by id
func (s *Source) Catalogs(ctx context.Context, kind catalog.Kind) ([]*catalog.Catalog, error) {
	table, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT DISTINCT catalog_id, nombre_catalogo FROM %s ORDER BY catalog_id", table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %v catalogs: %w", kind, err)
	}
	defer rows.Close()
	var ret []*catalog.Catalog
	for rows.Next() {
		item := &catalog.Catalog{}
		var name sql.NullString
		if err = rows.Scan(&item.ID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan %v catalog: %w", kind, err)
		}
		item.Name = name.String
		ret = append(ret, item)
	}
	return ret, rows.Err()
}

// Rows returns the rows of catalogID in stored order
func (s *Source) Rows(ctx context.Context, kind catalog.Kind, catalogID int) ([]*model.Row, error) {
	table, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT pid, COALESCE(nombre, ''), COALESCE(usuario, ''), COALESCE(prioridad, 0) FROM %s WHERE catalog_id = ?", table)
	rows, err := s.db.QueryContext(ctx, query, catalogID)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v catalog %d: %w", kind, catalogID, err)
	}
	defer rows.Close()
	var ret []*model.Row
	for rows.Next() {
		row := &model.Row{}
		if err = rows.Scan(&row.PID, &row.Name, &row.Owner, &row.Priority); err != nil {
			return nil, fmt.Errorf("failed to scan %v catalog %d: %w", kind, catalogID, err)
		}
		ret = append(ret, row)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: %v/%d", catalog.ErrCatalogNotFound, kind, catalogID)
	}
	return ret, nil
}

// Close releases the database when the source opened it
func (s *Source) Close() error {
	if !s.owned || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// table returns the qualified table for kind; kinds are whitelisted so the
// name is safe to interpolate.
func (s *Source) table(kind catalog.Kind) (string, error) {
	if err := kind.Validate(); err != nil {
		return "", err
	}
	if s.schema == "" {
		return string(kind), nil
	}
	return s.schema + "." + string(kind), nil
}

func escapePath(location string) string {
	return strings.ReplaceAll(location, "'", "''")
}
