package duckdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/catalog"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	seed(t, db, "")
	return db
}

// seed creates the cpu and memoria fixtures, qualified with prefix
func seed(t *testing.T, db *sql.DB, prefix string) {
	t.Helper()
	statements := []string{
		"CREATE TABLE " + prefix + "cpu (catalog_id INTEGER, nombre_catalogo VARCHAR, pid INTEGER, nombre VARCHAR, usuario VARCHAR, prioridad INTEGER)",
		"CREATE TABLE " + prefix + "memoria (catalog_id INTEGER, nombre_catalogo VARCHAR, pid INTEGER, nombre VARCHAR, usuario VARCHAR, prioridad INTEGER)",
		"INSERT INTO " + prefix + "cpu VALUES (2, 'batch two', 7, 'abc', 'root', 1), (1, 'batch one', 3, 'editor', 'ana', 0), (1, 'batch one', 1, 'sh', 'luis', 1), (2, 'batch two', 8, 'ñandú', NULL, 0)",
		"INSERT INTO " + prefix + "memoria VALUES (5, 'heap', 11, 'malloc', 'root', 0)",
	}
	for _, statement := range statements {
		_, err := db.Exec(statement)
		require.NoError(t, err)
	}
}

func TestSource_Catalogs(t *testing.T) {
	source := New(newTestDB(t), "")
	ctx := context.Background()

	testCases := []struct {
		name      string
		kind      catalog.Kind
		expect    []*catalog.Catalog
		expectErr error
	}{
		{
			name: "cpu catalogs are distinct and ordered",
			kind: catalog.KindCPU,
			expect: []*catalog.Catalog{
				{ID: 1, Name: "batch one"},
				{ID: 2, Name: "batch two"},
			},
		},
		{
			name:   "memory catalogs",
			kind:   catalog.KindMemory,
			expect: []*catalog.Catalog{{ID: 5, Name: "heap"}},
		},
		{
			name:      "unknown kind",
			kind:      catalog.Kind("disk; DROP TABLE cpu"),
			expectErr: catalog.ErrUnknownKind,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := source.Catalogs(ctx, tc.kind)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestSource_Rows(t *testing.T) {
	source := New(newTestDB(t), "")
	ctx := context.Background()

	testCases := []struct {
		name      string
		kind      catalog.Kind
		catalogID int
		expect    []*model.Row
		expectErr error
	}{
		{
			name:      "rows keep stored order",
			kind:      catalog.KindCPU,
			catalogID: 1,
			expect: []*model.Row{
				{PID: 3, Name: "editor", Owner: "ana", Priority: 0},
				{PID: 1, Name: "sh", Owner: "luis", Priority: 1},
			},
		},
		{
			name:      "null owner reads as empty",
			kind:      catalog.KindCPU,
			catalogID: 2,
			expect: []*model.Row{
				{PID: 7, Name: "abc", Owner: "root", Priority: 1},
				{PID: 8, Name: "ñandú", Owner: "", Priority: 0},
			},
		},
		{
			name:      "missing catalog",
			kind:      catalog.KindMemory,
			catalogID: 1,
			expectErr: catalog.ErrCatalogNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := source.Rows(ctx, tc.kind, tc.catalogID)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

func TestSource_CloseBorrowed(t *testing.T) {
	db := newTestDB(t)
	source := New(db, "")
	assert.NoError(t, source.Close())
	assert.NoError(t, db.Ping())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name   string
		file   string
		create func(t *testing.T, location string)
	}{
		{
			name: "duckdb file",
			file: "procesos.duckdb",
			create: func(t *testing.T, location string) {
				db, err := sql.Open("duckdb", location)
				require.NoError(t, err)
				defer db.Close()
				seed(t, db, "")
			},
		},
		{
			name: "sqlite file",
			file: "procesos.db",
			create: func(t *testing.T, location string) {
				db, err := sql.Open("duckdb", "")
				require.NoError(t, err)
				defer db.Close()
				db.SetMaxOpenConns(1)
				if err = loadSQLite(ctx, db); err != nil {
					t.Skipf("sqlite extension unavailable: %v", err)
				}
				_, err = db.Exec("ATTACH '" + escapePath(location) + "' AS src (TYPE sqlite)")
				require.NoError(t, err)
				seed(t, db, "src.")
				_, err = db.Exec("DETACH src")
				require.NoError(t, err)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			location := filepath.Join(t.TempDir(), tc.file)
			tc.create(t, location)

			source, err := Open(ctx, location)
			require.NoError(t, err)
			defer source.Close()

			catalogs, err := source.Catalogs(ctx, catalog.KindCPU)
			require.NoError(t, err)
			assert.Equal(t, []*catalog.Catalog{{ID: 1, Name: "batch one"}, {ID: 2, Name: "batch two"}}, catalogs)

			rows, err := source.Rows(ctx, catalog.KindMemory, 5)
			require.NoError(t, err)
			assert.Equal(t, []*model.Row{{PID: 11, Name: "malloc", Owner: "root", Priority: 0}}, rows)
		})
	}
}

func TestOpen_MissingSQLiteFile(t *testing.T) {
	ctx := context.Background()
	extensionDB, err := sql.Open("duckdb", "")
	require.NoError(t, err)
	defer extensionDB.Close()
	if err = loadSQLite(ctx, extensionDB); err != nil {
		t.Skipf("sqlite extension unavailable: %v", err)
	}
	_, err = Open(ctx, filepath.Join(t.TempDir(), "missing", "procesos.db"))
	assert.Error(t, err)
}
