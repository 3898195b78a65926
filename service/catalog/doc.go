// Package catalog defines read-only access to process datasets. A dataset
// holds two kinds of catalogs, cpu and memoria; each catalog is a named group
// of rows that becomes a batch once loaded into the scheduler.
//
// Implementations live in subpackages: duckdb reads DuckDB and SQLite files,
// fs reads YAML or JSON documents through afs.
package catalog
