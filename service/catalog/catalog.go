package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/rrsim/model"
)

var (
	// ErrNotLoaded is returned when catalogs are accessed before a dataset is opened
	ErrNotLoaded = errors.New("dataset not loaded")
	// ErrUnknownKind is returned for a dataset kind other than cpu or memoria
	ErrUnknownKind = errors.New("unknown dataset kind")
	// ErrCatalogNotFound is returned for a catalog id absent from the dataset
	ErrCatalogNotFound = errors.New("catalog not found")
)

// Kind selects the table a catalog is read from
type Kind string

const (
	KindCPU    Kind = "cpu"
	KindMemory Kind = "memoria"
)

// Kinds returns the supported kinds
func Kinds() []Kind {
	return []Kind{KindCPU, KindMemory}
}

// ParseKind returns the kind matching value, case-insensitively
func ParseKind(value string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(value)))
	if err := kind.Validate(); err != nil {
		return "", err
	}
	return kind, nil
}

// Validate returns ErrUnknownKind for unsupported kinds
func (k Kind) Validate() error {
	switch k {
	case KindCPU, KindMemory:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Catalog identifies a named group of rows within a kind
type Catalog struct {
	ID   int    `json:"catalog_id" yaml:"catalog_id"`
	Name string `json:"nombre_catalogo" yaml:"nombre_catalogo"`
}

// Source provides read-only access to a dataset
type Source interface {
	// Catalogs lists distinct catalogs of kind ordered by id
	Catalogs(ctx context.Context, kind Kind) ([]*Catalog, error)
	// Rows returns the rows of a catalog in stored order
	Rows(ctx context.Context, kind Kind, catalogID int) ([]*model.Row, error)
	Close() error
}
