package fs

import (
	"context"
	"fmt"
	"sort"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"

	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/catalog"
)

// Record represents one dataset tuple with its catalog
type Record struct {
	CatalogID   int    `json:"catalog_id" yaml:"catalog_id"`
	CatalogName string `json:"nombre_catalogo" yaml:"nombre_catalogo"`
	model.Row   `yaml:",inline"`
}

// Document represents a YAML or JSON dataset keyed by kind
type Document struct {
	CPU    []*Record `json:"cpu" yaml:"cpu"`
	Memory []*Record `json:"memoria" yaml:"memoria"`
}

// Source serves catalogs from a document held in memory
type Source struct {
	document *Document
}

// Open downloads and decodes the dataset at URL. JSON documents are decoded
// by the same YAML decoder.
func Open(ctx context.Context, fs afs.Service, URL string) (*Source, error) {
	if fs == nil {
		fs = afs.New()
	}
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset %v: %w", URL, err)
	}
	document := &Document{}
	if err = yaml.Unmarshal(data, document); err != nil {
		return nil, fmt.Errorf("failed to decode dataset %v: %w", URL, err)
	}
	return New(document), nil
}

// New creates a source for document
func New(document *Document) *Source {
	if document == nil {
		document = &Document{}
	}
	return &Source{document: document}
}

func (s *Source) records(kind catalog.Kind) ([]*Record, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if kind == catalog.KindMemory {
		return s.document.Memory, nil
	}
	return s.document.CPU, nil
}

// Catalogs lists distinct catalogs of kind ordered by id
func (s *Source) Catalogs(ctx context.Context, kind catalog.Kind) ([]*catalog.Catalog, error) {
	records, err := s.records(kind)
	if err != nil {
		return nil, err
	}
	index := map[int]*catalog.Catalog{}
	var ret []*catalog.Catalog
	for _, record := range records {
		if record == nil {
			continue
		}
		if _, ok := index[record.CatalogID]; ok {
			continue
		}
		item := &catalog.Catalog{ID: record.CatalogID, Name: record.CatalogName}
		index[record.CatalogID] = item
		ret = append(ret, item)
	}
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// Rows returns the rows of catalogID in document order
func (s *Source) Rows(ctx context.Context, kind catalog.Kind, catalogID int) ([]*model.Row, error) {
	records, err := s.records(kind)
	if err != nil {
		return nil, err
	}
	var ret []*model.Row
	for _, record := range records {
		if record == nil || record.CatalogID != catalogID {
			continue
		}
		row := record.Row
		ret = append(ret, &row)
	}
	if len(ret) == 0 {
		return nil, fmt.Errorf("%w: %v/%d", catalog.ErrCatalogNotFound, kind, catalogID)
	}
	return ret, nil
}

// Close is a no-op
func (s *Source) Close() error {
	return nil
}
