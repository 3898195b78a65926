package memory

import (
	"context"

	"github.com/viant/rrsim/model"
	"github.com/viant/rrsim/service/dao"
	"github.com/viant/rrsim/service/dao/criteria"
	"github.com/viant/rrsim/service/dao/store"
)

// Service implements an in-memory, thread-safe registry of the records of
// the current batch keyed by pid. All API methods work with copies.
type Service struct {
	*store.MemoryStore[int, model.Process]
}

var _ dao.Service[int, model.Process] = (*Service)(nil)

// Save stores a copy of p
func (s *Service) Save(ctx context.Context, p *model.Process) error {
	if p == nil {
		return dao.ErrNilEntity
	}
	if p.PID < 0 {
		return dao.ErrInvalidID
	}
	return s.MemoryStore.Save(ctx, p)
}

// List returns records in arrival order, optionally filtered by State
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*model.Process, error) {
	all, err := s.MemoryStore.List(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, p := range all {
		if !criteria.FilterByState(p.State, parameters) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Reset replaces the registry content with the records of a new batch
func (s *Service) Reset(ctx context.Context, processes []*model.Process) error {
	return s.Replace(ctx, processes)
}

func New() *Service {
	return &Service{
		MemoryStore: store.NewMemoryStore[int, model.Process](
			func(p *model.Process) int { return p.PID },
			store.WithClone[int, model.Process](func(p *model.Process) *model.Process { return p.Clone() }),
			store.WithOrder[int, model.Process](func(a, b *model.Process) bool { return a.ArrivalOrder < b.ArrivalOrder }),
		),
	}
}
