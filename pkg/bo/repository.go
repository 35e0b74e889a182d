// Persistence boundary for business objects and an in-memory implementation
package bo

import (
	"context"
	"slices"
	"sync"
)

// Repository saves objects and lists the saved objects of a class.
type Repository interface {
	Save(ctx context.Context, obj *Object) error
	Find(ctx context.Context, class string) ([]*Object, error)
}

// MemoryRepository keeps saved objects in memory, in save order.
type MemoryRepository struct {
	mu      sync.Mutex
	byClass map[string][]*Object
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byClass: make(map[string][]*Object)}
}

func (r *MemoryRepository) Save(_ context.Context, obj *Object) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	class := obj.Class().Name
	if !slices.ContainsFunc(r.byClass[class], func(o *Object) bool { return o.ID() == obj.ID() }) {
		r.byClass[class] = append(r.byClass[class], obj)
	}
	obj.MarkSaved()
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, class string) ([]*Object, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.byClass[class]), nil
}
