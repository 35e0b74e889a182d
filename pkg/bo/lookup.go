// Lookup lists: the set of permitted display/value pairs for a property
// Either a static list or a cached live query over saved objects of a class
package bo

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// LookupItem is one entry in a lookup list.
type LookupItem struct {
	Display string
	Value   any
}

// LookupList supplies the permitted values for a property, in a stable order.
type LookupList interface {
	Options(ctx context.Context) ([]LookupItem, error)
}

// SimpleLookupList is a fixed list of items.
type SimpleLookupList struct {
	Items []LookupItem
}

func (l *SimpleLookupList) Options(_ context.Context) ([]LookupItem, error) {
	return l.Items, nil
}

// ObjectLookupList lists the saved objects of ClassName. Each item's value is
// the object id; the display text is the DisplayProp value, or the id when
// DisplayProp is empty. Results are cached for CacheTimeout; a zero timeout
// disables the cache.
type ObjectLookupList struct {
	ClassName    string
	DisplayProp  string
	Repo         Repository
	CacheTimeout time.Duration

	mu       sync.Mutex
	cached   []LookupItem
	loadedAt time.Time
	now      func() time.Time
}

// BackingClass returns the class whose instances back the list.
func (l *ObjectLookupList) BackingClass() string {
	return l.ClassName
}

// Refresh drops the cached items so the next call re-queries.
func (l *ObjectLookupList) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = nil
	l.loadedAt = time.Time{}
}

func (l *ObjectLookupList) Options(ctx context.Context) ([]LookupItem, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now
	if l.now != nil {
		now = l.now
	}
	if l.cached != nil && l.CacheTimeout > 0 && now().Sub(l.loadedAt) < l.CacheTimeout {
		return l.cached, nil
	}
	if l.Repo == nil {
		return nil, fmt.Errorf("lookup list for %q has no repository", l.ClassName)
	}

	objs, err := l.Repo.Find(ctx, l.ClassName)
	if err != nil {
		return nil, fmt.Errorf("loading lookup list for %q: %w", l.ClassName, err)
	}
	items := make([]LookupItem, 0, len(objs))
	for _, obj := range objs {
		display := obj.ID().String()
		if l.DisplayProp != "" {
			if v := obj.Value(l.DisplayProp); v != nil {
				display = fmt.Sprint(v)
			}
		}
		items = append(items, LookupItem{Display: display, Value: obj.ID()})
	}
	l.cached = items
	l.loadedAt = now()
	return items, nil
}
