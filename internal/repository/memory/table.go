package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"business-admin/internal/repository"
)

// table is a map of records guarded by a RWMutex. Records are cloned on the
// way in and out so callers never share memory with the store.
type table[T any] struct {
	kind  string
	mutex sync.RWMutex
	rows  map[string]T
	id    func(T) string
	clone func(T) T
}

func newTable[T any](kind string, id func(T) string, clone func(T) T) *table[T] {
	return &table[T]{
		kind:  kind,
		rows:  make(map[string]T),
		id:    id,
		clone: clone,
	}
}

func (t *table[T]) notFound(id string) error {
	return fmt.Errorf("%s %s: %w", t.kind, id, repository.ErrNotFound)
}

func (t *table[T]) conflict(format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", t.kind, repository.ErrConflict, fmt.Sprintf(format, args...))
}

// insertLocked assumes the write lock is held.
func (t *table[T]) insertLocked(v T) error {
	id := t.id(v)
	if _, exists := t.rows[id]; exists {
		return t.conflict("id %s already exists", id)
	}
	t.rows[id] = t.clone(v)
	return nil
}

func (t *table[T]) insert(v T) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.insertLocked(v)
}

func (t *table[T]) get(id string) (T, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	v, exists := t.rows[id]
	if !exists {
		var zero T
		return zero, t.notFound(id)
	}
	return t.clone(v), nil
}

// find returns the first record accepted by match.
func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	for _, v := range t.rows {
		if match(v) {
			return t.clone(v), true
		}
	}
	var zero T
	return zero, false
}

func (t *table[T]) replaceLocked(v T) error {
	id := t.id(v)
	if _, exists := t.rows[id]; !exists {
		return t.notFound(id)
	}
	t.rows[id] = t.clone(v)
	return nil
}

func (t *table[T]) replace(v T) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.replaceLocked(v)
}

func (t *table[T]) remove(id string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, exists := t.rows[id]; !exists {
		return t.notFound(id)
	}
	delete(t.rows, id)
	return nil
}

// filter returns clones of every record accepted by match, in no particular order.
func (t *table[T]) filter(match func(T) bool) []T {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	out := make([]T, 0, len(t.rows))
	for _, v := range t.rows {
		if match == nil || match(v) {
			out = append(out, t.clone(v))
		}
	}
	return out
}

func (t *table[T]) count(match func(T) bool) int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	n := 0
	for _, v := range t.rows {
		if match == nil || match(v) {
			n++
		}
	}
	return n
}

// sortKey compares two records on one column: negative, zero or positive.
type sortKey[T any] func(a, b T) int

func byTime[T any](get func(T) time.Time) sortKey[T] {
	return func(a, b T) int { return get(a).Compare(get(b)) }
}

func byString[T any](get func(T) string) sortKey[T] {
	return func(a, b T) int {
		x, y := get(a), get(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}

func byFloat[T any](get func(T) float64) sortKey[T] {
	return func(a, b T) int {
		x, y := get(a), get(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}

// paginate orders items like the SQL repositories do (sort column, then id)
// and cuts the requested page.
func paginate[T any](items []T, opts repository.ListOptions, allowed []string, keys map[string]sortKey[T], id func(T) string) *repository.Page[T] {
	opts = opts.Normalized(allowed)
	key, ok := keys[opts.SortBy]
	if !ok {
		key = keys[repository.DefaultSortField]
	}
	desc := opts.Desc()
	sort.SliceStable(items, func(i, j int) bool {
		c := key(items[i], items[j])
		if c == 0 {
			c = byString(id)(items[i], items[j])
		}
		if desc {
			return c > 0
		}
		return c < 0
	})

	total := len(items)
	start := opts.Offset()
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	return repository.NewPage(items[start:end], total, opts)
}
