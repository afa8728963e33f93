package service

import (
	"sort"
	"sync"
)

// CategoryLocks hands out one mutex per category. Any "read max sort order,
// then insert or move" sequence runs while holding the target category's lock.
type CategoryLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewCategoryLocks() *CategoryLocks {
	return &CategoryLocks{locks: make(map[int64]*sync.Mutex)}
}

// Lock acquires the locks of every given category in ascending id order and
// returns a function releasing them. Duplicate ids are locked once.
func (l *CategoryLocks) Lock(categoryIDs ...int64) func() {
	ids := append([]int64(nil), categoryIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	held := make([]*sync.Mutex, 0, len(ids))
	for i, id := range ids {
		if i > 0 && ids[i-1] == id {
			continue
		}
		m := l.get(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (l *CategoryLocks) get(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
