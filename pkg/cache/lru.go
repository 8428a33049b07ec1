// Package cache provides a small generic recency-order tracker built on
// container/list. It does not implement any eviction policy itself — it
// only answers "what order were these things last touched in" — which is
// exactly what a TLB's recency diagnostics need without duplicating the
// TLB's own victim-selection bookkeeping.
package cache

import (
	"container/list"
	"sync"
)

// LRUManager tracks the touch order of opaque values. Callers keep the
// *list.Element returned by PushFront to later MoveToFront or Remove it in
// O(1).
type LRUManager struct {
	lruList *list.List
	mu      sync.Mutex
}

func NewLRUManager() *LRUManager {
	return &LRUManager{
		lruList: list.New(),
	}
}

func (l *LRUManager) MoveToFront(elem *list.Element) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lruList.MoveToFront(elem)
}

func (l *LRUManager) Remove(elem *list.Element) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lruList.Remove(elem)
}

func (l *LRUManager) PushFront(value interface{}) *list.Element {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lruList.PushFront(value)
}

func (l *LRUManager) Back() *list.Element {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lruList.Back()
}

func (l *LRUManager) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lruList.Len()
}

// Values walks the list front-to-back (most- to least-recently touched)
// and returns the stored values in that order.
func (l *LRUManager) Values() []interface{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]interface{}, 0, l.lruList.Len())
	for e := l.lruList.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value)
	}
	return out
}
