package utils

import (
	"sort"
	"strings"
)

// Counted is one distinct key of a CountedList and how often it was seen.
type Counted[T any] struct {
	Key   string
	Obj   T
	Count int
}

/*

CountedList tallies occurrences of objects by a string key, e.g. how many
times each account shows up in the user's recent favourites.

The first object added for a key is the one kept for that key. Keys are
compared exactly, callers lowercase them in keyFn when needed.

*/
type CountedList[T any] struct {
	keyFn func(T) string
	byKey map[string]*Counted[T]
	order []string
}

func NewCountedList[T any](keyFn func(T) string) *CountedList[T] {
	return &CountedList[T]{
		keyFn: keyFn,
		byKey: make(map[string]*Counted[T]),
	}
}

// CountValues builds a CountedList from objs in one go.
func CountValues[T any](objs []T, keyFn func(T) string) *CountedList[T] {
	l := NewCountedList(keyFn)
	for _, o := range objs {
		l.Add(o)
	}
	return l
}

// Add increments the count of obj's key by one. Empty keys are ignored.
func (l *CountedList[T]) Add(obj T) {
	l.AddN(obj, 1)
}

func (l *CountedList[T]) AddN(obj T, n int) {
	key := l.keyFn(obj)
	if key == "" {
		return
	}
	if c, ok := l.byKey[key]; ok {
		c.Count += n
		return
	}
	l.byKey[key] = &Counted[T]{Key: key, Obj: obj, Count: n}
	l.order = append(l.order, key)
}

func (l *CountedList[T]) Count(key string) int {
	if c, ok := l.byKey[key]; ok {
		return c.Count
	}
	return 0
}

func (l *CountedList[T]) Len() int {
	return len(l.order)
}

// All returns every entry in first seen order.
func (l *CountedList[T]) All() []*Counted[T] {
	res := make([]*Counted[T], 0, len(l.order))
	for _, k := range l.order {
		res = append(res, l.byKey[k])
	}
	return res
}

// TopN returns the n most frequent entries, count descending, ties broken by
// key. n <= 0 returns every entry.
func (l *CountedList[T]) TopN(n int) []*Counted[T] {
	res := l.All()
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Key < res[j].Key
	})
	if n > 0 && n < len(res) {
		res = res[:n]
	}
	return res
}

// FilterByKeyword keeps entries whose key contains keyword, case insensitive.
func (l *CountedList[T]) FilterByKeyword(keyword string) *CountedList[T] {
	keyword = strings.ToLower(keyword)
	res := NewCountedList(l.keyFn)
	for _, c := range l.All() {
		if strings.Contains(strings.ToLower(c.Key), keyword) {
			res.AddN(c.Obj, c.Count)
		}
	}
	return res
}

// Filter keeps entries for which keep returns true.
func (l *CountedList[T]) Filter(keep func(*Counted[T]) bool) *CountedList[T] {
	res := NewCountedList(l.keyFn)
	for _, c := range l.All() {
		if keep(c) {
			res.AddN(c.Obj, c.Count)
		}
	}
	return res
}

// ToDict converts the tally to a key -> count lookup table.
func (l *CountedList[T]) ToDict() map[string]float64 {
	res := make(map[string]float64, len(l.order))
	for _, c := range l.byKey {
		res[c.Key] = float64(c.Count)
	}
	return res
}
