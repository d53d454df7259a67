package board

import "sort"

// sibling is implemented by pointers to the four entity types so the
// position helpers below can be shared across levels.
type sibling[T any] interface {
	*T
	key() string
	position() *int
}

func (b *Board) key() string   { return b.ID }
func (c *Column) key() string  { return c.ID }
func (t *Task) key() string    { return t.ID }
func (s *Subtask) key() string { return s.ID }

func (b *Board) position() *int   { return &b.Index }
func (c *Column) position() *int  { return &c.Index }
func (t *Task) position() *int    { return &t.Index }
func (s *Subtask) position() *int { return &s.Index }

func find[T any, P sibling[T]](items []T, id string) int {
	for i := range items {
		if P(&items[i]).key() == id {
			return i
		}
	}
	return -1
}

func sortByIndex[T any, P sibling[T]](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return *P(&items[i]).position() < *P(&items[j]).position()
	})
}

// insert places item at position at, shifting every sibling at or after it
// up by one. at must be within 1..len(items)+1.
func insert[T any, P sibling[T]](items []T, item T, at int) ([]T, bool) {
	if at < 1 || at > len(items)+1 {
		return items, false
	}
	for i := range items {
		if p := P(&items[i]).position(); *p >= at {
			*p++
		}
	}
	*P(&item).position() = at
	items = append(items, item)
	sortByIndex[T, P](items)
	return items, true
}

// remove deletes the sibling with the given id and closes the gap it leaves.
func remove[T any, P sibling[T]](items []T, id string) ([]T, T, bool) {
	var zero T
	i := find[T, P](items, id)
	if i < 0 {
		return items, zero, false
	}
	removed := items[i]
	at := *P(&removed).position()
	items = append(items[:i:i], items[i+1:]...)
	for j := range items {
		if p := P(&items[j]).position(); *p > at {
			*p--
		}
	}
	return items, removed, true
}

// move relocates the sibling at slice position i from index from to the
// drop slot to. Moving earlier lands on to; moving later lands on to-1,
// because taking the item out of from pulls the slot down by one.
func move[T any, P sibling[T]](items []T, i, from, to int) bool {
	if to < 1 || to > len(items)+1 {
		return false
	}
	moved := P(&items[i]).position()
	switch {
	case from > to:
		for j := range items {
			if j == i {
				continue
			}
			if p := P(&items[j]).position(); *p >= to && *p < from {
				*p++
			}
		}
		*moved = to
	case from < to:
		for j := range items {
			if j == i {
				continue
			}
			if p := P(&items[j]).position(); *p > from && *p < to {
				*p--
			}
		}
		*moved = to - 1
	}
	sortByIndex[T, P](items)
	return true
}
