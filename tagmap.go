package tagmap

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// TagMap associates keys with ordered lists of tags and allows lookup based
// on tag matching rules.
//
// The Entries field is the backing map and is exposed on purpose: the host
// owns insertion and removal, and may manipulate it directly. The map must
// not be mutated while a sequence returned by Matching or MatchingEntries is
// being consumed.
type TagMap[T cmp.Ordered, TAG comparable] struct {

	// Entries is the backing map from keys to their tag lists.
	Entries map[T][]TAG
}

// New creates an empty TagMap.
func New[T cmp.Ordered, TAG comparable]() *TagMap[T, TAG] {
	return &TagMap[T, TAG]{Entries: make(map[T][]TAG)}
}

// Set associates a key with its tags, replacing any previous association.
// The tag order is preserved. A key may have no tags at all.
func (m *TagMap[T, TAG]) Set(key T, tags ...TAG) {
	m.Entries[key] = tags
}

// Delete removes a key and its tags.
func (m *TagMap[T, TAG]) Delete(key T) {
	delete(m.Entries, key)
}

// Len returns the number of stored keys.
func (m *TagMap[T, TAG]) Len() int {
	return len(m.Entries)
}

func (m *TagMap[T, TAG]) sortedKeys() []T {
	return slices.Sorted(maps.Keys(m.Entries))
}

// Matching returns a lazy sequence of the keys whose tags satisfy the rule,
// in sorted key order. Each call starts a fresh single-pass sequence. The
// sequence evaluates the rule entry by entry as it is consumed, so breaking
// out early performs no work beyond the entries already visited, and no
// result buffer is allocated.
func (m *TagMap[T, TAG]) Matching(rule *Rule[TAG]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, k := range m.sortedKeys() {
			if !rule.Match(m.Entries[k]) {
				continue
			}

			if !yield(k) {
				return
			}
		}
	}
}

// MatchingEntries is like Matching but also yields the stored tag list of
// each matching key. The yielded slice is the one held by the map, not a
// copy, and must be treated as read-only.
func (m *TagMap[T, TAG]) MatchingEntries(rule *Rule[TAG]) iter.Seq2[T, []TAG] {
	return func(yield func(T, []TAG) bool) {
		for _, k := range m.sortedKeys() {
			tags := m.Entries[k]
			if !rule.Match(tags) {
				continue
			}

			if !yield(k, tags) {
				return
			}
		}
	}
}
