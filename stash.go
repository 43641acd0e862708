package tagmap

import (
	"errors"
	"sort"
)

// Entry represents a key-tag association.
type Entry struct {

	// Key that the tag belongs to.
	Key string

	// Tag associated with the key.
	Tag string

	// TagIndex preserves the position of the tag in the key's tag list.
	TagIndex int
}

// Storage implementations store key-tag associations.
type Storage interface {

	// Get returns all entries whose key is listed in the arguments.
	Get([]string) ([]*Entry, error)

	// Set stores a key-tag association. Implementations must make sure that the key-tag combinations
	// are unique.
	Set(*Entry) error

	// Remove deletes a single key-tag association.
	Remove(*Entry) error

	// Drop deletes all associations of the provided key.
	Drop(string) error

	// Close releases any resources taken by the storage implementation.
	Close()
}

// Loader when implemented by a storage, can enumerate every stored entry.
type Loader interface {
	All() ([]*Entry, error)
}

// StorageOptions are used by the default storage implementation.
type StorageOptions struct {

	// DriverName specifies which data base driver to use. Currently supported: postgres, sqlite3. The
	// default value is sqlite3.
	DriverName string

	// DataSourceName specifies the data source for the storage. In case of postgresql, it is the postgresql
	// connection string, while in case of sqlite3, it is a path to a new or existing file. When not
	// specified and the driver is sqlite3, ./data.sqlite will be used.
	//
	// When PostgreSQL is used, please refer to the driver implementation's documentation for configuration
	// details: https://github.com/lib/pq.
	DataSourceName string
}

// CacheOptions are used by the default cache implementation.
type CacheOptions struct {

	// CacheSize defines the maximum memory usage of the cache. Defaults to 1G.
	CacheSize int

	// ExpectedItemSize provides a hint for the cache about the expected median size of the stored tag
	// lists.
	//
	// This option exists only for optimization, there is no good rule of thumb. Too high values will result
	// in worse memory utilization, while too low values may affect the individual lookup performance.
	// Generally, it is better to err for the smaller values.
	ExpectedItemSize int
}

// Options are used to initialize a stash.
type Options struct {

	// Custom storage implementation. By default, a builtin storage is used.
	Storage Storage

	// Custom cache implementation. By default, a builtin cache is used.
	Cache Storage

	// StorageOptions define options for the default persistent storage implementation when not replaced by
	// a custom storage.
	StorageOptions StorageOptions

	// CacheOptions define options for the default cache implementation when not replaced by a custom
	// cache.
	CacheOptions CacheOptions
}

type entrySort struct {
	entries []*Entry
}

// Stash persists key-tag associations and materializes TagMap instances for
// rule queries.
type Stash struct {
	cache, storage Storage
}

// ErrNotSupported is returned when a feature is not supported by the current implementation. E.g. the storage
// doesn't support enumerating all entries.
var ErrNotSupported = errors.New("not supported")

func (s entrySort) Len() int      { return len(s.entries) }
func (s entrySort) Swap(i, j int) { s.entries[i], s.entries[j] = s.entries[j], s.entries[i] }

func (s entrySort) Less(i, j int) bool {
	left, right := s.entries[i], s.entries[j]

	if left.Key == right.Key {
		return left.TagIndex < right.TagIndex
	}

	return left.Key < right.Key
}

// NewStash creates and initializes a stash instance.
func NewStash(o Options) (*Stash, error) {
	if o.Storage == nil {
		s, err := newStorage(o.StorageOptions)
		if err != nil {
			return nil, err
		}

		o.Storage = s
	}

	if o.Cache == nil {
		o.Cache = newCache(o.CacheOptions)
	}

	return &Stash{
		storage: o.Storage,
		cache:   o.Cache,
	}, nil
}

func mapTags(e []*Entry) []string {
	tags := make([]string, 0, len(e))
	for _, ei := range e {
		tags = append(tags, ei.Tag)
	}

	return tags
}

// GetTags returns the tags associated with a key, in the order they were
// set. It reads the cache first, and falls back to the persistent storage
// only on a cache miss, populating the cache with the result.
func (s *Stash) GetTags(key string) ([]string, error) {
	entries, err := s.cache.Get([]string{key})
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		entries, err = s.storage.Get([]string{key})
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if err := s.cache.Set(e); err != nil {
				return nil, err
			}
		}
	}

	sort.Sort(entrySort{entries})
	return mapTags(entries), nil
}

// Set stores tags associated with a key. The order of the tags is preserved
// and reproduced by GetTags and TagMap.
func (s *Stash) Set(key string, tags ...string) error {
	for i, ti := range tags {
		e := &Entry{
			Key:      key,
			Tag:      ti,
			TagIndex: i,
		}

		if err := s.storage.Set(e); err != nil {
			return err
		}

		if err := s.cache.Set(e); err != nil {
			return err
		}
	}

	return nil
}

// Remove deletes a key-tag association.
func (s *Stash) Remove(key, tag string) error {
	e := &Entry{Key: key, Tag: tag}

	if err := s.cache.Remove(e); err != nil {
		return err
	}

	if err := s.storage.Remove(e); err != nil {
		return err
	}

	return nil
}

// Drop deletes a key and all its tags.
func (s *Stash) Drop(key string) error {
	if err := s.cache.Drop(key); err != nil {
		return err
	}

	if err := s.storage.Drop(key); err != nil {
		return err
	}

	return nil
}

// TagMap loads every stored association from the persistent storage and
// returns it as an in-memory TagMap ready for rule queries. It returns
// ErrNotSupported if the storage implementation cannot enumerate its
// entries.
func (s *Stash) TagMap() (*TagMap[string, string], error) {
	l, ok := s.storage.(Loader)
	if !ok {
		return nil, ErrNotSupported
	}

	entries, err := l.All()
	if err != nil {
		return nil, err
	}

	sort.Sort(entrySort{entries})

	m := New[string, string]()
	for _, e := range entries {
		m.Entries[e.Key] = append(m.Entries[e.Key], e.Tag)
	}

	return m, nil
}

// Matching loads the stored associations and returns the keys whose tags
// satisfy the rule, in sorted key order. It is an eager convenience around
// TagMap().Matching(rule) for hosts that want the full result anyway.
func (s *Stash) Matching(rule *Rule[string]) ([]string, error) {
	m, err := s.TagMap()
	if err != nil {
		return nil, err
	}

	var keys []string
	for k := range m.Matching(rule) {
		keys = append(keys, k)
	}

	return keys, nil
}

// Close releases all resources.
func (s *Stash) Close() {
	s.cache.Close()
	s.storage.Close()
}
