package tagmap

import (
	"errors"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/aryszka/forget"
	"github.com/aryszka/keyval"
)

const forEver = time.Duration((^uint64(0)) >> 1)

type cache struct {
	forget *forget.Cache
	mx     *sync.Mutex
}

var (
	// ErrDamagedCacheData is returned when the cache detects damaged data.
	ErrDamagedCacheData = errors.New("damaged cache data")

	// ErrFailedToCacheEntry is returned when caching an entry failed, e.g. due to oversize.
	ErrFailedToCacheEntry = errors.New("failed to cache entry")
)

func newCache(o CacheOptions) *cache {
	if o.ExpectedItemSize < 64 {
		o.ExpectedItemSize = 64
	}

	return &cache{
		forget: forget.New(forget.Options{
			CacheSize: o.CacheSize,
			ChunkSize: o.ExpectedItemSize,
		}),
		mx: &sync.Mutex{},
	}
}

func readAll(r io.Reader, key string) ([]*Entry, error) {
	var entries []*Entry
	kvr := keyval.NewEntryReader(r)
	for {
		e, err := kvr.ReadEntry()
		if err != nil && err != io.EOF {
			return nil, err
		}

		if e == nil {
			break
		}

		tagIndex, err := strconv.Atoi(e.Val)
		if err != nil {
			return nil, err
		}

		if len(e.Key) != 1 {
			return nil, ErrDamagedCacheData
		}

		entries = append(entries, &Entry{
			Key:      key,
			Tag:      e.Key[0],
			TagIndex: tagIndex,
		})

		if err == io.EOF {
			break
		}
	}

	return entries, nil
}

func writeAll(w io.Writer, e []*Entry) error {
	kvw := keyval.NewEntryWriter(w)
	for _, ei := range e {
		err := kvw.WriteEntry(&keyval.Entry{
			Key: []string{ei.Tag},
			Val: strconv.Itoa(ei.TagIndex),
		})

		if err != nil {
			return err
		}
	}

	return nil
}

func (c *cache) getOne(key string) ([]*Entry, error) {
	r, ok := c.forget.Get(key)
	if !ok {
		return nil, nil
	}

	defer r.Close()
	return readAll(r, key)
}

func (c *cache) Get(keys []string) ([]*Entry, error) {
	var entries []*Entry
	for _, k := range keys {
		keyEntries, err := c.getOne(k)
		if err != nil {
			return nil, err
		}

		entries = append(entries, keyEntries...)
	}

	return entries, nil
}

func (c *cache) store(key string, entries []*Entry) error {
	w, ok := c.forget.Set(key, forEver)
	if !ok {
		return ErrFailedToCacheEntry
	}

	defer w.Close()
	return writeAll(w, entries)
}

func (c *cache) Set(e *Entry) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	entries, err := c.getOne(e.Key)
	if err != nil {
		return err
	}

	var exists bool
	for _, ei := range entries {
		if ei.Tag == e.Tag {
			ei.TagIndex = e.TagIndex
			exists = true
			break
		}
	}

	if !exists {
		entries = append(entries, e)
	}

	return c.store(e.Key, entries)
}

func (c *cache) Remove(e *Entry) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	entries, err := c.getOne(e.Key)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	next := make([]*Entry, 0, len(entries))
	for _, ei := range entries {
		if ei.Tag != e.Tag {
			next = append(next, ei)
		}
	}

	return c.store(e.Key, next)
}

// Drop stores an empty tag list for the key. An empty cached list reads back
// as a miss, so subsequent lookups fall through to the persistent storage.
func (c *cache) Drop(key string) error {
	c.mx.Lock()
	defer c.mx.Unlock()

	return c.store(key, nil)
}

func (c *cache) Close() {
	c.forget.Close()
}
