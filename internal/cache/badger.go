package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/quantmind-br/offsync/internal/domain"
)

// maxAliasDepth bounds alias resolution in case of a corrupted chain
const maxAliasDepth = 8

// BadgerCache is a capture store backed by BadgerDB.
//
// Resources live under capture:<hash> as zstd-compressed JSON. An alias
// is a separate alias:<hash> record whose value is the primary URL, so an
// alias never duplicates the body.
type BadgerCache struct {
	db   *badger.DB
	done chan struct{}
	once sync.Once
}

// NewBadgerCache creates a new BadgerDB cache
func NewBadgerCache(opts Options) (*BadgerCache, error) {
	var badgerOpts badger.Options

	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Directory == "" {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			opts.Directory = filepath.Join(homeDir, ".offsync", "data", "captures")
		}

		if err := os.MkdirAll(opts.Directory, 0755); err != nil {
			return nil, err
		}

		badgerOpts = badger.DefaultOptions(opts.Directory)
	}

	// Disable logging unless explicitly enabled
	if !opts.Logger {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	c := &BadgerCache{db: db, done: make(chan struct{})}
	if opts.GCInterval > 0 && !opts.InMemory {
		go c.runGC(opts.GCInterval)
	}
	return c, nil
}

func (c *BadgerCache) runGC(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			_ = c.db.RunValueLogGC(0.5)
		}
	}
}

// Put stores a resource under its URL, replacing any previous capture
func (c *BadgerCache) Put(ctx context.Context, res *domain.Resource) error {
	if res == nil || res.URL == "" {
		return fmt.Errorf("put: %w", domain.ErrInvalidURL)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := encodeEntry(entryFromResource(res))
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		// A direct capture supersedes an older alias for the same URL
		if err := txn.Delete([]byte(AliasKey(res.URL))); err != nil {
			return err
		}
		return txn.Set([]byte(CaptureKey(res.URL)), value)
	})
}

// Get returns the resource for url, following alias links
func (c *BadgerCache) Get(ctx context.Context, url string) (*domain.Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var res *domain.Resource
	err := c.db.View(func(txn *badger.Txn) error {
		primary, err := resolve(txn, url)
		if err != nil {
			return err
		}

		item, err := txn.Get([]byte(CaptureKey(primary)))
		if err != nil {
			return err
		}
		data, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		e, err := decodeEntry(data)
		if err != nil {
			return err
		}
		res = e.resource()
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}
	return res, nil
}

// resolve maps url to the primary URL whose capture record holds its body
func resolve(txn *badger.Txn, url string) (string, error) {
	current := url
	for i := 0; i < maxAliasDepth; i++ {
		if _, err := txn.Get([]byte(CaptureKey(current))); err == nil {
			return current, nil
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return "", err
		}

		item, err := txn.Get([]byte(AliasKey(current)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return "", domain.ErrCacheMiss
			}
			return "", err
		}
		target, err := item.ValueCopy(nil)
		if err != nil {
			return "", err
		}
		current = string(target)
	}
	return "", fmt.Errorf("alias chain for %s exceeds %d links: %w", url, maxAliasDepth, domain.ErrCacheMiss)
}

// Link makes alias resolve to the resource stored for url.
// url must already be stored, directly or through another alias.
func (c *BadgerCache) Link(ctx context.Context, url, alias string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if SameURL(url, alias) {
		return nil
	}

	return c.db.Update(func(txn *badger.Txn) error {
		primary, err := resolve(txn, url)
		if err != nil {
			return fmt.Errorf("link %s -> %s: %w", alias, url, err)
		}
		if SameURL(primary, alias) {
			return nil
		}
		if err := txn.Delete([]byte(CaptureKey(alias))); err != nil {
			return err
		}
		return txn.Set([]byte(AliasKey(alias)), []byte(primary))
	})
}

// Has reports whether url (or an alias of it) is stored
func (c *BadgerCache) Has(ctx context.Context, url string) bool {
	err := c.db.View(func(txn *badger.Txn) error {
		_, err := resolve(txn, url)
		return err
	})
	return err == nil
}

// Delete removes the capture or alias record for url
func (c *BadgerCache) Delete(ctx context.Context, url string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(CaptureKey(url))); err != nil {
			return err
		}
		return txn.Delete([]byte(AliasKey(url)))
	})
}

// Each calls fn for every captured resource in key order
func (c *BadgerCache) Each(ctx context.Context, fn func(*domain.Resource) error) error {
	return c.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(PrefixCapture + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			e, err := decodeEntry(data)
			if err != nil {
				return err
			}
			if err := fn(e.resource()); err != nil {
				return err
			}
		}
		return nil
	})
}

// URLs returns the primary URL of every stored resource
func (c *BadgerCache) URLs(ctx context.Context) ([]string, error) {
	var urls []string
	err := c.Each(ctx, func(res *domain.Resource) error {
		urls = append(urls, res.URL)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

// GetMeta returns a metadata value, or domain.ErrCacheMiss
func (c *BadgerCache) GetMeta(name string) ([]byte, error) {
	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(MetadataKey(name)))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, domain.ErrCacheMiss
	}
	return value, err
}

// SetMeta stores a metadata value
func (c *BadgerCache) SetMeta(name string, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(MetadataKey(name)), value)
	})
}

// Close releases cache resources
func (c *BadgerCache) Close() error {
	c.once.Do(func() { close(c.done) })
	return c.db.Close()
}

// Clear removes all entries from the cache
func (c *BadgerCache) Clear() error {
	return c.db.DropAll()
}

func (c *BadgerCache) countPrefix(prefix string) int64 {
	var count int64
	_ = c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix + ":")
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			count++
		}
		return nil
	})
	return count
}

// Size returns the number of captured resources, aliases excluded
func (c *BadgerCache) Size() int64 {
	return c.countPrefix(PrefixCapture)
}

// Stats returns cache statistics
func (c *BadgerCache) Stats() map[string]interface{} {
	lsm, vlog := c.db.Size()
	return map[string]interface{}{
		"entries":   c.Size(),
		"aliases":   c.countPrefix(PrefixAlias),
		"lsm_size":  lsm,
		"vlog_size": vlog,
	}
}
