// Package embedded persists per-file parse results in BadgerDB so repeated
// runs over an unchanged source tree skip tree-sitter entirely.
package embedded

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/zeebo/xxh3"

	"github.com/imyousuf/javanav/internal/parser"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixParse = "pr:"
	keyVersion  = "meta:version"
)

// FormatVersion is bumped whenever the stored ParseResult shape or the
// parser's extraction rules change; a mismatch drops every entry on open.
const FormatVersion = "3"

// entry is the stored value for one source file.
type entry struct {
	Hash   string              `json:"hash"`
	Result *parser.ParseResult `json:"result"`
}

// Stats summarises the cache contents.
type Stats struct {
	Entries int   `json:"entries"`
	Bytes   int64 `json:"bytes"`
}

// Cache implements a content-addressed parse cache using BadgerDB.
type Cache struct {
	db *badger.DB
}

// Open opens (or creates) a parse cache at dbPath.
func Open(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(dbPath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	c := &Cache{db: db}
	if err := c.checkVersion(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// OpenInMemory opens a cache that lives only as long as the process.
func OpenInMemory() (*Cache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory badger db: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) checkVersion() error {
	var stored string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyVersion))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stored = string(val)
			return nil
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("read cache version: %w", err)
	}
	if stored == FormatVersion {
		return nil
	}
	if stored != "" {
		if err := c.db.DropAll(); err != nil {
			return fmt.Errorf("drop stale cache: %w", err)
		}
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyVersion), []byte(FormatVersion))
	})
}

// Hash returns the content hash used to validate cache entries.
func Hash(content []byte) string {
	sum := xxh3.Hash128(content).Bytes()
	return hex.EncodeToString(sum[:])
}

// HashWith is Hash over content parsed under the given parser settings.
// An empty settings string yields Hash(content).
func HashWith(settings string, content []byte) string {
	if settings == "" {
		return Hash(content)
	}
	h := xxh3.New()
	h.WriteString(settings)
	h.Write([]byte{0})
	h.Write(content)
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:])
}

func parseKey(path string) []byte { return []byte(prefixParse + path) }

// Get returns the cached result for path when it was stored under hash.
// A stale or missing entry returns (nil, false, nil).
func (c *Cache) Get(path, hash string) (*parser.ParseResult, bool, error) {
	var e entry
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(parseKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache entry %s: %w", path, err)
	}
	if e.Hash != hash || e.Result == nil {
		return nil, false, nil
	}
	return e.Result, true, nil
}

// Put stores result for path under hash, replacing any previous entry.
func (c *Cache) Put(path, hash string, result *parser.ParseResult) error {
	data, err := json.Marshal(entry{Hash: hash, Result: result})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(parseKey(path), data)
	})
}

// Delete removes the entry for path, if any.
func (c *Cache) Delete(path string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(parseKey(path))
	})
}

// Paths returns every cached file path in sorted order.
func (c *Cache) Paths() ([]string, error) {
	var paths []string
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixParse)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			paths = append(paths, string(it.Item().Key()[len(prefixParse):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// Prune removes entries whose path is not in keep and returns how many
// were removed.
func (c *Cache) Prune(keep []string) (int, error) {
	live := make(map[string]bool, len(keep))
	for _, p := range keep {
		live[p] = true
	}
	paths, err := c.Paths()
	if err != nil {
		return 0, err
	}
	var stale [][]byte
	for _, p := range paths {
		if !live[p] {
			stale = append(stale, parseKey(p))
		}
	}

	// Delete in batches to avoid transaction size limits.
	const batchSize = 1000
	for i := 0; i < len(stale); i += batchSize {
		batch := stale[i:min(i+batchSize, len(stale))]
		err := c.db.Update(func(txn *badger.Txn) error {
			for _, key := range batch {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("prune cache: %w", err)
		}
	}
	return len(stale), nil
}

// Stats counts the cached entries and their stored size.
func (c *Cache) Stats() (Stats, error) {
	var stats Stats
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixParse)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			stats.Entries++
			stats.Bytes += it.Item().ValueSize()
		}
		return nil
	})
	return stats, err
}

// Export writes every cached result to w, one JSON document per line, in
// path order.
func (c *Cache) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	return c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = []byte(prefixParse)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			var e entry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			})
			if err != nil || e.Result == nil {
				continue // skip unreadable entries
			}
			if err := enc.Encode(e.Result); err != nil {
				return fmt.Errorf("encode %s: %w", e.Result.FilePath, err)
			}
		}
		return nil
	})
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if err := c.db.DropPrefix([]byte(prefixParse)); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
