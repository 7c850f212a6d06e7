package preview

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const indexFile = ".cache_index.json"

// CacheEntry 缓存条目
type CacheEntry struct {
	Key        string
	FilePath   string
	Size       int64
	AccessTime time.Time
	CreateTime time.Time
	Checksum   string
}

// CacheStats 缓存统计信息
type CacheStats struct {
	TotalFiles   int
	TotalSize    int64
	MaxSize      int64
	UsagePercent float64
}

// Cache keeps downloaded preview images on disk, evicting the least
// recently used entries once the total size exceeds maxSize.
type Cache struct {
	dir     string
	maxSize int64

	mu    sync.Mutex
	index map[string]*CacheEntry
}

// NewCache opens (or creates) a cache rooted at dir.
func NewCache(dir string, maxSize int64) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &CacheError{Operation: "create", Path: dir, Err: err}
	}

	c := &Cache{
		dir:     dir,
		maxSize: maxSize,
		index:   make(map[string]*CacheEntry),
	}
	if err := c.loadIndex(); err != nil {
		logrus.WithError(err).Warn("Discarding unreadable preview cache index")
		c.index = make(map[string]*CacheEntry)
	}
	return c, nil
}

// Get returns the cached file for key.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index[key]
	if !ok {
		return "", false
	}
	if _, err := os.Stat(entry.FilePath); err != nil {
		delete(c.index, key)
		return "", false
	}

	entry.AccessTime = time.Now()
	return entry.FilePath, true
}

// Put stores the content of r under key and returns the cached file path.
func (c *Cache) Put(key string, r io.Reader, ext string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hash := md5.Sum([]byte(key))
	cachePath := filepath.Join(c.dir, fmt.Sprintf("%x%s", hash, ext))

	f, err := os.Create(cachePath)
	if err != nil {
		return "", &CacheError{Operation: "put", Path: cachePath, Err: err}
	}

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(f, hasher), r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(cachePath)
		return "", &CacheError{Operation: "put", Path: cachePath, Err: err}
	}

	now := time.Now()
	c.index[key] = &CacheEntry{
		Key:        key,
		FilePath:   cachePath,
		Size:       size,
		AccessTime: now,
		CreateTime: now,
		Checksum:   fmt.Sprintf("%x", hasher.Sum(nil)),
	}

	c.evict(key)
	if err := c.saveIndex(); err != nil {
		logrus.WithError(err).Warn("Failed to save preview cache index")
	}
	return cachePath, nil
}

// Delete drops key from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.index[key]; ok {
		os.Remove(entry.FilePath)
		delete(c.index, key)
		_ = c.saveIndex()
	}
}

// Size returns the total size of cached files.
func (c *Cache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSize()
}

// Stats summarises the cache.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := c.totalSize()
	stats := CacheStats{TotalFiles: len(c.index), TotalSize: total, MaxSize: c.maxSize}
	if c.maxSize > 0 {
		stats.UsagePercent = float64(total) / float64(c.maxSize) * 100
	}
	return stats
}

// Verify checks the stored checksum of key against the file on disk.
func (c *Cache) Verify(key string) (bool, error) {
	c.mu.Lock()
	entry, ok := c.index[key]
	c.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("cache entry not found for key: %s", key)
	}

	f, err := os.Open(entry.FilePath)
	if err != nil {
		return false, err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return false, err
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)) == entry.Checksum, nil
}

// evict removes least recently used entries until the cache fits. The entry
// just written is kept even when it alone exceeds the limit.
func (c *Cache) evict(keep string) {
	current := c.totalSize()
	if c.maxSize <= 0 || current <= c.maxSize {
		return
	}

	entries := make([]*CacheEntry, 0, len(c.index))
	for _, entry := range c.index {
		if entry.Key != keep {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].AccessTime.Before(entries[j].AccessTime)
	})

	for _, entry := range entries {
		if current <= c.maxSize {
			break
		}
		if err := os.Remove(entry.FilePath); err == nil || os.IsNotExist(err) {
			current -= entry.Size
			delete(c.index, entry.Key)
		}
	}
}

func (c *Cache) totalSize() int64 {
	var total int64
	for _, entry := range c.index {
		total += entry.Size
	}
	return total
}

func (c *Cache) saveIndex() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, indexFile), data, 0644)
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	index := make(map[string]*CacheEntry)
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	for key, entry := range index {
		if _, err := os.Stat(entry.FilePath); err != nil {
			delete(index, key)
		}
	}
	c.index = index
	return nil
}
