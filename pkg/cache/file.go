package cache

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FileCache stores each entry as a file under dir. A file holds a one-line
// header with the expiry as Unix seconds (0 for none) followed by the raw
// artifact bytes, so cached PNGs are not re-encoded.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache in the given directory.
// The directory will be created if it doesn't exist.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// Dir returns the cache root directory.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value from the cache. Corrupt or expired entries are
// removed and reported as misses.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	header, data, ok := bytes.Cut(raw, []byte("\n"))
	if !ok {
		_ = os.Remove(path)
		return nil, false, nil
	}
	expires, err := strconv.ParseInt(string(header), 10, 64)
	if err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if expires > 0 && time.Now().Unix() >= expires {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value in the cache. The write goes through a temporary file
// so concurrent readers never observe a partial entry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var expires int64
	if ttl > 0 {
		expires = time.Now().Add(ttl).Unix()
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	buf := strconv.AppendInt(nil, expires, 10)
	buf = append(buf, '\n')
	if _, err := tmp.Write(append(buf, data...)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Delete removes a value from the cache.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry and the shard directories, returning the
// number of entries removed. The root directory itself is kept.
func (c *FileCache) Clear() (int, error) {
	shards, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, shard := range shards {
		p := filepath.Join(c.dir, shard.Name())
		if !shard.IsDir() {
			if os.Remove(p) == nil {
				count++
			}
			continue
		}
		_ = filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				count++
			}
			return nil
		})
		if err := os.RemoveAll(p); err != nil {
			return count, err
		}
	}
	return count, nil
}

// Close does nothing for file cache.
func (c *FileCache) Close() error {
	return nil
}

// path shards entries by the first two hex characters of the key hash.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:])
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
