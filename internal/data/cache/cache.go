package cache

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"github.com/penwyp/remi-timeline/internal/core/constants"
	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/util"
)

type CacheMissReason int

const (
	MissReasonNone CacheMissReason = iota
	MissReasonError
	MissReasonInode
	MissReasonSize
	MissReasonModTime
	MissReasonFingerprint
	MissReasonNoFingerprint
	MissReasonNotFound
)

func (r CacheMissReason) String() string {
	switch r {
	case MissReasonNone:
		return "hit"
	case MissReasonError:
		return "error"
	case MissReasonInode:
		return "inode"
	case MissReasonSize:
		return "size"
	case MissReasonModTime:
		return "modtime"
	case MissReasonFingerprint:
		return "fingerprint"
	case MissReasonNoFingerprint:
		return "no-fingerprint"
	case MissReasonNotFound:
		return "not-found"
	}
	return "unknown"
}

// Entry is the cached parse of one export file together with the file
// identity it was taken from.
type Entry struct {
	FilePath    string       `json:"filePath"`
	Inode       uint64       `json:"inode"`
	Size        int64        `json:"size"`
	ModTime     int64        `json:"modTime"`
	Fingerprint string       `json:"fingerprint,omitempty"`
	Posts       []model.Post `json:"posts"`
}

type CacheResult struct {
	Posts      []model.Post
	Found      bool
	MissReason CacheMissReason
}

// Cache stores parsed posts per source file.
type Cache interface {
	Get(path string) CacheResult
	Set(path string, posts []model.Post) error
	Delete(path string) error
	Clear() error
}

// FileCache keeps entries on disk through diskv, with diskv's in-memory
// read cache in front.
type FileCache struct {
	mu sync.Mutex
	d  *diskv.Diskv
	// now is swapped in tests to exercise the fingerprint skip.
	now func() time.Time
}

// NewFileCache opens (creating) a cache rooted at baseDir.
func NewFileCache(baseDir string) (*FileCache, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	d := diskv.New(diskv.Options{
		BasePath: baseDir,
		Transform: func(key string) []string {
			return []string{key[:2]}
		},
		CacheSizeMax: 8 * 1024 * 1024,
	})
	return &FileCache{d: d, now: time.Now}, nil
}

// cacheKey maps a source path to a filesystem-safe key.
func cacheKey(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

// Get returns the cached posts for path if the file is unchanged.
func (c *FileCache) Get(path string) CacheResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(path)
	if !c.d.Has(key) {
		return CacheResult{MissReason: MissReasonNotFound}
	}
	raw, err := c.d.Read(key)
	if err != nil {
		return CacheResult{MissReason: MissReasonError}
	}
	var entry Entry
	if err := sonic.Unmarshal(raw, &entry); err != nil {
		util.LogDebugf("Dropping unreadable cache entry for %s: %v", path, err)
		_ = c.d.Erase(key)
		return CacheResult{MissReason: MissReasonError}
	}

	if reason := c.validate(path, &entry); reason != MissReasonNone {
		return CacheResult{MissReason: reason}
	}
	return CacheResult{Posts: entry.Posts, Found: true}
}

// validate compares the recorded identity with the file on disk. Files
// untouched for longer than the skip age are trusted without hashing.
func (c *FileCache) validate(path string, entry *Entry) CacheMissReason {
	current, err := util.GetFileInfo(path)
	if err != nil {
		util.LogDebugf("Cache validation failed for %s: %v", path, err)
		return MissReasonError
	}

	switch {
	case current.Inode != entry.Inode:
		util.LogDebugf("Cache invalidated for %s: inode %d -> %d", path, entry.Inode, current.Inode)
		return MissReasonInode
	case current.Size != entry.Size:
		util.LogDebugf("Cache invalidated for %s: size %d -> %d", path, entry.Size, current.Size)
		return MissReasonSize
	case current.ModTime != entry.ModTime:
		util.LogDebugf("Cache invalidated for %s: modtime changed", path)
		return MissReasonModTime
	}

	if c.now().Sub(time.Unix(0, current.ModTime)) > constants.FingerprintSkipAge {
		return MissReasonNone
	}
	if entry.Fingerprint == "" {
		return MissReasonNoFingerprint
	}
	fp, err := util.CalculateFileFingerprint(path)
	if err != nil {
		return MissReasonNoFingerprint
	}
	if fp != entry.Fingerprint {
		util.LogDebugf("Cache invalidated for %s: fingerprint %s -> %s", path, entry.Fingerprint, fp)
		return MissReasonFingerprint
	}
	return MissReasonNone
}

// Set records posts for path along with the file's current identity.
func (c *FileCache) Set(path string, posts []model.Post) error {
	info, err := util.GetFileInfo(path)
	if err != nil {
		return err
	}
	entry := Entry{
		FilePath: path,
		Inode:    info.Inode,
		Size:     info.Size,
		ModTime:  info.ModTime,
		Posts:    posts,
	}
	if fp, err := util.CalculateFileFingerprint(path); err == nil {
		entry.Fingerprint = fp
	}

	raw, err := sonic.Marshal(&entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.d.Write(cacheKey(path), raw)
}

// Delete removes the entry for path, if any.
func (c *FileCache) Delete(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(path)
	if !c.d.Has(key) {
		return nil
	}
	return c.d.Erase(key)
}

// Clear removes every entry.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.d.EraseAll()
}

// Len counts stored entries.
func (c *FileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for range c.d.Keys(nil) {
		n++
	}
	return n
}
