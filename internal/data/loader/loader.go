// Package loader turns a configured data location into the post feed.
package loader

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/data/cache"
	"github.com/penwyp/remi-timeline/internal/data/parser"
	"github.com/penwyp/remi-timeline/internal/data/scanner"
	"github.com/penwyp/remi-timeline/internal/data/store"
	"github.com/penwyp/remi-timeline/internal/util"
)

// PostSource produces the raw post set.
type PostSource interface {
	Posts(ctx context.Context) ([]model.Post, error)
	// Describe names the source for logs and UI headers.
	Describe() string
}

// DirSource reads JSONL exports below a directory, reusing cached parses
// of unchanged files.
type DirSource struct {
	dir    string
	scan   *scanner.FileScanner
	parser *parser.Parser
	cache  cache.Cache
}

// NewDirSource creates a directory source. c may be nil to disable the
// parse cache.
func NewDirSource(dir string, concurrency int, c cache.Cache) *DirSource {
	return &DirSource{
		dir:    dir,
		scan:   scanner.NewFileScanner(dir),
		parser: parser.NewParser(concurrency),
		cache:  c,
	}
}

func (s *DirSource) Describe() string { return s.dir }

// Invalidate forgets everything known about path so the next Posts call
// reparses it.
func (s *DirSource) Invalidate(path string) {
	s.parser.Forget(path)
	if s.cache != nil {
		if err := s.cache.Delete(path); err != nil {
			util.LogDebugf("Failed to drop cache entry for %s: %v", path, err)
		}
	}
}

// Posts scans the directory and returns the posts of every readable file.
// Unreadable files are logged and skipped.
func (s *DirSource) Posts(ctx context.Context) ([]model.Post, error) {
	files, err := s.scan.Scan()
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.dir, err)
	}

	var posts []model.Post
	var toParse []string
	hits := 0
	for _, f := range files {
		if s.cache != nil {
			if res := s.cache.Get(f); res.Found {
				posts = append(posts, res.Posts...)
				hits++
				continue
			}
		}
		// A cache miss means the file changed, so the parser memo is stale too.
		s.parser.Forget(f)
		toParse = append(toParse, f)
	}

	for res := range s.parser.ParseFiles(toParse) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if res.Error != nil {
			util.LogWarn("Skipping unreadable post file", util.F("file", res.File), util.F("error", res.Error.Error()))
			continue
		}
		posts = append(posts, res.Posts...)
		if s.cache != nil {
			if err := s.cache.Set(res.File, res.Posts); err != nil {
				util.LogDebugf("Failed to cache %s: %v", res.File, err)
			}
		}
	}

	util.LogDebug("Loaded posts from directory",
		util.F("files", len(files)), util.F("cacheHits", hits), util.F("posts", len(posts)))
	return posts, nil
}

// DBSource reads posts from SQLite.
type DBSource struct {
	path  string
	store *store.Store
}

// NewDBSource wraps an open store.
func NewDBSource(path string, st *store.Store) *DBSource {
	return &DBSource{path: path, store: st}
}

func (s *DBSource) Describe() string { return s.path }

func (s *DBSource) Posts(ctx context.Context) ([]model.Post, error) {
	return s.store.ListPosts(ctx, "")
}

// Loader applies the sphere filter and feed ordering on top of a source.
type Loader struct {
	source PostSource
	sphere string
	loc    *time.Location
}

// New creates a loader. An empty sphere keeps every post.
func New(source PostSource, sphere string, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{source: source, sphere: sphere, loc: loc}
}

// Source returns the underlying source.
func (l *Loader) Source() PostSource { return l.source }

// Load returns the feed: sphere-filtered, deduplicated by id (first
// occurrence wins), newest first, undated posts last.
func (l *Loader) Load(ctx context.Context) ([]model.Post, error) {
	raw, err := l.source.Posts(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(raw))
	feed := make([]model.Post, 0, len(raw))
	for _, p := range raw {
		if l.sphere != "" && p.SphereID != l.sphere {
			continue
		}
		if _, dup := seen[p.ID]; dup {
			continue
		}
		seen[p.ID] = struct{}{}
		feed = append(feed, p)
	}

	SortFeed(feed, l.loc)
	return feed, nil
}

// SortFeed orders posts newest first; undated posts go last. Ties keep
// their relative order.
func SortFeed(posts []model.Post, loc *time.Location) {
	type keyed struct {
		at time.Time
		ok bool
	}
	keys := make(map[string]keyed, len(posts))
	for _, p := range posts {
		at, ok := p.TakenAt(loc)
		keys[p.ID] = keyed{at: at, ok: ok}
	}
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := keys[posts[i].ID], keys[posts[j].ID]
		if a.ok != b.ok {
			return a.ok
		}
		return a.at.After(b.at)
	})
}
