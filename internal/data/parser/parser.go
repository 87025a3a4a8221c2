package parser

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/penwyp/remi-timeline/internal/core/model"
	"github.com/penwyp/remi-timeline/internal/util"
)

// Parser reads JSONL post exports, one post per line.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string][]model.Post
}

// ParseResult is the outcome for one file.
type ParseResult struct {
	File  string
	Posts []model.Post
	Error error
}

// NewParser creates a parser running at most concurrency files at once.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string][]model.Post),
	}
}

// ParseFile parses path, memoizing the result until Forget is called.
// Lines that are not valid JSON are skipped. Posts without an id get a
// stable one derived from the file name and line number.
func (p *Parser) ParseFile(path string) ([]model.Post, error) {
	p.mu.Lock()
	if cached, ok := p.cache[path]; ok {
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var posts []model.Post
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	line := 0
	skipped := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var post model.Post
		if err := sonic.Unmarshal(raw, &post); err != nil {
			skipped++
			util.LogDebugf("Skip invalid JSON line %s:%d - %v", path, line, err)
			continue
		}
		if post.ID == "" {
			post.ID = DerivedID(path, line)
		}
		posts = append(posts, post)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if skipped > 0 {
		util.LogWarn("Skipped malformed post lines", util.F("file", path), util.F("lines", skipped))
	}

	p.mu.Lock()
	p.cache[path] = posts
	p.mu.Unlock()
	return posts, nil
}

// Forget drops the memoized result for path.
func (p *Parser) Forget(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// ParseFiles parses files concurrently. The channel closes when all files
// are done.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for _, file := range files {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			posts, err := p.ParseFile(path)
			if err != nil {
				util.LogDebugf("File parsing failed: %s - %v", path, err)
			}
			results <- ParseResult{File: path, Posts: posts, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebugf("Parsed %d files in %v", len(files), time.Since(start))
	}()
	return results
}

// DerivedID is the deterministic id given to an id-less post.
func DerivedID(path string, line int) string {
	name := filepath.Base(path) + "#" + strconv.Itoa(line)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
