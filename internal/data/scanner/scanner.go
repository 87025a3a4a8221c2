package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/remi-timeline/internal/util"
)

// FileScanner finds post export files under a directory.
type FileScanner struct {
	baseDir   string
	extension string
}

// NewFileScanner creates a scanner for *.jsonl files under baseDir.
func NewFileScanner(baseDir string) *FileScanner {
	return &FileScanner{
		baseDir:   baseDir,
		extension: ".jsonl",
	}
}

// Scan returns every post file, sorted by path. Hidden directories are
// skipped and unreadable entries are logged and ignored, so a missing base
// directory yields an empty result.
func (s *FileScanner) Scan() ([]string, error) {
	start := time.Now()
	var files []string
	dirs := 0

	util.LogDebugf("Start scanning directory: %s", s.baseDir)

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			util.LogDebugf("Skip path (error): %s - %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != s.baseDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			dirs++
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), s.extension) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	util.LogDebug("File scan completed",
		util.F("duration", time.Since(start)),
		util.F("dirs", dirs),
		util.F("files", len(files)))
	return files, err
}
