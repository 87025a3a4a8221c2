// Package fixtures writes sphere export files for tests.
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/remi-timeline/internal/core/model"
)

// ExportFile is the file name used for generated sphere exports.
const ExportFile = "posts.jsonl"

// TestDataGenerator generates JSONL post exports below baseDir, one
// directory per sphere.
type TestDataGenerator struct {
	baseDir string
}

// NewTestDataGenerator creates a new test data generator
func NewTestDataGenerator(baseDir string) *TestDataGenerator {
	return &TestDataGenerator{
		baseDir: baseDir,
	}
}

// GetBaseDir returns the export root.
func (g *TestDataGenerator) GetBaseDir() string {
	return g.baseDir
}

// WriteSphere writes posts as the export of sphere and returns the file
// path. Posts without a sphere are assigned to it.
func (g *TestDataGenerator) WriteSphere(sphere string, posts []model.Post) (string, error) {
	dir := filepath.Join(g.baseDir, sphere)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	for i := range posts {
		if posts[i].SphereID == "" {
			posts[i].SphereID = sphere
		}
	}
	path := filepath.Join(dir, ExportFile)
	return path, g.writeJSONL(path, posts, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// AppendPosts appends posts to an existing export file.
func (g *TestDataGenerator) AppendPosts(path string, posts []model.Post) error {
	return g.writeJSONL(path, posts, os.O_APPEND|os.O_WRONLY)
}

// GenerateSphere writes perMonth posts in each of months consecutive
// months starting at start, one post every other day at noon UTC. It returns
// the generated posts in file order.
func (g *TestDataGenerator) GenerateSphere(sphere string, start time.Time, months, perMonth int) ([]model.Post, error) {
	first := time.Date(start.Year(), start.Month(), 1, 12, 0, 0, 0, time.UTC)
	posts := make([]model.Post, 0, months*perMonth)
	for m := 0; m < months; m++ {
		monthStart := first.AddDate(0, m, 0)
		for i := 0; i < perMonth; i++ {
			taken := monthStart.AddDate(0, 0, (2*i)%28)
			posts = append(posts, model.Post{
				ID:          fmt.Sprintf("%s-%s-%02d", sphere, monthStart.Format("200601"), i),
				DateTaken:   taken.Format(time.RFC3339),
				DisplayName: fmt.Sprintf("Post %d of %s", i+1, monthStart.Format("January 2006")),
				SphereID:    sphere,
			})
		}
	}
	_, err := g.WriteSphere(sphere, posts)
	return posts, err
}

// WriteRaw writes lines verbatim to rel below the base directory, for
// malformed input.
func (g *TestDataGenerator) WriteRaw(rel string, lines ...string) (string, error) {
	path := filepath.Join(g.baseDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	var data []byte
	for _, line := range lines {
		data = append(data, line...)
		data = append(data, '\n')
	}
	return path, os.WriteFile(path, data, 0644)
}

// CreateEmptySphere creates a sphere directory without posts.
func (g *TestDataGenerator) CreateEmptySphere(sphere string) error {
	return os.MkdirAll(filepath.Join(g.baseDir, sphere), 0755)
}

func (g *TestDataGenerator) writeJSONL(path string, posts []model.Post, flag int) error {
	f, err := os.OpenFile(path, flag, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, p := range posts {
		data, err := sonic.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}
