// Package store keeps posts in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/penwyp/remi-timeline/internal/core/model"
)

// ErrNotFound is returned by GetPost for unknown ids.
var ErrNotFound = errors.New("post not found")

// Store is a SQLite-backed post table. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" opens a shared
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path == ":memory:" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		sphere_id TEXT NOT NULL DEFAULT '',
		date_taken TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_posts_sphere ON posts(sphere_id);
	CREATE INDEX IF NOT EXISTS idx_posts_date ON posts(date_taken DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SavePosts upserts posts in one transaction and returns how many were
// written. Posts without an id are given a random UUID; the ids are
// written back into the slice.
func (s *Store) SavePosts(ctx context.Context, posts []model.Post) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO posts (id, sphere_id, date_taken, display_name, caption, image_url)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sphere_id = excluded.sphere_id,
			date_taken = excluded.date_taken,
			display_name = excluded.display_name,
			caption = excluded.caption,
			image_url = excluded.image_url
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i := range posts {
		if posts[i].ID == "" {
			posts[i].ID = uuid.NewString()
		}
		p := posts[i]
		if _, err := stmt.ExecContext(ctx, p.ID, p.SphereID, p.DateTaken, p.DisplayName, p.Caption, p.ImageURL); err != nil {
			return 0, fmt.Errorf("save post %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(posts), nil
}

// ListPosts returns posts of sphere (all spheres when empty), newest
// date string first. Ordering by the stored string is only a hint; callers
// that need exact ordering sort by parsed time.
func (s *Store) ListPosts(ctx context.Context, sphere string) ([]model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, sphere_id, date_taken, display_name, caption, image_url FROM posts`
	var args []interface{}
	if sphere != "" {
		query += ` WHERE sphere_id = ?`
		args = append(args, sphere)
	}
	query += ` ORDER BY date_taken DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.SphereID, &p.DateTaken, &p.DisplayName, &p.Caption, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost loads one post by id.
func (s *Store) GetPost(ctx context.Context, id string) (model.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p model.Post
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sphere_id, date_taken, display_name, caption, image_url FROM posts WHERE id = ?`, id,
	).Scan(&p.ID, &p.SphereID, &p.DateTaken, &p.DisplayName, &p.Caption, &p.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, ErrNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	return p, nil
}

// Count returns the number of stored posts.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// Spheres lists the distinct sphere ids.
func (s *Store) Spheres(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT sphere_id FROM posts WHERE sphere_id != '' ORDER BY sphere_id`)
	if err != nil {
		return nil, fmt.Errorf("list spheres: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
