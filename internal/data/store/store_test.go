package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/remi-timeline/internal/core/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndListPosts(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	posts := []model.Post{
		{ID: "p1", SphereID: "fam", DateTaken: "2024-03-05", DisplayName: "Beach"},
		{ID: "p2", SphereID: "fam", DateTaken: "2024-05-20", DisplayName: "Park"},
		{SphereID: "work", DateTaken: "2023-01-01", DisplayName: "Offsite"},
	}
	n, err := s.SavePosts(ctx, posts)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = uuid.Parse(posts[2].ID)
	assert.NoError(t, err, "id-less post gets a UUID")

	all, err := s.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "p2", all[0].ID)

	fam, err := s.ListPosts(ctx, "fam")
	require.NoError(t, err)
	assert.Len(t, fam, 2)

	spheres, err := s.Spheres(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fam", "work"}, spheres)
}

func TestSavePostsUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)

	_, err := s.SavePosts(ctx, []model.Post{{ID: "p1", DisplayName: "old"}})
	require.NoError(t, err)
	_, err = s.SavePosts(ctx, []model.Post{{ID: "p1", DisplayName: "new", DateTaken: "2024-01-01"}})
	require.NoError(t, err)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := s.GetPost(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.DisplayName)
	assert.Equal(t, "2024-01-01", got.DateTaken)
}

func TestGetPostNotFound(t *testing.T) {
	s := openTemp(t)
	_, err := s.GetPost(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveNothing(t *testing.T) {
	s := openTemp(t)
	n, err := s.SavePosts(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	_, err = s.SavePosts(context.Background(), []model.Post{{ID: "m1"}})
	require.NoError(t, err)
	got, err := s.GetPost(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "m1", got.ID)
}
