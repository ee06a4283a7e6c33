package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/projecthub/internal/models"
)

func TestMemoryCreateUser_DuplicateLogin(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.CreateUser(ctx, &models.User{Login: "alice", Password: "h"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	_, err = s.CreateUser(ctx, &models.User{Login: "alice", Password: "other"})
	assert.ErrorIs(t, err, ErrConflict)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestMemoryCreateUser_DuplicateEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.CreateUser(ctx, &models.User{Login: "a", Email: "x@example.com"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, &models.User{Login: "b", Email: "x@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	// empty email is not unique
	_, err = s.CreateUser(ctx, &models.User{Login: "c"})
	require.NoError(t, err)
	_, err = s.CreateUser(ctx, &models.User{Login: "d"})
	require.NoError(t, err)
}

func TestMemoryGetUser_NotFound(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.GetUserByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetUserByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryFilesByParent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p1, err := s.CreateProject(ctx, &models.Project{Name: "one"})
	require.NoError(t, err)
	p2, err := s.CreateProject(ctx, &models.Project{Name: "two"})
	require.NoError(t, err)

	f, err := s.CreateFile(ctx, &models.File{ProjectID: p1.ID, Name: "a.txt", Text: "a"})
	require.NoError(t, err)

	files, err := s.ListFilesByProject(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, f.ID, files[0].ID)

	files, err = s.ListFilesByProject(ctx, p2.ID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMemoryCreateFile_MissingProject(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.CreateFile(context.Background(), &models.File{ProjectID: 999, Name: "a.txt"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUpdateFileText_Idempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.CreateProject(ctx, &models.Project{Name: "one"})
	require.NoError(t, err)
	f, err := s.CreateFile(ctx, &models.File{ProjectID: p.ID, Name: "a.txt", Text: "old"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := s.UpdateFileText(ctx, f.ID, "new")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Text)
	}

	files, err := s.ListFilesByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new", files[0].Text)

	_, err = s.UpdateFileText(ctx, 404, "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	p, err := s.CreateProject(ctx, &models.Project{Name: "one"})
	require.NoError(t, err)
	p.Name = "mutated"

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", got.Name)
}

func TestMemoryConcurrentRegistration(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.CreateUser(ctx, &models.User{Login: "alice"})
		}()
	}
	wg.Wait()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
