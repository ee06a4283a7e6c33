package store

import (
	"context"
	"sync"
	"time"

	"github.com/ayush/projecthub/internal/models"
)

// MemoryStore is a process-local store with the same semantics as
// PostgresStore. IDs are assigned per table starting at 1.
type MemoryStore struct {
	mu sync.RWMutex

	users    []models.User
	projects []models.Project
	files    []models.File

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Login == user.Login || (user.Email != "" && u.Email == user.Email) {
			return nil, ErrConflict
		}
	}
	u := *user
	u.ID = int64(len(s.users) + 1)
	u.CreatedAt = s.now()
	s.users = append(s.users, u)
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Login == login {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User{}, s.users...), nil
}

func (s *MemoryStore) CreateProject(_ context.Context, project *models.Project) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := *project
	p.ID = int64(len(s.projects) + 1)
	p.CreatedAt = s.now()
	s.projects = append(s.projects, p)
	return &p, nil
}

func (s *MemoryStore) GetProject(_ context.Context, id int64) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project(id)
}

func (s *MemoryStore) project(id int64) (*models.Project, error) {
	for _, p := range s.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListProjects(_ context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Project{}, s.projects...), nil
}

func (s *MemoryStore) CreateFile(_ context.Context, file *models.File) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.project(file.ProjectID); err != nil {
		return nil, err
	}
	f := *file
	f.ID = int64(len(s.files) + 1)
	f.CreatedAt = s.now()
	f.UpdatedAt = f.CreatedAt
	s.files = append(s.files, f)
	return &f, nil
}

func (s *MemoryStore) GetFile(_ context.Context, id int64) (*models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, f := range s.files {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListFilesByProject(_ context.Context, projectID int64) ([]models.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := []models.File{}
	for _, f := range s.files {
		if f.ProjectID == projectID {
			files = append(files, f)
		}
	}
	return files, nil
}

func (s *MemoryStore) UpdateFileText(_ context.Context, id int64, text string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.files {
		if s.files[i].ID == id {
			s.files[i].Text = text
			s.files[i].UpdatedAt = s.now()
			f := s.files[i]
			return &f, nil
		}
	}
	return nil, ErrNotFound
}
