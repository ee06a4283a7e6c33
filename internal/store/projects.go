package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/ayush/projecthub/internal/models"
)

const (
	projectColumns = `id, name, description, created_at`
	fileColumns    = `id, project_id, name, text, created_at, updated_at`
)

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	if err := row.Scan(&f.ID, &f.ProjectID, &f.Name, &f.Text, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx,
		`INSERT INTO projects (name, description)
		 VALUES ($1, $2)
		 RETURNING `+projectColumns,
		project.Name, project.Description,
	))
	if err != nil {
		return nil, mapErr("create project", err)
	}
	return p, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(s.db.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get project", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, mapErr("list projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, mapErr("list projects", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list projects", err)
	}
	return projects, nil
}

// CreateFile fails with ErrNotFound when the parent project does not exist.
func (s *PostgresStore) CreateFile(ctx context.Context, file *models.File) (*models.File, error) {
	f, err := scanFile(s.db.QueryRow(ctx,
		`INSERT INTO files (project_id, name, text)
		 VALUES ($1, $2, $3)
		 RETURNING `+fileColumns,
		file.ProjectID, file.Name, file.Text,
	))
	if err != nil {
		return nil, mapErr("create file", err)
	}
	return f, nil
}

func (s *PostgresStore) GetFile(ctx context.Context, id int64) (*models.File, error) {
	f, err := scanFile(s.db.QueryRow(ctx,
		`SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr("get file", err)
	}
	return f, nil
}

func (s *PostgresStore) ListFilesByProject(ctx context.Context, projectID int64) ([]models.File, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+fileColumns+` FROM files WHERE project_id = $1 ORDER BY id`, projectID)
	if err != nil {
		return nil, mapErr("list files", err)
	}
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, mapErr("list files", err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list files", err)
	}
	return files, nil
}

func (s *PostgresStore) UpdateFileText(ctx context.Context, id int64, text string) (*models.File, error) {
	f, err := scanFile(s.db.QueryRow(ctx,
		`UPDATE files SET text = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+fileColumns,
		id, text,
	))
	if err != nil {
		return nil, mapErr("update file", err)
	}
	return f, nil
}
