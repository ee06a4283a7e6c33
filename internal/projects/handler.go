package projects

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ayush/projecthub/internal/middleware"
	"github.com/ayush/projecthub/internal/models"
	"github.com/ayush/projecthub/internal/store"
	"github.com/ayush/projecthub/internal/web"
)

// Store defines the interface for project and file persistence.
type Store interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	CreateFile(ctx context.Context, file *models.File) (*models.File, error)
	GetFile(ctx context.Context, id int64) (*models.File, error)
	ListFilesByProject(ctx context.Context, projectID int64) ([]models.File, error)
	UpdateFileText(ctx context.Context, id int64, text string) (*models.File, error)
}

// ActivityLog records project events.
type ActivityLog interface {
	Record(ctx context.Context, a *models.Activity) error
	ListByProject(ctx context.Context, projectID int64) ([]models.Activity, error)
}

// Archive defines the interface for file object storage.
type Archive interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Handler holds project and file HTTP handlers.
type Handler struct {
	store    Store
	activity ActivityLog
	archive  Archive
	log      *zap.Logger
}

func NewHandler(store Store, activity ActivityLog, archive Archive, log *zap.Logger) *Handler {
	return &Handler{store: store, activity: activity, archive: archive, log: log}
}

const textContentType = "text/plain; charset=utf-8"

// notFoundOr maps ErrNotFound to the 404 page and anything else to a failure.
func notFoundOr(err error) web.Result {
	if errors.Is(err, store.ErrNotFound) {
		return web.NotFound()
	}
	return web.Failure{Err: err}
}

// List returns all projects.
func (h *Handler) List(r *http.Request) web.Result {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Page{Template: "projects", Data: map[string]any{"projects": projects}}
}

func (h *Handler) NewForm(*http.Request) web.Result {
	return web.Page{Template: "project_create", Data: map[string]any{"error": "", "name": "", "description": ""}}
}

// Create stores a new project. Only the name is required.
func (h *Handler) Create(r *http.Request) web.Result {
	fields, err := web.Required(r, "name")
	description := r.PostForm.Get("description")
	if err != nil {
		return web.Page{
			Template: "project_create",
			Data:     map[string]any{"error": err.Error(), "name": r.PostForm.Get("name"), "description": description},
			Status:   http.StatusUnprocessableEntity,
		}
	}

	project, err := h.store.CreateProject(r.Context(), &models.Project{Name: fields["name"], Description: description})
	if err != nil {
		return web.Failure{Err: err}
	}

	h.record(r, &models.Activity{
		ProjectID: project.ID,
		Kind:      models.ActivityProjectCreated,
		Summary:   project.Name,
	})
	return web.SeeOther("/projects")
}

// Detail returns a project with its files.
func (h *Handler) Detail(r *http.Request) web.Result {
	id, ok := web.PathID(r, "id")
	if !ok {
		return web.NotFound()
	}
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		return notFoundOr(err)
	}
	files, err := h.store.ListFilesByProject(r.Context(), id)
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Page{Template: "project_detail", Data: map[string]any{"project": project, "files": files}}
}

// Activity lists recent events of a project.
func (h *Handler) Activity(r *http.Request) web.Result {
	id, ok := web.PathID(r, "id")
	if !ok {
		return web.NotFound()
	}
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		return notFoundOr(err)
	}
	events, err := h.activity.ListByProject(r.Context(), id)
	if err != nil {
		return web.Failure{Err: err}
	}
	return web.Page{Template: "project_activity", Data: map[string]any{"project": project, "activity": events}}
}

func (h *Handler) NewFileForm(r *http.Request) web.Result {
	id, ok := web.PathID(r, "id")
	if !ok {
		return web.NotFound()
	}
	if _, err := h.store.GetProject(r.Context(), id); err != nil {
		return notFoundOr(err)
	}
	return web.Page{Template: "file_create", Data: map[string]any{"error": "", "project_id": id, "name": "", "text": ""}}
}

// CreateFile adds a file to an existing project. Unknown projects are
// rejected with 404.
func (h *Handler) CreateFile(r *http.Request) web.Result {
	projectID, ok := web.PathID(r, "id")
	if !ok {
		return web.NotFound()
	}
	if _, err := h.store.GetProject(r.Context(), projectID); err != nil {
		return notFoundOr(err)
	}

	fields, err := web.Required(r, "name")
	text := r.PostForm.Get("text")
	if err != nil {
		return web.Page{
			Template: "file_create",
			Data:     map[string]any{"error": err.Error(), "project_id": projectID, "name": r.PostForm.Get("name"), "text": text},
			Status:   http.StatusUnprocessableEntity,
		}
	}

	file, err := h.store.CreateFile(r.Context(), &models.File{ProjectID: projectID, Name: fields["name"], Text: text})
	if err != nil {
		return notFoundOr(err)
	}

	h.archiveText(r, file)
	h.record(r, &models.Activity{
		ProjectID: projectID,
		Kind:      models.ActivityFileCreated,
		FileID:    file.ID,
		Summary:   file.Name,
	})
	return web.SeeOther(fileURL(file))
}

// lookupFile resolves {pid}/{fid} and rejects files of another project.
func (h *Handler) lookupFile(r *http.Request) (*models.File, web.Result) {
	projectID, ok := web.PathID(r, "pid")
	if !ok {
		return nil, web.NotFound()
	}
	fileID, ok := web.PathID(r, "fid")
	if !ok {
		return nil, web.NotFound()
	}
	file, err := h.store.GetFile(r.Context(), fileID)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if file.ProjectID != projectID {
		return nil, web.NotFound()
	}
	return file, nil
}

// File returns a single file.
func (h *Handler) File(r *http.Request) web.Result {
	file, res := h.lookupFile(r)
	if res != nil {
		return res
	}
	return web.Page{Template: "file", Data: map[string]any{"file": file, "error": ""}}
}

// UpdateFile overwrites the file text. Sending the same text twice leaves
// the same single record.
func (h *Handler) UpdateFile(r *http.Request) web.Result {
	file, res := h.lookupFile(r)
	if res != nil {
		return res
	}

	text, err := web.Present(r, "text")
	if err != nil {
		return web.Page{
			Template: "file",
			Data:     map[string]any{"file": file, "error": err.Error()},
			Status:   http.StatusUnprocessableEntity,
		}
	}

	updated, err := h.store.UpdateFileText(r.Context(), file.ID, text)
	if err != nil {
		return notFoundOr(err)
	}

	h.archiveText(r, updated)
	h.record(r, &models.Activity{
		ProjectID: updated.ProjectID,
		Kind:      models.ActivityFileUpdated,
		FileID:    updated.ID,
		Summary:   updated.Name,
	})
	return web.SeeOther(fileURL(updated))
}

// Raw streams the archived text, falling back to the stored copy.
func (h *Handler) Raw(r *http.Request) web.Result {
	file, res := h.lookupFile(r)
	if res != nil {
		return res
	}

	data, _, err := h.archive.Download(r.Context(), store.FileObjectKey(file.ProjectID, file.ID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Warn("archive download failed, serving stored text",
				zap.Int64("file_id", file.ID), zap.Error(err))
		}
		data = []byte(file.Text)
	}
	return web.Download{Name: file.Name, ContentType: textContentType, Body: data}
}

func fileURL(f *models.File) string {
	return fmt.Sprintf("/projects/%d/file/%d", f.ProjectID, f.ID)
}

// archiveText and record are best effort: the SQL row is the source of truth.
func (h *Handler) archiveText(r *http.Request, f *models.File) {
	key := store.FileObjectKey(f.ProjectID, f.ID)
	if err := h.archive.Upload(r.Context(), key, []byte(f.Text), textContentType); err != nil {
		h.log.Warn("archive upload failed", zap.String("key", key), zap.Error(err))
	}
}

func (h *Handler) record(r *http.Request, a *models.Activity) {
	if id, ok := middleware.UserID(r.Context()); ok {
		a.UserID = id
	}
	if err := h.activity.Record(r.Context(), a); err != nil {
		h.log.Warn("record activity failed", zap.String("kind", a.Kind), zap.Error(err))
	}
}
