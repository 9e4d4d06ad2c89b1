package repomanager

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/dbx"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/attachments"
	"github.com/avolkov/taskhub/internal/server/repositories/projects"
	"github.com/avolkov/taskhub/internal/server/repositories/tasks"
	"github.com/avolkov/taskhub/internal/server/repositories/users"
)

// InMemoryRepositoryManager backs the repositories with maps. It mirrors
// the Postgres behavior the services rely on: email uniqueness, NotFound
// sentinels, list ordering, and cascade deletes. Used by tests and local
// development without a database; the DBTX handed to the accessors is
// ignored.
type InMemoryRepositoryManager struct {
	mu          sync.Mutex
	users       map[string]*models.User
	projects    map[string]*models.Project
	tasks       map[string]*models.Task
	attachments map[string]*models.Attachment
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:       make(map[string]*models.User),
		projects:    make(map[string]*models.Project),
		tasks:       make(map[string]*models.Task),
		attachments: make(map[string]*models.Attachment),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return &inMemoryUsers{m: m}
}

func (m *InMemoryRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return &inMemoryProjects{m: m}
}

func (m *InMemoryRepositoryManager) Tasks(db dbx.DBTX) tasks.Repository {
	return &inMemoryTasks{m: m}
}

func (m *InMemoryRepositoryManager) Attachments(db dbx.DBTX) attachments.Repository {
	return &inMemoryAttachments{m: m}
}

type inMemoryUsers struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	clone := *user
	clone.ID = uuid.NewString()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.m.users[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *inMemoryUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *inMemoryUsers) List(ctx context.Context) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	result := make([]*models.User, 0, len(r.m.users))
	for _, u := range r.m.users {
		out := *u
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

func (r *inMemoryUsers) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for _, u := range r.m.users {
		if u.ID != user.ID && u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	clone := *user
	clone.CreatedAt = stored.CreatedAt
	clone.UpdatedAt = time.Now()
	r.m.users[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryUsers) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.users, id)

	// cascade: projects owned by the user, their tasks, their attachments
	for pid, p := range r.m.projects {
		if p.OwnerID == id {
			r.m.deleteProjectLocked(pid)
		}
	}
	for _, t := range r.m.tasks {
		if t.AssignedToID != nil && *t.AssignedToID == id {
			t.AssignedToID = nil
		}
	}
	return nil
}

func (m *InMemoryRepositoryManager) deleteProjectLocked(id string) {
	delete(m.projects, id)
	for tid, t := range m.tasks {
		if t.ProjectID == id {
			delete(m.tasks, tid)
			for aid, a := range m.attachments {
				if a.TaskID == tid {
					delete(m.attachments, aid)
				}
			}
		}
	}
}

type inMemoryProjects struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryProjects) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	clone := *project
	clone.ID = uuid.NewString()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.m.projects[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryProjects) GetByID(ctx context.Context, id string) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.projects[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	return &out, nil
}

func (r *inMemoryProjects) List(ctx context.Context, ownerID string) ([]*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var result []*models.Project
	for _, p := range r.m.projects {
		if ownerID == "" || p.OwnerID == ownerID {
			out := *p
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryProjects) Update(ctx context.Context, project *models.Project) (*models.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.projects[project.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	clone := *project
	clone.CreatedAt = stored.CreatedAt
	clone.UpdatedAt = time.Now()
	r.m.projects[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryProjects) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.projects[id]; !ok {
		return common.ErrorNotFound
	}
	r.m.deleteProjectLocked(id)
	return nil
}

type inMemoryTasks struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryTasks) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	clone := *task
	clone.ID = uuid.NewString()
	clone.CreatedAt = time.Now()
	clone.UpdatedAt = clone.CreatedAt
	r.m.tasks[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryTasks) GetByID(ctx context.Context, id string) (*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	t, ok := r.m.tasks[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *t
	return &out, nil
}

func (r *inMemoryTasks) List(ctx context.Context, ownerID string) ([]*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var result []*models.Task
	for _, t := range r.m.tasks {
		if ownerID != "" {
			p, ok := r.m.projects[t.ProjectID]
			if !ok || p.OwnerID != ownerID {
				continue
			}
		}
		out := *t
		result = append(result, &out)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryTasks) ListByProject(ctx context.Context, projectID string) ([]*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var result []*models.Task
	for _, t := range r.m.tasks {
		if t.ProjectID == projectID {
			out := *t
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryTasks) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.tasks[task.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	clone := *task
	clone.CreatedAt = stored.CreatedAt
	clone.UpdatedAt = time.Now()
	r.m.tasks[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryTasks) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.tasks[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.tasks, id)
	for aid, a := range r.m.attachments {
		if a.TaskID == id {
			delete(r.m.attachments, aid)
		}
	}
	return nil
}

type inMemoryAttachments struct {
	m *InMemoryRepositoryManager
}

func (r *inMemoryAttachments) Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	clone := *attachment
	clone.ID = uuid.NewString()
	clone.CreatedAt = time.Now()
	r.m.attachments[clone.ID] = &clone

	out := clone
	return &out, nil
}

func (r *inMemoryAttachments) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	a, ok := r.m.attachments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *a
	return &out, nil
}

func (r *inMemoryAttachments) ListByTask(ctx context.Context, taskID string) ([]*models.Attachment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var result []*models.Attachment
	for _, a := range r.m.attachments {
		if a.TaskID == taskID {
			out := *a
			result = append(result, &out)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryAttachments) MarkUploaded(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	a, ok := r.m.attachments[id]
	if !ok {
		return common.ErrorNotFound
	}
	a.UploadStatus = models.UploadStatusUploaded
	return nil
}

func (r *inMemoryAttachments) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.attachments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.attachments, id)
	return nil
}
