package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/avolkov/taskhub/internal/common"
	"github.com/avolkov/taskhub/internal/dbx"
	"github.com/avolkov/taskhub/internal/logging"
	"github.com/avolkov/taskhub/internal/server/access"
	"github.com/avolkov/taskhub/internal/server/auth"
	"github.com/avolkov/taskhub/internal/server/config"
	"github.com/avolkov/taskhub/internal/server/models"
	"github.com/avolkov/taskhub/internal/server/repositories/repomanager"
)

// SeedService bulk-populates the database with demo data. Development
// convenience, gated to superadmins.
type SeedService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	bcryptCost  int
}

func NewSeedService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger, cfg *config.Config) *SeedService {
	return &SeedService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "seed_service"),
		bcryptCost:  cfg.BcryptCost,
	}
}

// SeedCounts reports how many rows of each kind the seed created.
type SeedCounts struct {
	Users    int `json:"users"`
	Projects int `json:"projects"`
	Tasks    int `json:"tasks"`
}

type seedUser struct {
	email    string
	password string
	fullname string
	role     models.Role
}

type seedProject struct {
	owner  int // index into seedUsers
	title  string
	status models.ProjectStatus
	tasks  []seedTask
}

type seedTask struct {
	title    string
	status   models.TaskStatus
	priority models.TaskPriority
	dueIn    time.Duration // zero means no due date
}

var seedUsers = []seedUser{
	{"admin@taskhub.local", "admin123", "Admin", models.RoleSuperAdmin},
	{"ana@taskhub.local", "ana12345", "Ana Torres", models.RoleUsuario},
	{"luis@taskhub.local", "luis1234", "Luis Pérez", models.RoleUsuario},
}

var seedProjects = []seedProject{
	{1, "Website redesign", models.ProjectStatusInProgress, []seedTask{
		{"Wireframes", models.TaskStatusCompleted, models.TaskPriorityHigh, 0},
		{"Landing page copy", models.TaskStatusInProgress, models.TaskPriorityMedium, 7 * 24 * time.Hour},
		{"Deploy preview", models.TaskStatusPending, models.TaskPriorityLow, 14 * 24 * time.Hour},
	}},
	{1, "Q3 reporting", models.ProjectStatusPending, []seedTask{
		{"Collect metrics", models.TaskStatusPending, models.TaskPriorityMedium, 0},
	}},
	{2, "Mobile app", models.ProjectStatusPending, []seedTask{
		{"API contract", models.TaskStatusInProgress, models.TaskPriorityHigh, 3 * 24 * time.Hour},
		{"Push notifications", models.TaskStatusPending, models.TaskPriorityMedium, 0},
	}},
}

// Run inserts the demo users, projects, and tasks in one transaction and
// returns the counts. Existing rows are untouched; re-running against a
// seeded database fails on the email uniqueness constraint.
func (s *SeedService) Run(ctx context.Context, identity *models.User) (*SeedCounts, error) {
	if err := access.RequireRole(identity, models.RoleSuperAdmin); err != nil {
		return nil, err
	}

	counts := &SeedCounts{}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		userRepo := s.repomanager.Users(tx)
		projectRepo := s.repomanager.Projects(tx)
		taskRepo := s.repomanager.Tasks(tx)

		created := make([]*models.User, 0, len(seedUsers))
		for _, su := range seedUsers {
			hash, err := auth.HashPassword(su.password, s.bcryptCost)
			if err != nil {
				return err
			}
			user, err := userRepo.Create(ctx, &models.User{
				Email:        models.NormalizeEmail(su.email),
				PasswordHash: hash,
				FullName:     su.fullname,
				Role:         su.role,
				IsActive:     true,
			})
			if err != nil {
				return err
			}
			created = append(created, user)
			counts.Users++
		}

		for _, sp := range seedProjects {
			project, err := projectRepo.Create(ctx, &models.Project{
				Title:   sp.title,
				Status:  sp.status,
				OwnerID: created[sp.owner].ID,
			})
			if err != nil {
				return err
			}
			counts.Projects++

			for _, st := range sp.tasks {
				task := &models.Task{
					Title:     st.title,
					Status:    st.status,
					Priority:  st.priority,
					ProjectID: project.ID,
				}
				if st.dueIn > 0 {
					due := time.Now().Add(st.dueIn)
					task.DueDate = &due
				}
				if _, err := taskRepo.Create(ctx, task); err != nil {
					return err
				}
				counts.Tasks++
			}
		}

		return nil
	})
	if err != nil {
		s.logger.Error(ctx, "seed failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "seed completed",
		"users", counts.Users, "projects", counts.Projects, "tasks", counts.Tasks)
	return counts, nil
}
