// Package memory keeps every record in process memory. It backs development
// runs and tests; all tables share one lock so multi-table writes are atomic.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// DB is the in-memory database shared by the repositories
type DB struct {
	mutex    sync.RWMutex
	users    map[uuid.UUID]*models.User
	students map[uuid.UUID]*models.Student
	groups   map[uuid.UUID]*models.Group

	// down makes Ping fail, simulating an unreachable store
	down bool
}

// NewDB creates an empty in-memory database
func NewDB() *DB {
	return &DB{
		users:    make(map[uuid.UUID]*models.User),
		students: make(map[uuid.UUID]*models.Student),
		groups:   make(map[uuid.UUID]*models.Group),
	}
}

// NewRepositories wires the repository bundle on top of db
func NewRepositories(db *DB) *repositories.Repositories {
	return &repositories.Repositories{
		Users:    NewUserRepository(db),
		Students: NewStudentRepository(db),
		Groups:   NewGroupRepository(db),
		Store:    db,
	}
}

// Ping reports whether the store is reachable
func (db *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	if db.down {
		return apperrors.ErrStorageUnavailable
	}
	return nil
}

// Close is a no-op
func (db *DB) Close(context.Context) error {
	return nil
}

// SetAvailable toggles the simulated reachability of the store
func (db *DB) SetAvailable(available bool) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.down = !available
}

func (db *DB) check() error {
	if db.down {
		return apperrors.ErrStorageUnavailable
	}
	return nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.LinkedStudentID != nil {
		id := *u.LinkedStudentID
		c.LinkedStudentID = &id
	}
	return &c
}

func cloneStudent(s *models.Student) *models.Student {
	c := *s
	if s.GroupID != nil {
		id := *s.GroupID
		c.GroupID = &id
	}
	c.Familiars = append([]models.Familiar(nil), s.Familiars...)
	c.Sacraments = append([]models.Sacrament(nil), s.Sacraments...)
	c.Evaluations = append([]models.Evaluation(nil), s.Evaluations...)
	c.Attendances = append([]models.Attendance(nil), s.Attendances...)
	c.Certificates = append([]models.Certificate(nil), s.Certificates...)
	c.Group = nil
	return &c
}

func cloneGroup(g *models.Group) *models.Group {
	c := *g
	if g.CatechistID != nil {
		id := *g.CatechistID
		c.CatechistID = &id
	}
	c.Catechist = nil
	return &c
}

func sortStudents(students []*models.Student) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i].PersonalData, students[j].PersonalData
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		return a.FirstName < b.FirstName
	})
}
