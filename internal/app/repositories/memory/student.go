package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

type studentRepository struct {
	db *DB
}

// NewStudentRepository creates an in-memory student repository
func NewStudentRepository(db *DB) repositories.StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) nationalIDTaken(nationalID string, exclude uuid.UUID) bool {
	for _, s := range r.db.students {
		if s.PersonalData.NationalID == nationalID && s.ID != exclude {
			return true
		}
	}
	return false
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if err := r.db.check(); err != nil {
		return err
	}

	if r.nationalIDTaken(student.PersonalData.NationalID, uuid.Nil) {
		return apperrors.ErrNationalIDTaken
	}

	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	r.db.students[student.ID] = cloneStudent(student)
	return nil
}

func (r *studentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	s, ok := r.db.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return r.withGroup(s), nil
}

func (r *studentRepository) GetByNationalID(ctx context.Context, nationalID string) (*models.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	for _, s := range r.db.students {
		if s.PersonalData.NationalID == nationalID {
			return r.withGroup(s), nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (r *studentRepository) NationalIDExists(ctx context.Context, nationalID string) (bool, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return false, err
	}
	return r.nationalIDTaken(nationalID, uuid.Nil), nil
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if err := r.db.check(); err != nil {
		return err
	}

	if _, ok := r.db.students[student.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	if r.nationalIDTaken(student.PersonalData.NationalID, student.ID) {
		return apperrors.ErrNationalIDTaken
	}

	r.db.students[student.ID] = cloneStudent(student)
	return nil
}

func (r *studentRepository) List(ctx context.Context, filter models.StudentFilter) ([]*models.Student, error) {
	r.db.mutex.RLock()
	defer r.db.mutex.RUnlock()
	if err := r.db.check(); err != nil {
		return nil, err
	}

	students := make([]*models.Student, 0)
	for _, s := range r.db.students {
		if filter.Matches(s) {
			students = append(students, r.withGroup(s))
		}
	}
	sortStudents(students)
	return students, nil
}

func (r *studentRepository) DeleteWithLinkedUsers(ctx context.Context, id uuid.UUID) (int64, error) {
	r.db.mutex.Lock()
	defer r.db.mutex.Unlock()
	if err := r.db.check(); err != nil {
		return 0, err
	}

	if _, ok := r.db.students[id]; !ok {
		return 0, apperrors.ErrStudentNotFound
	}

	var removed int64
	for userID, u := range r.db.users {
		if u.LinkedStudentID != nil && *u.LinkedStudentID == id {
			delete(r.db.users, userID)
			removed++
		}
	}
	delete(r.db.students, id)
	return removed, nil
}

// withGroup copies s and joins its group summary. Callers hold the lock.
func (r *studentRepository) withGroup(s *models.Student) *models.Student {
	c := cloneStudent(s)
	if s.GroupID != nil {
		if g, ok := r.db.groups[*s.GroupID]; ok {
			c.Group = &models.GroupSummary{ID: g.ID, Name: g.Name}
		}
	}
	return c
}
