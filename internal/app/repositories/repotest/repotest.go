// Package repotest holds the behaviour every repository backend must share.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// Factory returns a fresh, empty repository bundle for one test
type Factory func(t *testing.T) *repositories.Repositories

// Run exercises repos against the shared contract
func Run(t *testing.T, newRepos Factory) {
	t.Run("UsernameUnique", func(t *testing.T) { testUsernameUnique(t, newRepos(t)) })
	t.Run("Upsert", func(t *testing.T) { testUpsert(t, newRepos(t)) })
	t.Run("NationalIDUnique", func(t *testing.T) { testNationalIDUnique(t, newRepos(t)) })
	t.Run("StudentRoundTrip", func(t *testing.T) { testStudentRoundTrip(t, newRepos(t)) })
	t.Run("ListFilters", func(t *testing.T) { testListFilters(t, newRepos(t)) })
	t.Run("GroupCatechistJoin", func(t *testing.T) { testGroupCatechistJoin(t, newRepos(t)) })
	t.Run("CascadeDelete", func(t *testing.T) { testCascadeDelete(t, newRepos(t)) })
	t.Run("DeleteUnknown", func(t *testing.T) { testDeleteUnknown(t, newRepos(t)) })
}

// NewStudent builds a valid student with the given national id
func NewStudent(nationalID, firstName string, groupID *uuid.UUID) *models.Student {
	return &models.Student{
		PersonalData: models.PersonalData{
			FirstName:  firstName,
			LastName:   "Pérez",
			NationalID: nationalID,
			BirthDate:  time.Date(2014, 6, 1, 0, 0, 0, 0, time.UTC),
			Gender:     "F",
		},
		Status:         models.StudentStatusActive,
		EnrollmentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		GroupID:        groupID,
		Familiars:      []models.Familiar{},
		Sacraments:     []models.Sacrament{},
		Evaluations:    []models.Evaluation{},
		Attendances:    []models.Attendance{},
		Certificates:   []models.Certificate{},
	}
}

func newUser(username string, role models.Role) *models.User {
	return &models.User{
		Username:     username,
		PasswordHash: "hash",
		Role:         role,
		FullName:     "Nombre " + username,
	}
}

func testUsernameUnique(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	first := newUser("maria", models.RoleCatechist)
	require.NoError(t, repos.Users.Create(ctx, first))
	assert.NotEqual(t, uuid.Nil, first.ID)

	err := repos.Users.Create(ctx, newUser("maria", models.RoleAdmin))
	assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)

	exists, err := repos.Users.UsernameExists(ctx, "maria")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repos.Users.UsernameExists(ctx, "Maria")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := repos.Users.GetByUsername(ctx, "maria")
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, models.RoleCatechist, got.Role)

	_, err = repos.Users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = repos.Users.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func testUpsert(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	created, err := repos.Users.Upsert(ctx, newUser("admin", models.RoleAdmin))
	require.NoError(t, err)
	assert.True(t, created)

	replacement := newUser("admin", models.RoleCatechist)
	replacement.PasswordHash = "other"
	created, err = repos.Users.Upsert(ctx, replacement)
	require.NoError(t, err)
	assert.False(t, created)

	got, err := repos.Users.GetByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, replacement.ID, got.ID)
	assert.Equal(t, "other", got.PasswordHash)
	assert.Equal(t, models.RoleCatechist, got.Role)

	catechists, err := repos.Users.ListByRole(ctx, models.RoleCatechist)
	require.NoError(t, err)
	assert.Len(t, catechists, 1)
}

func testNationalIDUnique(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	require.NoError(t, repos.Students.Create(ctx, NewStudent("0102030405", "Ana", nil)))
	err := repos.Students.Create(ctx, NewStudent("0102030405", "Eva", nil))
	assert.ErrorIs(t, err, apperrors.ErrNationalIDTaken)

	other := NewStudent("0999999999", "Luz", nil)
	require.NoError(t, repos.Students.Create(ctx, other))
	other.PersonalData.NationalID = "0102030405"
	assert.ErrorIs(t, repos.Students.Update(ctx, other), apperrors.ErrNationalIDTaken)

	exists, err := repos.Students.NationalIDExists(ctx, "0102030405")
	require.NoError(t, err)
	assert.True(t, exists)
}

func testStudentRoundTrip(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	group := &models.Group{Name: "Primera Comunión A"}
	require.NoError(t, repos.Groups.Create(ctx, group))

	student := NewStudent("1111111111", "Ana", &group.ID)
	received := time.Date(2015, 1, 10, 0, 0, 0, 0, time.UTC)
	student.Familiars = []models.Familiar{{FullName: "Rosa Pérez", Relationship: "Madre", Phone: "0999"}}
	student.Sacraments = []models.Sacrament{{Name: "Bautismo", Date: &received, Received: true}}
	require.NoError(t, repos.Students.Create(ctx, student))

	got, err := repos.Students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.PersonalData.FirstName)
	assert.True(t, student.PersonalData.BirthDate.Equal(got.PersonalData.BirthDate))
	require.NotNil(t, got.Group)
	assert.Equal(t, "Primera Comunión A", got.Group.Name)
	require.Len(t, got.Familiars, 1)
	assert.Equal(t, "Madre", got.Familiars[0].Relationship)
	require.Len(t, got.Sacraments, 1)
	assert.True(t, got.Sacraments[0].Received)

	got.Status = "Retirado"
	got.GroupID = nil
	require.NoError(t, repos.Students.Update(ctx, got))

	again, err := repos.Students.GetByNationalID(ctx, "1111111111")
	require.NoError(t, err)
	assert.Equal(t, "Retirado", again.Status)
	assert.Nil(t, again.GroupID)
	assert.Nil(t, again.Group)

	missing := NewStudent("2222222222", "X", nil)
	missing.ID = uuid.New()
	assert.ErrorIs(t, repos.Students.Update(ctx, missing), apperrors.ErrStudentNotFound)

	_, err = repos.Students.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func testListFilters(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	groupA := &models.Group{Name: "A"}
	groupB := &models.Group{Name: "B"}
	require.NoError(t, repos.Groups.Create(ctx, groupA))
	require.NoError(t, repos.Groups.Create(ctx, groupB))

	inA := NewStudent("1", "Ana", &groupA.ID)
	inB := NewStudent("2", "Bea", &groupB.ID)
	loose := NewStudent("3", "Cira", nil)
	for _, s := range []*models.Student{inA, inB, loose} {
		require.NoError(t, repos.Students.Create(ctx, s))
	}

	all, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeAll})
	require.NoError(t, err)
	assert.Len(t, all, 3)
	for _, s := range all {
		if s.ID == loose.ID {
			assert.Nil(t, s.Group)
		} else {
			assert.NotNil(t, s.Group)
		}
	}

	onlyA, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeGroups, GroupIDs: []uuid.UUID{groupA.ID}})
	require.NoError(t, err)
	require.Len(t, onlyA, 1)
	assert.Equal(t, inA.ID, onlyA[0].ID)
	assert.Equal(t, "A", onlyA[0].Group.Name)

	noGroups, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeGroups})
	require.NoError(t, err)
	assert.Empty(t, noGroups)

	single, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeStudent, StudentID: loose.ID})
	require.NoError(t, err)
	require.Len(t, single, 1)
	assert.Equal(t, loose.ID, single[0].ID)

	none, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeNone})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testGroupCatechistJoin(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	catechist := newUser("lucia", models.RoleCatechist)
	require.NoError(t, repos.Users.Create(ctx, catechist))

	led := &models.Group{Name: "Confirmación", CatechistID: &catechist.ID}
	orphan := &models.Group{Name: "Sin catequista"}
	require.NoError(t, repos.Groups.Create(ctx, led))
	require.NoError(t, repos.Groups.Create(ctx, orphan))

	groups, err := repos.Groups.List(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	for _, g := range groups {
		switch g.ID {
		case led.ID:
			require.NotNil(t, g.Catechist)
			assert.Equal(t, "lucia", g.Catechist.Username)
		case orphan.ID:
			assert.Nil(t, g.Catechist)
		}
	}

	ids, err := repos.Groups.ListIDsByCatechist(ctx, catechist.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{led.ID}, ids)

	ids, err = repos.Groups.ListIDsByCatechist(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = repos.Groups.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
}

func testCascadeDelete(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	student := NewStudent("5555555555", "Ana", nil)
	keep := NewStudent("6666666666", "Bea", nil)
	require.NoError(t, repos.Students.Create(ctx, student))
	require.NoError(t, repos.Students.Create(ctx, keep))

	linked := newUser("ana", models.RoleStudent)
	linked.LinkedStudentID = &student.ID
	other := newUser("bea", models.RoleStudent)
	other.LinkedStudentID = &keep.ID
	require.NoError(t, repos.Users.Create(ctx, linked))
	require.NoError(t, repos.Users.Create(ctx, other))

	removed, err := repos.Students.DeleteWithLinkedUsers(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = repos.Students.GetByID(ctx, student.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	_, err = repos.Users.GetByID(ctx, linked.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = repos.Users.GetByID(ctx, other.ID)
	assert.NoError(t, err)
	_, err = repos.Students.GetByID(ctx, keep.ID)
	assert.NoError(t, err)
}

func testDeleteUnknown(t *testing.T, repos *repositories.Repositories) {
	ctx := context.Background()

	student := NewStudent("7777777777", "Ana", nil)
	require.NoError(t, repos.Students.Create(ctx, student))

	_, err := repos.Students.DeleteWithLinkedUsers(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)

	all, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeAll})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
