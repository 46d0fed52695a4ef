package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/app/repositories/memory"
	"github.com/yigit/catequesis/internal/app/repositories/repotest"
)

func setup(t *testing.T) (*repositories.Repositories, *AuthorizationService) {
	t.Helper()
	repos := memory.NewRepositories(memory.NewDB())
	return repos, NewAuthorizationService(repos.Users, repos.Groups)
}

func visible(t *testing.T, repos *repositories.Repositories, svc *AuthorizationService, id *models.Identity) []*models.Student {
	t.Helper()
	filter, err := svc.StudentFilter(context.Background(), id)
	require.NoError(t, err)
	students, err := repos.Students.List(context.Background(), filter)
	require.NoError(t, err)
	return students
}

func TestStudentFilterByRole(t *testing.T) {
	ctx := context.Background()
	repos, svc := setup(t)

	catechist := &models.User{Username: "lucia", Role: models.RoleCatechist, PasswordHash: "x"}
	idle := &models.User{Username: "pedro", Role: models.RoleCatechist, PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, catechist))
	require.NoError(t, repos.Users.Create(ctx, idle))

	led := &models.Group{Name: "Lucía", CatechistID: &catechist.ID}
	other := &models.Group{Name: "Otro"}
	require.NoError(t, repos.Groups.Create(ctx, led))
	require.NoError(t, repos.Groups.Create(ctx, other))

	mine := repotest.NewStudent("100", "Ana", &led.ID)
	theirs := repotest.NewStudent("200", "Bea", &other.ID)
	loose := repotest.NewStudent("300", "Cira", nil)
	for _, s := range []*models.Student{mine, theirs, loose} {
		require.NoError(t, repos.Students.Create(ctx, s))
	}

	linked := &models.User{Username: "ana", Role: models.RoleStudent, PasswordHash: "x", LinkedStudentID: &mine.ID}
	unlinked := &models.User{Username: "nadie", Role: models.RoleStudent, PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, linked))
	require.NoError(t, repos.Users.Create(ctx, unlinked))

	admin := &models.Identity{UserID: uuid.New(), Role: models.RoleAdmin}
	assert.Len(t, visible(t, repos, svc, admin), 3)

	asCatechist := visible(t, repos, svc, &models.Identity{UserID: catechist.ID, Role: models.RoleCatechist})
	require.Len(t, asCatechist, 1)
	assert.Equal(t, mine.ID, asCatechist[0].ID)
	require.NotNil(t, asCatechist[0].Group)
	assert.Equal(t, "Lucía", asCatechist[0].Group.Name)

	assert.Empty(t, visible(t, repos, svc, &models.Identity{UserID: idle.ID, Role: models.RoleCatechist}))

	asStudent := visible(t, repos, svc, &models.Identity{UserID: linked.ID, Role: models.RoleStudent})
	require.Len(t, asStudent, 1)
	assert.Equal(t, mine.ID, asStudent[0].ID)

	assert.Empty(t, visible(t, repos, svc, &models.Identity{UserID: unlinked.ID, Role: models.RoleStudent}))
	assert.Empty(t, visible(t, repos, svc, &models.Identity{UserID: uuid.New(), Role: models.RoleStudent}))
	assert.Empty(t, visible(t, repos, svc, nil))
}
