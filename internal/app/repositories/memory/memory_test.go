package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/catequesis/internal/app/models"
	"github.com/yigit/catequesis/internal/app/repositories"
	"github.com/yigit/catequesis/internal/app/repositories/repotest"
	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

func TestMemoryRepositories(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repositories.Repositories {
		return NewRepositories(NewDB())
	})
}

func TestUnavailableStore(t *testing.T) {
	db := NewDB()
	repos := NewRepositories(db)
	ctx := context.Background()

	require.NoError(t, repos.Store.Ping(ctx))
	db.SetAvailable(false)

	assert.ErrorIs(t, repos.Store.Ping(ctx), apperrors.ErrStorageUnavailable)
	_, err := repos.Students.List(ctx, models.StudentFilter{Scope: models.ScopeAll})
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)
	_, err = repos.Users.GetByUsername(ctx, "admin")
	assert.ErrorIs(t, err, apperrors.ErrStorageUnavailable)

	db.SetAvailable(true)
	assert.NoError(t, repos.Store.Ping(ctx))
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	repos := NewRepositories(NewDB())
	ctx := context.Background()

	student := repotest.NewStudent("123", "Ana", nil)
	require.NoError(t, repos.Students.Create(ctx, student))

	got, err := repos.Students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	got.PersonalData.FirstName = "Changed"

	again, err := repos.Students.GetByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", again.PersonalData.FirstName)
}
