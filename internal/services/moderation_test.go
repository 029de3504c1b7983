package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-thumbnails/internal/models"
	"level-thumbnails/pkg/apperrors"
)

func newResolver(t *testing.T) (*ModerationResolver, *fakeFiles, *fakeStore, *fakePurger) {
	t.Helper()
	files := newFakeFiles()
	store := newFakeStore()
	purger := &fakePurger{}
	return NewModerationResolver(store, files, purger), files, store, purger
}

func seedSubmission(t *testing.T, store *fakeStore, files *fakeFiles, userID, levelID int64) int64 {
	t.Helper()
	sub := models.Submission{
		LevelID:   levelID,
		UserID:    userID,
		Status:    models.StatusPending,
		ImagePath: files.Pending(userID, levelID),
	}
	require.NoError(t, store.Create(context.Background(), &sub))
	require.NoError(t, files.Write(sub.ImagePath, []byte("pending")))
	return sub.ID
}

var moderator = &models.User{ID: 99, Role: models.RoleModerator}

func TestResolveAccept(t *testing.T) {
	resolver, files, store, purger := newResolver(t)
	id := seedSubmission(t, store, files, 7, 42)

	reason := "looks good"
	require.NoError(t, resolver.Resolve(context.Background(), moderator, id, true, &reason))

	assert.False(t, files.Exists("uploads/7_42.png"))
	data, err := files.Read("thumbnails/42.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("pending"), data)

	sub, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, sub.Status)
	require.NotNil(t, sub.DecidedBy)
	assert.Equal(t, moderator.ID, *sub.DecidedBy)
	assert.Equal(t, []int64{42}, purger.purged())
}

func TestResolveReject(t *testing.T) {
	resolver, files, store, purger := newResolver(t)
	id := seedSubmission(t, store, files, 7, 42)

	require.NoError(t, resolver.Resolve(context.Background(), moderator, id, false, nil))

	assert.False(t, files.Exists("uploads/7_42.png"))
	assert.False(t, files.Exists("thumbnails/42.png"))

	sub, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, sub.Status)
	assert.Empty(t, purger.purged())
}

func TestResolveRejectMissingFileStillResolves(t *testing.T) {
	resolver, files, store, _ := newResolver(t)
	id := seedSubmission(t, store, files, 7, 42)
	require.NoError(t, files.Delete("uploads/7_42.png"))

	require.NoError(t, resolver.Resolve(context.Background(), moderator, id, false, nil))

	sub, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, sub.Status)
}

func TestResolveTwiceConflicts(t *testing.T) {
	resolver, files, store, _ := newResolver(t)
	id := seedSubmission(t, store, files, 7, 42)

	require.NoError(t, resolver.Resolve(context.Background(), moderator, id, false, nil))
	err := resolver.Resolve(context.Background(), moderator, id, true, nil)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyResolved)
}

func TestResolveForbiddenForRegularUsers(t *testing.T) {
	resolver, files, store, _ := newResolver(t)
	id := seedSubmission(t, store, files, 7, 42)

	for _, role := range []models.Role{models.RoleUser, models.RoleVerified} {
		err := resolver.Resolve(context.Background(), &models.User{ID: 1, Role: role}, id, true, nil)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	}

	sub, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)
}

func TestResolveUnknownSubmission(t *testing.T) {
	resolver, _, _, _ := newResolver(t)
	err := resolver.Resolve(context.Background(), moderator, 404, true, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestResolveAcceptFileFailureKeepsRowPending(t *testing.T) {
	resolver, files, store, purger := newResolver(t)
	id := seedSubmission(t, store, files, 7, 42)
	files.renameErr = &apperrors.StorageError{Op: "rename", Err: context.DeadlineExceeded}

	err := resolver.Resolve(context.Background(), moderator, id, true, nil)
	assert.True(t, apperrors.IsStorage(err))

	sub, err := store.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Empty(t, purger.purged())
}
