package service_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/testhelpers"
	"github.com/foodgram/backend/internal/validation"
)

func TestListUsersOrderedByEmail(t *testing.T) {
	s := setup(t)
	for _, name := range []string{"zoe", "adam", "mike"} {
		testhelpers.CreateUser(t, s.db, name)
	}

	users, count, err := s.users.List(ctx, 0, service.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	require.Len(t, users, 2)
	assert.Equal(t, "adam", users[0].Username)
	assert.Equal(t, "mike", users[1].Username)
	assert.Nil(t, users[0].Avatar)
}

func TestGetUser(t *testing.T) {
	s := setup(t)
	_, err := s.users.Get(ctx, 0, 12345)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestAvatar(t *testing.T) {
	s := setup(t)
	user := testhelpers.CreateUser(t, s.db, "face")

	_, err := s.users.SetAvatar(ctx, user.ID, "")
	errs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, errs, "avatar")

	_, err = s.users.SetAvatar(ctx, user.ID, "data:image/png;base64,bm90IGFuIGltYWdl")
	_, ok = validation.AsErrors(err)
	require.True(t, ok)

	url, err := s.users.SetAvatar(ctx, user.ID, testhelpers.PNGDataURI(t))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://testserver/media/users/"))

	var reloaded models.User
	require.NoError(t, s.db.First(&reloaded, user.ID).Error)
	require.NotNil(t, reloaded.Avatar)
	first := filepath.Join(s.store.Root, *reloaded.Avatar)
	assert.FileExists(t, first)

	// replacing removes the old file
	_, err = s.users.SetAvatar(ctx, user.ID, testhelpers.PNGDataURI(t))
	require.NoError(t, err)
	_, statErr := os.Stat(first)
	assert.True(t, os.IsNotExist(statErr))

	rep, err := s.users.Get(ctx, 0, user.ID)
	require.NoError(t, err)
	require.NotNil(t, rep.Avatar)

	require.NoError(t, s.users.DeleteAvatar(ctx, user.ID))
	rep, err = s.users.Get(ctx, 0, user.ID)
	require.NoError(t, err)
	assert.Nil(t, rep.Avatar)
}
