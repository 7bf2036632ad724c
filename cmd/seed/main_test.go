package main

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagevault/internal/auth"
	apperrors "imagevault/internal/errors"
	"imagevault/internal/imageproc"
	"imagevault/internal/model"
	"imagevault/internal/service"
)

type memoryUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (m *memoryUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return apperrors.ErrUserAlreadyExists
		}
	}
	m.users = append(m.users, *user)
	return nil
}

func (m *memoryUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.FindByUsernameOrEmail(ctx, username, "")
}

func (m *memoryUsers) FindByUsernameOrEmail(_ context.Context, username, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username || (email != "" && u.Email == email) {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

type memoryImages struct {
	mu     sync.Mutex
	images []model.Image
}

func (m *memoryImages) Create(_ context.Context, image *model.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, *image)
	return nil
}

func (m *memoryImages) ListByOwner(_ context.Context, ownerID string, _ *bool) ([]model.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Image
	for _, img := range m.images {
		if img.UserID == ownerID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memoryImages) DeleteByIDAndOwner(context.Context, string, string) (int64, error) {
	return 0, nil
}

func newServices(logger logrus.FieldLogger) (service.AuthService, service.ImageService, *memoryImages) {
	images := &memoryImages{}
	authService := service.NewAuthService(&memoryUsers{}, auth.NewJWTService("test-secret"), time.Minute, logger, nil)
	imageService := service.NewImageService(images, imageproc.NewProcessor(), logger, nil)
	return authService, imageService, images
}

func TestSeedDemo_IsIdempotent(t *testing.T) {
	logger, _ := test.NewNullLogger()
	authService, imageService, images := newServices(logger)
	ctx := context.Background()

	first, err := seedDemo(ctx, authService, imageService, logger, "alice", "alice@x.com", "Pw123!")
	require.NoError(t, err)
	assert.NotEmpty(t, first.AccessToken)
	assert.NotEmpty(t, first.ImageID)

	second, err := seedDemo(ctx, authService, imageService, logger, "alice", "alice@x.com", "Pw123!")
	require.NoError(t, err)
	assert.NotEmpty(t, second.AccessToken)
	assert.Empty(t, second.ImageID)

	require.Len(t, images.images, 1)
	assert.Equal(t, "test", images.images[0].Caption)
}

func TestSeedDemo_NeverLogsToken(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	authService, imageService, _ := newServices(logger)

	res, err := seedDemo(context.Background(), authService, imageService, logger, "alice", "alice@x.com", "Pw123!")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)

	require.NotEmpty(t, hook.AllEntries())
	for _, entry := range hook.AllEntries() {
		assert.NotContains(t, entry.Message, res.AccessToken)
		for k, v := range entry.Data {
			assert.NotContains(t, fmt.Sprint(v), res.AccessToken, "field %s", k)
		}
	}
}

func TestSeedDemo_WrongPasswordForExistingUser(t *testing.T) {
	logger, _ := test.NewNullLogger()
	authService, imageService, _ := newServices(logger)
	ctx := context.Background()

	_, err := seedDemo(ctx, authService, imageService, logger, "alice", "alice@x.com", "Pw123!")
	require.NoError(t, err)

	_, err = seedDemo(ctx, authService, imageService, logger, "alice", "alice@x.com", "other")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}
