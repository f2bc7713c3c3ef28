package management

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/internal/service/course"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCourseRepo struct {
	mock.Mock
}

func (m *MockCourseRepo) NewCourse(ctx context.Context, c *models.Course) (uuid.UUID, error) {
	args := m.Called(ctx, c)
	if args.Error(1) == nil {
		c.ID = args.Get(0).(uuid.UUID)
	}
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCourseRepo) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCourseRepo) ListCourses(ctx context.Context, limit, offset int) ([]models.Course, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Course), args.Error(1)
}

func (m *MockCourseRepo) SetImageObjectKey(ctx context.Context, id uuid.UUID, objectKey string) error {
	return m.Called(ctx, id, objectKey).Error(0)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Index(ctx context.Context, c models.Course) error {
	return m.Called(ctx, c).Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) UploadImage(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, courseID, filename, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) DeleteImage(ctx context.Context, objectKey string) error {
	return m.Called(ctx, objectKey).Error(0)
}

func (m *MockImageStore) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	args := m.Called(ctx, objectKey)
	return args.String(0), args.Error(1)
}

func TestCourseManagementService_CreateCourse(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCourseRepo)
	index := new(MockIndex)
	id := uuid.New()

	repo.On("NewCourse", ctx, mock.AnythingOfType("*models.Course")).Return(id, nil)
	index.On("Index", ctx, mock.MatchedBy(func(c models.Course) bool { return c.ID == id })).Return(errors.New("es down"))

	s := NewCourseManagementService(logger.NewDiscard(), repo, index, nil, nil)

	got, err := s.CreateCourse(ctx, models.Course{Title: "Go", Price: decimal.RequireFromString("59.99")})
	require.NoError(t, err, "index failures do not fail creation")
	assert.Equal(t, id, got)
	index.AssertExpectations(t)
}

func TestCourseManagementService_Reindex(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCourseRepo)
	index := new(MockIndex)

	courses := []models.Course{{ID: uuid.New()}, {ID: uuid.New()}, {ID: uuid.New()}}
	repo.On("ListCourses", ctx, 100, 0).Return(courses, nil)
	index.On("Index", ctx, mock.Anything).Return(nil)

	s := NewCourseManagementService(logger.NewDiscard(), repo, index, nil, nil)
	n, err := s.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	none := NewCourseManagementService(logger.NewDiscard(), repo, nil, nil, nil)
	n, err = none.Reindex(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCourseManagementService_UploadImage(t *testing.T) {
	ctx := context.Background()
	c := models.Course{ID: uuid.New(), ImageObjectKey: "courses/old/cover.jpg", CreatedAt: time.Now()}
	body := strings.NewReader("png-bytes")

	t.Run("stored and previous removed", func(t *testing.T) {
		repo := new(MockCourseRepo)
		store := new(MockImageStore)
		repo.On("CourseByID", ctx, c.ID).Return(&c, nil)
		store.On("UploadImage", ctx, c.ID, "cover.png", body, int64(9), "image/png").Return("courses/new/cover.png", nil)
		repo.On("SetImageObjectKey", ctx, c.ID, "courses/new/cover.png").Return(nil)
		store.On("DeleteImage", ctx, "courses/old/cover.jpg").Return(nil)
		store.On("PresignedURL", ctx, "courses/new/cover.png").Return("https://img/new", nil)

		s := NewCourseManagementService(logger.NewDiscard(), repo, nil, store,
			course.NewImageURLs(logger.NewDiscard(), store, time.Minute))

		url, err := s.UploadImage(ctx, c.ID.String(), "cover.png", body, 9, "")
		require.NoError(t, err)
		assert.Equal(t, "https://img/new", url)
		store.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("rejects", func(t *testing.T) {
		repo := new(MockCourseRepo)
		store := new(MockImageStore)
		repo.On("CourseByID", ctx, c.ID).Return(&c, nil)
		s := NewCourseManagementService(logger.NewDiscard(), repo, nil, store, nil)

		_, err := s.UploadImage(ctx, c.ID.String(), "notes.txt", body, 9, "text/plain")
		assert.ErrorIs(t, err, app_errors.ErrNotImage)

		_, err = s.UploadImage(ctx, c.ID.String(), "huge.png", body, maxImageSizeBytes+1, "image/png")
		assert.ErrorIs(t, err, app_errors.ErrFileSize)

		_, err = s.UploadImage(ctx, "bogus", "cover.png", body, 9, "image/png")
		assert.ErrorIs(t, err, app_errors.ErrCourseNotFound)

		disabled := NewCourseManagementService(logger.NewDiscard(), repo, nil, nil, nil)
		_, err = disabled.UploadImage(ctx, c.ID.String(), "cover.png", body, 9, "image/png")
		assert.ErrorIs(t, err, app_errors.ErrImagesDisabled)

		store.AssertNotCalled(t, "UploadImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
