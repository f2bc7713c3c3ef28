package course

import (
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockPresigner struct {
	mock.Mock
}

func (m *MockPresigner) PresignedURL(ctx context.Context, objectKey string) (string, error) {
	args := m.Called(ctx, objectKey)
	return args.String(0), args.Error(1)
}

func TestImageURLs_CachesPresignedURL(t *testing.T) {
	ctx := context.Background()
	signer := new(MockPresigner)
	signer.On("PresignedURL", ctx, "courses/a/cover.png").Return("https://img/a?sig=1", nil).Once()

	urls := NewImageURLs(logger.NewDiscard(), signer, time.Minute)
	assert.Equal(t, "https://img/a?sig=1", urls.URL(ctx, "courses/a/cover.png"))
	assert.Equal(t, "https://img/a?sig=1", urls.URL(ctx, "courses/a/cover.png"))
	signer.AssertNumberOfCalls(t, "PresignedURL", 1)

	signer.On("PresignedURL", ctx, "courses/a/cover.png").Return("https://img/a?sig=2", nil).Once()
	urls.Forget("courses/a/cover.png")
	assert.Equal(t, "https://img/a?sig=2", urls.URL(ctx, "courses/a/cover.png"))
}

func TestImageURLs_Failures(t *testing.T) {
	ctx := context.Background()
	signer := new(MockPresigner)
	signer.On("PresignedURL", ctx, "broken").Return("", errors.New("minio down"))

	urls := NewImageURLs(logger.NewDiscard(), signer, time.Minute)
	assert.Empty(t, urls.URL(ctx, "broken"))
	assert.Empty(t, urls.URL(ctx, ""))

	var disabled *ImageURLs
	assert.Nil(t, NewImageURLs(logger.NewDiscard(), nil, time.Minute))
	assert.Empty(t, disabled.URL(ctx, "anything"))
}
