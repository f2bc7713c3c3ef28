package management

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/internal/service/course"
	"CourseHub/pkg/logger"
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const maxImageSizeBytes = 5 << 20

type courseRepo interface {
	NewCourse(ctx context.Context, course *models.Course) (uuid.UUID, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListCourses(ctx context.Context, limit, offset int) ([]models.Course, error)
	SetImageObjectKey(ctx context.Context, id uuid.UUID, objectKey string) error
}

type searchIndex interface {
	Index(ctx context.Context, course models.Course) error
}

type imageStore interface {
	UploadImage(ctx context.Context, courseID uuid.UUID, filename string, reader io.Reader, size int64, contentType string) (objectKey string, err error)
	DeleteImage(ctx context.Context, objectKey string) error
}

type CourseManagementService struct {
	log         logger.Log
	courseRepo  courseRepo
	searchIndex searchIndex
	imageStore  imageStore
	images      *course.ImageURLs
}

// NewCourseManagementService wires the catalog write side. index and store
// are optional and may be nil.
func NewCourseManagementService(log logger.Log, c courseRepo, index searchIndex, store imageStore, images *course.ImageURLs) *CourseManagementService {
	return &CourseManagementService{
		log:         log,
		courseRepo:  c,
		searchIndex: index,
		imageStore:  store,
		images:      images,
	}
}

// CreateCourse stores the course and indexes it for search. An indexing
// failure is logged, the course stays created.
func (s *CourseManagementService) CreateCourse(ctx context.Context, c models.Course) (uuid.UUID, error) {
	id, err := s.courseRepo.NewCourse(ctx, &c)
	if err != nil {
		return uuid.Nil, err
	}
	s.index(ctx, c)
	return id, nil
}

// Reindex pushes every course into the search index.
func (s *CourseManagementService) Reindex(ctx context.Context) (int, error) {
	if s.searchIndex == nil {
		return 0, nil
	}
	const page = 100
	indexed := 0
	for offset := 0; ; offset += page {
		courses, err := s.courseRepo.ListCourses(ctx, page, offset)
		if err != nil {
			return indexed, err
		}
		for _, c := range courses {
			if err := s.searchIndex.Index(ctx, c); err != nil {
				return indexed, err
			}
			indexed++
		}
		if len(courses) < page {
			return indexed, nil
		}
	}
}

func (s *CourseManagementService) UploadImage(
	ctx context.Context,
	rawCourseID string,
	filename string,
	reader io.Reader,
	size int64,
	contentType string,
) (string, error) {
	if s.imageStore == nil {
		return "", app_errors.ErrImagesDisabled
	}
	courseID, err := uuid.Parse(strings.TrimSpace(rawCourseID))
	if err != nil {
		return "", app_errors.ErrCourseNotFound
	}
	c, err := s.courseRepo.CourseByID(ctx, courseID)
	if err != nil {
		return "", err
	}

	if size <= 0 || size > maxImageSizeBytes {
		return "", app_errors.ErrFileSize
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", app_errors.ErrNotImage
	}

	objectKey, err := s.imageStore.UploadImage(ctx, courseID, filename, reader, size, contentType)
	if err != nil {
		s.log.ErrorErr("failed to upload course image", err, "course_id", courseID)
		return "", err
	}
	if err := s.courseRepo.SetImageObjectKey(ctx, courseID, objectKey); err != nil {
		s.log.ErrorErr("failed to save image key", err, "course_id", courseID)
		return "", err
	}

	if c.ImageObjectKey != "" && c.ImageObjectKey != objectKey {
		if err := s.imageStore.DeleteImage(ctx, c.ImageObjectKey); err != nil {
			s.log.ErrorErr("failed to delete previous image", err, "object_key", c.ImageObjectKey)
		}
	}
	s.images.Forget(c.ImageObjectKey)
	s.images.Forget(objectKey)

	return s.images.URL(ctx, objectKey), nil
}

func (s *CourseManagementService) index(ctx context.Context, c models.Course) {
	if s.searchIndex == nil {
		return
	}
	if err := s.searchIndex.Index(ctx, c); err != nil {
		s.log.ErrorErr("error indexing course", err, "course_id", c.ID)
	}
}
