package query

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"CourseHub/internal/service/course"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type courseRepo interface {
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	ListCourses(ctx context.Context, limit, offset int) ([]models.Course, error)
	CountCourses(ctx context.Context) (int, error)
	SearchCourses(ctx context.Context, q string, limit, offset int) ([]models.Course, int, error)
}

type searchRepo interface {
	Search(ctx context.Context, query string, limit, offset int) ([]uuid.UUID, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CourseQueryService struct {
	log        logger.Log
	courseRepo courseRepo
	searchRepo searchRepo
	images     *course.ImageURLs
}

// NewCourseQueryService builds the catalog read side. searchRepo may be nil,
// in which case text search runs in postgres.
func NewCourseQueryService(log logger.Log, c courseRepo, s searchRepo, images *course.ImageURLs) *CourseQueryService {
	return &CourseQueryService{
		log:        log,
		courseRepo: c,
		searchRepo: s,
		images:     images,
	}
}

func (s *CourseQueryService) CourseByID(ctx context.Context, rawID string) (*models.CoursePreview, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, app_errors.ErrCourseNotFound
	}
	c, err := s.courseRepo.CourseByID(ctx, id)
	if err != nil {
		return nil, err
	}
	preview := s.Preview(ctx, *c)
	return &preview, nil
}

// ListCourses returns a page of the catalog, newest first, or the matches
// for query when it is not blank.
func (s *CourseQueryService) ListCourses(ctx context.Context, query string, limit, offset int) ([]models.CoursePreview, int, error) {
	limit, offset = clampPage(limit, offset)

	query = strings.TrimSpace(query)
	if query != "" {
		return s.search(ctx, query, limit, offset)
	}

	courses, err := s.courseRepo.ListCourses(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.courseRepo.CountCourses(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.previews(ctx, courses), total, nil
}

func (s *CourseQueryService) search(ctx context.Context, query string, limit, offset int) ([]models.CoursePreview, int, error) {
	if s.searchRepo == nil {
		courses, total, err := s.courseRepo.SearchCourses(ctx, query, limit, offset)
		if err != nil {
			return nil, 0, err
		}
		return s.previews(ctx, courses), total, nil
	}

	ids, total, err := s.searchRepo.Search(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("course search failed: %w", err)
	}

	courses := make([]models.Course, 0, len(ids))
	for _, id := range ids {
		c, err := s.courseRepo.CourseByID(ctx, id)
		if err != nil {
			// index can lag behind deletes; drop the stale document
			if errors.Is(err, app_errors.ErrCourseNotFound) {
				s.log.Warn("search hit without course", "course_id", id)
				if err := s.searchRepo.Delete(ctx, id); err != nil {
					s.log.ErrorErr("failed to drop stale search document", err, "course_id", id)
				}
				continue
			}
			return nil, 0, err
		}
		courses = append(courses, *c)
	}
	return s.previews(ctx, courses), total, nil
}

func (s *CourseQueryService) previews(ctx context.Context, courses []models.Course) []models.CoursePreview {
	out := make([]models.CoursePreview, 0, len(courses))
	for _, c := range courses {
		out = append(out, s.Preview(ctx, c))
	}
	return out
}

// Preview renders c for clients, swapping in a presigned URL when the
// course has an uploaded cover.
func (s *CourseQueryService) Preview(ctx context.Context, c models.Course) models.CoursePreview {
	return models.NewCoursePreview(c, s.images.URL(ctx, c.ImageObjectKey))
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
