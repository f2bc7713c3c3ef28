package postgres

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/models"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const courseColumns = `id, title, description, price, image, image_object_key, category, instructor, duration, level, created_at`

type CoursePostgres struct {
	db DB
}

func NewCoursePostgres(db DB) *CoursePostgres {
	return &CoursePostgres{db: db}
}

func (r *CoursePostgres) NewCourse(ctx context.Context, course *models.Course) (uuid.UUID, error) {
	if course.ID == uuid.Nil {
		course.ID = uuid.New()
	}
	if course.CreatedAt.IsZero() {
		course.CreatedAt = time.Now().UTC()
	}
	if course.Level == "" {
		course.Level = models.LevelBeginner
	}
	query := `
		INSERT INTO courses (
			id, title, description, price, image, image_object_key,
			category, instructor, duration, level, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11
		)
	`
	_, err := r.db.Exec(
		ctx,
		query,
		course.ID,
		course.Title,
		course.Description,
		course.Price,
		course.Image,
		course.ImageObjectKey,
		course.Category,
		course.Instructor,
		course.Duration,
		course.Level,
		course.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert course: %w", err)
	}
	return course.ID, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`

	course, err := scanCourse(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// ListCourses returns a page of the catalog, newest first.
func (r *CoursePostgres) ListCourses(ctx context.Context, limit, offset int) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	return collectCourses(rows)
}

func (r *CoursePostgres) CountCourses(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return total, nil
}

// SearchCourses is the catalog search used when no search cluster is
// configured. It matches title, description and category.
func (r *CoursePostgres) SearchCourses(ctx context.Context, q string, limit, offset int) ([]models.Course, int, error) {
	pattern := "%" + likeEscaper.Replace(q) + "%"
	where := `WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\' OR category ILIKE $1 ESCAPE '\'`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM courses `+where, pattern).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count course search: %w", err)
	}

	query := `SELECT ` + courseColumns + ` FROM courses ` + where + ` ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, pattern, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search courses: %w", err)
	}
	courses, err := collectCourses(rows)
	if err != nil {
		return nil, 0, err
	}
	return courses, total, nil
}

func (r *CoursePostgres) SetImageObjectKey(ctx context.Context, id uuid.UUID, objectKey string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE courses SET image_object_key = $2 WHERE id = $1`, id, objectKey)
	if err != nil {
		return fmt.Errorf("failed to update course image: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func scanCourse(row pgx.Row) (*models.Course, error) {
	course := &models.Course{}
	err := row.Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Price,
		&course.Image,
		&course.ImageObjectKey,
		&course.Category,
		&course.Instructor,
		&course.Duration,
		&course.Level,
		&course.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func collectCourses(rows pgx.Rows) ([]models.Course, error) {
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate courses: %w", err)
	}
	return courses, nil
}
