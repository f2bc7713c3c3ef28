package course

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/delivery/http/controllers"
	"CourseHub/internal/models"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QueryService interface {
	CourseByID(ctx context.Context, id string) (*models.CoursePreview, error)
	ListCourses(ctx context.Context, query string, limit, offset int) ([]models.CoursePreview, int, error)
}

type QueryHandler struct {
	log     logger.Log
	service QueryService
}

func NewQueryHandler(log logger.Log, s QueryService) *QueryHandler {
	return &QueryHandler{
		log:     log,
		service: s,
	}
}

func (h *QueryHandler) CourseByID(c *gin.Context) {
	preview, err := h.service.CourseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, app_errors.ErrCourseNotFound) {
			controllers.Fail(c, http.StatusNotFound, "Course not found")
			return
		}
		h.log.ErrorErr("CourseByID failed", err, "course_id", c.Param("id"))
		controllers.Fail(c, http.StatusInternalServerError, "Server error while fetching course")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": preview})
}

func (h *QueryHandler) ListCourses(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			controllers.Fail(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = v
	}

	offset := 0
	if s := c.Query("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			controllers.Fail(c, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = v
	}

	previews, total, err := h.service.ListCourses(c.Request.Context(), c.Query("query"), limit, offset)
	if err != nil {
		h.log.ErrorErr("ListCourses failed", err)
		controllers.Fail(c, http.StatusInternalServerError, "Server error while fetching courses")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(previews),
		"total":   total,
		"data":    previews,
	})
}
