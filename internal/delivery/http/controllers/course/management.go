package course

import (
	"CourseHub/internal/app_errors"
	"CourseHub/internal/delivery/http/controllers"
	"CourseHub/pkg/logger"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ManagementService interface {
	UploadImage(ctx context.Context, courseID string, filename string, reader io.Reader, size int64, contentType string) (string, error)
}

type ManagementHandler struct {
	log     logger.Log
	service ManagementService
}

func NewManagementHandler(l logger.Log, s ManagementService) *ManagementHandler {
	return &ManagementHandler{
		log:     l,
		service: s,
	}
}

// UploadImage takes a multipart "image" field and replaces the course cover.
func (h *ManagementHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		controllers.Fail(c, http.StatusBadRequest, "image file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		controllers.Fail(c, http.StatusBadRequest, "cannot read image file")
		return
	}
	defer file.Close()

	url, err := h.service.UploadImage(
		c.Request.Context(),
		c.Param("id"),
		fileHeader.Filename,
		file,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, app_errors.ErrCourseNotFound):
			controllers.Fail(c, http.StatusNotFound, "Course not found")
		case errors.Is(err, app_errors.ErrNotImage), errors.Is(err, app_errors.ErrFileSize):
			controllers.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app_errors.ErrImagesDisabled):
			controllers.Fail(c, http.StatusServiceUnavailable, err.Error())
		default:
			h.log.ErrorErr("course image upload failed", err, "course_id", c.Param("id"))
			controllers.Fail(c, http.StatusInternalServerError, "Server error while uploading image")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "image": url})
}
