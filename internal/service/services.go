package service

import (
	"CourseHub/internal/service/auth"
	"CourseHub/internal/service/course/management"
	"CourseHub/internal/service/course/query"
	"CourseHub/internal/service/subscription"
)

type Collection struct {
	*auth.AuthService
	*query.CourseQueryService
	*management.CourseManagementService
	*subscription.Service
}
