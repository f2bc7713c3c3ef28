package http

import (
	"CourseHub/internal/delivery/http/controllers"
	"CourseHub/internal/delivery/http/controllers/auth"
	"CourseHub/internal/delivery/http/controllers/course"
	"CourseHub/internal/delivery/http/controllers/middleware"
	"CourseHub/internal/delivery/http/controllers/subscription"
	"CourseHub/internal/models"
	"CourseHub/internal/service"
	"CourseHub/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	AllowedOrigins []string
	PromoLimiter   *middleware.KeyedLimiter
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func InitRoutes(l logger.Log, u service.Collection, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	statusController := controllers.NewStatusHandler()
	authMiddleware := middleware.NewAuthMiddlewareProvider(l, u.AuthService)
	authController := auth.NewAuthHandler(l, u.AuthService)
	courseQueryController := course.NewQueryHandler(l, u.CourseQueryService)
	courseManagementController := course.NewManagementHandler(l, u.CourseManagementService)
	subscriptionController := subscription.NewSubscriptionHandler(l, u.Service, u.CourseQueryService)

	r.NoRoute(statusController.NotFound)
	r.GET("/", statusController.Root)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	api := r.Group("/api", middleware.LoggingMiddleware(l))
	{
		api.GET("/health", statusController.Health)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/signup", authController.Signup)
			authGroup.POST("/login", authController.Login)
			authGroup.POST("/refresh", authController.Refresh)
			authGroup.GET("/me", authMiddleware.AuthMiddleware, authController.Me)
		}

		courses := api.Group("/courses")
		{
			courses.GET("", courseQueryController.ListCourses)
			courses.GET("/:id", courseQueryController.CourseByID)

			admin := courses.Group("", authMiddleware.AuthMiddleware, middleware.RequireRoles(models.AdminRole))
			{
				admin.PUT("/:id/image", courseManagementController.UploadImage)
			}
		}

		subscribe := api.Group("/subscribe", authMiddleware.AuthMiddleware)
		{
			subscribe.POST("", subscriptionController.Subscribe)
			subscribe.POST("/validate-promo", middleware.RateLimit(opts.PromoLimiter), subscriptionController.ValidatePromo)
			subscribe.GET("/my-courses", subscriptionController.MyCourses)
			subscribe.GET("/check/:courseId", subscriptionController.Check)
		}
	}
	return r
}
