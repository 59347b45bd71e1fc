package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prepdesk/prepdesk-backend/internal/config"
	"github.com/prepdesk/prepdesk-backend/internal/handler"
	"github.com/prepdesk/prepdesk-backend/internal/middleware"
	"github.com/prepdesk/prepdesk-backend/internal/response"
	"github.com/prepdesk/prepdesk-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Catalog    *handler.CatalogHandler
	Enrollment *handler.EnrollmentHandler
	Session    *handler.SessionHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to AllowedOrigins when set; otherwise allow all so dev
	// works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware())
	{
		auth.POST("/signup", handlers.Auth.SignUp)
		auth.POST("/signin", handlers.Auth.SignIn)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	userAPI := router.Group("/api/v1")
	userAPI.Use(middleware.RequireUserJWT(authService))
	{
		userAPI.GET("/me", handlers.Auth.Me)

		// Catalog reads.
		userAPI.GET("/courses", handlers.Catalog.ListCourses)
		userAPI.GET("/courses/:course_id", handlers.Catalog.GetCourse)
		userAPI.GET("/courses/:course_id/categories", handlers.Catalog.ListCategories)
		userAPI.GET("/categories/:category_id/question-sets", handlers.Catalog.ListQuestionSets)
		userAPI.GET("/question-sets/:set_id", handlers.Catalog.GetQuestionSet)

		// Enrollment workflow.
		userAPI.POST("/enrollments", handlers.Enrollment.Request)
		userAPI.GET("/enrollments", handlers.Enrollment.ListMine)

		// Test session lifecycle.
		userAPI.POST("/sessions", handlers.Session.Create)
		userAPI.GET("/sessions", handlers.Session.List)
		userAPI.GET("/sessions/:session_id", handlers.Session.Get)
		userAPI.PATCH("/sessions/:session_id/response", handlers.Session.PatchResponse)
		userAPI.POST("/sessions/:session_id/submit", handlers.Session.Submit)
		userAPI.GET("/sessions/:session_id/result", handlers.Session.Result)
		userAPI.GET("/sessions/:session_id/solutions", handlers.Session.Solutions)
		userAPI.GET("/results", handlers.Session.Results)
	}

	// ─── 3. WebSocket Group (Query-Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/sessions/:session_id/clock", handlers.WS.ClockStream)
	}

	// ─── 4. Admin Group (JWT + Role) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/courses", handlers.Catalog.CreateCourse)
		adminAPI.PUT("/courses/:course_id", handlers.Catalog.UpdateCourse)
		adminAPI.DELETE("/courses/:course_id", handlers.Catalog.DeleteCourse)

		adminAPI.POST("/categories", handlers.Catalog.CreateCategory)
		adminAPI.DELETE("/categories/:category_id", handlers.Catalog.DeleteCategory)

		adminAPI.POST("/question-sets", handlers.Catalog.CreateQuestionSet)
		adminAPI.PUT("/question-sets/:set_id", handlers.Catalog.UpdateQuestionSet)
		adminAPI.DELETE("/question-sets/:set_id", handlers.Catalog.DeleteQuestionSet)

		adminAPI.POST("/questions", handlers.Catalog.CreateQuestion)
		adminAPI.POST("/questions/bulk", handlers.Catalog.BulkCreateQuestions)
		adminAPI.PUT("/questions/:question_id", handlers.Catalog.UpdateQuestion)
		adminAPI.DELETE("/questions/:question_id", handlers.Catalog.DeleteQuestion)

		adminAPI.GET("/enrollments/pending", handlers.Enrollment.ListPending)
		adminAPI.POST("/enrollments/:enrollment_id/approve", handlers.Enrollment.Approve)
		adminAPI.POST("/enrollments/:enrollment_id/reject", handlers.Enrollment.Reject)
	}

	return router
}
