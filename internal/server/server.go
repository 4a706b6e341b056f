package server

import (
	"errors"
	"time"

	"blog/internal/handlers"
	"blog/internal/middleware"
	"blog/internal/repositories"
	"blog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Repositories groups the storage backends the services run on.
type Repositories struct {
	Users  repositories.UserRepository
	Topics repositories.TopicRepository
	Posts  repositories.PostRepository
}

// NewGORMRepositories builds database-backed repositories on db.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:  repositories.NewGORMUserRepository(db),
		Topics: repositories.NewGORMTopicRepository(db),
		Posts:  repositories.NewGORMPostRepository(db),
	}
}

// NewMemoryRepositories builds in-memory repositories. Data is lost on exit.
func NewMemoryRepositories() Repositories {
	users := repositories.NewMockUserRepository()
	topics := repositories.NewMockTopicRepository()
	return Repositories{
		Users:  users,
		Topics: topics,
		Posts:  repositories.NewMockPostRepository(users, topics),
	}
}

// Options configures New.
type Options struct {
	JWTSecret        string
	JWTExpiration    time.Duration
	BcryptCost       int
	UserDeletePolicy services.UserDeletePolicy
	// Publisher receives post events. Nil disables publishing.
	Publisher services.EventPublisher
	// HealthCheck reports storage health on /health. Nil means always healthy.
	HealthCheck func() error
	// RequestLog enables the per-request access log.
	RequestLog bool
}

// New wires services and handlers on repos and returns the Fiber app.
func New(repos Repositories, opts Options) *fiber.App {
	tokenService := services.NewTokenService(opts.JWTSecret, opts.JWTExpiration)
	authService := services.NewAuthService(repos.Users, tokenService, opts.BcryptCost)
	userService := services.NewUserService(repos.Users, repos.Posts, opts.UserDeletePolicy, opts.BcryptCost)
	topicService := services.NewTopicService(repos.Topics, repos.Posts)
	postService := services.NewPostService(repos.Posts, repos.Topics, repos.Users, opts.Publisher)

	app := fiber.New(fiber.Config{
		AppName:      "blog",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.RequestLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(middleware.Metrics())

	app.Get("/health", healthHandler(opts.HealthCheck, opts.Publisher != nil))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	apiV1 := app.Group("/api/v1")

	// Public routes must be registered before the authenticated group.
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)

	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewUserHandler(userService).RegisterRoutes(protected)
	handlers.NewTopicHandler(topicService).RegisterRoutes(protected)
	handlers.NewPostHandler(postService).RegisterRoutes(protected)

	return app
}

func healthHandler(check func() error, eventsEnabled bool) fiber.Handler {
	events := "disabled"
	if eventsEnabled {
		events = "enabled"
	}
	return func(c *fiber.Ctx) error {
		status, code, storage := "healthy", fiber.StatusOK, "ok"
		if check != nil {
			if err := check(); err != nil {
				log.Warn().Err(err).Msg("health check failed")
				status, code, storage = "unhealthy", fiber.StatusServiceUnavailable, err.Error()
			}
		}
		return c.Status(code).JSON(fiber.Map{
			"status":   status,
			"time":     time.Now().Format(time.RFC3339),
			"database": storage,
			"events":   events,
		})
	}
}

// errorHandler renders errors that escape the handlers, such as unknown routes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	} else {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{
		"message": message,
		"error":   message,
	})
}
