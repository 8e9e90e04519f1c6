package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"porchlight/internal/config"
	"porchlight/internal/services"
	"porchlight/internal/tasks"
	"porchlight/internal/utils"
	"porchlight/internal/utils/logger"
)

// Server wires the HTTP surface together: echo, the shared services and the
// middleware stack.
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	db      *gorm.DB
	redis   *utils.RedisClient
	chats   *services.ChatStore
	goformz *services.GoFormzClient
	storage *services.S3Service
	tasks   *tasks.TaskClient
	log     *logger.Logger
}

// CustomValidator adapts go-playground/validator to echo's Validate hook.
type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func NewServer(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *utils.RedisClient,
	chats *services.ChatStore,
	goformz *services.GoFormzClient,
	storage *services.S3Service,
	taskClient *tasks.TaskClient,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = errorHandler(logger.New("http"))

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowCredentials: true,
		AllowOriginFunc:  func(origin string) (bool, error) { return true, nil },
	}))

	s := &Server{
		echo:    e,
		config:  cfg,
		db:      db,
		redis:   redisClient,
		chats:   chats,
		goformz: goformz,
		storage: storage,
		tasks:   taskClient,
		log:     logger.New("api"),
	}

	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.log.Info("listening on %s", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// errorHandler keeps unhandled errors out of response bodies. Echo HTTP
// errors pass their status and public message through; everything else is
// logged and answered with a generic 500.
func errorHandler(log *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Something went wrong"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				message = msg
			}
		} else {
			_ = log.Error(fmt.Sprintf("unhandled error on %s %s", c.Request().Method, c.Path()), err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, map[string]string{"error": message})
	}
}

// healthCheck reports the state of each dependency without failing the whole
// endpoint when an optional one is degraded.
func (s *Server) healthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	checks := map[string]string{
		"database": "ok",
		"redis":    "ok",
		"firebase": "ok",
		"goformz":  "ok",
	}
	healthy := true

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unreachable"
		healthy = false
	}
	if err := s.redis.HealthCheck(ctx); err != nil {
		checks["redis"] = "unreachable"
		healthy = false
	}
	if !config.FirebaseEnabled() {
		checks["firebase"] = "disabled"
	}
	if !s.goformz.Enabled() {
		checks["goformz"] = "disabled"
	}

	status := http.StatusOK
	state := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	return c.JSON(status, map[string]interface{}{
		"status": state,
		"checks": checks,
	})
}
