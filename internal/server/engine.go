package server

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/dhis2-sre/im-calendar/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	redocMiddleware "github.com/go-openapi/runtime/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// ServiceName identifies this service in traces.
const ServiceName = "im-calendar"

// GetEngine returns the engine and the group under basePath on which routes are registered. The
// group serves the health check and the API documentation.
func GetEngine(logger *slog.Logger, basePath string, allowedOrigins []string) (*gin.Engine, *gin.RouterGroup) {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AddAllowHeaders("authorization")
	corsConfig.AddExposeHeaders(middleware.CorrelationIDHeader)
	r.Use(cors.New(corsConfig))

	r.Use(otelgin.Middleware(ServiceName))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.ErrorHandler())

	router := r.Group(basePath)

	redoc(router, basePath)

	router.GET("/health", health)

	return r, router
}

func health(c *gin.Context) {
	// swagger:route GET /health health
	//
	// Health status
	//
	// Show the health status of the service
	//
	// responses:
	//   200: Health
	c.JSON(http.StatusOK, gin.H{
		"status": "up",
	})
}

func redoc(router *gin.RouterGroup, basePath string) {
	router.StaticFile("/swagger.yaml", "./swagger/swagger.yaml")

	redocOpts := redocMiddleware.RedocOpts{
		BasePath: basePath,
		SpecURL:  "./swagger.yaml",
	}
	router.GET("/docs", func(c *gin.Context) {
		redocHandler := redocMiddleware.Redoc(redocOpts, nil)
		redocHandler.ServeHTTP(c.Writer, c.Request)
	})
}
