package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/GoSim-25-26J-441/hio-docpipe/internal/api/http"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/api/http/middleware"
	authmw "github.com/GoSim-25-26J-441/hio-docpipe/internal/auth/middleware"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/query"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string
	Logger      *zap.Logger
	Query       *query.Service
	// Sink is pinged by /health. Nil reports the sink as disabled.
	Sink httpapi.Pinger
	// Auth guards the query routes. Nil leaves them open.
	Auth authmw.TokenVerifier
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := newEngine(dep.Logger, dep.CORSOrigins)

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Sink)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	queryHandler := httpapi.NewQueryHandler(dep.Query, dep.Logger)
	r.NoMethod(queryHandler.MethodNotAllowed)

	protected := r.Group("")
	if dep.Auth != nil {
		protected.Use(authmw.FirebaseAuthMiddleware(dep.Auth))
	}
	queryHandler.RegisterRoutes(protected, "/query")
	queryHandler.RegisterRoutes(protected.Group("/api/v1"), "/query", "/llm-query")

	return r
}

// BuildFunctionHandler serves the query responder the way an HTTP function
// is invoked: any path, POST only.
func BuildFunctionHandler(svc *query.Service, logger *zap.Logger, corsOrigins []string) *gin.Engine {
	r := newEngine(logger, corsOrigins)

	queryHandler := httpapi.NewQueryHandler(svc, logger)
	r.NoMethod(queryHandler.MethodNotAllowed)
	r.POST("/*path", queryHandler.Query)

	return r
}

func newEngine(logger *zap.Logger, corsOrigins []string) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(corsOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = corsOrigins
	}
	r.Use(cors.New(cc))
	r.Use(middleware.RequestIDMiddleware())

	return r
}
