package bootstrap

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpapi "github.com/loan-guidance/loan-guidance-backend/internal/api/http"
	guidancehttp "github.com/loan-guidance/loan-guidance-backend/internal/api/http/guidance"
	"github.com/loan-guidance/loan-guidance-backend/internal/api/http/middleware"
	"github.com/loan-guidance/loan-guidance-backend/internal/guidance/service"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	Guidance       *service.GuidanceService
	Cache          httpapi.Pinger
	DB             httpapi.Pinger
	Logger         *slog.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(dep.Logger))
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Guidance.Status, dep.Cache, dep.DB)
	healthHandler.RegisterRoutes(r)

	r.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	limiter := middleware.NewRateLimiter(dep.RateLimitRPS, dep.RateLimitBurst)
	guidanceHandler := guidancehttp.NewHandler(dep.Guidance, dep.Logger)
	guidanceHandler.Register(r, limiter.Middleware())

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
