package cmd

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"pos-backend/internal/config"
	"pos-backend/internal/handlers"
	"pos-backend/internal/middleware"
	"pos-backend/internal/notify"
)

func newRouter(cfg *config.Config, api handlers.API, hub *notify.Hub, ping handlers.Pinger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	r.GET("/", handlers.Home())
	r.GET("/healthz", handlers.Health(ping))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", gin.WrapF(hub.ServeWS))
	r.Static("/static", cfg.StaticDir)

	group := r.Group("/api")
	if cfg.JWTSecret != "" {
		group.Use(middleware.AuthGuard(cfg.JWTSecret))
	}
	handlers.RegisterRoutes(group, api)

	return r
}

func corsHandler(cfg *config.Config) *cors.Cors {
	origins := cfg.AllowedOrigins()
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		// Browsers reject credentialed requests to a wildcard origin.
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           300,
	})
}
