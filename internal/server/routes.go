package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/gmcdash/gmcdash/internal/permissions"
	"github.com/gmcdash/gmcdash/internal/server/api"
	"github.com/gmcdash/gmcdash/internal/server/biz"
	"github.com/gmcdash/gmcdash/internal/server/middleware"
)

type Handlers struct {
	fx.In

	System  *api.SystemHandlers
	Session *api.SessionHandlers
	Report  *api.ReportHandlers
	Admin   *api.AdminHandlers
}

type Services struct {
	fx.In

	AuthService    *biz.AuthService
	AccessService  *biz.AccessService
	ContextService *biz.ContextService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithLoggingTracing(server.Config.Trace))

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	publicGroup := server.Group("", middleware.WithTimeout(server.Config.RequestTimeout))
	{
		// Health check endpoints - no authentication required
		publicGroup.GET("/health", handlers.System.Health)
		publicGroup.GET("/ready", handlers.System.Ready)
		publicGroup.GET("/version", handlers.System.Version)
	}

	// Every project route passes through exactly one isolation middleware,
	// carrying the permission the operation requires.
	read := middleware.WithProjectIsolation(services.AccessService, services.ContextService)
	write := middleware.WithProjectIsolationPermission(
		services.AccessService, services.ContextService, string(permissions.CanWrite))
	manage := middleware.WithProjectIsolationPermission(
		services.AccessService, services.ContextService, string(permissions.CanManage))

	projectGroup := server.Group("/projects/:projectID",
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithCallerAuth(services.AuthService),
	)
	{
		sessionGroup := projectGroup.Group("/sessions")
		sessionGroup.GET("", read, handlers.Session.List)
		sessionGroup.GET("/:sessionID", read, handlers.Session.Get)
		sessionGroup.POST("", write, handlers.Session.Create)
		sessionGroup.PATCH("/:sessionID/status", write, handlers.Session.UpdateStatus)

		sessionGroup.GET("/:sessionID/reports", read, handlers.Report.List)
		sessionGroup.POST("/:sessionID/reports", write, handlers.Report.Import)
		sessionGroup.GET("/:sessionID/parameter-changes", read, handlers.Report.ListParameterChanges)
		sessionGroup.POST("/:sessionID/parameter-changes", write, handlers.Report.RecordParameterChange)

		projectGroup.GET("/reports/:reportID", read, handlers.Report.Get)
	}

	adminGroup := server.Group("/admin",
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithCallerAuth(services.AuthService),
	)
	{
		adminGroup.GET("/projects/:projectID/isolation/verify", manage, handlers.Admin.VerifyIsolation)
		adminGroup.POST("/projects/:projectID/permissions/invalidate", manage, handlers.Admin.InvalidatePermissions)
	}
}
