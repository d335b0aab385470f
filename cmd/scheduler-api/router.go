package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/class-scheduler-api/api/swagger"
	"github.com/noah-isme/class-scheduler-api/internal/handler"
	"github.com/noah-isme/class-scheduler-api/internal/middleware"
	"github.com/noah-isme/class-scheduler-api/internal/models"
	"github.com/noah-isme/class-scheduler-api/internal/service"
	"github.com/noah-isme/class-scheduler-api/pkg/config"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
	"github.com/noah-isme/class-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/class-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/class-scheduler-api/pkg/middleware/requestid"
	"github.com/noah-isme/class-scheduler-api/pkg/response"
)

type routerDeps struct {
	verifier  middleware.TokenValidator
	metrics   *service.MetricsService
	generator *handler.ScheduleGeneratorHandler
	schedules *handler.ScheduleHandler
	timetable *handler.TimetableExportHandler
	exports   *handler.ExportJobHandler
	ops       *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", deps.ops.Health)
	r.GET("/ready", deps.ops.Ready)
	r.GET("/metrics", deps.ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if deps.exports != nil {
		api.GET("/schedules/exports/download", deps.exports.Download)
	}

	admins := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)
	secured := api.Group("")
	secured.Use(middleware.JWT(deps.verifier))

	secured.GET("/schedules", deps.schedules.List)
	secured.GET("/schedules/semester/:semester", deps.schedules.ListBySemester)
	secured.GET("/schedules/:id", deps.schedules.Get)
	secured.GET("/sections/:id/schedules", deps.schedules.ListBySection)
	secured.GET("/sections/:id/schedules/export", deps.timetable.Export)
	secured.DELETE("/schedules", admins, deps.schedules.Delete)

	if cfg.Scheduler.Enabled {
		secured.POST("/schedules/generate", admins, deps.generator.Generate)
	} else {
		secured.POST("/schedules/generate", admins, featureDisabled("schedule generation is disabled"))
	}

	if deps.exports != nil {
		secured.POST("/schedules/exports", admins, deps.exports.Create)
		secured.GET("/schedules/exports/:id", admins, deps.exports.Status)
	} else {
		secured.POST("/schedules/exports", admins, featureDisabled("exports are disabled"))
		secured.GET("/schedules/exports/:id", admins, featureDisabled("exports are disabled"))
	}

	return r
}

func featureDisabled(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrFeatureDisabled, message))
	}
}
