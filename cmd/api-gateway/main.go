package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/teachspace-api/api/swagger"
	"github.com/noah-isme/teachspace-api/internal/handler"
	"github.com/noah-isme/teachspace-api/internal/middleware"
	"github.com/noah-isme/teachspace-api/internal/repository"
	"github.com/noah-isme/teachspace-api/internal/service"
	"github.com/noah-isme/teachspace-api/pkg/cache"
	"github.com/noah-isme/teachspace-api/pkg/config"
	"github.com/noah-isme/teachspace-api/pkg/database"
	appErrors "github.com/noah-isme/teachspace-api/pkg/errors"
	"github.com/noah-isme/teachspace-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/teachspace-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teachspace-api/pkg/middleware/requestid"
	"github.com/noah-isme/teachspace-api/pkg/response"
	"github.com/noah-isme/teachspace-api/pkg/session"
	"github.com/noah-isme/teachspace-api/pkg/storage"
)

// @title TeachSpace API
// @version 1.0.0
// @description Training institute administration: departments, courses, instructors, trainees and results
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(context.Background(), db, logr); err != nil {
			logr.Sugar().Fatalw("failed to apply schema", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	var metrics *service.MetricsService
	if cfg.Metrics.Enabled {
		metrics = service.NewMetricsService()
	}

	var (
		transient service.TransientStore
		cacheRepo service.CacheRepository
	)
	if redisClient != nil {
		transient = repository.NewRedisTransientRepository(redisClient)
		cacheRepo = repository.NewCacheRepository(redisClient)
	} else {
		logr.Warn("redis disabled: sessions and lookups are kept in process memory")
		transient = repository.NewMemoryTransientRepository()
	}

	images, err := storage.NewImageStore(cfg.Uploads.Dir, cfg.Uploads.AllowedExts, cfg.Uploads.MaxFileSizeBytes)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare upload directory", "error", err)
	}

	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	traineeRepo := repository.NewTraineeRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	validate := service.NewValidator()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Lookups.CacheTTL, logr, cacheRepo != nil)
	lookupSvc := service.NewLookupService(departmentRepo, courseRepo, cacheSvc, cfg.Lookups.CacheTTL, logr)
	flashSvc := service.NewFlashService(transient, cfg.Session.FlashTTL, logr)
	departmentSvc := service.NewDepartmentService(departmentRepo, lookupSvc, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, departmentRepo, lookupSvc, validate, logr)
	wizardSvc := service.NewWizardService(transient, courseRepo, departmentRepo, lookupSvc, metrics, validate, logr, cfg.Session.WizardTTL)
	instructorSvc := service.NewInstructorService(instructorRepo, courseRepo, departmentRepo, images, metrics, validate, logr)
	traineeSvc := service.NewTraineeService(traineeRepo, departmentRepo, images, metrics, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, courseRepo, traineeRepo, metrics, validate, logr)
	exportSvc := service.NewExportService(enrollmentRepo, courseRepo, logr)

	metricsHandler := handler.NewMetricsHandler(metrics, db)

	r := gin.New()
	r.MaxMultipartMemory = cfg.Uploads.MaxFileSizeBytes
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if cfg.Metrics.Enabled {
		r.GET("/metrics", metricsHandler.Prometheus)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Session(session.NewTokens(cfg.Session.Secret, cfg.Session.TTL), cfg.Session, logr))
	handler.RegisterRoutes(api, handler.Handlers{
		Departments: handler.NewDepartmentHandler(departmentSvc, flashSvc),
		Courses:     handler.NewCourseHandler(courseSvc, instructorSvc, flashSvc),
		Wizard:      handler.NewWizardHandler(wizardSvc, lookupSvc, flashSvc),
		Instructors: handler.NewInstructorHandler(instructorSvc, flashSvc),
		Trainees:    handler.NewTraineeHandler(traineeSvc, flashSvc),
		Results:     handler.NewResultHandler(enrollmentSvc, exportSvc, flashSvc),
		Lookups:     handler.NewLookupHandler(lookupSvc),
		Images:      handler.NewImageHandler(images),
	})

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
