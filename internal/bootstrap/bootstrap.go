package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/emre/campuserp/internal/app/controllers"
	appMigrations "github.com/emre/campuserp/internal/app/migrations"
	appRepos "github.com/emre/campuserp/internal/app/repositories"
	appRoutes "github.com/emre/campuserp/internal/app/routes"
	"github.com/emre/campuserp/internal/app/scope"
	appServices "github.com/emre/campuserp/internal/app/services"
	"github.com/emre/campuserp/internal/config"
	"github.com/emre/campuserp/internal/db"
	appMiddleware "github.com/emre/campuserp/internal/middleware"
	pkgAuth "github.com/emre/campuserp/internal/pkg/auth"
	"github.com/emre/campuserp/internal/pkg/email"
	"github.com/emre/campuserp/internal/pkg/filestorage"
	"github.com/emre/campuserp/internal/pkg/helpers"
	"github.com/emre/campuserp/internal/pkg/logger"
	"github.com/emre/campuserp/internal/pkg/ratelimit"
	"github.com/emre/campuserp/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Services       *appServices.Services
	Controllers    *appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Limiter        ratelimit.Store
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the default accounts.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		// Seeding failure is not fatal; an operator can create accounts later.
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and
// middleware.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	baseURL := "http://localhost:" + cfg.Server.Port
	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, baseURL+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	emailSvc := email.NewEmailService(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
		BaseURL:   cfg.SMTP.BaseURL,
	}, lgr)

	deps.Services = appServices.NewServices(deps.Repos, cfg, deps.JWTService, emailSvc, deps.FileStorage)

	scopeResolver := scope.NewResolver(
		deps.Repos.StudentRepository,
		deps.Repos.FacultyRepository,
		deps.Repos.CourseRepository,
	)
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository, scopeResolver)
	deps.Limiter = ratelimit.NewMemoryStore()

	deps.Controllers = &appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.Services.AuthService, cfg.IsProduction(), lgr),
		User:       appControllers.NewUserController(deps.Services.UserService),
		Student:    appControllers.NewStudentController(deps.Services.StudentService),
		Faculty:    appControllers.NewFacultyController(deps.Services.FacultyService),
		Department: appControllers.NewDepartmentController(deps.Services.DepartmentService),
		Course:     appControllers.NewCourseController(deps.Services.CourseService),
		Enrollment: appControllers.NewEnrollmentController(deps.Services.EnrollmentService),
		Attendance: appControllers.NewAttendanceController(deps.Services.AttendanceService),
		Fee:        appControllers.NewFeeController(deps.Services.FeeService),
		Library:    appControllers.NewLibraryController(deps.Services.LibraryService),
		Notice:     appControllers.NewNoticeController(deps.Services.NoticeService),
		Timetable:  appControllers.NewTimetableController(deps.Services.TimetableService),
		Audit:      appControllers.NewAuditController(deps.Services.AuditService),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, dbPool *pgxpool.Pool, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupRouter(router, cfg, dbPool,
		deps.Controllers,
		deps.AuthMiddleware,
		deps.Repos.AuditRepository,
		deps.Limiter,
	)

	return router
}
