package app

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"quiz_game_backend/internal/config"
	"quiz_game_backend/internal/controller"
	"quiz_game_backend/internal/repository"
	"quiz_game_backend/internal/service"
	"quiz_game_backend/pkg/database"
	"quiz_game_backend/pkg/logger"
	"quiz_game_backend/pkg/monitoring"
	"quiz_game_backend/pkg/security"
	"quiz_game_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
	shutdownTracer  func(context.Context) error
}

type repositories struct {
	user       *repository.UserRepository
	department *repository.DepartmentRepository
	quiz       *repository.QuizRepository
	question   *repository.QuestionRepository
	progress   *repository.ProgressRepository
	answer     *repository.AnswerRepository
	game       *repository.GameRepository
}

type services struct {
	auth  *service.AuthService
	quiz  *service.QuizService
	game  *service.GameService
	admin *service.AdminService
}

type controllers struct {
	auth   *controller.AuthController
	quiz   *controller.QuizController
	game   *controller.GameController
	admin  *controller.AdminController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 热更新配置，并通知已注册的回调
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		department: repository.NewDepartmentRepository(db),
		quiz:       repository.NewQuizRepository(db),
		question:   repository.NewQuestionRepository(db),
		progress:   repository.NewProgressRepository(db),
		answer:     repository.NewAnswerRepository(db),
		game:       repository.NewGameRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.quiz = service.NewQuizService(repos.quiz, repos.question, repos.progress, rdb)
	s.game = service.NewGameService(repos.game, rand.New(rand.NewSource(time.Now().UnixNano())))
	s.admin = service.NewAdminService(repos.quiz, repos.question, repos.department, repos.user, repos.progress, repos.answer, rdb, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		quiz:   controller.NewQuizController(s.quiz),
		game:   controller.NewGameController(s.game),
		admin:  controller.NewAdminController(s.admin),
		health: controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("quiz-game", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownTracer = tp.Shutdown
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	log.Println("Server exiting")
}
