package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"stackassist-backend/internal/api"
	"stackassist-backend/internal/config"
	"stackassist-backend/internal/core"
	"stackassist-backend/internal/crypto"
	"stackassist-backend/internal/db"
	"stackassist-backend/internal/firebase"
	"stackassist-backend/internal/metrics"
	"stackassist-backend/internal/middleware"
	"stackassist-backend/internal/models"
	"stackassist-backend/internal/scheduler"
	"stackassist-backend/pkg/cache"
	"stackassist-backend/pkg/mailer"
	"stackassist-backend/pkg/messagequeue"
)

func newLogger(appConfig *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewDevelopmentConfig()
	if appConfig.IsRelease() {
		zapConfig = zap.NewProductionConfig()
	}
	level, err := zapcore.ParseLevel(appConfig.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", appConfig.LogLevel, err)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}

func main() {
	// --- 1. Environment and configuration ---
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Warning: error loading .env file: %v", err)
		}
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Logger ---
	zapLogger, err := newLogger(appConfig)
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Application configuration loaded", zap.String("storeDriver", appConfig.StoreDriver))

	// --- 3. Firebase Admin SDK (Auth always, Firestore for the firestore driver) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer db.CloseFirestore()

	identity, err := firebase.NewIdentityProvider(initCtx, db.GetFirebaseAuthClient(), appConfig.FirebaseWebAPIKey)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize identity provider", zap.Error(err))
	}

	// --- 4. Repositories ---
	var store *db.Store
	switch appConfig.StoreDriver {
	case config.StoreDriverMemory:
		store = db.NewMemoryStore()
		zapLogger.Warn("Using the in-memory store; data is lost on restart")
	default:
		store = db.NewFirestoreStore(db.GetFirestoreClient(), zapLogger)
	}

	// --- 5. Cache, mail delivery and encryption ---
	var dedupe cache.Cache = cache.NewMemoryCache()
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.RedisConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		dedupe = redisCache
		zapLogger.Info("Redis cache connected", zap.String("addr", appConfig.RedisAddr))
	} else {
		zapLogger.Warn("REDIS_ADDR not set; notification dedupe is kept in process memory")
	}

	smtpMailer, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUsername,
		Password: appConfig.SMTPPassword,
		From:     appConfig.MailFrom,
	})
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid SMTP configuration", zap.Error(err))
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var outbox core.Outbox = core.NewDirectOutbox(smtpMailer)
	if appConfig.RabbitMQURL != "" {
		queue, err := messagequeue.NewRabbitMQService(messagequeue.RabbitMQConfig{URL: appConfig.RabbitMQURL}, zapLogger)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to RabbitMQ", zap.Error(err))
		}
		defer queue.Close()
		outbox = core.NewQueueOutbox(queue, appConfig.MailQueue)
		worker := core.NewMailWorker(queue, appConfig.MailQueue, smtpMailer, zapLogger)
		go func() {
			if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("Mail worker stopped", zap.Error(err))
			}
		}()
		zapLogger.Info("Mail delivery through RabbitMQ", zap.String("queue", appConfig.MailQueue))
	}

	var sealer *crypto.Sealer
	if appConfig.EncryptionKey != "" {
		key, err := crypto.ParseKey(appConfig.EncryptionKey)
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Invalid ENCRYPTION_KEY", zap.Error(err))
		}
		if sealer, err = crypto.NewSealer(key); err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize encryption", zap.Error(err))
		}
	} else {
		zapLogger.Warn("ENCRYPTION_KEY not set; hosting password hints are stored as entered")
	}

	signingKey := []byte(appConfig.OnboardingSigningKey)
	if len(signingKey) == 0 {
		signingKey = make([]byte, 32)
		if _, err := rand.Read(signingKey); err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to generate onboarding signing key", zap.Error(err))
		}
		zapLogger.Warn("ONBOARDING_SIGNING_KEY not set; onboarding links expire on restart")
	}

	// --- 6. Services ---
	clock := core.SystemClock()
	authz, err := core.NewAuthorizer(zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize authorizer", zap.Error(err))
	}
	sessions := core.NewSessionStore(identity, store.Users, clock, appConfig.SessionIdleTimeout, zapLogger)
	sessions.OnExpire = func(models.Session) { metrics.RecordSessionExpired() }
	defer sessions.Close()

	notificationService := core.NewNotificationService(store, outbox, dedupe, authz, clock, zapLogger)
	services := api.Services{
		Verifier:    identity,
		Sessions:    sessions,
		Guard:       core.NewAccessGuard(store.Team, store.Users, clock, zapLogger),
		RateLimiter: middleware.NewRateLimiter(appConfig.RateLimitRPS, appConfig.RateLimitBurst, zapLogger),

		Accounts:          core.NewAccountService(store.Users),
		Clients:           core.NewClientService(store.Clients, authz, clock, zapLogger),
		Sites:             core.NewSiteService(store, authz, clock, zapLogger),
		HostingAccounts:   core.NewHostingAccountService(store.HostingAccounts, sealer, authz, zapLogger),
		MobileApps:        core.NewMobileAppService(store, authz, clock, zapLogger),
		DeveloperAccounts: core.NewDeveloperAccountService(store, authz, clock, zapLogger),
		Tasks:             core.NewTaskService(store.Tasks, authz, clock, zapLogger),
		Team:              core.NewTeamService(store, identity, outbox, authz, clock, appConfig.ClientURL, zapLogger),
		Notifications:     notificationService,
		Reports:           core.NewReportService(store, authz, clock, zapLogger),
		Messages:          core.NewMessageService(store.Messages, authz, clock, zapLogger),
		Onboarding:        core.NewOnboardingService(store, authz, clock, signingKey, appConfig.ClientURL, zapLogger),
	}
	stopCleanup := services.RateLimiter.StartCleanup(time.Minute, 10*time.Minute)
	defer stopCleanup()

	// --- 7. Expiration scan schedule ---
	scanScheduler, err := scheduler.New(appConfig.ExpirationScanSchedule, notificationService, scheduler.DefaultScanTimeout, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to schedule expiration scan", zap.Error(err))
	}
	scanScheduler.Start()

	// --- 8. Gin engine and routes ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(appConfig))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.TimeoutMiddleware(appConfig.RequestTimeout))

	api.SetupRoutes(router, appConfig, zapLogger, services)

	// --- 9. HTTP server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful shutdown ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := scanScheduler.Stop(shutdownCtx); err != nil {
		zapLogger.Warn("Expiration scan did not stop in time", zap.Error(err))
	}
	stopWorkers()

	zapLogger.Info("Server exiting gracefully.")
}
