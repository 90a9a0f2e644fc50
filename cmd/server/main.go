package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"meetingroom/internal/config"
	"meetingroom/internal/database"
	"meetingroom/internal/handlers"
	"meetingroom/internal/jobs"
	"meetingroom/internal/logging"
	"meetingroom/internal/middleware"
	"meetingroom/internal/preflight"
	"meetingroom/internal/services"
	"meetingroom/internal/storage"
	"meetingroom/pkg/auth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize structured logging (JSON in production, text in dev)
	logging.Init("meetingroom")

	log.Println("🚀 Starting meeting room server...")

	// Load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("📋 Configuration loaded (Port: %s, Org: %s, Local store: %s)", cfg.Port, cfg.OrgID, cfg.LocalStore)

	keys := storage.Keys{OrgID: cfg.OrgID}

	// Local persistent tier
	var local storage.Backend
	var db *database.DB
	var redisService *services.RedisService
	switch cfg.LocalStore {
	case config.LocalStoreRedis:
		var err error
		redisService, err = services.NewRedisService(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		local = redisService.Store()
	default:
		var err error
		db, err = database.New(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("❌ Failed to open local database: %v", err)
		}
		if err := db.Initialize(); err != nil {
			log.Fatalf("❌ Failed to initialize local database: %v", err)
		}
		local = storage.NewSQLStore(db, cfg.LocalStoreMaxValueBytes)
	}

	// Remote tier is optional
	var remote storage.Backend
	if cfg.RemoteStorageURL != "" {
		remote = storage.NewRemoteStore(storage.RemoteConfig{
			BaseURL:    cfg.RemoteStorageURL,
			Timeout:    cfg.RemoteStorageTimeout,
			RetryCount: cfg.RemoteStorageRetries,
		})
		log.Printf("🌐 Remote storage enabled: %s (timeout %v)", cfg.RemoteStorageURL, cfg.RemoteStorageTimeout)
	} else {
		log.Println("⚠️  REMOTE_STORAGE_URL not set - running on local storage only")
	}

	results := preflight.NewChecker(cfg, local, remote).RunAll(context.Background())
	if preflight.HasFailures(results) {
		log.Fatal("❌ Pre-flight checks failed")
	}

	chain := storage.NewChain(remote, local, storage.NewMemoryStore())

	// Staff directory
	staff := services.NewStaffDirectory(nil)
	if cfg.StaffDataFile != "" {
		list, err := config.LoadStaffFile(cfg.StaffDataFile)
		if err != nil {
			log.Printf("⚠️  Failed to load staff file %s: %v (using defaults)", cfg.StaffDataFile, err)
		} else {
			staff.SetStatic(list)
			log.Printf("👥 Loaded %d staff entries from %s", len(list), cfg.StaffDataFile)
		}
	}

	// Meeting engine
	meetings := services.NewMeetingService(services.MeetingServiceConfig{
		UnknownIDPolicy:     services.UnknownIDPolicy(cfg.UnknownIDPolicy),
		RejectInvertedRange: cfg.RejectInvertedRange,
		DefaultDuration:     cfg.DefaultMeetingDuration,
	}, services.WithStaffLookup(staff))

	hub := services.NewFeedHub()
	metrics := services.InitMetrics(prometheus.DefaultRegisterer, meetings, hub)
	chain.SetObserver(metrics.ObserveStorage)

	// Persistence: load before anything can change the collections
	persistence := services.NewPersistenceService(chain, keys, meetings, 15*time.Second)
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	if err := persistence.Load(loadCtx); err != nil {
		log.Printf("⚠️  Initial persist after load failed: %v", err)
	}
	cancelLoad()

	// Sweep once at startup, then on schedule
	sweeper := jobs.NewExpirySweeper(meetings, metrics)
	if err := sweeper.Run(context.Background()); err != nil {
		log.Printf("⚠️  Startup sweep failed: %v", err)
	}

	jobScheduler, err := jobs.NewJobScheduler()
	if err != nil {
		log.Fatalf("❌ Failed to create job scheduler: %v", err)
	}
	schedule := jobs.Schedule{Interval: cfg.SweepInterval, Cron: cfg.SweepCron}
	if err := jobScheduler.Register(jobs.ExpirySweeperJobName, sweeper, schedule); err != nil {
		log.Fatalf("❌ Failed to register sweep job: %v", err)
	}
	if cfg.SweepCron != "" {
		if cronSchedule, err := config.ParseSweepCron(cfg.SweepCron); err == nil {
			log.Printf("⏰ Next sweep at %s", cronSchedule.Next(time.Now()).Format(time.RFC3339))
		}
	}
	jobScheduler.Start()

	// Staff sources that run in the background
	bgCtx, cancelBg := context.WithCancel(context.Background())
	if cfg.StaffDataURL != "" {
		go func() {
			if err := staff.FetchRemote(bgCtx, cfg.StaffDataURL, cfg.RemoteStorageTimeout); err != nil {
				log.Printf("⚠️  Failed to fetch staff list: %v (using static list)", err)
			}
		}()
	}
	if cfg.StaffDataFile != "" {
		if err := staff.WatchFile(bgCtx, cfg.StaffDataFile); err != nil {
			log.Printf("⚠️  Staff file hot reload disabled: %v", err)
		}
	}

	// Shared login
	var sessions *services.SessionService
	var sessionValidator middleware.SessionValidator
	if cfg.AuthEnabled() {
		jwtAuth, err := auth.NewLocalJWTAuth(cfg.JWTSecret, cfg.AuthUsername, cfg.AuthPassword, cfg.SessionTTL)
		if err != nil {
			log.Fatalf("❌ Failed to initialize auth: %v", err)
		}
		sessions = services.NewSessionService(jwtAuth, chain, keys)
		sessionValidator = sessions
		log.Println("🔐 Shared login enabled")
	} else {
		if cfg.IsProduction() {
			log.Println("⚠️  AUTH_USERNAME not set - the booking API is open")
		}
		log.Println("🔓 Shared login disabled")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Meeting Room v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		UnescapePath: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())

	// Prometheus metrics middleware
	fiberProm := fiberprometheus.New("meetingroom")
	fiberProm.RegisterAt(app, "/metrics")
	app.Use(fiberProm.Middleware)
	log.Println("📊 Prometheus metrics endpoint enabled at /metrics")

	rateLimitConfig := middleware.LoadRateLimitConfig(os.Getenv)
	log.Printf("🛡️  [RATE-LIMIT] Loaded config: Global=%d/min, Login=%d/15min, WS=%d/min",
		rateLimitConfig.GlobalAPIMax,
		rateLimitConfig.LoginMax,
		rateLimitConfig.WebSocketMax,
	)

	allowCredentials := cfg.AllowedOrigins != "*"
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Meeting-Password",
		AllowCredentials: allowCredentials,
	}))
	log.Printf("🔒 [SECURITY] CORS allowed origins: %s", cfg.AllowedOrigins)

	app.Use("/api", middleware.GlobalAPIRateLimiter(rateLimitConfig))

	// Handlers
	loc := cfg.Location()
	healthHandler := handlers.NewHealthHandler(meetings, hub, chain.HasRemote())
	meetingHandler := handlers.NewMeetingHandler(meetings, services.NewAttemptLimiter(cfg.PasswordAttemptBurst, cfg.PasswordAttemptInterval), metrics, loc)
	passwordHandler := handlers.NewPasswordHandler(meetings)
	staffHandler := handlers.NewStaffHandler(staff)
	feedHandler := handlers.NewFeedHandler(meetings, hub, metrics, loc)
	meetings.OnChange(meetingHandler.OnChange)
	meetings.OnChange(feedHandler.OnChange)

	app.Get("/health", healthHandler.Handle)

	api := app.Group("/api")

	if sessions != nil {
		authHandler := handlers.NewLocalAuthHandler(sessions)
		api.Post("/auth/login", middleware.LoginRateLimiter(rateLimitConfig), authHandler.Login)
		api.Get("/auth/session", authHandler.Session)
		api.Post("/auth/logout", middleware.SessionAuthMiddleware(sessionValidator), authHandler.Logout)
	}

	// Registered after the auth routes so login stays reachable
	protected := api.Group("", middleware.SessionAuthMiddleware(sessionValidator))
	protected.Get("/meetings/current", meetingHandler.Current)
	protected.Get("/meetings/past", meetingHandler.Past)
	protected.Get("/meetings/past/export", meetingHandler.ExportPast)
	protected.Get("/meetings/:id", meetingHandler.Get)
	protected.Post("/meetings", meetingHandler.Create)
	protected.Put("/meetings/:id", meetingHandler.Update)
	protected.Delete("/meetings/:id", meetingHandler.Delete)
	protected.Post("/passwords/generate", passwordHandler.Generate)
	protected.Get("/passwords/pool", passwordHandler.Pool)
	protected.Get("/staff", staffHandler.Search)
	protected.Get("/staff/:code", staffHandler.Get)

	// WebSocket feed
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("client_ip", c.IP())
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	wsConfig := websocket.Config{
		Origins: strings.Split(cfg.AllowedOrigins, ","),
	}
	app.Use("/ws/meetings", middleware.WebSocketRateLimiter(rateLimitConfig))
	app.Use("/ws/meetings", middleware.SessionAuthMiddleware(sessionValidator))
	app.Get("/ws/meetings", websocket.New(feedHandler.Handle, wsConfig))

	log.Printf("📡 Health check: http://localhost:%s/health", cfg.Port)
	log.Printf("🔌 Meeting feed: ws://localhost:%s/ws/meetings", cfg.Port)
	log.Printf("⏰ Expiry sweep: %s", schedule)

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("\n🛑 Shutting down server...")

		jobScheduler.Stop()
		cancelBg()
		hub.CloseAll()

		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := persistence.Flush(flushCtx); err != nil {
			log.Printf("⚠️ Failed to flush meetings: %v", err)
		}
		cancel()

		if err := app.Shutdown(); err != nil {
			log.Printf("⚠️ Error shutting down server: %v", err)
		}
	}()

	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

	if db != nil {
		db.Close()
	}
	if redisService != nil {
		redisService.Close()
	}
	log.Println("👋 Server stopped")
}
