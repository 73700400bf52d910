package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"weaver/career-coach/internal/config"
	"weaver/career-coach/internal/handlers"
	"weaver/career-coach/internal/repositories"
	"weaver/career-coach/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	sessionRepo := repositories.NewSessionRepository(db)
	turnRepo := repositories.NewTurnRepository(db)
	docRepo := repositories.NewDocumentRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	// Initialize Gemini AI. A missing key is not fatal: calls surface a
	// rendered error instead.
	if cfg.Gemini.APIKey == "" {
		log.Println("⚠️  GEMINI_API_KEY is not set; model calls will fail until it is configured")
	}
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	pdfParser := services.NewPDFParserService()
	extractorService := services.NewExtractorService(pdfParser, geminiService)
	guardService := services.NewGuardService()
	log.Println("✅ Services initialized successfully")

	// Initialize Qdrant
	knowledgeService, err := services.NewKnowledgeService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := knowledgeService.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
	}
	log.Println("✅ Qdrant initialized successfully")

	// Initialize coach
	coachService := services.NewCoachService(
		sessionRepo,
		turnRepo,
		docRepo,
		storageService,
		extractorService,
		guardService,
		geminiService,
		knowledgeService,
		cfg.Session.GuidelineLimit,
	)
	log.Println("✅ Coach service initialized")

	// Start session janitor
	janitor := services.NewJanitor(
		sessionRepo,
		docRepo,
		storageService,
		cfg.Session.TTL,
		cfg.Session.SweepInterval,
	)
	janitor.Start(context.Background())

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(coachService)
	uploadHandler := handlers.NewUploadHandler(coachService, cfg.Storage.MaxFileSize)
	chatHandler := handlers.NewChatHandler(coachService, cfg.Session.StreamTimeout)
	templateHandler := handlers.NewTemplateHandler()
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Weaver Career Coach API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/sessions", sessionHandler.HandleCreate)
	api.Get("/sessions/:id", sessionHandler.HandleGet)
	api.Post("/sessions/:id/documents/resume", uploadHandler.HandleResumeUpload)
	api.Post("/sessions/:id/documents/job-description", uploadHandler.HandleJDUpload)
	api.Get("/sessions/:id/stream", chatHandler.HandleStreamPending)
	api.Post("/sessions/:id/messages", chatHandler.HandleMessage)
	api.Post("/sessions/:id/bullets", chatHandler.HandleBullets)
	api.Get("/template/latex", templateHandler.HandleGetLatexTemplate)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Weaver Career Coach API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"POST /api/v1/sessions/:id/documents/resume",
				"POST /api/v1/sessions/:id/documents/job-description",
				"GET /api/v1/sessions/:id/stream",
				"POST /api/v1/sessions/:id/messages",
				"POST /api/v1/sessions/:id/bullets",
				"GET /api/v1/template/latex",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		janitor.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
