package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"kinderpass/internal/config"
	"kinderpass/internal/database"
	"kinderpass/internal/handlers"
	"kinderpass/internal/notify"
	"kinderpass/internal/repository"
	"kinderpass/internal/security"
	"kinderpass/internal/service"
	"kinderpass/internal/verification"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize the verification code store
	codes, closeCodes := buildCodeStore(cfg)
	defer closeCodes()

	// Initialize notification channels
	notifier := notify.NewSMSNotifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone)
	email, err := notify.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName)
	if err != nil {
		log.Printf("Warning: email service unavailable: %v", err)
	}

	// Initialize repositories
	familyRepo := repository.NewFamilyRepository(db)
	childRepo := repository.NewChildRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	eventRepo := repository.NewEventRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)
	pickupRepo := repository.NewPickupRepository(db)
	staffRepo := repository.NewStaffRepository(db)

	// Initialize services
	tokens := security.NewTokenIssuer(cfg.JWTSecret, cfg.StaffTokenTTL)
	authService := service.NewAuthService(staffRepo, tokens)
	directoryService := service.NewDirectoryService(familyRepo, childRepo)
	checkinService := service.NewCheckinService(
		directoryService,
		familyRepo,
		childRepo,
		roomRepo,
		eventRepo,
		checkinRepo,
		pickupRepo,
		codes,
		notifier,
		email,
		cfg.AppBaseURL,
		cfg.NotifierTimeout,
	)
	pickupService := service.NewPickupService(checkinRepo, pickupRepo)

	// Initialize handlers
	ipLimiter := security.NewRateLimiter(30, time.Minute)
	phoneLimiter := security.NewRateLimiter(3, 5*time.Minute)
	middleware := handlers.NewMiddleware(authService, ipLimiter)
	authHandler := handlers.NewAuthHandler(authService)
	checkinHandler := handlers.NewCheckinHandler(checkinService, pickupService, phoneLimiter)
	familyHandler := handlers.NewFamilyHandler(directoryService)
	roomHandler := handlers.NewRoomHandler(roomRepo, eventRepo, checkinRepo)

	// Setup routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handlers.Health)
	mux.HandleFunc("POST /api/staff/login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /api/staff/me", middleware.RequireStaff(authHandler.Me))
	mux.HandleFunc("POST /api/staff", middleware.RequireStaff(authHandler.CreateStaff))

	// Kiosk flow
	mux.HandleFunc("POST /api/checkin/lookup", middleware.RateLimit(checkinHandler.Lookup))
	mux.HandleFunc("POST /api/checkin/verify", middleware.RateLimit(checkinHandler.Verify))
	mux.HandleFunc("POST /api/checkin/resend", middleware.RateLimit(checkinHandler.Resend))
	mux.HandleFunc("POST /api/checkin/confirm", middleware.RateLimit(checkinHandler.Confirm))
	mux.HandleFunc("GET /api/rooms", roomHandler.ListRooms)
	mux.HandleFunc("GET /api/events/open", roomHandler.ListOpenEvents)

	// Pickup pass (the secure ID is the capability)
	mux.HandleFunc("GET /api/pickup/{secureId}/persons", checkinHandler.ListPickupPersons)
	mux.HandleFunc("POST /api/pickup/{secureId}/persons", middleware.RateLimit(checkinHandler.AddPickupPerson))
	mux.HandleFunc("DELETE /api/pickup/{secureId}/persons/{pickupId}", checkinHandler.RemovePickupPerson)

	// Worker mode (staff session required)
	mux.HandleFunc("POST /api/worker/lookup", middleware.RequireStaff(checkinHandler.WorkerLookup))
	mux.HandleFunc("GET /api/pickup/{secureId}", middleware.RequireStaff(checkinHandler.ResolvePickup))
	mux.HandleFunc("POST /api/pickup/{secureId}/checkout", middleware.RequireStaff(checkinHandler.Checkout))
	mux.HandleFunc("GET /api/rooms/{id}/roster", middleware.RequireStaff(checkinHandler.RoomRoster))
	mux.HandleFunc("GET /api/checkins/counts", middleware.RequireStaff(checkinHandler.ActiveCounts))
	mux.HandleFunc("GET /api/children/{id}/checkins", middleware.RequireStaff(checkinHandler.ChildHistory))
	mux.HandleFunc("POST /api/checkins/{id}/no-show", middleware.RequireStaff(checkinHandler.MarkNoShow))
	mux.HandleFunc("GET /api/checkins/{id}/pickup-persons", middleware.RequireStaff(checkinHandler.PickupHistory))

	// Staff directory management
	mux.HandleFunc("POST /api/families", middleware.RequireStaff(familyHandler.Register))
	mux.HandleFunc("GET /api/families", middleware.RequireStaff(familyHandler.List))
	mux.HandleFunc("GET /api/families/{id}", middleware.RequireStaff(familyHandler.Get))
	mux.HandleFunc("PUT /api/families/{id}/primary-guardian", middleware.RequireStaff(familyHandler.SetPrimaryGuardian))
	mux.HandleFunc("POST /api/families/{id}/children", middleware.RequireStaff(familyHandler.AddChild))
	mux.HandleFunc("PUT /api/children/{id}", middleware.RequireStaff(familyHandler.UpdateChild))
	mux.HandleFunc("DELETE /api/children/{id}", middleware.RequireStaff(familyHandler.RemoveChild))
	mux.HandleFunc("POST /api/families/{id}/guardians", middleware.RequireStaff(familyHandler.AddGuardian))
	mux.HandleFunc("DELETE /api/families/{id}/guardians/{guardianId}", middleware.RequireStaff(familyHandler.RemoveGuardian))
	mux.HandleFunc("POST /api/rooms", middleware.RequireStaff(roomHandler.CreateRoom))
	mux.HandleFunc("PUT /api/rooms/{id}", middleware.RequireStaff(roomHandler.UpdateRoom))
	mux.HandleFunc("GET /api/events", middleware.RequireStaff(roomHandler.ListEvents))
	mux.HandleFunc("POST /api/events", middleware.RequireStaff(roomHandler.CreateEvent))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

// buildCodeStore selects the verification code backend. Redis keeps codes
// shared across instances; the in-memory store suits a single node.
func buildCodeStore(cfg *config.Config) (verification.CodeStore, func()) {
	switch cfg.CodeStoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		log.Printf("Verification codes stored in redis at %s", cfg.RedisAddr)
		store := verification.NewRedisCodeStore(client, cfg.CodeTTL, cfg.CodeMaxAttempts)
		return store, func() { client.Close() }
	default:
		store := verification.NewMemoryCodeStore(cfg.CodeTTL, cfg.CodeMaxAttempts)
		return store, store.Close
	}
}
