package main

import (
	"OPDQueue/cache"
	"OPDQueue/config"
	"OPDQueue/database"
	"OPDQueue/routes"
	"OPDQueue/services"
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"
)

func main() {
	// Load configuration from config package
	config, err := loadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize the database
	db, err := database.InitDB(context.Background(), config.DBURL)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// Initialize Redis
	if err := database.InitializeRedis(); err != nil {
		log.Fatalf("failed to initialize Redis client: %v", err)
	}

	// Initialize the cache utility
	cache, err := cache.NewCache()
	if err != nil {
		log.Fatalf("failed to initialize cache: %v", err)
	}

	// Pass the config to SetupRoutes
	handler, tokenService := routes.SetupRoutes(cache, config, db)

	// The sweep also runs on every queue read; the background pass only keeps
	// penalties moving while nobody is looking at the queue.
	sweeper := services.NewPenaltySweeper(tokenService, config.Admission.SweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	// Configure and start the server
	srv := &http.Server{
		Addr:           ":8930",
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		log.Println("Starting server on :8930")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown handling
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	// Create a context with a timeout for shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	log.Println("Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %+v", err)
	}

	wg.Wait() // Wait for all goroutines to finish before exiting
	log.Println("Server exited gracefully")
}

// loadConfig loads configuration from environment variables.
func loadConfig() (*config.AppConfig, error) {
	dbURL, err := database.LoadEnvConfig()
	if err != nil {
		return nil, err
	}

	redisAddress := os.Getenv("REDIS_URL")
	if redisAddress == "" {
		return nil, errors.New("missing REDIS_URL environment variable")
	}

	bearerToken := os.Getenv("BEARER_TOKEN")
	if bearerToken == "" {
		return nil, errors.New("missing BEARER_TOKEN environment variable")
	}

	return &config.AppConfig{
		DBURL:        dbURL,
		RedisAddress: redisAddress,
		BearerToken:  bearerToken,
		Admission:    loadAdmissionPolicy(),
	}, nil
}

// loadAdmissionPolicy reads the admission policy knobs, falling back to the
// documented defaults: 3 bookings per slot, a 12:00-13:00 break, a 15 minute
// check-in grace period and auto-cancel after 3 misses.
func loadAdmissionPolicy() config.AdmissionPolicy {
	return config.AdmissionPolicy{
		SlotCapacity:    envAsInt("SLOT_CAPACITY", 3),
		BreakStartHour:  envAsInt("BREAK_START_HOUR", 12),
		BreakEndHour:    envAsInt("BREAK_END_HOUR", 13),
		GracePeriod:     time.Duration(envAsInt("GRACE_MINUTES", 15)) * time.Minute,
		MissedThreshold: envAsInt("MISSED_THRESHOLD", 3),
		SweepInterval:   time.Duration(envAsInt("SWEEP_INTERVAL_MINUTES", 5)) * time.Minute,
		Location:        loadClinicLocation(),
	}
}

// loadClinicLocation reads CLINIC_TIMEZONE (IANA name, e.g. Africa/Nairobi).
// The break window is judged on this wall clock; unset or invalid means UTC.
func loadClinicLocation() *time.Location {
	name := os.Getenv("CLINIC_TIMEZONE")
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Warning: invalid CLINIC_TIMEZONE %q, using UTC", name)
		return time.UTC
	}
	return location
}

func envAsInt(name string, defaultValue int) int {
	if value, exists := os.LookupEnv(name); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Printf("Warning: Invalid integer value for %s, using default: %d", name, defaultValue)
	}
	return defaultValue
}
