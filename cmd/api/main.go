package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"database/sql"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/idevisu/fincast/internal/cache"
	"github.com/idevisu/fincast/internal/config"
	"github.com/idevisu/fincast/internal/handler"
	"github.com/idevisu/fincast/internal/notify"
	"github.com/idevisu/fincast/internal/repository"
	"github.com/idevisu/fincast/internal/scheduler"
	"github.com/idevisu/fincast/internal/service"
)

func main() {
	migrateCmd := flag.Bool("migrate", false, "Run database migration")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo entries and series (idempotent)")
	flag.Parse()

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logLevel, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := sql.Open("postgres", cfg.DBConn)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	if *migrateCmd {
		if err := repository.Migrate(db); err != nil {
			logger.Fatalf("Migration failed: %v", err)
		}
		logger.Info("Migration completed successfully")
		os.Exit(0)
	}
	if *seedDemoCmd {
		if err := repository.Migrate(db); err != nil {
			logger.Fatalf("Migration failed: %v", err)
		}
		if err := repository.SeedDemo(db); err != nil {
			logger.Fatalf("Seeding demo data failed: %v", err)
		}
		logger.Info("Demo data seeded")
		os.Exit(0)
	}

	// Initialize forecast cache
	var forecastCache service.Cache
	if c, err := cache.New(cfg.RedisAddr, cfg.CacheTTL); err != nil {
		logger.Warnf("Failed to initialize Redis: %v", err)
		logger.Warn("Continuing without forecast cache")
	} else {
		forecastCache = c
		defer c.Close()
	}

	// Initialize layers
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, forecastCache, logger)
	h := handler.NewHandler(svc)

	// Start background refresh job
	sender := notify.NewSender(cfg, logger)
	sched := scheduler.New(svc, sender, cfg, logger)
	if err := sched.Start(); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/forecast", h.Forecast).Methods("GET")
	api.HandleFunc("/forecast/export", h.ExportForecast).Methods("GET")
	api.HandleFunc("/receivables", h.Receivables).Methods("GET")
	api.HandleFunc("/charts/cashflow", h.Cashflow).Methods("GET")
	api.HandleFunc("/alerts/overdue", h.OverdueAlerts).Methods("GET")
	api.HandleFunc("/entries", h.CreateEntry).Methods("POST")
	api.HandleFunc("/entries/{id}", h.DeleteEntry).Methods("DELETE")
	api.HandleFunc("/series", h.CreateSeries).Methods("POST")
	api.HandleFunc("/series/{id}", h.DeleteSeries).Methods("DELETE")
	api.HandleFunc("/series/{id}/payments", h.RecordPayment).Methods("POST")
	api.HandleFunc("/series/{id}/skips", h.SkipCycle).Methods("POST")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	logger.Infof("Starting server on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed: %v", err)
	}
}
