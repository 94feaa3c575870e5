package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/y0ug/defacemon/internal/database"
	"github.com/y0ug/defacemon/internal/defacement"
	"github.com/y0ug/defacemon/internal/fetcher"
	"github.com/y0ug/defacemon/internal/notifications"
	"github.com/y0ug/defacemon/internal/site"
	"github.com/y0ug/defacemon/internal/webserver"
)

func main() {
	ctx := context.Background()

	// Initialize Logrus
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	staticDirFlag := flag.String("static", "", "Directory holding the site static assets")
	dataDirFlag := flag.String("data", "", "Directory holding the baseline record")
	flag.Parse()

	// Load .env file if present
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found for defacemon configuration. Proceeding with environment variables.")
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logger.Warnf("Invalid LOG_LEVEL %q. Keeping %s.", lvl, logger.GetLevel())
		} else {
			logger.SetLevel(level)
		}
	}

	cfg, err := defacement.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load defacement configuration: %v", err)
	}
	if *staticDirFlag != "" {
		logger.Debugf("Overriding static directory with command-line flag: %s", *staticDirFlag)
		cfg.StaticDir = *staticDirFlag
	}
	if *dataDirFlag != "" {
		logger.Debugf("Overriding data directory with command-line flag: %s", *dataDirFlag)
		cfg.DataDir = *dataDirFlag
	}

	dbConfig, err := database.LoadDatabaseConfig(cfg.DataDir)
	if err != nil {
		logger.Fatalf("Failed to load database configuration: %v", err)
	}
	db, err := database.Open(ctx, dbConfig)
	if err != nil {
		logger.Fatalf("Failed to initialize %s database: %v", dbConfig.Type, err)
	}
	defer db.Close(ctx)
	logger.WithFields(logrus.Fields{
		"type": dbConfig.Type,
		"path": dbConfig.Path,
	}).Info("Baseline store initialized")

	renderer := fetcher.NewRenderer(cfg.TemplateDir, cfg.SiteTitle)
	if err := renderer.Check(); err != nil {
		logger.Fatalf("Failed to load site templates: %v", err)
	}

	manager := defacement.NewBaselineManager(defacement.ManagerConfig{
		Mode:            cfg.Mode,
		Protected:       cfg.Protected,
		StaticDir:       cfg.StaticDir,
		StaticURLPrefix: cfg.StaticURLPrefix,
		Database:        db,
		Fetcher:         fetcher.NewHTTPClient(cfg.CreateTimeout, 0),
		Renderer:        renderer,
		Logger:          logger,
	})
	detector := defacement.NewDetector(defacement.DetectorConfig{
		Fetcher:         fetcher.NewHTTPClient(cfg.CheckTimeout, 0),
		StaticDir:       cfg.StaticDir,
		StaticURLPrefix: cfg.StaticURLPrefix,
		Logger:          logger,
	})
	service := &defacement.Service{
		Baselines:  manager,
		Detector:   detector,
		DefaultURL: cfg.DefaultURL,
	}

	notificationCfg, err := notifications.LoadNotificationConfig()
	if err != nil {
		logger.Fatalf("Failed to load notification configuration: %v", err)
	}
	if notificationCfg.Enabled() {
		notifier, err := notifications.NewNotifier(notificationCfg.ShoutrrrURLs, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize notifier: %v", err)
		}
		service.Notifier = notifier
		logger.Info("Notifier initialized successfully")
	} else {
		logger.Info("SHOUTRRR_URLS not set. Defacement alerts are disabled.")
	}

	logger.WithFields(logrus.Fields{
		"mode":       cfg.Mode,
		"static_dir": cfg.StaticDir,
		"zones":      len(cfg.Protected.Zones),
		"images":     len(cfg.Protected.Images),
	}).Info("Defacement detection configured")

	webServerConfig, err := webserver.NewWebserverConfig()
	if err != nil {
		logger.Fatalf("Failed to load webserver configuration: %v", err)
	}

	webServer := webserver.NewWebServer(service, site.NewHandler(renderer, cfg.StaticDir, logger), webServerConfig, logger)

	ctxCancel, cancel := context.WithCancel(ctx)
	defer cancel()

	server, err := webserver.StartWebServer(ctxCancel, webServer)
	if err != nil {
		logger.Fatalf("Failed to start web server: %v", err)
	}

	// Listen for OS signals to handle graceful shutdown
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigs
	logger.Infof("Received signal: %s. Initiating shutdown...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Failed to gracefully shutdown the server: %v", err)
	}

	logger.Info("Shutdown complete. Exiting.")
}
