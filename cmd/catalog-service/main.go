package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/catalog-service/internal/api"
	"github.com/hypernova-labs/catalog-service/internal/config"
	"github.com/hypernova-labs/catalog-service/internal/database"
	"github.com/hypernova-labs/catalog-service/internal/services"
	"github.com/hypernova-labs/catalog-service/internal/workflows"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting Catalog Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Conectar a la base de datos
	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatalf("Error connecting to database: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			logger.Fatalf("Error applying migrations: %v", err)
		}
	}

	var apiOptions []api.Option

	// Conectar a Redis (índice de imágenes, opcional)
	var (
		imageIndex services.ImageIndex
		redisIndex *database.Redis
	)
	if cfg.RedisEnabled() {
		redisIndex, err = database.ConnectRedis(cfg)
		if err != nil {
			logger.Warnf("Error connecting to Redis, image index disabled: %v", err)
		} else {
			defer redisIndex.Close()
			imageIndex = redisIndex
			apiOptions = append(apiOptions, api.WithDependency("redis", redisIndex))
			logger.Info("Redis image index enabled")
		}
	}

	// Inicializar cliente de Inngest (eventos del catálogo, opcional)
	var publisher services.EventPublisher
	if cfg.Inngest.EventKey != "" || cfg.Inngest.Dev {
		inngestClient, err := workflows.NewInngestClient(cfg, logger)
		if err != nil {
			logger.Warnf("Error initializing Inngest client: %v", err)
		} else {
			publisher = inngestClient
			logger.Info("Catalog events will be published to Inngest")
		}
	} else {
		logger.Warn("Inngest credentials not provided, catalog events will not be published")
	}

	// Inicializar object storage
	if cfg.StorageEnabled() {
		storage, err := setupStorage(cfg, logger)
		if err != nil {
			logger.Warnf("Object storage unavailable, image endpoints disabled: %v", err)
		} else {
			logger.WithField("bucket", storage.Bucket()).Info("Object storage ready")
			imageService := services.NewImageService(storage, imageIndex, publisher, logger)
			apiOptions = append(apiOptions,
				api.WithImages(imageService),
				api.WithDependency("storage", storage),
			)
		}
	} else {
		logger.Warn("Object storage credentials not provided, image endpoints will not be available")
	}

	// Repositorios
	brandRepo := database.NewBrandRepository(logger)
	categoryRepo := database.NewCategoryRepository(logger)
	productRepo := database.NewProductRepository(logger)
	linkRepo := database.NewProductCategoryRepository(logger)

	// Servicios
	brandService := services.NewBrandService(db, brandRepo, publisher, logger)
	categoryService := services.NewCategoryService(db, categoryRepo, publisher, logger)
	productService := services.NewProductService(db, productRepo, brandRepo, categoryRepo, linkRepo, publisher, logger)
	catalogReport := services.NewCatalogReport(productService, logger)

	// Inicializar API
	apiHandler := api.NewAPI(
		brandService,
		categoryService,
		productService,
		catalogReport,
		db,
		logger,
		apiOptions...,
	)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(apiHandler, cfg.CORS.AllowedOrigins, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	db.LogStats()
	if redisIndex != nil {
		redisIndex.LogStats(logger)
	}
	logger.Info("Server exited")
}

// setupStorage crea el cliente del object storage y asegura que el bucket exista
func setupStorage(cfg *config.Config, logger *logrus.Logger) (*database.ObjectStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	storage, err := database.NewObjectStorage(ctx, &cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return storage, nil
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
