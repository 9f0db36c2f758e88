package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/deul428/logis-quotation/handlers"
	"github.com/deul428/logis-quotation/repository"
	"github.com/deul428/logis-quotation/services"
	"github.com/deul428/logis-quotation/storage"
	"github.com/deul428/logis-quotation/utils"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	if origin := os.Getenv("CORS_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization",
		"Cache-Control", "Referer", "X-Request-ID",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS", "HEAD"}
	corsConfig.ExposeHeaders = []string{"Content-Length", "Content-Type", "Content-Disposition", "X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := utils.NewLogger()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	storePath := utils.Getenv("STORE_PATH", "quotes.xlsx")
	store, err := storage.OpenExcelStore(storePath)
	if err != nil {
		log.Fatal("open store", zap.String("path", storePath), zap.Error(err))
	}

	quoteRepo := repository.NewQuoteRepository(store, log)
	intakeRepo := repository.NewIntakeRepository(store, log)
	managerSvc := services.NewManagerService(store, log)
	emailSvc := services.NewEmailService(log)
	quoteSvc := services.NewQuoteService(quoteRepo, intakeRepo, managerSvc, emailSvc, log)

	submissionHandler := handlers.NewSubmissionHandler(quoteSvc, log)
	consoleHandler := handlers.NewConsoleHandler(quoteSvc, log)
	exportHandler := handlers.NewExportHandler(quoteSvc, log)

	if os.Getenv("APP_ENV") != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(CORSConfig()))
	router.Use(utils.RequestID())

	api := router.Group("/api")
	{
		api.POST("/inquiry", submissionHandler.Submit)
		api.GET("/console", consoleHandler.Read)
		api.POST("/console", consoleHandler.Write)
		api.GET("/console/export", exportHandler.Export)
	}
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Periodic sweep picks up intake rows that failed or were written to the
	// sheet outside the API.
	cr := cron.New()
	spec := utils.Getenv("REPROCESS_CRON", "@every 10m")
	if _, err := cr.AddFunc(spec, func() {
		if _, err := quoteSvc.ProcessAllPending(); err != nil {
			log.Error("intake sweep failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("invalid REPROCESS_CRON", zap.String("spec", spec), zap.Error(err))
	}
	cr.Start()

	port := utils.Getenv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("port", port), zap.String("store", storePath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	cr.Stop()
	if err := store.Flush(); err != nil {
		log.Error("store flush", zap.Error(err))
	}
}
