package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinrec/console/internal/config"
	examHandler "github.com/clinrec/console/internal/handler/exam"
	healthHandler "github.com/clinrec/console/internal/handler/health"
	patientHandler "github.com/clinrec/console/internal/handler/patient"
	reportHandler "github.com/clinrec/console/internal/handler/report"
	settingsHandler "github.com/clinrec/console/internal/handler/settings"
	"github.com/clinrec/console/internal/middleware"
	"github.com/clinrec/console/internal/remote"
	"github.com/clinrec/console/internal/router"
	examService "github.com/clinrec/console/internal/service/exam"
	patientService "github.com/clinrec/console/internal/service/patient"
	reportService "github.com/clinrec/console/internal/service/report"
	settingsService "github.com/clinrec/console/internal/service/settings"
	"github.com/clinrec/console/internal/upload"
	"github.com/clinrec/console/pkg/logger"
	"github.com/clinrec/console/pkg/metrics"
)

// multipartSlack leaves room for form fields and boundary framing on
// top of the bare file limit.
const multipartSlack = 1 << 20

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	})

	if err := middleware.RegisterValidators(); err != nil {
		log.Fatal(err, "failed to register validators")
	}

	m := metrics.NewMetrics("console", "gateway")

	client, err := remote.NewClient(remote.Config{
		BaseURL:     cfg.Records.BaseURL,
		Timeout:     cfg.Records.Timeout,
		MaxFailures: cfg.Records.MaxFailures,
		Cooldown:    cfg.Records.Cooldown,
	}, log, m)
	if err != nil {
		log.Fatal(err, "failed to build records service client")
	}

	gate := upload.NewGate(cfg.Upload.MaxFileSize)

	patientSvc := patientService.NewService(client, log)
	examSvc := examService.NewService(client, gate, log)
	reportSvc := reportService.NewService()
	settingsSvc := settingsService.NewService(client, settingsService.DefaultCacheTTL, log)

	r := router.New(router.Config{
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodySize:    cfg.Upload.MaxFileSize + multipartSlack,
		RateRPS:        cfg.RateLimit.RPS,
		RateBurst:      cfg.RateLimit.Burst,
		MetricsNS:      "console",
	}, log)
	r.Setup(
		healthHandler.NewHandler(client),
		patientHandler.NewHandler(patientSvc),
		examHandler.NewHandler(examSvc),
		reportHandler.NewHandler(patientSvc, examSvc, reportSvc),
		settingsHandler.NewHandler(settingsSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("console listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
