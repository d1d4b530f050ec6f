package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clinrec/console/internal/config"
	"github.com/clinrec/console/internal/email"
	"github.com/clinrec/console/internal/poller"
	"github.com/clinrec/console/internal/remote"
	examService "github.com/clinrec/console/internal/service/exam"
	patientService "github.com/clinrec/console/internal/service/patient"
	"github.com/clinrec/console/internal/upload"
	"github.com/clinrec/console/pkg/logger"
	"github.com/clinrec/console/pkg/messaging"
	redisbroker "github.com/clinrec/console/pkg/messaging/redis"
	"github.com/clinrec/console/pkg/metrics"
)

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

	m := metrics.NewMetrics("console", "poller")

	client, err := remote.NewClient(remote.Config{
		BaseURL:     cfg.Records.BaseURL,
		Timeout:     cfg.Records.Timeout,
		MaxFailures: cfg.Records.MaxFailures,
		Cooldown:    cfg.Records.Cooldown,
	}, log, m)
	if err != nil {
		log.Fatal(err, "failed to build records service client")
	}

	patientSvc := patientService.NewService(client, log)
	examSvc := examService.NewService(client, upload.NewGate(cfg.Upload.MaxFileSize), log)

	var broker messaging.Broker = messaging.NewNoopBroker()
	if cfg.Redis.URL != "" {
		b, err := redisbroker.NewBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, log.Zerolog())
		if err != nil {
			log.Fatal(err, "failed to connect to redis")
		}
		broker = b
	}
	defer broker.Close()

	var notifier poller.Notifier = email.NoopNotifier{}
	smtp := email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.AlertTo,
	}
	if smtp.Enabled() {
		notifier = email.NewSMTPNotifier(smtp, log)
	}

	p := poller.New(examSvc, patientSvc, broker, notifier, m, poller.Config{
		Interval:   cfg.Poller.Interval,
		MaxBackoff: cfg.Poller.MaxBackoff,
	}, log)

	// Scrape endpoint; the poller serves no other HTTP traffic.
	metricsSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Poller.MetricsPort),
		Handler: promhttp.Handler(),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start metrics server")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("shutting down poller")
		cancel()
	}()

	if err := p.Run(ctx); err != nil && err != context.Canceled {
		log.Fatal(err, "poller stopped unexpectedly")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "metrics server forced to shutdown")
	}

	log.Info("poller exited properly")
}
