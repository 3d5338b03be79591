// cmd/jobs/main.go
//
// jobs runs one maintenance task and exits, for cron or a k8s CronJob:
//
//	jobs -job reconcile
//	jobs -job notify-expiring
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/rights-backend/internal/config"
	"github.com/javajoker/rights-backend/internal/database"
	"github.com/javajoker/rights-backend/internal/i18n"
	"github.com/javajoker/rights-backend/internal/repository"
	"github.com/javajoker/rights-backend/internal/services"
)

func main() {
	job := flag.String("job", "reconcile", "job to run: reconcile or notify-expiring")
	timeout := flag.Duration("timeout", 10*time.Minute, "maximum run time")
	flag.Parse()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		logrus.WithError(err).Fatal("Failed to initialize i18n")
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, *timeout)

	contractRepo := repository.NewContractRepository(db)
	auditService := services.NewAuditService(db)
	statusService := services.NewStatusService(contractRepo, auditService)
	contractService := services.NewContractService(db, contractRepo, statusService, auditService, cfg)
	notificationService := services.NewNotificationService(db, cfg)
	jobService := services.NewJobService(statusService, contractService, notificationService)

	started := time.Now()
	result, err := jobService.Run(ctx, *job)

	cancel()
	stop()
	database.Close(db)

	if err != nil {
		logrus.WithError(err).WithField("job", *job).Error("Job failed")
		os.Exit(1)
	}
	logrus.WithFields(logrus.Fields{
		"job":      result.Job,
		"affected": result.Affected,
		"duration": time.Since(started).String(),
	}).Info("Job completed")
}
