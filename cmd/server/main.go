package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dentavia/dentavia/internal/config"
	v1 "github.com/dentavia/dentavia/internal/handler/v1"
	"github.com/dentavia/dentavia/internal/repository"
	"github.com/dentavia/dentavia/internal/service"
	"github.com/dentavia/dentavia/pkg/auth"
	"github.com/dentavia/dentavia/pkg/database"
	"github.com/dentavia/dentavia/pkg/logger"
	"github.com/dentavia/dentavia/pkg/metrics"
	"github.com/dentavia/dentavia/pkg/storage"
	"github.com/dentavia/dentavia/pkg/tracer"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	files, err := storage.NewLocal(cfg.Storage)
	if err != nil {
		return err
	}

	collector := metrics.NewCollector("dentavia")
	jwtManager := auth.NewJWTManager(cfg.JWT)

	poolDone := make(chan struct{})
	defer close(poolDone)
	if sqlDB, err := db.DB(); err == nil {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
				case <-poolDone:
					return
				}
			}
		}()
	}

	users := repository.NewUserRepository(db)
	appointments := repository.NewAppointmentRepository(db)
	notifications := repository.NewNotificationRepository(db)
	audits := repository.NewAuditRepository(db)
	prescriptions := repository.NewPrescriptionRepository(db)
	messages := repository.NewMessageRepository(db)

	notifier := service.NewNotificationService(notifications, log, collector.NotificationsSent, collector.NotificationsDropped, cfg.Notify.BufferSize)
	auditSvc := service.NewAuditService(audits, log, collector.AuditEntriesTotal, collector.AuditBufferDropped)

	handlers := v1.Handlers{
		Auth:          v1.NewAuthHandler(service.NewAuthService(users, jwtManager, log)),
		Appointments:  v1.NewAppointmentHandler(service.NewBookingService(appointments, users, notifier, log), service.NewAppointmentService(appointments, users, notifier, log), collector),
		Fiches:        v1.NewFicheHandler(service.NewFicheService(appointments, users, files, notifier, log)),
		Delegations:   v1.NewDelegationHandler(service.NewDelegationService(users, notifier, log), collector),
		Notifications: v1.NewNotificationHandler(notifier),
		Prescriptions: v1.NewPrescriptionHandler(service.NewPrescriptionService(prescriptions, appointments, users, notifier, log)),
		Messages:      v1.NewMessageHandler(service.NewMessageService(messages, users, log)),
	}

	router := v1.NewRouter(cfg, handlers, jwtManager, auditSvc, collector)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown failed", zap.Error(err))
	}

	// Drain the async workers so queued notifications and audit entries land.
	notifier.Shutdown()
	auditSvc.Shutdown()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("shutdown complete")
	return nil
}
